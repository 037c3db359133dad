package handlers

import (
	"errors"
	"log"
	"net/http"

	"sessionpulse/services"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	pollService *services.PollService
	hub         *services.Hub
}

func NewPollHandler(pollService *services.PollService, hub *services.Hub) *PollHandler {
	return &PollHandler{
		pollService: pollService,
		hub:         hub,
	}
}

type openPollRequest struct {
	GroupID uint   `json:"group_id" binding:"required"`
	Slot    string `json:"slot" binding:"required"`
}

func (h *PollHandler) OpenPoll(c *gin.Context) {
	var req openPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.pollService.OpenPoll(req.GroupID, req.Slot)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		case errors.Is(err, services.ErrUnknownSlot):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Error opening poll: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while opening poll"})
		}
		return
	}

	if h.hub != nil {
		code := group.StartPollCode
		if req.Slot == "end" {
			code = group.EndPollCode
		}
		if code != nil {
			h.hub.BroadcastToPoll(*code, "poll_opened", gin.H{"code": *code, "slot": req.Slot})
		}
	}

	c.JSON(http.StatusOK, group)
}

func (h *PollHandler) GetPollByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Poll code required"})
		return
	}

	state, err := h.pollService.GetPollState(code)
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		log.Printf("Error fetching poll %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching poll"})
		return
	}

	c.JSON(http.StatusOK, state)
}

type setInitiatedRequest struct {
	// The value arrives as a string from the client; the conversion to bool
	// happens here at the boundary only.
	Value string `json:"value" binding:"required"`
}

func (h *PollHandler) SetInitiated(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Poll code required"})
		return
	}

	var req setInitiatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.pollService.SetInitiated(code, req.Value == "true")
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		log.Printf("Error setting poll %s initiated: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while updating poll"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToPoll(code, "poll_initiated", gin.H{
			"code":      code,
			"initiated": req.Value == "true",
		})
	}

	c.JSON(http.StatusOK, group)
}

func (h *PollHandler) CheckReadiness(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Poll code required"})
		return
	}

	// Participants may arrive with no token at all; that's fine.
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("X-Participant-Token")
	}

	status, err := h.pollService.CheckReadiness(code, token)
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		log.Printf("Error checking readiness for poll %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while checking readiness"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *PollHandler) MarkReady(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Poll code required"})
		return
	}

	token, state, err := h.pollService.MarkReady(code)
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		log.Printf("Error marking ready for poll %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while joining poll"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastReadyUpdate(state)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"ready_count": state.ReadyCount,
	})
}
