package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"sessionpulse/services"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	resultService *services.ResultService
}

func NewResultHandler(resultService *services.ResultService) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
	}
}

func (h *ResultHandler) SubmitResult(c *gin.Context) {
	var req services.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.resultService.SubmitResult(&req)
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		log.Printf("Error submitting result: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while submitting result"})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ResultHandler) GetResultByCode(c *gin.Context) {
	resultCode := c.Query("result_code")
	if resultCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Result code required"})
		return
	}

	result, err := h.resultService.GetResultByCode(resultCode)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
			return
		}
		log.Printf("Error fetching result %s: %v", resultCode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching results"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ResultHandler) GetResults(c *gin.Context) {
	results, err := h.resultService.GetResults()
	if err != nil {
		log.Printf("Error fetching results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *ResultHandler) DeleteResult(c *gin.Context) {
	resultID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid result ID"})
		return
	}

	if err := h.resultService.DeleteResult(uint(resultID)); err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
			return
		}
		log.Printf("Error deleting result: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while deleting result"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Result deleted successfully"})
}

func (h *ResultHandler) AddSurveyResponse(c *gin.Context) {
	var req services.AddSurveyResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.resultService.AddSurveyResponse(&req)
	if err != nil {
		log.Printf("Error adding survey response: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while saving response"})
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ResultHandler) GetSurveyResponses(c *gin.Context) {
	responses, err := h.resultService.GetSurveyResponses(c.Query("poll_code"))
	if err != nil {
		log.Printf("Error fetching survey responses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching responses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"responses": responses})
}
