package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"sessionpulse/models"
	"sessionpulse/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

func (h *StatsHandler) GetGroupStats(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	stats, err := h.statsService.GroupStats(uint(groupID))
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		log.Printf("Error fetching group stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching group stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetPagedGroupStats(c *gin.Context) {
	role := c.DefaultQuery("role", models.RoleGroupLead)

	page := 0
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		page = parsed
	}

	stats, err := h.statsService.PagedGroupStats(role, page)
	if err != nil {
		log.Printf("Error fetching paged group stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching group stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetAggregatedGroupStats(c *gin.Context) {
	role := c.DefaultQuery("role", models.RoleGroupLead)

	stats, err := h.statsService.AggregatedGroupStats(role)
	if err != nil {
		log.Printf("Error fetching aggregated group stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching aggregated stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetMonthlyGroupStats(c *gin.Context) {
	role := c.DefaultQuery("role", models.RoleGroupLead)

	buckets, err := h.statsService.MonthlyGroupStats(role)
	if err != nil {
		log.Printf("Error fetching monthly group stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching monthly stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": buckets})
}
