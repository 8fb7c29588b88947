package handlers

import (
	"net/http"
	"time"

	"stresscheck-go/internal/repository"
	"stresscheck-go/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	log    *zap.Logger
	stats  *services.StatsService
	alerts *services.AlertService
}

func NewDashboardHandler(log *zap.Logger, stats *services.StatsService, alerts *services.AlertService) *DashboardHandler {
	return &DashboardHandler{log: log, stats: stats, alerts: alerts}
}

// CompanyStats serves the aggregate dashboard. Explicit start_date/end_date
// override the named period filter; both default to all-time.
func (h *DashboardHandler) CompanyStats(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}
	// Admins see their own tenant only.
	if companyID != currentCompanyID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access to another company's data is not allowed"})
		return
	}

	var departmentID *uuid.UUID
	if raw := c.Query("department_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
			return
		}
		departmentID = &id
	}

	start, end := h.stats.ResolveWindow(services.PeriodFilter(c.Query("period")))
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		start = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		end = &parsed
	}

	stats, err := h.stats.CompanyStats(c, companyID, departmentID, start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Departments lists the company's departments, for the dashboard's
// department filter.
func (h *DashboardHandler) Departments(c *gin.Context) {
	departments, err := repository.ListDepartments(c, currentCompanyID(c))
	if err != nil {
		h.log.Error("Failed to list departments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// Alerts evaluates and serves the company's alerts; include_read=true keeps
// alerts already marked read in the response.
func (h *DashboardHandler) Alerts(c *gin.Context) {
	includeRead := c.Query("include_read") == "true"
	alerts, err := h.alerts.Evaluate(c, currentCompanyID(c), includeRead)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *DashboardHandler) MarkAlertRead(c *gin.Context) {
	if err := h.alerts.MarkRead(c, c.Param("alert_id"), currentCompanyID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *DashboardHandler) MarkAlertUnread(c *gin.Context) {
	if err := h.alerts.MarkUnread(c, c.Param("alert_id"), currentCompanyID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unread"})
}
