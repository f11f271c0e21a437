package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/dashboard"
)

// DashboardController serves the admin dashboard aggregates.
type DashboardController struct {
	dashboard *dashboard.Service
}

// NewDashboardController creates a dashboard controller.
func NewDashboardController(dashboardService *dashboard.Service) *DashboardController {
	return &DashboardController{dashboard: dashboardService}
}

// Stats returns the dashboard counters.
func (controller *DashboardController) Stats(c *gin.Context) {
	stats, err := controller.dashboard.GetStats()
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecentActivity returns the merged activity feed, newest first.
func (controller *DashboardController) RecentActivity(c *gin.Context) {
	activities, err := controller.dashboard.GetRecentActivity()
	if err != nil {
		respondInternalError(c, err, "recent activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}
