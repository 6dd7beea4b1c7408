package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type AnalyticsController struct {
	analytics services.AnalyticsService
}

func NewAnalyticsController(analytics services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// GetAnalytics returns the store overview plus daily sales for the last
// seven days.
func (ac *AnalyticsController) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	data, svcErr := ac.analytics.GetAnalyticsData(ctx)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -7)
	dailySales, svcErr := ac.analytics.GetDailySalesData(ctx, start, end)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyticsData":  data,
		"dailySalesData": dailySales,
	})
}
