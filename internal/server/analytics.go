package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
)

// GetDailySummary totals one kind of trade for a day, today by default.
func (s *Server) GetDailySummary(c *gin.Context) {
	date, err := parseDateOr("date", c.Query("date"), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	kind := tradedomain.Kind(strings.ToLower(strings.TrimSpace(c.DefaultQuery("kind", string(tradedomain.KindSale)))))

	resp, err := s.analyticsSvc.DailySummary(c.Request.Context(), kind, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDashboardSummary(c *gin.Context) {
	resp, err := s.analyticsSvc.DashboardSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMonthlyTrends(c *gin.Context) {
	months, err := parseOptionalInt("months", c.Query("months"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.MonthlyTrends(c.Request.Context(), months)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDayBook(c *gin.Context) {
	date, err := parseDateOr("date", c.Query("date"), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.DayBook(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
