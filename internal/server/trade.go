package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
)

func (s *Server) CreateSale(c *gin.Context) {
	var req tradedomain.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tradeSvc.CreateSale(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req tradedomain.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tradeSvc.CreatePurchase(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	req, ok := bindTradeQuery(c)
	if !ok {
		return
	}

	resp, err := s.tradeSvc.ListSales(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPurchases(c *gin.Context) {
	req, ok := bindTradeQuery(c)
	if !ok {
		return
	}

	resp, err := s.tradeSvc.ListPurchases(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	resp, err := s.tradeSvc.GetSale(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPurchaseByID(c *gin.Context) {
	resp, err := s.tradeSvc.GetPurchase(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSale(c *gin.Context) {
	if err := s.tradeSvc.DeleteSale(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeletePurchase(c *gin.Context) {
	if err := s.tradeSvc.DeletePurchase(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func bindTradeQuery(c *gin.Context) (tradedomain.ListTradeRequest, bool) {
	startDate, err := parseOptionalDate("start_date", c.Query("start_date"))
	if err != nil {
		AbortWithError(c, err)
		return tradedomain.ListTradeRequest{}, false
	}
	endDate, err := parseOptionalDate("end_date", c.Query("end_date"))
	if err != nil {
		AbortWithError(c, err)
		return tradedomain.ListTradeRequest{}, false
	}
	return tradedomain.ListTradeRequest{
		StartDate:  startDate,
		EndDate:    endDate,
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
	}, true
}
