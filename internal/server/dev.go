package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
)

type issueTokenRequest struct {
	TenantID   string `json:"tenant_id"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// registerDevRoutes exposes a token mint for local work. It is never
// mounted in production.
func (s *Server) registerDevRoutes() {
	s.engine.POST("/dev/token", s.IssueDevToken)
}

func (s *Server) IssueDevToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		AbortWithError(c, apperror.Validation("tenant_id", "invalid_tenant_id"))
		return
	}

	token, err := s.tokens.Issue(tenantID, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		AbortWithError(c, apperror.Wrap(apperror.KindInternal, "token_issue_failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token, "token_type": "Bearer"}})
}
