package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sessiondomain "github.com/smallbiznis/portalauth/internal/session/domain"
)

type createSessionRequest struct {
	Email         string `json:"email"`
	AccountID     string `json:"account_id"`
	DurationHours int    `json:"duration_hours"`
}

type switchAccountRequest struct {
	AccountID string `json:"account_id"`
}

// HasActiveSession reports whether an email currently holds a live session.
func (s *Server) HasActiveSession(c *gin.Context) {
	active, err := s.sessions.HasActiveSession(c.Request.Context(), c.Query("email"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active})
}

// CreateSession issues a new session for an (email, account) pair. The
// upstream identity check (OTP, password) has already happened by the time
// this endpoint is called.
func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, sessiondomain.ErrInvalidRequest)
		return
	}
	if req.DurationHours < 0 {
		AbortWithError(c, sessiondomain.ErrInvalidRequest)
		return
	}
	hours := req.DurationHours
	if hours == 0 {
		hours = s.cfg.SessionDurationHours
	}

	result, err := s.sessions.CreateSession(c.Request.Context(), sessiondomain.CreateSessionRequest{
		Email:           req.Email,
		AccountID:       req.AccountID,
		ClientIP:        c.ClientIP(),
		ClientUserAgent: c.Request.UserAgent(),
		Duration:        time.Duration(hours) * time.Hour,
	})
	if err != nil {
		s.metrics.RecordSessionDenied(err.Error())
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordSessionCreated()
	s.cookies.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": result.SessionID.String(),
		"token":      result.RawToken,
		"expires_at": result.ExpiresAt,
	})
}

// SwitchAccount re-points the caller's session at another account under
// the same email. The token and expiry are unchanged.
func (s *Server) SwitchAccount(c *gin.Context) {
	token, ok := s.cookies.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req switchAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, sessiondomain.ErrInvalidRequest)
		return
	}

	account, err := s.sessions.SwitchAccount(c.Request.Context(), token, req.AccountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": accountView(account)})
}

// EndSession terminates the caller's session. Ending an already ended
// session succeeds.
func (s *Server) EndSession(c *gin.Context) {
	token, ok := s.cookies.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.sessions.EndSession(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}

	s.cookies.Clear(c)
	c.Status(http.StatusNoContent)
}

// CurrentSession validates the caller's token and returns the session with
// its bound account.
func (s *Server) CurrentSession(c *gin.Context) {
	token, ok := s.cookies.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	session, account, err := s.sessions.ValidateToken(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"id":         session.ID.String(),
			"email":      session.Email,
			"created_at": session.CreatedAt,
			"expires_at": session.ExpiresAt,
		},
		"account": accountView(account),
	})
}
