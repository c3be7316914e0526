package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
)

const (
	// ContextKeySession is the Gin context key for the resolved exam session.
	ContextKeySession = "exam_session"
)

// RequireSessionToken resolves the opaque session bearer token from the
// X-Session-Token header and, when the route carries a :sid param, checks
// that the token actually owns that session. Handlers behind it read the
// session with GetSession.
func RequireSessionToken(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		session, err := sessionService.GetByToken(c.Request.Context(), token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if sidStr := c.Param("sid"); sidStr != "" {
			sid, err := strconv.ParseInt(sidStr, 10, 64)
			if err != nil {
				response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
				return
			}
			if sid != session.ID {
				response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
				return
			}
		}

		c.Set(ContextKeySession, session)
		c.Next()
	}
}

// GetSession retrieves the resolved session from the Gin context.
func GetSession(c *gin.Context) *model.ExamSession {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil
	}
	session, ok := val.(*model.ExamSession)
	if !ok {
		return nil
	}
	return session
}
