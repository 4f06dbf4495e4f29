package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/withgossing/bank-app/internal/server/models"
)

const callerKey = "caller"

// authRequired verifies the bearer access token and resolves the caller's
// account, which downstream handlers receive as an explicit argument. The
// account record, not the token's role claim, is the authorization source of
// truth, so a stale token cannot keep an elevated or deactivated identity
// alive.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			s.unauthorized(c)
			return
		}

		claims, err := s.users.VerifyAccessToken(tokenString)
		if err != nil {
			s.logger.Warn(c.Request.Context(), "access token rejected", "reason", err)
			s.unauthorized(c)
			return
		}

		caller, err := s.users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil || !caller.Active {
			s.unauthorized(c)
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

func (s *Server) unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "message": "invalid token"})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func callerFromContext(c *gin.Context) *models.User {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return caller
}
