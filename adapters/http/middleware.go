package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/auth"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const (
	GinContextKeySessionID = "sessionID"
)

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.FullPath()), zap.Int("status", status))
		} else {
			log.Debug("Request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			c.AbortWithStatusJSON(status, appErr.ToJSON())
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"error": apperror.ErrInternal.Error(), "message": "Unexpected error"})
	}
}

// SessionMiddleware resolves the session token from the Authorization header.
func SessionMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return sessionAuth(jwtSvc, false)
}

// WebsocketSessionMiddleware also accepts the token query parameter, since browsers cannot
// set headers on websocket upgrades. Mount it on the stream route only.
func WebsocketSessionMiddleware(jwtSvc *auth.JWTService) gin.HandlerFunc {
	return sessionAuth(jwtSvc, true)
}

func sessionAuth(jwtSvc *auth.JWTService, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if allowQueryToken {
			tokenString = c.Query("token")
		}

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
				return
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session token is required"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeySessionID, claims.SessionID)
		c.Next()
	}
}

func GetSessionIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	sessionID, ok := c.Get(GinContextKeySessionID)
	if !ok {
		return uuid.Nil, false
	}
	sessionUUID, ok := sessionID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return sessionUUID, true
}
