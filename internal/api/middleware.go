package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextUserIDKey = "userID"
)

// TokenParser validates bearer tokens. service.AuthService implements it.
type TokenParser interface {
	ParseToken(token string) (primitive.ObjectID, error)
}

// AuthMiddleware authenticates the bearer token when one is sent. With
// required set, requests without a token are rejected as well.
func AuthMiddleware(tokens TokenParser, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
				return
			}
			c.Next()
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := tokens.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// RequestLogger logs one line per request, including errors attached with c.Error.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// tokenUserID returns the authenticated user, if the request carried a token.
func tokenUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := raw.(primitive.ObjectID)
	return id, ok
}

// resolveUserID picks the user a request acts for. An explicit id wins; the
// token's user fills in when it is omitted. A token for someone else is refused.
func resolveUserID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	authed, hasToken := tokenUserID(c)
	if raw == "" {
		if hasToken {
			return authed, true
		}
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid userId format")
		return primitive.NilObjectID, false
	}
	if hasToken && id != authed {
		abortWithError(c, http.StatusForbidden, "Access denied")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseObjectID(c *gin.Context, raw, field string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+field+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}
