package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	athleteCtxKey = "userId"

	errMissingAuth   = "missing Authorization header"
	errAuthFormat    = "invalid Authorization header format"
	errTokenRejected = "invalid or expired token"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. ok is false when the scheme is wrong or the token is blank.
func bearerToken(header string) (token string, ok bool) {
	scheme, rest, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(rest)
	return token, token != ""
}

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMissingAuth})
		return
	}

	token, ok := bearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errAuthFormat})
		return
	}

	athleteID, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenRejected})
		return
	}

	c.Set(athleteCtxKey, athleteID)
	c.Next()
}

// currentAthlete returns the id stored by userIdMiddleware, or 0.
func currentAthlete(c *gin.Context) int {
	return c.GetInt(athleteCtxKey)
}
