package handlers

import (
	"strings"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

// actorFrom builds the caller identity from the auth headers set by the
// upstream gateway. Authentication itself happens there; the core only
// compares claimed scopes.
func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:    strings.TrimSpace(c.GetHeader("X-Actor-ID")),
		OrgID: strings.TrimSpace(c.GetHeader("X-Org-ID")),
	}
}

// splitParam splits a comma-separated query value, dropping empties.
func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
