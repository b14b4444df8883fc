package middleware

import (
	"fmt"
	"net/http"
	"strings"

	domainerr "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/gin-gonic/gin"
)

// Identity headers set by the upstream gateway
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"

	requesterKey = "requester"
)

// Identity copies the gateway identity headers into the request context.
// Missing identity is not rejected here; operations that need it refuse it.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requesterKey, usecase.Requester{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Name:   strings.TrimSpace(c.GetHeader(HeaderUserName)),
			Role:   strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))),
		})
		c.Next()
	}
}

// RequesterFrom returns the identity stored by Identity, or the zero Requester
func RequesterFrom(c *gin.Context) usecase.Requester {
	if v, ok := c.Get(requesterKey); ok {
		if r, ok := v.(usecase.Requester); ok {
			return r
		}
	}
	return usecase.Requester{}
}

// RequireRole aborts with 403 unless the requester has one of the roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RequesterFrom(c).Role
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		err := fmt.Errorf("%w: role %q may not call this endpoint", domainerr.ErrNotAuthorized, role)
		_, body := ErrorResponseFor(err)
		c.AbortWithStatusJSON(http.StatusForbidden, body)
	}
}
