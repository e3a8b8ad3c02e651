package http

import (
	"net/http"
	"strings"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	userKey         = "campfire_user"
	sessionTokenKey = "token"
)

// IdentityMiddleware attaches the verified user, if any, to the request.
// The token is taken from the token query parameter, the Authorization
// header or the cookie session, in that order. Requests without a valid
// token continue anonymously.
func IdentityMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		user, err := verifier.Verify(token)
		if err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("ignoring invalid token")
			c.Next()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if t, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
		return t
	}
	return ""
}

func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u := v.(domain.User)
	return &u
}

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
