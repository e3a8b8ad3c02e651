package http

import (
	"context"

	"github.com/dkeye/campfire/internal/adapters/signal"
	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/config"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TokenVerifier turns a bearer token into a verified user.
type TokenVerifier interface {
	Verify(token string) (domain.User, error)
}

type UserSearcher interface {
	Search(ctx context.Context, q string) ([]domain.User, error)
}

type Deps struct {
	Orch     *orch.Orchestrator
	Signal   *signal.SignalWSController
	Verifier TokenVerifier
	Users    UserSearcher
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("CampfireSessions", store))
	r.Use(IdentityMiddleware(deps.Verifier))

	h := &handlers{orch: deps.Orch, verifier: deps.Verifier, users: deps.Users}

	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.POST("/session", h.login)
	api.DELETE("/session", h.logout)

	api.GET("/rooms", h.listRooms)
	api.POST("/rooms", h.createRoom)
	api.GET("/rooms/:ref", h.getRoom)
	api.GET("/rooms/:ref/messages", RequireIdentity(), h.roomMessages)
	api.GET("/users", RequireIdentity(), h.searchUsers)

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws endpoint hit")
		deps.Signal.HandleSignal(ctx, c.Writer, c.Request, CurrentUser(c))
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
