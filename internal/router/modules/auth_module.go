package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/tradesync/internal/interface/http"
	"github.com/oksasatya/tradesync/internal/interface/middleware"
	"github.com/oksasatya/tradesync/pkg/helpers"
)

// Limits are the per-minute request budgets shared by every module.
// A nil Redis client disables limiting.
type Limits struct {
	Redis      *redis.Client
	AuthPerMin int
	APIPerMin  int
}

func (l Limits) perIP(max int) gin.HandlerFunc {
	return middleware.RateLimit(l.Redis, max, time.Minute, middleware.KeyByIPAndPath(), nil)
}

func (l Limits) perUser(max int) gin.HandlerFunc {
	return middleware.RateLimit(l.Redis, max, time.Minute, middleware.KeyByUserID(), nil)
}

// AuthModule serves /api/auth: register and login are public, user is private.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Limits  Limits
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Limits: limits}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	credLimiter := m.Limits.perIP(m.Limits.AuthPerMin)
	g.POST("/register", credLimiter, m.Handler.Register)
	g.POST("/login", credLimiter, m.Handler.Login)

	g.GET("/user", middleware.Auth(m.JWT), m.Limits.perUser(m.Limits.APIPerMin), m.Handler.User)
}
