package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/tradesync/internal/interface/http"
	"github.com/oksasatya/tradesync/internal/interface/middleware"
	"github.com/oksasatya/tradesync/pkg/helpers"
)

// NoteModule serves /api/notes. Every route requires a token.
type NoteModule struct {
	Handler *handlers.NoteHandler
	JWT     *helpers.JWTManager
	Limits  Limits
}

func NewNoteModule(h *handlers.NoteHandler, jwt *helpers.JWTManager, limits Limits) *NoteModule {
	return &NoteModule{Handler: h, JWT: jwt, Limits: limits}
}

func (m *NoteModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/notes")
	g.Use(middleware.Auth(m.JWT), m.Limits.perUser(m.Limits.APIPerMin))
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/search", m.Handler.Search)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
		g.POST("/:id/chart", m.Handler.UploadChart)
	}
}
