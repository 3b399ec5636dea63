package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tradesync/internal/interface/middleware"
)

// DebugModule exposes expvar counters to private networks only.
type DebugModule struct {
	Limits Limits
}

func NewDebugModule(limits Limits) *DebugModule { return &DebugModule{Limits: limits} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars",
		middleware.OnlyIf(middleware.AllowPrivateIP()),
		m.Limits.perIP(m.Limits.APIPerMin),
		gin.WrapH(expvar.Handler()),
	)
}
