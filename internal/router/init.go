package router

import (
	"github.com/oksasatya/tradesync/internal/application"
	"github.com/oksasatya/tradesync/internal/container"
	pginfra "github.com/oksasatya/tradesync/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/tradesync/internal/interface/http"
	"github.com/oksasatya/tradesync/internal/interface/middleware"
	"github.com/oksasatya/tradesync/internal/router/modules"
)

// InitModules wires repositories, services and handlers from c and adds
// their modules to r. Call once at startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	users := pginfra.NewUserRepository(c.PG)
	notes := pginfra.NewNoteRepository(c.PG)

	authSvc := application.NewAuthService(users, c.JWT, c.MailPublisher(), c.Cfg, c.Logger)
	noteSvc := application.NewNoteService(notes, c.NoteIndex(), c.ChartStore(), c.Logger)

	limits := modules.Limits{
		Redis:      c.Redis,
		AuthPerMin: c.Cfg.RateLimitAuthPerMin,
		APIPerMin:  c.Cfg.RateLimitAPIPerMin,
	}

	r.Use(middleware.RealIP())
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, c.Logger), c.JWT, limits))
	r.Add(modules.NewNoteModule(handlers.NewNoteHandler(noteSvc, c.Logger), c.JWT, limits))
	if c.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limits))
	}
}
