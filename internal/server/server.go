// Package server assembles the Fiber app: global middleware, the session and
// password chains, and the route table.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	html "github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hellosession/internal/config"
	"hellosession/internal/http/handlers"
	applog "hellosession/internal/log"
	"hellosession/internal/metrics"
	"hellosession/internal/repos"
	"hellosession/internal/services"
	"hellosession/web"
)

// Server bundles the app with the pieces tests and the CLI reach into.
type Server struct {
	App      *fiber.App
	Auth     *services.AuthService
	Sessions *session.Store
	Metrics  *metrics.Metrics
}

func views(cfg config.ViewsConfig) fiber.Views {
	if cfg.Dir != "" {
		engine := html.New(cfg.Dir, ".html")
		engine.Reload(cfg.Reload)
		return engine
	}
	return html.NewFileSystem(http.FS(web.Templates()), ".html")
}

// New wires the app. accessLog receives one line per request; nil means stdout.
func New(cfg config.Config, db *sqlx.DB, accessLog io.Writer) *Server {
	authSvc := services.NewAuthService(repos.NewUserRepo(db), cfg.Security.BcryptCost)
	m := metrics.New()

	app := fiber.New(fiber.Config{
		Views:                 views(cfg.Views),
		ErrorHandler:          handlers.ErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{Output: accessLog}))
	app.Use(helmet.New())
	app.Use(m.Middleware())
	if cfg.Security.CSRF {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:csrf",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			CookieSecure:   cfg.Session.Secure,
			ContextKey:     "csrf",
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
				return fiber.ErrForbidden
			},
		}))
	}

	store := session.New(session.Config{
		Expiration:     cfg.Session.TTL,
		KeyLookup:      "cookie:" + cfg.Session.Cookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Session.Secure,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})
	sessions := handlers.Sessions(store)
	persist := handlers.Persist(authSvc)

	// ---------- App handlers ----------
	deps := handlers.NewDeps(authSvc, m)

	// Public pages; the welcome page shows who is signed in
	app.Get("/", sessions, persist, deps.PagesHandler.Welcome)
	app.Get("/register", deps.RegisterHandler.Form)
	app.Post("/register", deps.RegisterHandler.Register)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Get("/info", deps.PagesHandler.Info)

	// Login-only chain: sessions -> persist
	app.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.Security.LoginLimit,
		Expiration: cfg.Security.LoginWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fiber.ErrTooManyRequests
		},
	}), sessions, persist, deps.AuthHandler.Login)
	app.Post("/logout", sessions, persist, deps.AuthHandler.Logout)

	// Authenticated chain: sessions -> persist -> password
	hello := app.Group("/hello", sessions, persist,
		handlers.RequirePassword(authSvc), handlers.BasicUser(authSvc))
	hello.Get("/", deps.HelloHandler.Index)
	hello.Get("/:name", deps.HelloHandler.Show)

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, m.Handler())
	}
	app.Use(deps.PagesHandler.NotFound)

	return &Server{App: app, Auth: authSvc, Sessions: store, Metrics: m}
}

// Run serves until ctx is cancelled, then drains connections for at most
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.App.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		applog.Logger().Info("server.shutdown", "timeout", shutdownTimeout.String())
		return s.App.ShutdownWithTimeout(shutdownTimeout)
	}
}
