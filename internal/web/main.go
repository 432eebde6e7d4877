package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	adapterfiber "github.com/authgate/authgate/internal/logger/adapter/fiber"
	"github.com/authgate/authgate/internal/web/handler/admin/audit"
	"github.com/authgate/authgate/internal/web/handler/admin/group"
	"github.com/authgate/authgate/internal/web/handler/admin/settings"
	"github.com/authgate/authgate/internal/web/handler/admin/user"
	"github.com/authgate/authgate/internal/web/handler/catalog"
	"github.com/authgate/authgate/internal/web/handler/check"
	"github.com/authgate/authgate/internal/web/handler/login"
	"github.com/authgate/authgate/internal/web/handler/logout"
	authmiddleware "github.com/authgate/authgate/internal/web/middleware/auth"
)

// CheckAliveURI is the liveness endpoint used by load balancers.
const CheckAliveURI = "/checkalive"

// Purger invalidates cached authorization decisions after admin mutations.
// A nil Purger disables invalidation (no cache configured).
type Purger interface {
	Purge()
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration. The checker
// decides permission checks for every guarded route, the recorder applies
// runtime audit mode changes, and the purger (optional) invalidates the
// decision cache after admin mutations.
func New(cfg *config.Config, db *gorm.DB, checker authz.Checker, recorder settings.Recorder, purger Purger) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if checker == nil {
		panic("checker cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "authgate",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// access log middleware
	app.Use(adapterfiber.New(adapterfiber.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAliveURI,
	}))

	// session auth middleware
	app.Use(authmiddleware.Middleware)

	// init web service
	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	// liveness for load balancers: fails during the shutdown grace period
	app.Get(CheckAliveURI, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with permission guards)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("init login handler failed")
	}

	logout.Handler.Init(app, cfg)
	group.Handler.Init(app, cfg, db, checker, purger)
	user.Handler.Init(app, cfg, db, checker, purger)
	catalog.Handler.Init(app, cfg, db, checker)
	audit.Handler.Init(app, cfg, db, checker)
	check.Handler.Init(app, cfg, checker)
	settings.Handler.Init(app, cfg, db, checker, recorder)

	return service
}
