// Package daemon wires the database, the authorization engine, and the web
// service into one runnable unit.
package daemon

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/authz"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/db/controller/setting"
	"github.com/authgate/authgate/internal/db/dsn"
	"github.com/authgate/authgate/internal/db/models"
	"github.com/authgate/authgate/internal/db/repo"
	"github.com/authgate/authgate/internal/web"
	"github.com/authgate/authgate/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	recorder   *authz.Recorder
	cfg        *config.Config
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down, then drains the
// audit queue. The order matters: entries enqueued by in-flight requests must
// still be persisted.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
	d.recorder.Close()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Permission{},
		&models.PermissionGroup{},
		&models.GroupPermission{},
		&models.UserPermissionGroup{},
		&models.UserDirectPermission{},
		&models.PermissionAuditLog{},
		&models.Setting{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(newSessionStorage(cfg))

	recorder := authz.NewRecorder(repo.NewAuditRepo(db), cfg.Authz.AuditQueueDepth)
	recorder.WriteTimeout = cfg.Authz.AuditWriteTimeout

	mode, err := setting.AuditMode(db)
	if err != nil {
		log.Warn().Err(err).Msg("stored audit mode is invalid; recording all checks")
	}

	engine := authz.NewService(repo.New(db), recorder, authz.WithAuditMode(mode))

	var (
		checker authz.Checker = engine
		purger  web.Purger
	)

	if cfg.Authz.CacheTTL > 0 {
		cache := authz.NewCachingChecker(engine, cfg.Authz.CacheSize, cfg.Authz.CacheTTL)
		checker = cache
		purger = cache

		log.Info().
			Int("size", cfg.Authz.CacheSize).
			Dur("ttl", cfg.Authz.CacheTTL).
			Msg("decision cache enabled")
	}

	return &Daemon{
		webService: web.New(cfg, db, checker, engine, purger),
		recorder:   recorder,
		cfg:        cfg,
	}
}

// openDialector selects the gorm driver for the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case dsn.EnginePostgres:
		return gormpostgres.Open(dsn.Create(cfg))
	case dsn.EngineSQLite:
		return sqlite.Open(dsn.Create(cfg))
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// newSessionStorage creates the fiber session storage backend matching the
// configured database engine. The sqlite engine gets an in-process store:
// sessions then do not survive a restart, which is acceptable for the
// single-node setups sqlite is meant for.
func newSessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case dsn.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case dsn.EngineSQLite:
		return sessionmemory.New(sessionmemory.Config{
			GCInterval: 10 * time.Second,
		})
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}
}
