package config

import (
	"time"

	"github.com/authgate/authgate/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Authz holds the permission engine settings.
type Authz struct {
	CacheSize         int           // max entries in the decision cache, 0 = default
	CacheTTL          time.Duration // decision cache entry lifetime, 0 = cache disabled
	AuditQueueDepth   int           // audit recorder queue depth, 0 = default
	AuditWriteTimeout time.Duration // per-entry audit persistence timeout, 0 = none
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Authz     Authz
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Argon2Salt          string  // salt for argon2 hashing
	Session             Session // session settings
}
