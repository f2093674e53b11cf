package config

import (
	"time"

	"github.com/pressroom-io/pressroom/internal/logger"
)

// Auth holds token signing and bootstrap settings.
type Auth struct {
	JWTSecret     string        // secret used to sign bearer tokens
	TokenTTL      time.Duration // validity window of issued tokens, default 7 days
	DefaultRole   string        // role auto-assigned on signup, default "viewer"
	AdminEmail    string        // bootstrap admin account email (seed only)
	AdminPassword string        // bootstrap admin account password (seed only)
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}
