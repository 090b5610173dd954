package goAuthClient

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/backend"
	"github.com/MrEthical07/goAuthClient/buildparam"
)

// Platform selects the OAuth client id presented to the identity server.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Config defines a public type used by goAuthClient APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Platform Platform
	// ClientIDs overrides the client id per platform. Unlisted platforms use
	// the platform name itself.
	ClientIDs map[Platform]string
	// ConfigTimeout bounds how long a flow waits for endpoint resolution.
	ConfigTimeout time.Duration

	Endpoint  EndpointSettings
	Browser   BrowserConfig
	Profile   ProfileConfig
	LoginTime LoginTimeConfig
	Logout    LogoutConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointSettings controls how authorization and logout URLs are composed.
type EndpointSettings struct {
	Realm   string
	Scope   string
	Version string

	BaseURLKey     string
	RedirectURIKey string
}

/*
====================================
BROWSER CONFIG
====================================
*/

// BrowserConfig holds the web view window target and options per flow.
type BrowserConfig struct {
	LoginTarget   string
	LoginOptions  string
	LogoutTarget  string
	LogoutOptions string
}

/*
====================================
BEST-EFFORT CONFIG
====================================
*/

// ProfileConfig defines a public type used by goAuthClient APIs.
type ProfileConfig struct {
	RequiredFields []string
	Timeout        time.Duration
}

// LoginTimeConfig defines a public type used by goAuthClient APIs.
type LoginTimeConfig struct {
	Enabled bool
	Path    string
	Timeout time.Duration
}

// LogoutCancelPolicy decides what closing the logout view means locally.
type LogoutCancelPolicy int

const (
	// LogoutCancelReject reports ErrLogoutCanceled and leaves the session alone.
	LogoutCancelReject LogoutCancelPolicy = iota
	// LogoutCancelEndSession ends the local session anyway.
	LogoutCancelEndSession
)

type LogoutConfig struct {
	CancelPolicy LogoutCancelPolicy
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig defines a public type used by goAuthClient APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goAuthClient APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Platform:      PlatformAndroid,
		ConfigTimeout: 10 * time.Second,
		Endpoint: EndpointSettings{
			Realm:          "sunbird",
			Scope:          "offline_access",
			Version:        "1",
			BaseURLKey:     buildparam.KeyBaseURL,
			RedirectURIKey: buildparam.KeyRedirectURL,
		},
		Browser: BrowserConfig{
			LoginTarget:  "_blank",
			LoginOptions: "zoom=no",
			LogoutTarget: "_self",
		},
		Profile: ProfileConfig{
			RequiredFields: []string{"completeness", "missingFields", "lastLoginTime", "topics"},
			Timeout:        10 * time.Second,
		},
		LoginTime: LoginTimeConfig{
			Enabled: true,
			Path:    backend.DefaultLoginTimePath,
			Timeout: 10 * time.Second,
		},
		Logout: LogoutConfig{
			CancelPolicy: LogoutCancelReject,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.ClientIDs != nil {
		out.ClientIDs = make(map[Platform]string, len(cfg.ClientIDs))
		for k, v := range cfg.ClientIDs {
			out.ClientIDs[k] = v
		}
	}
	if cfg.Profile.RequiredFields != nil {
		out.Profile.RequiredFields = append([]string(nil), cfg.Profile.RequiredFields...)
	}
	return out
}

// clientID returns the OAuth client id for the configured platform.
func (c *Config) clientID() string {
	if id := c.ClientIDs[c.Platform]; id != "" {
		return id
	}
	return string(c.Platform)
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformAndroid, PlatformIOS:
	default:
		if c.ClientIDs[c.Platform] == "" {
			return errors.New("Platform must be android or ios, or have a ClientIDs entry")
		}
	}
	if c.ConfigTimeout <= 0 {
		return errors.New("ConfigTimeout must be > 0")
	}

	if strings.TrimSpace(c.Endpoint.Realm) == "" {
		return errors.New("Endpoint Realm must not be empty")
	}
	if strings.ContainsAny(c.Endpoint.Realm, "/?#") {
		return errors.New("Endpoint Realm must be a single path segment")
	}
	if strings.TrimSpace(c.Endpoint.Scope) == "" {
		return errors.New("Endpoint Scope must not be empty")
	}
	if c.Endpoint.BaseURLKey == "" || c.Endpoint.RedirectURIKey == "" {
		return errors.New("Endpoint configuration keys must not be empty")
	}

	if c.Profile.Timeout < 0 {
		return errors.New("Profile Timeout must be >= 0")
	}

	if c.LoginTime.Enabled {
		if !strings.HasPrefix(c.LoginTime.Path, "/") {
			return errors.New("LoginTime Path must start with /")
		}
		if c.LoginTime.Timeout < 0 {
			return errors.New("LoginTime Timeout must be >= 0")
		}
	}

	switch c.Logout.CancelPolicy {
	case LogoutCancelReject, LogoutCancelEndSession:
	default:
		return errors.New("Logout CancelPolicy is invalid")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
