package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/gocommerce-admin/pkg/config"
	"github.com/abgdnv/gocommerce-admin/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	IdentityModeHeader = "header"
	IdentityModeJWT    = "jwt"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Store      StoreConfig             `koanf:"store"`
	Admin      AdminConfig             `koanf:"admin"`
	Identity   IdentityConfig          `koanf:"identity"`
	IdP        config.IdP              `koanf:"idp"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Metrics    config.MetricsConfig    `koanf:"metrics"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// StoreConfig selects the backend of the remote store adapter.
type StoreConfig struct {
	Driver   string `koanf:"driver"`
	SeedFile string `koanf:"seedfile"`
}

// AdminConfig describes the catalog page: who may use it and where it navigates.
type AdminConfig struct {
	Role          string        `koanf:"role"`
	FallbackRoute string        `koanf:"fallbackroute"`
	AddRoute      string        `koanf:"addroute"`
	EditRoute     string        `koanf:"editroute"`
	SessionTTL    time.Duration `koanf:"sessionttl"`
	SweepInterval time.Duration `koanf:"sweepinterval"`
}

// IdentityConfig selects how the operator is identified: a trusted header or a verified JWT.
type IdentityConfig struct {
	Mode string `koanf:"mode"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())

	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  store.driver: %s\n", c.Store.Driver))
	b.WriteString(fmt.Sprintf("  store.seedfile: %s\n", c.Store.SeedFile))
	if c.Store.Driver == StoreDriverPostgres {
		b.WriteString(c.Database.String())
	}

	b.WriteString("\n--- Admin ---\n")
	b.WriteString(fmt.Sprintf("  admin.role: %s\n", c.Admin.Role))
	b.WriteString(fmt.Sprintf("  admin.fallbackroute: %s\n", c.Admin.FallbackRoute))
	b.WriteString(fmt.Sprintf("  admin.addroute: %s\n", c.Admin.AddRoute))
	b.WriteString(fmt.Sprintf("  admin.editroute: %s\n", c.Admin.EditRoute))
	b.WriteString(fmt.Sprintf("  admin.sessionttl: %s\n", c.Admin.SessionTTL))
	b.WriteString(fmt.Sprintf("  admin.sweepinterval: %s\n", c.Admin.SweepInterval))

	b.WriteString("\n--- Identity ---\n")
	b.WriteString(fmt.Sprintf("  identity.mode: %s\n", c.Identity.Mode))
	if c.Identity.Mode == IdentityModeJWT {
		b.WriteString(c.IdP.String())
	}

	b.WriteString(c.Resilience.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.HTTPServer.Validate,
		c.GRPC.Validate,
		c.validateStore,
		c.validateAdmin,
		c.validateIdentity,
		c.Resilience.Validate,
		c.NATS.Validate,
		c.Telemetry.Validate,
		c.Metrics.Validate,
		c.Log.Validate,
		c.PProf.Validate,
		c.Shutdown.Validate,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		return c.Database.Validate()
	case StoreDriverMemory:
		return nil
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
}

func (c *Config) validateAdmin() error {
	if c.Admin.Role == "" {
		return fmt.Errorf("admin role is not configured")
	}
	for name, route := range map[string]string{
		"fallbackroute": c.Admin.FallbackRoute,
		"addroute":      c.Admin.AddRoute,
		"editroute":     c.Admin.EditRoute,
	} {
		if !strings.HasPrefix(route, "/") {
			return fmt.Errorf("admin.%s must be an absolute path: %q", name, route)
		}
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("admin session TTL must be greater than zero")
	}
	if c.Admin.SweepInterval <= 0 {
		return fmt.Errorf("admin sweep interval must be greater than zero")
	}
	return nil
}

func (c *Config) validateIdentity() error {
	switch c.Identity.Mode {
	case IdentityModeHeader:
		return nil
	case IdentityModeJWT:
		return c.IdP.Validate()
	default:
		return fmt.Errorf("unsupported identity mode: %q", c.Identity.Mode)
	}
}
