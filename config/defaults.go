package config

import "time"

// Default pool and connection values, applied by ApplyDefaults when the
// loaded file (or environment) leaves a field at its zero value.
const (
	DefaultPort              = "5432"
	DefaultTLSMode           = "prefer"
	DefaultConnectTimeout    = 10 * time.Second
	DefaultMaxConnections    = 10
	DefaultMinConnections    = 0
	DefaultIdleTimeout       = 5 * time.Minute
	DefaultAcquireTimeout    = 30 * time.Second
	DefaultReconnectInterval = 30 * time.Second
)

// ApplyDefaults fills zero-valued fields of cfg with package defaults.
func (c *Config) ApplyDefaults() {
	if c.Connection.Port == "" {
		c.Connection.Port = DefaultPort
	}
	if c.Connection.TLSMode == "" {
		c.Connection.TLSMode = DefaultTLSMode
	}
	if c.Connection.ConnectTimeout == 0 {
		c.Connection.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Pool.MaxConnections == 0 {
		c.Pool.MaxConnections = DefaultMaxConnections
	}
	if c.Pool.IdleTimeout == 0 {
		c.Pool.IdleTimeout = DefaultIdleTimeout
	}
	if c.Pool.AcquireTimeout == 0 {
		c.Pool.AcquireTimeout = DefaultAcquireTimeout
	}
	if c.Pool.ReconnectInterval == 0 {
		c.Pool.ReconnectInterval = DefaultReconnectInterval
	}
}
