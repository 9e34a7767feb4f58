// Package config loads qail's client-side runtime configuration (pool
// sizing, timeouts, connection defaults) the way leapsql's internal/config
// package loads its project file: koanf over YAML, overridable by
// environment variables, with applied defaults rather than zero values
// leaking into the pool.
package config

import "time"

// Config is the top-level configuration file shape (qail.yaml / qail.yml).
type Config struct {
	Connection ConnectionConfig `koanf:"connection"`
	Pool       PoolConfig       `koanf:"pool"`
}

// ConnectionConfig mirrors qail.ConnConfig's fields for serialization;
// callers convert it with ToConnConfig after ResolveCredentials-style
// env/pgpass lookups, which this package does not perform itself.
type ConnectionConfig struct {
	Host           string        `koanf:"host"`
	Port           string        `koanf:"port"`
	User           string        `koanf:"user"`
	Database       string        `koanf:"database"`
	Password       string        `koanf:"password"`
	TLSMode        string        `koanf:"tls_mode"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	ServiceName    string        `koanf:"service_name"`
}

// PoolConfig is the file-shape counterpart of qail.PoolConfig.
type PoolConfig struct {
	MaxConnections    int           `koanf:"max_connections"`
	MinConnections    int           `koanf:"min_connections"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	AcquireTimeout    time.Duration `koanf:"acquire_timeout"`
	ReconnectInterval time.Duration `koanf:"reconnect_interval"`
}
