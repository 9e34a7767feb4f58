package config

import qail "github.com/qailsql/qail-go"

// ToConnConfig converts the file-shape ConnectionConfig into the
// qail.ConnConfig Connect expects. It does not resolve credentials from
// pgpass/service files or $PGPASSWORD — call qail.ResolveCredentials on
// the result for that.
func (c ConnectionConfig) ToConnConfig() qail.ConnConfig {
	return qail.ConnConfig{
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Database:       c.Database,
		Password:       c.Password,
		TLSMode:        c.TLSMode,
		ConnectTimeout: c.ConnectTimeout,
	}
}

// ToPoolConfig converts the file-shape PoolConfig plus a resolved
// ConnectionConfig into the qail.PoolConfig NewPool expects.
func (p PoolConfig) ToPoolConfig(conn ConnectionConfig) qail.PoolConfig {
	return qail.PoolConfig{
		Host:              conn.Host,
		Port:              conn.Port,
		User:              conn.User,
		Database:          conn.Database,
		Password:          conn.Password,
		TLSMode:           conn.TLSMode,
		MaxConnections:    p.MaxConnections,
		MinConnections:    p.MinConnections,
		IdleTimeout:       p.IdleTimeout,
		AcquireTimeout:    p.AcquireTimeout,
		ReconnectInterval: p.ReconnectInterval,
	}
}
