package qail

import (
	"os"
	"path/filepath"

	"github.com/jackc/pgpassfile"
	"github.com/jackc/pgservicefile"
)

// ResolveCredentials fills in cfg.Password and, when a matching
// [service-name] section is found, any still-empty Host/Port/User/Database
// fields, following the same precedence libpq itself uses: an explicit
// password already set on cfg wins outright; otherwise a pgservice file
// entry fills in connection fields; a ~/.pgpass (or $PGPASSFILE) match
// supplies the password; $PGPASSWORD is the last resort. Nothing here
// reads a DSN — callers run ParseURI first and pass the result in.
func ResolveCredentials(cfg ConnConfig, serviceName string) ConnConfig {
	if serviceName != "" {
		cfg = applyServiceFile(cfg, serviceName)
	}
	if cfg.Password != "" {
		return cfg
	}
	if pw, ok := lookupPgpass(cfg); ok {
		cfg.Password = pw
		return cfg
	}
	if pw := os.Getenv("PGPASSWORD"); pw != "" {
		cfg.Password = pw
	}
	return cfg
}

func applyServiceFile(cfg ConnConfig, serviceName string) ConnConfig {
	path := os.Getenv("PGSERVICEFILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg
		}
		path = filepath.Join(home, ".pg_service.conf")
	}
	sf, err := pgservicefile.ReadServicefile(path)
	if err != nil {
		return cfg
	}
	svc, err := sf.GetService(serviceName)
	if err != nil {
		return cfg
	}
	if cfg.Host == "" {
		cfg.Host = svc.Settings["host"]
	}
	if cfg.Port == "" {
		cfg.Port = svc.Settings["port"]
	}
	if cfg.User == "" {
		cfg.User = svc.Settings["user"]
	}
	if cfg.Database == "" {
		cfg.Database = svc.Settings["dbname"]
	}
	if cfg.Password == "" {
		cfg.Password = svc.Settings["password"]
	}
	return cfg
}

func lookupPgpass(cfg ConnConfig) (string, bool) {
	path := os.Getenv("PGPASSFILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		path = filepath.Join(home, ".pgpass")
	}
	pf, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return "", false
	}
	pw := pf.FindPassword(cfg.Host, cfg.Port, cfg.Database, cfg.User)
	return pw, pw != ""
}
