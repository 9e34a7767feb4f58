package qail

import "regexp"

// mask scrubs credentials out of any string before it is embedded in an
// error or a debug dump, so a connection URI or password never leaks
// through a returned *Error. Patterns mirror the ones a PostgreSQL DSN or
// ErrorResponse detail line can actually contain.
var (
	reDSNCreds = regexp.MustCompile(`(?i)(://)([^:/@]+)(:([^@/]+))?(@)`)
	rePassword = regexp.MustCompile(`(?i)(password\s*=\s*)(\S+)`)
)

func mask(s string) string {
	if s == "" {
		return s
	}
	out := reDSNCreds.ReplaceAllString(s, "$1*:*$5")
	out = rePassword.ReplaceAllString(out, "$1***")
	return out
}
