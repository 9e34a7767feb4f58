package qail

import "fmt"

// Kind is a machine-readable error category drawn from the closed set in
// §7. Callers that need to branch on failure mode should compare against
// these constants (via errors.As to get to an *Error) rather than match on
// message text.
type Kind string

const (
	// Connection / transport.
	KindConnectionTimeout Kind = "connection_timeout"
	KindReadTimeout       Kind = "read_timeout"
	KindWriteTimeout      Kind = "write_timeout"
	KindConnectionClosed  Kind = "connection_closed"
	KindWriteFailed       Kind = "write_failed"
	KindReadFailed        Kind = "read_failed"

	// Handshake.
	KindUnsupportedAuth   Kind = "unsupported_auth"
	KindPasswordRequired  Kind = "password_required"
	KindSSLRejected       Kind = "ssl_rejected"
	KindTLSHandshakeFailed Kind = "tls_handshake_failed"

	// Protocol.
	KindInvalidMessage    Kind = "invalid_message"
	KindUnexpectedMessage Kind = "unexpected_message"

	// Server.
	KindServerError Kind = "server_error"
	KindQueryError  Kind = "query_error"

	// Pool.
	KindPoolExhausted Kind = "pool_exhausted"
	KindPoolClosed    Kind = "pool_closed"

	// Validation.
	KindInvalidURI     Kind = "invalid_uri"
	KindTableNotFound  Kind = "table_not_found"
	KindColumnNotFound Kind = "column_not_found"
	KindTypeMismatch   Kind = "type_mismatch"
)

// Error is the single error type every fallible operation in this library
// returns. It carries a closed Kind plus, for KindServerError, the fields
// PostgreSQL's ErrorResponse supplied.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "qail.Connect"
	Msg  string
	Err  error // wrapped cause, if any

	// Populated only for KindServerError / KindQueryError.
	Severity string
	SQLState string
	Detail   string
	Hint     string
	Position string
}

func (e *Error) Error() string {
	msg := mask(e.Msg)
	if e.SQLState != "" {
		if e.Err != nil {
			return fmt.Sprintf("qail: %s: %s [%s %s]: %v", e.Op, msg, e.Kind, e.SQLState, e.Err)
		}
		return fmt.Sprintf("qail: %s: %s [%s %s]", e.Op, msg, e.Kind, e.SQLState)
	}
	if e.Err != nil {
		return fmt.Sprintf("qail: %s: %s [%s]: %v", e.Op, msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("qail: %s: %s [%s]", e.Op, msg, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &qail.Error{Kind: qail.KindPoolExhausted}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(op string, kind Kind, msg string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Msg: mask(msg), Err: cause}
}

func serverErr(op string, kind Kind, f serverErrorFields) *Error {
	return &Error{
		Op:       op,
		Kind:     kind,
		Msg:      mask(f.Message),
		Severity: f.Severity,
		SQLState: f.SQLState,
		Detail:   mask(f.Detail),
		Hint:     f.Hint,
		Position: f.Position,
	}
}

// serverErrorFields mirrors wire.ErrorFields without importing internal/wire
// from this file's build tag-free surface (kept as a tiny local struct so
// callers across the package can construct it without reaching into
// internal/wire directly).
type serverErrorFields struct {
	Severity string
	SQLState string
	Message  string
	Detail   string
	Hint     string
	Position string
}
