package qail

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/qailsql/qail-go/internal/wire"
)

// connState is the connection's lifecycle position (§4.3).
type connState int

const (
	stateUnconnected connState = iota
	stateHandshaking
	stateReady
	stateClosed
)

// ConnConfig is everything Connect needs to open and authenticate one
// connection. Pool and URI parsing layer on top of this; it never itself
// consults the environment or a passfile.
type ConnConfig struct {
	Host     string
	Port     string
	User     string
	Database string
	Password string

	// TLSMode selects the SSLRequest policy: "disable" skips negotiation
	// entirely, "require" fails the connection if the server answers 'N',
	// "prefer" (the default when empty) falls back to cleartext on 'N'.
	TLSMode string

	ConnectTimeout time.Duration
}

// Conn is a single, non-concurrency-safe PostgreSQL session (§5: "not safe
// for concurrent use by more than one thread — all its methods assume
// serialized access").
type Conn struct {
	netConn net.Conn
	reader  *wire.Reader
	writer  *wire.Encoder

	state    connState
	ready    bool
	inTx     bool
	pid      uint32
	secret   uint32
	params   map[string]string
}

// Connect opens a TCP connection, negotiates TLS per cfg.TLSMode, and runs
// the startup handshake through ReadyForQuery.
func Connect(ctx context.Context, cfg ConnConfig) (*Conn, *Error) {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, newErr("qail.Connect", KindConnectionTimeout, "dial failed", err)
	}

	mode := cfg.TLSMode
	if mode == "" {
		mode = "prefer"
	}
	if mode != "disable" {
		upgraded, tlsErr := negotiateTLS(netConn, cfg.Host, mode)
		if tlsErr != nil {
			netConn.Close()
			return nil, tlsErr
		}
		netConn = upgraded
	}

	c := &Conn{
		netConn: netConn,
		reader:  wire.NewReader(bufio.NewReaderSize(netConn, 16384)),
		writer:  wire.NewEncoder(make([]byte, 0, 4096)),
		state:   stateHandshaking,
		params:  map[string]string{},
	}

	if err := c.startup(cfg.User, cfg.Database, cfg.Password); err != nil {
		netConn.Close()
		c.state = stateClosed
		return nil, err
	}

	c.state = stateReady
	c.ready = true
	return c, nil
}

// negotiateTLS performs the SSLRequest round trip (§4.3). On 'S' the
// connection is wrapped in a TLS 1.3 client stream; on 'N' it returns the
// original net.Conn unchanged unless mode is "require".
func negotiateTLS(conn net.Conn, host, mode string) (net.Conn, *Error) {
	enc := wire.NewEncoder(make([]byte, 0, 8))
	enc.SSLRequest()
	if _, err := conn.Write(enc.Bytes()); err != nil {
		return nil, newErr("qail.Connect", KindWriteFailed, "SSLRequest write failed", err)
	}

	resp := make([]byte, 1)
	if _, err := readFull(conn, resp); err != nil {
		return nil, newErr("qail.Connect", KindReadFailed, "SSLRequest response read failed", err)
	}

	if resp[0] == 'N' {
		if mode == "require" {
			return nil, newErr("qail.Connect", KindSSLRejected, "server rejected SSL and TLSMode is require", nil)
		}
		return conn, nil
	}
	if resp[0] != 'S' {
		return nil, newErr("qail.Connect", KindSSLRejected, "unexpected SSLRequest response byte", nil)
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
	if err := tlsConn.Handshake(); err != nil {
		return nil, newErr("qail.Connect", KindTLSHandshakeFailed, "TLS handshake failed", err)
	}
	return tlsConn, nil
}

func readFull(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// startup sends StartupMessage and drives the authentication exchange
// through ReadyForQuery (§4.3). Only AuthenticationOk and
// AuthenticationCleartextPassword are supported; any other subtype fails
// cleanly with KindUnsupportedAuth rather than attempting MD5 or SASL.
func (c *Conn) startup(user, database, password string) *Error {
	c.writer.Reset()
	c.writer.StartupMessage(map[string]string{"user": user, "database": database})
	if _, err := c.netConn.Write(c.writer.Bytes()); err != nil {
		return newErr("qail.Connect", KindWriteFailed, "startup message write failed", err)
	}

	for {
		tag, payload, err := c.reader.ReadMessage()
		if err != nil {
			return newErr("qail.Connect", KindReadFailed, "startup read failed", err)
		}
		switch tag {
		case wire.TagAuthentication:
			subtype, _, derr := wire.DecodeAuthentication(payload)
			if derr != nil {
				return newErr("qail.Connect", KindInvalidMessage, "malformed AuthenticationRequest", derr)
			}
			switch subtype {
			case wire.AuthOk:
				continue
			case wire.AuthCleartextPassword:
				if password == "" {
					return newErr("qail.Connect", KindPasswordRequired, "server requires a password", nil)
				}
				c.writer.Reset()
				c.writer.PasswordMessage(password)
				if _, werr := c.netConn.Write(c.writer.Bytes()); werr != nil {
					return newErr("qail.Connect", KindWriteFailed, "password message write failed", werr)
				}
			default:
				return newErr("qail.Connect", KindUnsupportedAuth, "server requires an unsupported authentication method", nil)
			}
		case wire.TagParameterStatus:
			name, value := wire.DecodeParameterStatus(payload)
			c.params[name] = value
		case wire.TagBackendKeyData:
			pid, secret, derr := wire.DecodeBackendKeyData(payload)
			if derr != nil {
				return newErr("qail.Connect", KindInvalidMessage, "malformed BackendKeyData", derr)
			}
			c.pid, c.secret = pid, secret
		case wire.TagReadyForQuery:
			c.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			return nil
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			return serverErr("qail.Connect", KindServerError, serverErrorFields(f))
		default:
			// Ignore anything else the server sends before ReadyForQuery.
		}
	}
}

// InTransaction reports whether the last ReadyForQuery reported an open
// transaction block.
func (c *Conn) InTransaction() bool { return c.inTx }

// BackendKeyData returns the process ID and secret key needed to build a
// CancelRequest on a separate connection.
func (c *Conn) BackendKeyData() (pid, secret uint32) { return c.pid, c.secret }

// Close sends Terminate and closes the socket. The Conn must not be used
// afterward.
func (c *Conn) Close() error {
	if c.state == stateClosed {
		return nil
	}
	c.writer.Reset()
	c.writer.Terminate()
	c.netConn.Write(c.writer.Bytes())
	c.state = stateClosed
	return c.netConn.Close()
}

// Exec runs cmd to completion and returns its rows (empty for
// non-row-returning commands) and the affected-row count.
func (c *Conn) Exec(cmd *QailCmd) ([]Row, int64, *Error) {
	plan, perr := encodeCmd(cmd)
	if perr != nil {
		return nil, 0, perr
	}

	c.writer.Reset()
	if plan.Simple {
		c.writer.Query(plan.SQL)
	} else {
		params := make([]wire.Param, len(plan.Params))
		for i, v := range plan.Params {
			params[i] = valueToWireParam(v)
		}
		// One-shot: the unnamed statement is replaced by every Parse, so
		// repeating the same SQL never collides with an existing name.
		c.writer.Parse("", plan.SQL, nil)
		c.writer.Bind("", "", nil, params, nil)
		c.writer.Describe(wire.DescribePortalKind, "")
		c.writer.Execute("", 0)
		c.writer.Sync()
	}

	if _, err := c.netConn.Write(c.writer.Bytes()); err != nil {
		return nil, 0, newErr("qail.Exec", KindWriteFailed, "query write failed", err)
	}

	return c.readQueryResult("qail.Exec")
}

// readQueryResult drains the reply stream for one query until
// ReadyForQuery, per §4.3's "continue reading until ReadyForQuery to keep
// the connection consistent" rule even when an ErrorResponse arrives.
func (c *Conn) readQueryResult(op string) ([]Row, int64, *Error) {
	var fields []wire.FieldDescription
	var dataRows [][][]byte
	var rowCount int64
	var hasCount bool
	var queryErr *Error

	for {
		tag, payload, err := c.reader.ReadMessage()
		if err != nil {
			return nil, 0, newErr(op, KindReadFailed, "result read failed", err)
		}
		switch tag {
		case wire.TagParseComplete, wire.TagBindComplete, wire.TagCloseComplete,
			wire.TagNoData, wire.TagPortalSuspended, wire.TagEmptyQueryResp:
			continue
		case wire.TagRowDescription:
			fields, err = wire.DecodeRowDescription(payload)
			if err != nil {
				return nil, 0, newErr(op, KindInvalidMessage, "malformed RowDescription", err)
			}
		case wire.TagDataRow:
			cols, derr := wire.DecodeDataRow(payload)
			if derr != nil {
				return nil, 0, newErr(op, KindInvalidMessage, "malformed DataRow", derr)
			}
			dataRows = append(dataRows, copyCols(cols))
		case wire.TagCommandComplete:
			_, n, ok := wire.DecodeCommandComplete(payload)
			rowCount, hasCount = n, ok
		case wire.TagNoticeResponse:
			continue
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			queryErr = serverErr(op, KindQueryError, serverErrorFields(f))
		case wire.TagReadyForQuery:
			c.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			if queryErr != nil {
				return nil, 0, queryErr
			}
			if !hasCount {
				rowCount = int64(len(dataRows))
			}
			return newRowSet(fields, dataRows), rowCount, nil
		default:
			// Unhandled backend message between query dispatch and
			// ReadyForQuery (e.g. ParameterStatus mid-session); ignore.
		}
	}
}

// copyCols copies each column slice out of the Reader's internal buffer —
// required because those slices are only valid until the next
// ReadMessage call (§4.1).
func copyCols(cols [][]byte) [][]byte {
	out := make([][]byte, len(cols))
	for i, col := range cols {
		if col == nil {
			continue
		}
		cp := make([]byte, len(col))
		copy(cp, col)
		out[i] = cp
	}
	return out
}

// Cancel opens a fresh connection and sends a CancelRequest carrying pid
// and secret (§4.3, §5: cancellation is best-effort and out-of-band).
func Cancel(ctx context.Context, host, port string, pid, secret uint32) *Error {
	dialer := net.Dialer{}
	netConn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return newErr("qail.Cancel", KindConnectionTimeout, "dial failed", err)
	}
	defer netConn.Close()

	enc := wire.NewEncoder(make([]byte, 0, 16))
	enc.CancelRequest(pid, secret)
	if _, err := netConn.Write(enc.Bytes()); err != nil {
		return newErr("qail.Cancel", KindWriteFailed, "CancelRequest write failed", err)
	}
	return nil
}
