package qail

// Cursor is a server-side streaming cursor built from DECLARE/FETCH/CLOSE,
// a supplemented feature beyond the spec's explicit component list (see
// SPEC_FULL.md) for reading result sets too large to buffer in memory.
// Like Conn, a Cursor is not safe for concurrent use.
type Cursor struct {
	conn *Conn
	name string
	open bool
}

// DeclareCursor opens a cursor over cmd's query inside the current
// transaction (PostgreSQL requires an open transaction for WITH HOLD-less
// cursors to survive past the declaring statement).
func (c *Conn) DeclareCursor(name string, cmd *QailCmd) (*Cursor, *Error) {
	plan, err := encodeCmd(cmd)
	if err != nil {
		return nil, err
	}
	if plan.Simple {
		return nil, newErr("qail.DeclareCursor", KindInvalidMessage, "cursor query must be a GET command", nil)
	}
	if len(plan.Params) > 0 {
		return nil, newErr("qail.DeclareCursor", KindInvalidMessage, "cursor queries with bound parameters are not supported; render literals via a Raw GET", nil)
	}

	sql := "DECLARE " + quoteIdent(name) + " NO SCROLL CURSOR FOR " + plan.SQL
	if _, _, rerr := c.Exec(Raw(sql)); rerr != nil {
		return nil, rerr
	}
	return &Cursor{conn: c, name: name, open: true}, nil
}

// Fetch retrieves up to n rows from the cursor. A short read (fewer than n
// rows, including zero) signals exhaustion.
func (cur *Cursor) Fetch(n int) ([]Row, *Error) {
	if !cur.open {
		return nil, newErr("Cursor.Fetch", KindConnectionClosed, "cursor is closed", nil)
	}
	sql := "FETCH " + itoa(n) + " FROM " + quoteIdent(cur.name)
	rows, _, err := cur.conn.Exec(Raw(sql))
	return rows, err
}

// Close closes the cursor. It is idempotent.
func (cur *Cursor) Close() *Error {
	if !cur.open {
		return nil
	}
	cur.open = false
	_, _, err := cur.conn.Exec(Raw("CLOSE " + quoteIdent(cur.name)))
	return err
}
