package qail

import (
	"bufio"
	"io"

	"github.com/qailsql/qail-go/internal/wire"
)

// CopyIn streams src to the server as a COPY ... FROM STDIN, returning the
// number of data rows sent (counted by newline per the text/CSV COPY
// format, per the Open Question this library resolves in DESIGN.md:
// row-count semantics for COPY follow the newline-counted convention since
// the wire protocol itself never reports a COPY row count). Trailing bytes
// after the last newline are not counted as a row.
func (c *Conn) CopyIn(table string, columns []string, format string, src io.Reader) (int64, *Error) {
	sql := renderCopyIn(table, columns, format)

	c.writer.Reset()
	c.writer.Query(sql)
	if _, err := c.netConn.Write(c.writer.Bytes()); err != nil {
		return 0, newErr("qail.CopyIn", KindWriteFailed, "COPY FROM STDIN write failed", err)
	}

	if err := c.awaitCopyInResponse(); err != nil {
		return 0, err
	}

	rows, err := c.streamCopyData(src)
	if err != nil {
		return 0, err
	}

	return rows, c.awaitCopyDone()
}

func renderCopyIn(table string, columns []string, format string) string {
	sql := "COPY " + quoteIdent(table)
	if len(columns) > 0 {
		sql += " ("
		for i, col := range columns {
			if i > 0 {
				sql += ", "
			}
			sql += quoteIdent(col)
		}
		sql += ")"
	}
	sql += " FROM STDIN"
	if format != "" {
		sql += " WITH (FORMAT " + format + ")"
	}
	return sql
}

func (c *Conn) awaitCopyInResponse() *Error {
	for {
		tag, payload, err := c.reader.ReadMessage()
		if err != nil {
			return newErr("qail.CopyIn", KindReadFailed, "awaiting CopyInResponse", err)
		}
		switch tag {
		case wire.TagCopyInResponse:
			return nil
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			drainToReady(c)
			return serverErr("qail.CopyIn", KindQueryError, serverErrorFields(f))
		default:
			continue
		}
	}
}

// streamCopyData relays src to the server in CopyData chunks, counting
// newlines as a row-count proxy, then sends CopyDone.
func (c *Conn) streamCopyData(src io.Reader) (int64, *Error) {
	var rows int64
	buf := make([]byte, 64*1024)
	r := bufio.NewReaderSize(src, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, b := range buf[:n] {
				if b == '\n' {
					rows++
				}
			}
			c.writer.Reset()
			c.writer.CopyData(buf[:n])
			if _, werr := c.netConn.Write(c.writer.Bytes()); werr != nil {
				return rows, newErr("qail.CopyIn", KindWriteFailed, "CopyData write failed", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			c.writer.Reset()
			c.writer.CopyFail(err.Error())
			c.netConn.Write(c.writer.Bytes())
			return rows, newErr("qail.CopyIn", KindReadFailed, "reading COPY source", err)
		}
	}
	c.writer.Reset()
	c.writer.CopyDone()
	if _, err := c.netConn.Write(c.writer.Bytes()); err != nil {
		return rows, newErr("qail.CopyIn", KindWriteFailed, "CopyDone write failed", err)
	}
	return rows, nil
}

func (c *Conn) awaitCopyDone() *Error {
	for {
		tag, payload, err := c.reader.ReadMessage()
		if err != nil {
			return newErr("qail.CopyIn", KindReadFailed, "awaiting CommandComplete", err)
		}
		switch tag {
		case wire.TagCommandComplete:
			continue
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			drainToReady(c)
			return serverErr("qail.CopyIn", KindQueryError, serverErrorFields(f))
		case wire.TagReadyForQuery:
			c.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			return nil
		default:
			continue
		}
	}
}

// CopyOut streams a COPY table TO STDOUT's data into dst, returning the
// number of rows (newline-counted, mirroring CopyIn's convention: trailing
// bytes after the last newline are not counted).
func (c *Conn) CopyOut(table string, dst io.Writer) (int64, *Error) {
	c.writer.Reset()
	c.writer.Query("COPY " + quoteIdent(table) + " TO STDOUT")
	if _, err := c.netConn.Write(c.writer.Bytes()); err != nil {
		return 0, newErr("qail.CopyOut", KindWriteFailed, "COPY TO STDOUT write failed", err)
	}

	var rows int64
	for {
		tag, payload, err := c.reader.ReadMessage()
		if err != nil {
			return rows, newErr("qail.CopyOut", KindReadFailed, "COPY TO STDOUT read failed", err)
		}
		switch tag {
		case wire.TagCopyOutResponse:
			continue
		case wire.TagCopyData:
			if _, werr := dst.Write(payload); werr != nil {
				return rows, newErr("qail.CopyOut", KindWriteFailed, "writing COPY output", werr)
			}
			for _, b := range payload {
				if b == '\n' {
					rows++
				}
			}
		case wire.TagCommandComplete:
			continue
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			drainToReady(c)
			return rows, serverErr("qail.CopyOut", KindQueryError, serverErrorFields(f))
		case wire.TagReadyForQuery:
			c.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			return rows, nil
		default:
			continue
		}
	}
}
