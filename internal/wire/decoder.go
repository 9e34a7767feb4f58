package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// minReadBuf is the initial backing size of a Reader's buffer. PostgreSQL
// messages are usually small; this covers a RowDescription/DataRow pair for
// a modest row without growing.
const minReadBuf = 8192

// Reader implements the backend message framing loop described in §4.1:
// top up until at least 5 bytes (tag + length) are buffered, parse the
// length, top up until the payload is complete, and hand back a borrowed
// slice. Compaction shifts unread bytes to offset 0 when the buffer's free
// space runs out, instead of growing without bound.
type Reader struct {
	r    io.Reader
	buf  []byte
	rpos int // next unread byte
	wpos int // end of buffered (written) data
}

// NewReader wraps r with a fresh read buffer.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, buf: make([]byte, minReadBuf)}
}

// SetSource swaps the underlying byte stream without discarding buffered
// bytes — used when a plaintext socket is replaced by a TLS stream mid
// handshake (§4.3) the SSLRequest negotiation never buffers backend bytes
// ahead of the 'S'/'N' response, so this is safe.
func (r *Reader) SetSource(src io.Reader) { r.r = src }

func (r *Reader) buffered() int { return r.wpos - r.rpos }

// compact moves unread bytes to the front of buf, growing it if even a
// fully compacted buffer wouldn't hold `need` more bytes.
func (r *Reader) compact(need int) {
	unread := r.buffered()
	if unread > 0 {
		copy(r.buf, r.buf[r.rpos:r.wpos])
	}
	r.rpos = 0
	r.wpos = unread
	if cap(r.buf)-r.wpos < need {
		grown := make([]byte, r.wpos+need)
		copy(grown, r.buf[:r.wpos])
		r.buf = grown
	}
}

// topUp ensures at least `total` bytes are buffered (relative to rpos),
// reading from the underlying stream and compacting as needed.
func (r *Reader) topUp(total int) error {
	for r.buffered() < total {
		if cap(r.buf)-r.wpos < total-r.buffered() {
			r.compact(total - r.buffered())
		}
		n, err := r.r.Read(r.buf[r.wpos:cap(r.buf)])
		if n > 0 {
			r.wpos += n
		}
		if n == 0 && err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage reads one backend message and returns its tag and payload.
// The payload is a slice into the Reader's internal buffer and is only
// valid until the next call to ReadMessage.
func (r *Reader) ReadMessage() (tag byte, payload []byte, err error) {
	if err := r.topUp(5); err != nil {
		return 0, nil, err
	}
	tag = r.buf[r.rpos]
	length := binary.BigEndian.Uint32(r.buf[r.rpos+1 : r.rpos+5])
	if length < 4 {
		return 0, nil, fmt.Errorf("wire: invalid message length %d for tag %q", length, tag)
	}
	bodyLen := int(length) - 4
	if err := r.topUp(5 + bodyLen); err != nil {
		return 0, nil, err
	}
	payload = r.buf[r.rpos+5 : r.rpos+5+bodyLen]
	r.rpos += 5 + bodyLen
	return tag, payload, nil
}

// ReadSSLResponse reads the single-byte reply ('S' or 'N') to an
// SSLRequest, which precedes the startup message and has no tag/length
// framing of its own.
func (r *Reader) ReadSSLResponse() (byte, error) {
	if err := r.topUp(1); err != nil {
		return 0, err
	}
	b := r.buf[r.rpos]
	r.rpos++
	return b, nil
}

// DecodeAuthentication parses an AuthenticationRequest ('R') payload,
// returning the subtype and any subtype-specific data (e.g. the MD5 salt).
func DecodeAuthentication(payload []byte) (subtype uint32, rest []byte, err error) {
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf("wire: short AuthenticationRequest payload")
	}
	return binary.BigEndian.Uint32(payload[:4]), payload[4:], nil
}

// DecodeRowDescription parses a RowDescription ('T') payload into field
// descriptions.
func DecodeRowDescription(payload []byte) ([]FieldDescription, error) {
	if len(payload) < 2 {
		return nil, fmt.Errorf("wire: short RowDescription payload")
	}
	count := binary.BigEndian.Uint16(payload[:2])
	fields := make([]FieldDescription, 0, count)
	off := 2
	for i := 0; i < int(count); i++ {
		end := off
		for end < len(payload) && payload[end] != 0 {
			end++
		}
		if end+19 > len(payload) {
			return nil, fmt.Errorf("wire: truncated RowDescription field %d", i)
		}
		name := string(payload[off:end])
		off = end + 1
		f := FieldDescription{
			Name:         name,
			TableOID:     binary.BigEndian.Uint32(payload[off : off+4]),
			ColumnIndex:  binary.BigEndian.Uint16(payload[off+4 : off+6]),
			TypeOID:      binary.BigEndian.Uint32(payload[off+6 : off+10]),
			TypeLength:   int16(binary.BigEndian.Uint16(payload[off+10 : off+12])),
			TypeModifier: int32(binary.BigEndian.Uint32(payload[off+12 : off+16])),
			FormatCode:   binary.BigEndian.Uint16(payload[off+16 : off+18]),
		}
		off += 18
		fields = append(fields, f)
	}
	return fields, nil
}

// DecodeDataRow parses a DataRow ('D') payload into column slices. A -1
// length decodes as a nil slice (SQL NULL); the returned slices borrow
// directly from payload and share its lifetime.
func DecodeDataRow(payload []byte) ([][]byte, error) {
	if len(payload) < 2 {
		return nil, fmt.Errorf("wire: short DataRow payload")
	}
	count := binary.BigEndian.Uint16(payload[:2])
	cols := make([][]byte, 0, count)
	off := 2
	for i := 0; i < int(count); i++ {
		if off+4 > len(payload) {
			return nil, fmt.Errorf("wire: truncated DataRow column %d", i)
		}
		length := int32(binary.BigEndian.Uint32(payload[off : off+4]))
		off += 4
		if length < 0 {
			cols = append(cols, nil)
			continue
		}
		if off+int(length) > len(payload) {
			return nil, fmt.Errorf("wire: truncated DataRow column %d data", i)
		}
		cols = append(cols, payload[off:off+int(length)])
		off += int(length)
	}
	return cols, nil
}

// DecodeCommandComplete parses a CommandComplete ('C') payload, returning
// the tag text and, where the tag ends in an integer (e.g. "UPDATE 3",
// "INSERT 0 3"), the affected row count.
func DecodeCommandComplete(payload []byte) (tag string, rows int64, hasRows bool) {
	s := string(payload)
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	tag = s
	last := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			last = i
			break
		}
	}
	if last == -1 {
		return tag, 0, false
	}
	n, err := strconv.ParseInt(s[last+1:], 10, 64)
	if err != nil {
		return tag, 0, false
	}
	return tag, n, true
}

// DecodeErrorFields parses the field sequence shared by ErrorResponse ('E')
// and NoticeResponse ('N'): repeated (code byte, value\0) pairs terminated
// by a zero code byte.
func DecodeErrorFields(payload []byte) ErrorFields {
	var f ErrorFields
	i := 0
	for i < len(payload) {
		code := payload[i]
		if code == 0 {
			break
		}
		i++
		start := i
		for i < len(payload) && payload[i] != 0 {
			i++
		}
		val := string(payload[start:i])
		if i < len(payload) {
			i++ // skip the terminating zero
		}
		switch code {
		case FieldSeverity:
			f.Severity = val
		case FieldSQLState:
			f.SQLState = val
		case FieldMessage:
			f.Message = val
		case FieldDetail:
			f.Detail = val
		case FieldHint:
			f.Hint = val
		case FieldPosition:
			f.Position = val
		}
	}
	return f
}

// DecodeParameterStatus parses a ParameterStatus ('S') payload into its
// name/value pair.
func DecodeParameterStatus(payload []byte) (name, value string) {
	zero := indexZero(payload, 0)
	if zero < 0 {
		return string(payload), ""
	}
	name = string(payload[:zero])
	rest := payload[zero+1:]
	end := indexZero(rest, 0)
	if end < 0 {
		end = len(rest)
	}
	value = string(rest[:end])
	return name, value
}

// DecodeBackendKeyData parses a BackendKeyData ('K') payload.
func DecodeBackendKeyData(payload []byte) (processID, secretKey uint32, err error) {
	if len(payload) < 8 {
		return 0, 0, fmt.Errorf("wire: short BackendKeyData payload")
	}
	return binary.BigEndian.Uint32(payload[:4]), binary.BigEndian.Uint32(payload[4:8]), nil
}

func indexZero(b []byte, from int) int {
	for i := from; i < len(b); i++ {
		if b[i] == 0 {
			return i
		}
	}
	return -1
}
