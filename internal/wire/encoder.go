package wire

import "encoding/binary"

// Encoder accumulates frontend messages into a single byte buffer. A
// Pipeline batches many Bind/Execute pairs into one Encoder before a single
// socket write; a one-shot Connection query uses one Encoder per round
// trip. Methods return the Encoder so calls chain.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with buf as initial backing storage (len 0,
// reused capacity). Passing a buffer recycled from a sync.Pool avoids an
// allocation per query on the hot path.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf[:0]}
}

// Bytes returns the accumulated buffer. The slice is invalidated by any
// further Encoder call.
func (e *Encoder) Bytes() []byte { return e.buf }

// Reset clears the buffer for reuse, retaining its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Len reports the number of bytes accumulated so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) putByte(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) putBytes(b []byte) { e.buf = append(e.buf, b...) }

func (e *Encoder) putString(s string) {
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

func (e *Encoder) putInt16(v int16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	e.buf = append(e.buf, tmp[:]...)
}

func (e *Encoder) putUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

func (e *Encoder) putInt32(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	e.buf = append(e.buf, tmp[:]...)
}

func (e *Encoder) putUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

// beginMessage writes the tag byte and reserves space for the length word,
// returning the offset of that length word so endMessage can patch it.
func (e *Encoder) beginMessage(tag byte) int {
	e.putByte(tag)
	lenOffset := len(e.buf)
	e.putInt32(0)
	return lenOffset
}

// beginUntagged reserves a length word with no preceding tag byte, used by
// StartupMessage/SSLRequest/CancelRequest which have no tag.
func (e *Encoder) beginUntagged() int {
	lenOffset := len(e.buf)
	e.putInt32(0)
	return lenOffset
}

func (e *Encoder) endMessage(lenOffset int) {
	length := uint32(len(e.buf) - lenOffset)
	binary.BigEndian.PutUint32(e.buf[lenOffset:lenOffset+4], length)
}

// StartupMessage writes the protocol-3.0 startup message: length, protocol
// version, null-terminated key/value pairs, then a trailing zero byte.
func (e *Encoder) StartupMessage(params map[string]string) *Encoder {
	off := e.beginUntagged()
	e.putUint32(ProtocolVersion3)
	for k, v := range params {
		e.putString(k)
		e.putString(v)
	}
	e.putByte(0)
	e.endMessage(off)
	return e
}

// SSLRequest writes the 8-byte SSL negotiation probe.
func (e *Encoder) SSLRequest() *Encoder {
	off := e.beginUntagged()
	e.putUint32(SSLRequestCode)
	e.endMessage(off)
	return e
}

// CancelRequest writes the 16-byte cancel probe for a separate connection.
func (e *Encoder) CancelRequest(processID, secretKey uint32) *Encoder {
	off := e.beginUntagged()
	e.putUint32(CancelRequestCode)
	e.putUint32(processID)
	e.putUint32(secretKey)
	e.endMessage(off)
	return e
}

// PasswordMessage writes a cleartext PasswordMessage ('p').
func (e *Encoder) PasswordMessage(password string) *Encoder {
	off := e.beginMessage(TagPassword)
	e.putString(password)
	e.endMessage(off)
	return e
}

// Query writes a Simple Query message ('Q') carrying inline SQL text.
func (e *Encoder) Query(sql string) *Encoder {
	off := e.beginMessage(TagQuery)
	e.putString(sql)
	e.endMessage(off)
	return e
}

// Parse writes a Parse message ('P'): statement name, SQL text, and the
// parameter type OID list (may be empty — the server infers types).
func (e *Encoder) Parse(statementName, sql string, paramOIDs []uint32) *Encoder {
	off := e.beginMessage(TagParse)
	e.putString(statementName)
	e.putString(sql)
	e.putUint16(uint16(len(paramOIDs)))
	for _, oid := range paramOIDs {
		e.putUint32(oid)
	}
	e.endMessage(off)
	return e
}

// Param is one Bind parameter: nil Value encodes as SQL NULL (length -1).
type Param struct {
	Value []byte
}

// Bind writes a Bind message ('B'). An empty formatCodes/resultFormats
// slice means "all text format", per §4.1 — this library's Bind calls
// always pass empty slices (§4.2: text-only parameter encoding).
func (e *Encoder) Bind(portal, statement string, formatCodes []uint16, params []Param, resultFormats []uint16) *Encoder {
	off := e.beginMessage(TagBind)
	e.putString(portal)
	e.putString(statement)
	e.putUint16(uint16(len(formatCodes)))
	for _, fc := range formatCodes {
		e.putUint16(fc)
	}
	e.putUint16(uint16(len(params)))
	for _, p := range params {
		if p.Value == nil {
			e.putInt32(-1)
			continue
		}
		e.putInt32(int32(len(p.Value)))
		e.putBytes(p.Value)
	}
	e.putUint16(uint16(len(resultFormats)))
	for _, fc := range resultFormats {
		e.putUint16(fc)
	}
	e.endMessage(off)
	return e
}

// DescribeStatementKind and DescribePortalKind are the kind bytes for
// Describe ('D') and Close ('C').
const (
	DescribeStatementKind byte = 'S'
	DescribePortalKind    byte = 'P'
)

// Describe writes a Describe message ('D') for either a statement or a
// portal, identified by kind ('S' or 'P').
func (e *Encoder) Describe(kind byte, name string) *Encoder {
	off := e.beginMessage(TagDescribe)
	e.putByte(kind)
	e.putString(name)
	e.endMessage(off)
	return e
}

// Execute writes an Execute message ('E'). maxRows of 0 means unlimited.
func (e *Encoder) Execute(portal string, maxRows uint32) *Encoder {
	off := e.beginMessage(TagExecute)
	e.putString(portal)
	e.putUint32(maxRows)
	e.endMessage(off)
	return e
}

// Close writes a Close message ('C') for a statement or a portal,
// identified by kind ('S' or 'P').
func (e *Encoder) Close(kind byte, name string) *Encoder {
	off := e.beginMessage(TagClose)
	e.putByte(kind)
	e.putString(name)
	e.endMessage(off)
	return e
}

// Sync writes a Sync message ('S').
func (e *Encoder) Sync() *Encoder {
	off := e.beginMessage(TagSync)
	e.endMessage(off)
	return e
}

// Flush writes a Flush message ('H').
func (e *Encoder) Flush() *Encoder {
	off := e.beginMessage(TagFlush)
	e.endMessage(off)
	return e
}

// Terminate writes a Terminate message ('X').
func (e *Encoder) Terminate() *Encoder {
	off := e.beginMessage(TagTerminate)
	e.endMessage(off)
	return e
}

// CopyData writes a CopyData message ('d') carrying a raw data chunk.
func (e *Encoder) CopyData(chunk []byte) *Encoder {
	off := e.beginMessage(TagCopyData)
	e.putBytes(chunk)
	e.endMessage(off)
	return e
}

// CopyDone writes a CopyDone message ('c').
func (e *Encoder) CopyDone() *Encoder {
	off := e.beginMessage(TagCopyDone)
	e.endMessage(off)
	return e
}

// CopyFail writes a CopyFail message ('f') aborting an in-progress COPY.
func (e *Encoder) CopyFail(reason string) *Encoder {
	off := e.beginMessage(TagCopyFail)
	e.putString(reason)
	e.endMessage(off)
	return e
}
