// Package wire implements the byte-level PostgreSQL Frontend/Backend
// Protocol (v3.0): message tags, framing constants, and the generic
// encoder/decoder that every higher-level component in qail builds on.
//
// Nothing in this package knows about the query AST. It only knows how to
// turn structured message values into bytes and back, per the framing rule
// every PostgreSQL message (other than the startup family) obeys: a one-byte
// tag, a four-byte big-endian length that includes itself, then the payload.
package wire

// Frontend message tags.
const (
	TagBind        byte = 'B'
	TagClose       byte = 'C'
	TagCopyData    byte = 'd'
	TagCopyDone    byte = 'c'
	TagCopyFail    byte = 'f'
	TagDescribe    byte = 'D'
	TagExecute     byte = 'E'
	TagFlush       byte = 'H'
	TagParse       byte = 'P'
	TagPassword    byte = 'p'
	TagQuery       byte = 'Q'
	TagSync        byte = 'S'
	TagTerminate   byte = 'X'
)

// Backend message tags.
const (
	TagAuthentication    byte = 'R'
	TagBackendKeyData    byte = 'K'
	TagBindComplete      byte = '2'
	TagCloseComplete     byte = '3'
	TagCommandComplete   byte = 'C'
	TagCopyInResponse    byte = 'G'
	TagCopyOutResponse   byte = 'H'
	TagDataRow           byte = 'D'
	TagEmptyQueryResp    byte = 'I'
	TagErrorResponse     byte = 'E'
	TagNoData            byte = 'n'
	TagNoticeResponse    byte = 'N'
	TagNotificationResp  byte = 'A'
	TagParameterStatus   byte = 'S'
	TagParseComplete     byte = '1'
	TagPortalSuspended   byte = 's'
	TagReadyForQuery     byte = 'Z'
	TagRowDescription    byte = 'T'
)

// Authentication request subtypes, carried in the first four bytes of an
// AuthenticationRequest ('R') payload.
const (
	AuthOk                uint32 = 0
	AuthKerberosV5        uint32 = 2
	AuthCleartextPassword uint32 = 3
	AuthMD5Password       uint32 = 5
	AuthSCMCredential     uint32 = 6
	AuthGSS               uint32 = 7
	AuthGSSContinue       uint32 = 8
	AuthSSPI              uint32 = 9
	AuthSASL              uint32 = 10
	AuthSASLContinue      uint32 = 11
	AuthSASLFinal         uint32 = 12
)

// ReadyForQuery transaction status bytes.
const (
	TxIdle    byte = 'I'
	TxInBlock byte = 'T'
	TxFailed  byte = 'E'
)

// ErrorResponse / NoticeResponse field codes (§4.1).
const (
	FieldSeverity     byte = 'S'
	FieldSQLState     byte = 'C'
	FieldMessage      byte = 'M'
	FieldDetail       byte = 'D'
	FieldHint         byte = 'H'
	FieldPosition     byte = 'P'
	FieldInternalPos  byte = 'p'
	FieldInternalQry  byte = 'q'
	FieldWhere        byte = 'W'
	FieldSchemaName   byte = 's'
	FieldTableName    byte = 't'
	FieldColumnName   byte = 'c'
	FieldDataTypeName byte = 'd'
	FieldConstraint   byte = 'n'
	FieldFile         byte = 'F'
	FieldLine         byte = 'L'
	FieldRoutine      byte = 'R'
)

// SSLRequest and CancelRequest magic codes, sent before any StartupMessage.
const (
	SSLRequestCode    uint32 = 80877103
	CancelRequestCode uint32 = 80877102
	ProtocolVersion3  uint32 = 196608 // 3.0, encoded as (major<<16 | minor)
)

// FieldDescription is one column entry of a RowDescription ('T') message.
type FieldDescription struct {
	Name         string
	TableOID     uint32
	ColumnIndex  uint16
	TypeOID      uint32
	TypeLength   int16
	TypeModifier int32
	FormatCode   uint16
}

// ErrorFields is the parsed field set of an ErrorResponse/NoticeResponse.
type ErrorFields struct {
	Severity string
	SQLState string
	Message  string
	Detail   string
	Hint     string
	Position string
}
