package qail

import (
	"github.com/qailsql/qail-go/internal/wire"
)

// Pipeline wraps a Conn plus a prepared-statement cache keyed by rendered
// SQL text, and batches many Bind/Execute pairs behind a single Sync
// (§4.4). A Pipeline is not safe for concurrent use, same as the Conn it
// wraps (§5).
type Pipeline struct {
	conn  *Conn
	cache map[string]preparedStmt
}

type preparedStmt struct {
	name       string
	paramCount int
}

// NewPipeline wraps conn in a Pipeline with an empty statement cache.
func NewPipeline(conn *Conn) *Pipeline {
	return &Pipeline{conn: conn, cache: map[string]preparedStmt{}}
}

// getOrPrepare returns the cached statement for sql, or issues a fresh
// Parse+Sync and waits for ParseComplete+ReadyForQuery before caching it
// (§4.4).
func (p *Pipeline) getOrPrepare(sql string) (preparedStmt, *Error) {
	if s, ok := p.cache[sql]; ok {
		return s, nil
	}
	name := statementName(sql)
	paramCount := countPlaceholders(sql)

	p.conn.writer.Reset()
	p.conn.writer.Parse(name, sql, nil)
	p.conn.writer.Sync()
	if _, err := p.conn.netConn.Write(p.conn.writer.Bytes()); err != nil {
		return preparedStmt{}, newErr("Pipeline.getOrPrepare", KindWriteFailed, "Parse write failed", err)
	}

	for {
		tag, payload, rerr := p.conn.reader.ReadMessage()
		if rerr != nil {
			return preparedStmt{}, newErr("Pipeline.getOrPrepare", KindReadFailed, "Parse response read failed", rerr)
		}
		switch tag {
		case wire.TagParseComplete:
			continue
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			drainToReady(p.conn)
			return preparedStmt{}, serverErr("Pipeline.getOrPrepare", KindQueryError, serverErrorFields(f))
		case wire.TagReadyForQuery:
			p.conn.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			s := preparedStmt{name: name, paramCount: paramCount}
			p.cache[sql] = s
			return s, nil
		default:
			continue
		}
	}
}

// countPlaceholders counts the distinct `$N` positional placeholders
// (a digit must follow `$`) in sql, per §4.4's "param count inferred by
// counting $ placeholders that are followed by a digit" rule.
func countPlaceholders(sql string) int {
	seen := map[int]bool{}
	for i := 0; i < len(sql)-1; i++ {
		if sql[i] != '$' || sql[i+1] < '0' || sql[i+1] > '9' {
			continue
		}
		j := i + 1
		n := 0
		for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
			n = n*10 + int(sql[j]-'0')
			j++
		}
		seen[n] = true
	}
	return len(seen)
}

// ResultMode selects how BatchExecute ingests results (§4.4).
type ResultMode int

const (
	// ResultCountOnly discards DataRow payloads and returns only N.
	ResultCountOnly ResultMode = iota
	// ResultFull collects RowDescription once per result and produces full
	// Row slices, field_names shared across a result's rows.
	ResultFull
	// ResultUltra is the two-column fast path: every DataRow must carry
	// exactly two columns, returned as owned Pairs the caller can hold
	// onto past the batch call.
	ResultUltra
)

// Pair is one row of a ResultUltra batch: two columns copied out of the
// Reader's internal buffer at decode time (mirroring copyCols, since
// BatchExecute accumulates every Pair before returning and the buffer is
// overwritten by each subsequent ReadMessage call).
type Pair struct {
	A, B []byte
}

// BatchExecute prepares sql once, then sends one Bind+Execute per entry of
// paramVectors (all sharing the prepared statement), followed by a single
// trailing Sync, in one socket write (§4.4 steps 1-3).
func (p *Pipeline) BatchExecute(sql string, paramVectors [][]Value, mode ResultMode) (BatchResult, *Error) {
	stmt, err := p.getOrPrepare(sql)
	if err != nil {
		return BatchResult{}, err
	}

	p.conn.writer.Reset()
	for _, vec := range paramVectors {
		params := make([]wire.Param, len(vec))
		for i, v := range vec {
			params[i] = valueToWireParam(v)
		}
		p.conn.writer.Bind("", stmt.name, nil, params, nil)
		p.conn.writer.Execute("", 0)
	}
	p.conn.writer.Sync()

	if _, werr := p.conn.netConn.Write(p.conn.writer.Bytes()); werr != nil {
		return BatchResult{}, newErr("Pipeline.BatchExecute", KindWriteFailed, "batch write failed", werr)
	}

	return p.drainBatch(len(paramVectors), mode)
}

// BatchResult is what a BatchExecute call produced, shaped according to
// the ResultMode that was requested.
type BatchResult struct {
	Count int
	Rows  []Row  // populated only for ResultFull
	Pairs []Pair // populated only for ResultUltra
}

// drainBatch reads the reply stream counting CommandComplete/NoData
// events until N are observed, per §4.4 step 4. An ErrorResponse aborts
// the batch; the connection is drained to the next ReadyForQuery and the
// Pipeline surfaces QueryError while remaining usable.
func (p *Pipeline) drainBatch(n int, mode ResultMode) (BatchResult, *Error) {
	var result BatchResult
	var fields []wire.FieldDescription
	var dataRows [][][]byte
	var batchErr *Error
	completed := 0

	for {
		tag, payload, rerr := p.conn.reader.ReadMessage()
		if rerr != nil {
			return BatchResult{}, newErr("Pipeline.BatchExecute", KindReadFailed, "batch read failed", rerr)
		}
		switch tag {
		case wire.TagBindComplete:
			continue
		case wire.TagRowDescription:
			if mode == ResultFull {
				fields, _ = wire.DecodeRowDescription(payload)
			}
		case wire.TagDataRow:
			switch mode {
			case ResultFull:
				cols, derr := wire.DecodeDataRow(payload)
				if derr == nil {
					dataRows = append(dataRows, copyCols(cols))
				}
			case ResultUltra:
				cols, derr := wire.DecodeDataRow(payload)
				if derr == nil && len(cols) == 2 {
					copied := copyCols(cols)
					result.Pairs = append(result.Pairs, Pair{A: copied[0], B: copied[1]})
				}
			default:
				// ResultCountOnly discards the payload entirely.
			}
		case wire.TagCommandComplete, wire.TagNoData:
			completed++
			if completed == n && batchErr == nil {
				// Keep reading: Sync's ReadyForQuery still has to arrive.
			}
		case wire.TagErrorResponse:
			f := wire.DecodeErrorFields(payload)
			batchErr = serverErr("Pipeline.BatchExecute", KindQueryError, serverErrorFields(f))
		case wire.TagReadyForQuery:
			p.conn.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			if batchErr != nil {
				return BatchResult{}, batchErr
			}
			result.Count = completed
			if mode == ResultFull {
				result.Rows = newRowSet(fields, dataRows)
			}
			return result, nil
		default:
			continue
		}
	}
}

// drainToReady reads and discards backend messages until ReadyForQuery,
// used after an error response during a query, prepare or COPY so the
// caller's subsequent call starts from a clean state.
func drainToReady(c *Conn) {
	for {
		tag, payload, err := c.reader.ReadMessage()
		if err != nil {
			return
		}
		if tag == wire.TagReadyForQuery {
			c.inTx = len(payload) > 0 && payload[0] == wire.TxInBlock
			return
		}
	}
}
