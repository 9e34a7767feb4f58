package qail

import (
	"strings"

	"golang.org/x/text/cases"
)

// SchemaColumn is one parsed column definition of a .qail table block
// (§6). TypeParams carries raw text inside type(...) (e.g. "10,2" for
// numeric(10,2)); IsArray marks a trailing `[]`.
type SchemaColumn struct {
	Name       string
	Type       string
	TypeParams string
	IsArray    bool
	NotNull    bool
	PrimaryKey bool
	Unique     bool
	References string
	Default    string
	Check      string
}

// SchemaTable is one `table <ident> (...)` block.
type SchemaTable struct {
	Name    string
	Columns []SchemaColumn
}

// Schema is an ordered sequence of tables, as parsed from .qail text.
type Schema struct {
	Tables []SchemaTable
}

var foldCase = cases.Fold()

// foldedTableName normalizes a table name for the differ's case-insensitive
// comparisons (§3, §4.6), using golang.org/x/text/cases the way a
// locale-aware identifier fold should be done rather than strings.ToLower.
func foldedTableName(name string) string { return foldCase.String(name) }

// ParseSchema parses .qail schema text into a Schema (§6). The grammar is
// whitespace-insensitive; `--` and `#` start line comments.
func ParseSchema(src string) (*Schema, *Error) {
	lines := stripSchemaComments(src)
	toks := tokenizeSchema(lines)

	p := &schemaParser{toks: toks}
	schema := &Schema{}
	for !p.atEnd() {
		table, err := p.parseTable()
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

func stripSchemaComments(src string) string {
	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// colSep is the synthetic token tokenizeSchema emits for both `,` and a
// physical newline — the two column separators §6 allows. Keeping it
// distinct from ordinary identifiers is what lets parseColumn tell "one
// more constraint keyword" apart from "next column" without a lookahead
// grammar.
const colSep = "\x00,\x00"

// tokenizeSchema splits on whitespace while keeping `(`, `)`, `{`, `}`,
// `[]` and colSep as standalone tokens — simple enough for the grammar in
// §6, which has no string literals except inside default/check
// expressions (kept as raw balanced-paren text, not tokenized further).
func tokenizeSchema(src string) []string {
	var toks []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '\n' || c == ',':
			if len(toks) == 0 || toks[len(toks)-1] != colSep {
				toks = append(toks, colSep)
			}
			i++
		case c == '(' || c == ')' || c == '{' || c == '}':
			toks = append(toks, string(c))
			i++
		case c == '[' && i+1 < len(src) && src[i+1] == ']':
			toks = append(toks, "[]")
			i += 2
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \t\n\r,(){}", rune(src[j])) &&
				!(src[j] == '[' && j+1 < len(src) && src[j+1] == ']') {
				j++
			}
			toks = append(toks, src[i:j])
			i = j
		}
	}
	return toks
}

type schemaParser struct {
	toks []string
	pos  int
}

func (p *schemaParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *schemaParser) peek() string {
	if p.atEnd() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *schemaParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *schemaParser) parseTable() (SchemaTable, *Error) {
	kw := p.next()
	if !strings.EqualFold(kw, "table") {
		return SchemaTable{}, newErr("ParseSchema", KindInvalidMessage, "expected 'table', got "+kw, nil)
	}
	name := p.next()
	open := p.next()
	if open != "(" && open != "{" {
		return SchemaTable{}, newErr("ParseSchema", KindInvalidMessage, "expected '(' or '{' after table name", nil)
	}
	closeTok := ")"
	if open == "{" {
		closeTok = "}"
	}

	var cols []SchemaColumn
	p.skipSeps()
	for p.peek() != closeTok && !p.atEnd() {
		col, err := p.parseColumn(closeTok)
		if err != nil {
			return SchemaTable{}, err
		}
		cols = append(cols, col)
		p.skipSeps()
	}
	p.next() // consume close token

	return SchemaTable{Name: name, Columns: cols}, nil
}

func (p *schemaParser) skipSeps() {
	for p.peek() == colSep {
		p.next()
	}
}

func (p *schemaParser) parseColumn(closeTok string) (SchemaColumn, *Error) {
	col := SchemaColumn{Name: p.next(), Type: p.next()}

	if p.peek() == "(" {
		p.next()
		var params []string
		for p.peek() != ")" && !p.atEnd() {
			t := p.next()
			// The tokenizer turns a literal "," inside type(...) into the
			// same colSep token it uses between columns; drop it here and
			// let the join below put a plain comma back.
			if t == colSep {
				continue
			}
			params = append(params, t)
		}
		p.next()
		col.TypeParams = strings.Join(params, ",")
	}
	if p.peek() == "[]" {
		p.next()
		col.IsArray = true
	}

	if strings.HasPrefix(strings.ToLower(col.Type), "serial") {
		col.NotNull = true
	}

	for {
		t := strings.ToLower(p.peek())
		switch {
		case t == "primary_key" || t == "primary":
			p.next()
			if t == "primary" && strings.ToLower(p.peek()) == "key" {
				p.next()
			}
			col.PrimaryKey = true
		case t == "not_null" || t == "not":
			p.next()
			if t == "not" && strings.ToLower(p.peek()) == "null" {
				p.next()
			}
			col.NotNull = true
		case t == "unique":
			p.next()
			col.Unique = true
		case t == "references":
			p.next()
			col.References = p.next()
			if p.peek() == "(" {
				col.References += "(" + p.parseBalancedParen() + ")"
			}
		case t == "default":
			p.next()
			col.Default = p.next()
			if p.peek() == "(" {
				col.Default += "(" + p.parseBalancedParen() + ")"
			}
		case t == "check":
			p.next()
			col.Check = p.parseBalancedParen()
		case p.peek() == colSep || t == closeTok || t == "":
			return col, nil
		default:
			// Unrecognized token: skip it rather than fail, so forward-
			// compatible constraint keywords don't break parsing entirely.
			p.next()
		}
	}
}

func (p *schemaParser) parseBalancedParen() string {
	if p.peek() != "(" {
		return ""
	}
	p.next()
	depth := 1
	var parts []string
	for depth > 0 && !p.atEnd() {
		t := p.next()
		switch t {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return strings.Join(parts, " ")
			}
		case colSep:
			// A literal "," inside the expression — render it as such
			// rather than the synthetic separator token.
			t = ","
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}
