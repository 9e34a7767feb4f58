package qail

// differ.go implements the schema differ (§4.6): a pure, deterministic
// function from two parsed Schemas to an ordered QailCmd migration
// sequence. Nothing here performs I/O — Diff is a plain function over
// value types, by design (§9).

// Diff computes the ordered migration commands turning old into new
// (§4.6). Given identical inputs it always returns identical output in
// identical order.
func Diff(old, updated *Schema) []*QailCmd {
	oldByName := indexTables(old)
	newByName := indexTables(updated)

	var cmds []*QailCmd

	// Step 1: table set diff. New tables are created in new-schema order;
	// each carries its full column list.
	for _, t := range updated.Tables {
		if _, ok := oldByName[foldedTableName(t.Name)]; !ok {
			cmds = append(cmds, Make(t.Name).WithColumnDefs(columnDefsOf(t)...))
		}
	}

	// Step 2: column diff for every table present in both schemas, in
	// new-schema order (old-only tables are dropped in step order below,
	// not diffed column-by-column — there is nothing left to reconcile).
	for _, nt := range updated.Tables {
		ot, ok := oldByName[foldedTableName(nt.Name)]
		if !ok {
			continue
		}
		cmds = append(cmds, diffColumns(ot, nt)...)
	}

	// Step 3: old tables absent from new are dropped, in old-schema order.
	for _, t := range old.Tables {
		if _, ok := newByName[foldedTableName(t.Name)]; !ok {
			cmds = append(cmds, DropTable(t.Name))
		}
	}

	return cmds
}

func indexTables(s *Schema) map[string]SchemaTable {
	m := make(map[string]SchemaTable, len(s.Tables))
	for _, t := range s.Tables {
		m[foldedTableName(t.Name)] = t
	}
	return m
}

func columnDefsOf(t SchemaTable) []Expr {
	defs := make([]Expr, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = columnDefExpr(c)
	}
	return defs
}

func columnDefExpr(c SchemaColumn) Expr {
	opts := []func(*Expr){}
	if c.NotNull {
		opts = append(opts, WithNotNull)
	}
	if c.PrimaryKey {
		opts = append(opts, WithPrimaryKey)
	}
	if c.Unique {
		opts = append(opts, WithUnique)
	}
	if c.IsArray {
		opts = append(opts, WithArray)
	}
	if c.Default != "" {
		opts = append(opts, WithDefault(c.Default))
	}
	if c.Check != "" {
		opts = append(opts, WithCheck(c.Check))
	}
	if c.References != "" {
		opts = append(opts, WithReferences(c.References))
	}
	typeName := c.Type
	if c.TypeParams != "" {
		typeName += "(" + c.TypeParams + ")"
	}
	return ColumnDef(c.Name, typeName, opts...)
}

// diffColumns computes the ordered column-name set difference for one
// table present in both schemas (§4.6 step 2), applying the documented
// policy for step 2's "same-name, differing definition" case: this
// library treats any difference in the rendered column definition as a
// drop-then-add, since an in-place ALTER COLUMN TYPE cannot express every
// constraint change (e.g. adding UNIQUE) in one statement — simpler and
// safer than guessing which subset of changes a single ALTER can carry.
// Emission order within the table: ADD COLUMN (new-schema order), then
// ALTER-as-drop+add pairs, then DROP COLUMN.
func diffColumns(old, updated SchemaTable) []*QailCmd {
	oldCols := indexColumns(old)
	newCols := indexColumns(updated)

	var adds, alters, drops []*QailCmd

	for _, nc := range updated.Columns {
		oc, ok := oldCols[foldedTableName(nc.Name)]
		switch {
		case !ok:
			adds = append(adds, AlterAddColumn(updated.Name, columnDefExpr(nc)))
		case !sameColumnDef(oc, nc):
			alters = append(alters,
				AlterDropColumn(updated.Name, nc.Name),
				AlterAddColumn(updated.Name, columnDefExpr(nc)),
			)
		}
	}

	for _, oc := range old.Columns {
		if _, ok := newCols[foldedTableName(oc.Name)]; !ok {
			drops = append(drops, AlterDropColumn(old.Name, oc.Name))
		}
	}

	out := make([]*QailCmd, 0, len(adds)+len(alters)+len(drops))
	out = append(out, adds...)
	out = append(out, alters...)
	out = append(out, drops...)
	return out
}

func indexColumns(t SchemaTable) map[string]SchemaColumn {
	m := make(map[string]SchemaColumn, len(t.Columns))
	for _, c := range t.Columns {
		m[foldedTableName(c.Name)] = c
	}
	return m
}

func sameColumnDef(a, b SchemaColumn) bool {
	return a.Type == b.Type &&
		a.TypeParams == b.TypeParams &&
		a.IsArray == b.IsArray &&
		a.NotNull == b.NotNull &&
		a.PrimaryKey == b.PrimaryKey &&
		a.Unique == b.Unique &&
		a.References == b.References &&
		a.Default == b.Default &&
		a.Check == b.Check
}
