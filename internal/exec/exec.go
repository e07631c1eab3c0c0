// Package exec implements the statement executor: one handler per
// accepted statement shape, each wrapping underlying storage/catalog
// errors into a single top-level ExecError, with compensating-delete
// rollback on partial catalog mutation failure.
//
// Grounded end to end on SQLExec
// (_examples/original_source/SQLExec.cpp): the per-statement handler
// bodies, the rollback sequencing in create_table/create_index, the
// drop ordering in drop_table, and the where-clause reduction — with
// the AND-merge bug and the missing-_indices-check in drop_table fixed
// per §9's design notes and §4.E respectively (see DESIGN.md).
package exec

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	"github.com/tpkdev/lemurdb/internal/ast"
	"github.com/tpkdev/lemurdb/internal/catalog"
	"github.com/tpkdev/lemurdb/internal/dberrors"
	"github.com/tpkdev/lemurdb/internal/environment"
	"github.com/tpkdev/lemurdb/internal/exec/plan"
	"github.com/tpkdev/lemurdb/internal/index"
	"github.com/tpkdev/lemurdb/internal/storage/relation"
)

// Result is the materialized outcome of one executed statement: a
// human-readable message and, for SHOW/SELECT, a column list and rows.
type Result struct {
	Message string
	Columns []string
	Rows    []relation.Row
}

// ExecError wraps any error raised while executing one statement with
// the statement's own description, so the original storage/catalog
// cause is never lost.
type ExecError struct {
	Statement string
	err       error
}

func (e *ExecError) Error() string { return fmt.Sprintf("%s: %v", e.Statement, e.err) }
func (e *ExecError) Unwrap() error { return e.err }
func (e *ExecError) Cause() error  { return e.err }

func wrap(statement string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecError{Statement: statement, err: errors.Trace(err)}
}

// Executor dispatches parsed statements to their handlers against one
// Catalog. It owns no package-level state; every Executor is
// independent, per §9's "no singletons" design note.
type Executor struct {
	env     *environment.Environment
	Catalog *catalog.Catalog
}

// New opens (bootstrapping if necessary) the catalog rooted at env and
// returns an Executor ready to run statements against it.
func New(env *environment.Environment) (*Executor, error) {
	cat := catalog.New(env.Library, env.Log, env.Config)
	if err := cat.Initialize(); err != nil {
		return nil, wrap("initialize catalog", err)
	}
	return &Executor{env: env, Catalog: cat}, nil
}

// Execute dispatches stmt (one of the internal/ast statement types) to
// its handler.
func (e *Executor) Execute(stmt interface{}) (*Result, error) {
	switch s := stmt.(type) {
	case *ast.CreateTableStmt:
		return e.createTable(s)
	case *ast.CreateIndexStmt:
		return e.createIndex(s)
	case *ast.DropTableStmt:
		return e.dropTable(s)
	case *ast.DropIndexStmt:
		return e.dropIndex(s)
	case *ast.ShowTablesStmt:
		return e.showTables(s)
	case *ast.ShowColumnsStmt:
		return e.showColumns(s)
	case *ast.ShowIndexStmt:
		return e.showIndex(s)
	case *ast.InsertStmt:
		return e.insert(s)
	case *ast.DeleteStmt:
		return e.delete(s)
	case *ast.SelectStmt:
		return e.selectRows(s)
	default:
		return nil, wrap("execute", dberrors.UnsupportedType("unrecognized statement type %T", stmt))
	}
}

func (e *Executor) rollbackColumns(desc string, handles []relation.Handle) {
	if len(handles) == 0 {
		return
	}
	e.env.Log.WithFields(logrus.Fields{"statement": desc, "rows": len(handles)}).Warn("rolling back _columns rows after a failed statement")
	for _, h := range handles {
		_ = e.Catalog.Columns.Delete(h)
	}
}

func (e *Executor) rollbackRow(desc string, r *relation.Relation, h relation.Handle) {
	e.env.Log.WithFields(logrus.Fields{"statement": desc, "relation": r.Name}).Warn("rolling back a catalog row after a failed statement")
	_ = r.Delete(h)
}

func (e *Executor) rollbackIndexRows(desc string, handles []relation.Handle) {
	if len(handles) == 0 {
		return
	}
	e.env.Log.WithFields(logrus.Fields{"statement": desc, "rows": len(handles)}).Warn("rolling back _indices rows after a failed statement")
	for _, h := range handles {
		_ = e.Catalog.Indices.Delete(h)
	}
}

func (e *Executor) createTable(s *ast.CreateTableStmt) (*Result, error) {
	desc := "CREATE TABLE " + s.Table
	e.env.Log.WithField("statement", desc).Debug("entering")

	tHandle, err := e.Catalog.InsertTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}

	var cHandles []relation.Handle
	schema := make([]relation.Column, 0, len(s.Columns))
	for _, col := range s.Columns {
		h, err := e.Catalog.InsertColumn(s.Table, col.Name, col.Type)
		if err != nil {
			e.rollbackColumns(desc, cHandles)
			e.rollbackRow(desc, e.Catalog.Tables, tHandle)
			return nil, wrap(desc, err)
		}
		cHandles = append(cHandles, h)
		colType, _ := relation.ParseType(col.Type)
		schema = append(schema, relation.Column{Name: col.Name, Type: colType})
	}

	rel := relation.New(e.env.Library, s.Table, schema)
	if err := rel.Create(); err != nil {
		e.rollbackColumns(desc, cHandles)
		e.rollbackRow(desc, e.Catalog.Tables, tHandle)
		return nil, wrap(desc, err)
	}
	e.Catalog.RegisterTable(s.Table, rel)

	e.env.Log.WithField("statement", desc).Debug("exiting")
	return &Result{Message: "created " + s.Table}, nil
}

func (e *Executor) createIndex(s *ast.CreateIndexStmt) (*Result, error) {
	desc := "CREATE INDEX " + s.IndexName
	e.env.Log.WithField("statement", desc).Debug("entering")

	rel, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}
	known := make(map[string]bool, len(rel.Schema))
	for _, name := range rel.ColumnNames() {
		known[name] = true
	}
	for _, col := range s.Columns {
		if !known[col] {
			return nil, wrap(desc, dberrors.UnknownColumn("column %q is not in table %q", col, s.Table))
		}
	}

	isUnique := s.IndexType == "BTREE"
	var handles []relation.Handle
	for i, col := range s.Columns {
		h, err := e.Catalog.InsertIndexColumn(s.Table, s.IndexName, col, int32(i+1), s.IndexType, isUnique)
		if err != nil {
			e.rollbackIndexRows(desc, handles)
			return nil, wrap(desc, err)
		}
		handles = append(handles, h)
	}

	idx := index.New(s.Table, s.IndexName, s.Columns, s.IndexType, isUnique)
	if err := idx.Create(); err != nil {
		e.rollbackIndexRows(desc, handles)
		return nil, wrap(desc, err)
	}
	e.Catalog.RegisterIndex(s.Table, s.IndexName, idx)

	e.env.Log.WithField("statement", desc).Debug("exiting")
	return &Result{Message: "created index " + s.IndexName}, nil
}

func (e *Executor) dropTable(s *ast.DropTableStmt) (*Result, error) {
	desc := "DROP TABLE " + s.Table
	e.env.Log.WithField("statement", desc).Debug("entering")

	if catalog.IsCatalogTable(s.Table) {
		return nil, wrap(desc, dberrors.CannotDropSchema("%q is a catalog table", s.Table))
	}

	rel, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}

	indexNames, err := e.Catalog.IndexNamesForTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}
	for _, indexName := range indexNames {
		if _, err := e.dropIndex(&ast.DropIndexStmt{IndexName: indexName, Table: s.Table}); err != nil {
			return nil, wrap(desc, err)
		}
	}

	colHandles, err := e.Catalog.Columns.Select(relation.ValueDict{"table_name": s.Table})
	if err != nil {
		return nil, wrap(desc, err)
	}
	for _, h := range colHandles {
		if err := e.Catalog.Columns.Delete(h); err != nil {
			return nil, wrap(desc, err)
		}
	}

	e.Catalog.EvictTable(s.Table)
	if err := rel.Drop(); err != nil {
		return nil, wrap(desc, err)
	}

	tHandles, err := e.Catalog.Tables.Select(relation.ValueDict{"table_name": s.Table})
	if err != nil {
		return nil, wrap(desc, err)
	}
	for _, h := range tHandles {
		if err := e.Catalog.Tables.Delete(h); err != nil {
			return nil, wrap(desc, err)
		}
	}

	e.env.Log.WithField("statement", desc).Debug("exiting")
	return &Result{Message: "dropped " + s.Table}, nil
}

func (e *Executor) dropIndex(s *ast.DropIndexStmt) (*Result, error) {
	desc := "DROP INDEX " + s.IndexName
	e.env.Log.WithField("statement", desc).Debug("entering")

	idx, err := e.Catalog.GetIndex(s.Table, s.IndexName)
	if err != nil {
		return nil, wrap(desc, err)
	}
	if idx != nil {
		if err := idx.Drop(); err != nil {
			return nil, wrap(desc, err)
		}
	}
	e.Catalog.EvictIndex(s.Table, s.IndexName)

	handles, err := e.Catalog.Indices.Select(relation.ValueDict{"table_name": s.Table, "index_name": s.IndexName})
	if err != nil {
		return nil, wrap(desc, err)
	}
	for _, h := range handles {
		if err := e.Catalog.Indices.Delete(h); err != nil {
			return nil, wrap(desc, err)
		}
	}

	e.env.Log.WithField("statement", desc).Debug("exiting")
	return &Result{Message: "dropped index " + s.IndexName}, nil
}

func (e *Executor) showTables(_ *ast.ShowTablesStmt) (*Result, error) {
	handles, err := e.Catalog.Tables.Select(nil)
	if err != nil {
		return nil, wrap("SHOW TABLES", err)
	}
	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := e.Catalog.Tables.Project(h, nil)
		if err != nil {
			return nil, wrap("SHOW TABLES", err)
		}
		if catalog.IsCatalogTable(row["table_name"].(string)) {
			continue
		}
		rows = append(rows, row)
	}
	return &Result{Columns: []string{"table_name"}, Rows: rows}, nil
}

func (e *Executor) showColumns(s *ast.ShowColumnsStmt) (*Result, error) {
	handles, err := e.Catalog.Columns.Select(relation.ValueDict{"table_name": s.Table})
	if err != nil {
		return nil, wrap("SHOW COLUMNS", err)
	}
	columns := []string{"table_name", "column_name", "data_type"}
	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := e.Catalog.Columns.Project(h, columns)
		if err != nil {
			return nil, wrap("SHOW COLUMNS", err)
		}
		rows = append(rows, row)
	}
	return &Result{Columns: columns, Rows: rows}, nil
}

func (e *Executor) showIndex(s *ast.ShowIndexStmt) (*Result, error) {
	handles, err := e.Catalog.Indices.Select(relation.ValueDict{"table_name": s.Table})
	if err != nil {
		return nil, wrap("SHOW INDEX", err)
	}
	columns := e.Catalog.Indices.ColumnNames()
	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := e.Catalog.Indices.Project(h, nil)
		if err != nil {
			return nil, wrap("SHOW INDEX", err)
		}
		rows = append(rows, row)
	}
	return &Result{Columns: columns, Rows: rows}, nil
}

func (e *Executor) insert(s *ast.InsertStmt) (*Result, error) {
	desc := "INSERT INTO " + s.Table
	e.env.Log.WithField("statement", desc).Debug("entering")

	rel, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}

	names := s.Columns
	if names == nil {
		names = rel.ColumnNames()
	}
	if len(names) != len(s.Values) {
		return nil, wrap(desc, dberrors.UnknownColumn("%d columns but %d values given", len(names), len(s.Values)))
	}
	values := make(map[string]interface{}, len(names))
	for i, name := range names {
		v, err := literalValue(&s.Values[i])
		if err != nil {
			return nil, wrap(desc, err)
		}
		values[name] = v
	}

	h, err := rel.Insert(values)
	if err != nil {
		return nil, wrap(desc, err)
	}

	indexes, err := e.Catalog.IndexesForTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}
	for _, idx := range indexes {
		if err := idx.Insert(h); err != nil {
			return nil, wrap(desc, err)
		}
	}

	e.env.Log.WithField("statement", desc).Debug("exiting")
	return &Result{Message: "1 row inserted into " + s.Table}, nil
}

func (e *Executor) delete(s *ast.DeleteStmt) (*Result, error) {
	desc := "DELETE FROM " + s.Table
	e.env.Log.WithField("statement", desc).Debug("entering")

	rel, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}
	pred, err := reduceWhere(s.Where)
	if err != nil {
		return nil, wrap(desc, err)
	}

	p := &plan.Plan{Relation: rel, Where: pred}
	handles, err := p.Handles()
	if err != nil {
		return nil, wrap(desc, err)
	}

	indexes, err := e.Catalog.IndexesForTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}

	for _, h := range handles {
		for _, idx := range indexes {
			if err := idx.Del(h); err != nil {
				return nil, wrap(desc, err)
			}
		}
		if err := rel.Delete(h); err != nil {
			return nil, wrap(desc, err)
		}
	}

	e.env.Log.WithFields(logrus.Fields{"statement": desc, "rows": len(handles)}).Debug("exiting")
	return &Result{Message: fmt.Sprintf("%d rows deleted from %s", len(handles), s.Table)}, nil
}

func (e *Executor) selectRows(s *ast.SelectStmt) (*Result, error) {
	desc := "SELECT FROM " + s.Table
	e.env.Log.WithField("statement", desc).Debug("entering")

	rel, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, wrap(desc, err)
	}
	pred, err := reduceWhere(s.Where)
	if err != nil {
		return nil, wrap(desc, err)
	}

	columns := s.Columns
	if columns == nil {
		columns = rel.ColumnNames()
	}

	p := &plan.Plan{Relation: rel, Where: pred, Columns: columns}
	rows, err := p.Evaluate()
	if err != nil {
		return nil, wrap(desc, err)
	}

	e.env.Log.WithFields(logrus.Fields{"statement": desc, "rows": len(rows)}).Debug("exiting")
	return &Result{Columns: columns, Rows: rows}, nil
}

// reduceWhere reduces a where-clause expression to a ValueDict of
// column-to-literal equalities. Only equality and AND-of-equalities are
// accepted; anything else is *UnsupportedPredicate. The AND branch
// intersects the two sides symmetrically — a key survives only when
// both sides carry it with an equal value.
func reduceWhere(e *ast.Expr) (relation.ValueDict, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case ast.ExprEquals:
		if e.Left == nil || e.Left.Kind != ast.ExprColumnRef {
			return nil, dberrors.UnsupportedPredicate("left side of = must be a column reference")
		}
		val, err := literalValue(e.Right)
		if err != nil {
			return nil, err
		}
		return relation.ValueDict{e.Left.ColumnName: val}, nil
	case ast.ExprAnd:
		left, err := reduceWhere(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := reduceWhere(e.Right)
		if err != nil {
			return nil, err
		}
		merged := make(relation.ValueDict, len(left))
		for col, val := range left {
			if rv, ok := right[col]; ok && rv == val {
				merged[col] = val
			}
		}
		return merged, nil
	default:
		return nil, dberrors.UnsupportedPredicate("unsupported where-clause expression shape")
	}
}

func literalValue(e *ast.Expr) (interface{}, error) {
	if e == nil {
		return nil, dberrors.UnsupportedLiteral("missing literal")
	}
	switch e.Kind {
	case ast.ExprLiteralInt:
		return e.IntValue, nil
	case ast.ExprLiteralString:
		return e.StringValue, nil
	default:
		return nil, dberrors.UnsupportedLiteral("unsupported literal expression of kind %d", e.Kind)
	}
}
