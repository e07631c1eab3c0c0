package exec

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpkdev/lemurdb/internal/ast"
	"github.com/tpkdev/lemurdb/internal/config"
	"github.com/tpkdev/lemurdb/internal/dberrors"
	"github.com/tpkdev/lemurdb/internal/environment"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = "error"
	env := environment.Open(cfg)
	ex, err := New(env)
	require.NoError(t, err)
	return ex
}

func TestCreateTableLogsDebugEntryAndExit(t *testing.T) {
	ex := newExecutor(t)
	var buf bytes.Buffer
	ex.env.Log.SetLevel(logrus.DebugLevel)
	ex.env.Log.SetOutput(&buf)

	createFoo(t, ex)

	out := buf.String()
	assert.Contains(t, out, "[DEBU]")
	assert.Contains(t, out, "CREATE TABLE foo")
	assert.Contains(t, out, "entering")
	assert.Contains(t, out, "exiting")
}

func TestCreateTableWarnsOnRollback(t *testing.T) {
	ex := newExecutor(t)
	var buf bytes.Buffer
	ex.env.Log.SetLevel(logrus.DebugLevel)
	ex.env.Log.SetOutput(&buf)

	_, err := ex.Execute(&ast.CreateTableStmt{
		Table:   "bar",
		Columns: []ast.ColumnDef{{Name: "x", Type: "DOUBLE"}},
	})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "rolling back")
}

func createFoo(t *testing.T, ex *Executor) {
	t.Helper()
	res, err := ex.Execute(&ast.CreateTableStmt{
		Table: "foo",
		Columns: []ast.ColumnDef{
			{Name: "a", Type: "INT"},
			{Name: "b", Type: "TEXT"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "created foo", res.Message)
}

// S1: create table, show tables, show columns.
func TestScenarioS1CreateTableAndShow(t *testing.T) {
	ex := newExecutor(t)
	createFoo(t, ex)

	tables, err := ex.Execute(&ast.ShowTablesStmt{})
	require.NoError(t, err)
	require.Len(t, tables.Rows, 1)
	assert.Equal(t, "foo", tables.Rows[0]["table_name"])

	cols, err := ex.Execute(&ast.ShowColumnsStmt{Table: "foo"})
	require.NoError(t, err)
	require.Len(t, cols.Rows, 2)
	assert.Equal(t, "a", cols.Rows[0]["column_name"])
	assert.Equal(t, "INT", cols.Rows[0]["data_type"])
	assert.Equal(t, "b", cols.Rows[1]["column_name"])
	assert.Equal(t, "TEXT", cols.Rows[1]["data_type"])
}

// S2: duplicate create fails and leaves catalog state untouched.
func TestScenarioS2DuplicateCreateFails(t *testing.T) {
	ex := newExecutor(t)
	createFoo(t, ex)

	_, err := ex.Execute(&ast.CreateTableStmt{
		Table:   "foo",
		Columns: []ast.ColumnDef{{Name: "a", Type: "INT"}, {Name: "b", Type: "TEXT"}},
	})
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindDuplicateTable))

	tables, err := ex.Execute(&ast.ShowTablesStmt{})
	require.NoError(t, err)
	assert.Len(t, tables.Rows, 1)

	cols, err := ex.Execute(&ast.ShowColumnsStmt{Table: "foo"})
	require.NoError(t, err)
	assert.Len(t, cols.Rows, 2)
}

// S4: create, insert, select round-trips one row.
func TestScenarioS4InsertAndSelect(t *testing.T) {
	ex := newExecutor(t)
	createFoo(t, ex)

	litA := ast.LiteralInt(12)
	litB := ast.LiteralString("Hello!")
	_, err := ex.Execute(&ast.InsertStmt{Table: "foo", Values: []ast.Expr{litA, litB}})
	require.NoError(t, err)

	res, err := ex.Execute(&ast.SelectStmt{Table: "foo", Columns: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int32(12), res.Rows[0]["a"])
	assert.Equal(t, "Hello!", res.Rows[0]["b"])
}

// S5: create index, show index, drop index.
func TestScenarioS5CreateShowDropIndex(t *testing.T) {
	ex := newExecutor(t)
	createFoo(t, ex)

	_, err := ex.Execute(&ast.CreateIndexStmt{IndexName: "fx", Table: "foo", Columns: []string{"a"}, IndexType: "BTREE"})
	require.NoError(t, err)

	res, err := ex.Execute(&ast.ShowIndexStmt{Table: "foo"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Equal(t, "foo", row["table_name"])
	assert.Equal(t, "fx", row["index_name"])
	assert.Equal(t, "a", row["column_name"])
	assert.Equal(t, int32(1), row["seq_in_index"])
	assert.Equal(t, "BTREE", row["index_type"])
	assert.Equal(t, true, row["is_unique"])

	_, err = ex.Execute(&ast.DropIndexStmt{IndexName: "fx", Table: "foo"})
	require.NoError(t, err)

	res, err = ex.Execute(&ast.ShowIndexStmt{Table: "foo"})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

// S6: dropping a catalog table fails and leaves it intact.
func TestScenarioS6DropCatalogTableFails(t *testing.T) {
	ex := newExecutor(t)

	_, err := ex.Execute(&ast.DropTableStmt{Table: "_tables"})
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindCannotDropSchema))

	tables, err := ex.Execute(&ast.ShowTablesStmt{})
	require.NoError(t, err)
	assert.Empty(t, tables.Rows, "catalog tables themselves never show up in SHOW TABLES")
}

func TestDropTableRemovesItEverywhere(t *testing.T) {
	ex := newExecutor(t)
	createFoo(t, ex)

	_, err := ex.Execute(&ast.DropTableStmt{Table: "foo"})
	require.NoError(t, err)

	tables, err := ex.Execute(&ast.ShowTablesStmt{})
	require.NoError(t, err)
	assert.Empty(t, tables.Rows)

	cols, err := ex.Execute(&ast.ShowColumnsStmt{Table: "foo"})
	require.NoError(t, err)
	assert.Empty(t, cols.Rows)
}

func TestDeleteWithWhereClause(t *testing.T) {
	ex := newExecutor(t)
	createFoo(t, ex)

	_, err := ex.Execute(&ast.InsertStmt{Table: "foo", Values: []ast.Expr{ast.LiteralInt(1), ast.LiteralString("one")}})
	require.NoError(t, err)
	_, err = ex.Execute(&ast.InsertStmt{Table: "foo", Values: []ast.Expr{ast.LiteralInt(2), ast.LiteralString("two")}})
	require.NoError(t, err)

	where := ast.Equals(ast.ColumnRef("a"), ast.LiteralInt(1))
	res, err := ex.Execute(&ast.DeleteStmt{Table: "foo", Where: &where})
	require.NoError(t, err)
	assert.Equal(t, "1 rows deleted from foo", res.Message)

	remaining, err := ex.Execute(&ast.SelectStmt{Table: "foo"})
	require.NoError(t, err)
	require.Len(t, remaining.Rows, 1)
	assert.Equal(t, int32(2), remaining.Rows[0]["a"])
}

func TestWhereClauseAndMergeIsSymmetricIntersection(t *testing.T) {
	where := ast.And(
		ast.Equals(ast.ColumnRef("a"), ast.LiteralInt(1)),
		ast.Equals(ast.ColumnRef("b"), ast.LiteralString("one")),
	)
	pred, err := reduceWhere(&where)
	require.NoError(t, err)
	assert.NotContains(t, pred, "a", "a key carried by only one side must not survive the merge")
	assert.NotContains(t, pred, "b", "a key carried by only one side must not survive the merge")

	conflicting := ast.And(
		ast.Equals(ast.ColumnRef("a"), ast.LiteralInt(1)),
		ast.Equals(ast.ColumnRef("a"), ast.LiteralInt(2)),
	)
	pred, err = reduceWhere(&conflicting)
	require.NoError(t, err)
	assert.Empty(t, pred, "a key present on both sides with conflicting values must not survive the merge")
}

func TestUnsupportedPredicateShape(t *testing.T) {
	bad := ast.Expr{Kind: ast.ExprStar}
	_, err := reduceWhere(&bad)
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindUnsupportedPredicate))
}

func TestCreateTableRejectsDoubleColumnType(t *testing.T) {
	ex := newExecutor(t)
	_, err := ex.Execute(&ast.CreateTableStmt{
		Table:   "bar",
		Columns: []ast.ColumnDef{{Name: "x", Type: "DOUBLE"}},
	})
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindUnsupportedType))

	tables, err := ex.Execute(&ast.ShowTablesStmt{})
	require.NoError(t, err)
	assert.Empty(t, tables.Rows, "a failed CREATE TABLE must not leave a partial row behind")
}
