// Package catalog implements the self-describing system catalog: the
// three bootstrap relations _tables, _columns and _indices, the
// process-owned table and index caches, identifier validation, and the
// insertion-uniqueness rules the catalog enforces by hand.
//
// Grounded on the original Tables/Columns/Indices classes
// (_examples/original_source/src/schema_tables.cpp), with the
// process-wide singleton caches that source uses replaced by fields on
// a Catalog value the executor owns and passes around explicitly (§9's
// "global mutable catalog caches" design note).
package catalog

import (
	"github.com/sirupsen/logrus"

	"github.com/tpkdev/lemurdb/internal/config"
	"github.com/tpkdev/lemurdb/internal/dberrors"
	"github.com/tpkdev/lemurdb/internal/index"
	"github.com/tpkdev/lemurdb/internal/recordstore"
	"github.com/tpkdev/lemurdb/internal/storage/relation"
)

// Names of the three catalog relations themselves.
const (
	TablesName  = "_tables"
	ColumnsName = "_columns"
	IndicesName = "_indices"
)

func tablesSchema() []relation.Column {
	return []relation.Column{{Name: "table_name", Type: relation.TEXT}}
}

func columnsSchema() []relation.Column {
	return []relation.Column{
		{Name: "table_name", Type: relation.TEXT},
		{Name: "column_name", Type: relation.TEXT},
		{Name: "data_type", Type: relation.TEXT},
	}
}

func indicesSchema() []relation.Column {
	return []relation.Column{
		{Name: "table_name", Type: relation.TEXT},
		{Name: "index_name", Type: relation.TEXT},
		{Name: "column_name", Type: relation.TEXT},
		{Name: "seq_in_index", Type: relation.INT},
		{Name: "index_type", Type: relation.TEXT},
		{Name: "is_unique", Type: relation.BOOLEAN},
	}
}

// IndexKey identifies one index by the table it is on and its name.
type IndexKey struct {
	Table string
	Index string
}

// Catalog is the long-lived object owning the three bootstrap relations
// plus the in-memory table and index caches. One Catalog is created per
// environment and threaded explicitly through the executor; it is never
// a package-level singleton.
type Catalog struct {
	library     *recordstore.Library
	log         *logrus.Logger
	cacheTables bool

	Tables  *relation.Relation
	Columns *relation.Relation
	Indices *relation.Relation

	tableCache map[string]*relation.Relation
	indexCache map[IndexKey]*index.Stub
}

// New constructs a Catalog bound to library, ready for Initialize.
// cfg.PageCacheTables controls whether GetTable serves repeat lookups out
// of the table cache (the default) or reconstructs the relation from
// _columns on every call.
func New(library *recordstore.Library, log *logrus.Logger, cfg config.Config) *Catalog {
	return &Catalog{
		library:     library,
		log:         log,
		cacheTables: cfg.PageCacheTables,
		Tables:      relation.New(library, TablesName, tablesSchema()),
		Columns:     relation.New(library, ColumnsName, columnsSchema()),
		Indices:     relation.New(library, IndicesName, indicesSchema()),
		tableCache:  make(map[string]*relation.Relation),
		indexCache:  make(map[IndexKey]*index.Stub),
	}
}

// Initialize calls create_if_not_exists on each of the three catalog
// relations. When _tables is created for the first time, it bootstraps
// the catalog: inserts rows describing all three catalog tables into
// _tables, then their column descriptors into _columns.
func (c *Catalog) Initialize() error {
	tablesCreated, err := c.Tables.CreateIfNotExists()
	if err != nil {
		return err
	}
	if _, err := c.Columns.CreateIfNotExists(); err != nil {
		return err
	}
	if _, err := c.Indices.CreateIfNotExists(); err != nil {
		return err
	}
	if !tablesCreated {
		return nil
	}
	return c.bootstrap()
}

func (c *Catalog) bootstrap() error {
	for _, name := range []string{TablesName, ColumnsName, IndicesName} {
		if _, err := c.Tables.Insert(map[string]interface{}{"table_name": name}); err != nil {
			return err
		}
	}
	bootstrapColumns := []struct {
		table string
		cols  []relation.Column
	}{
		{TablesName, tablesSchema()},
		{ColumnsName, columnsSchema()},
		{IndicesName, indicesSchema()},
	}
	for _, bc := range bootstrapColumns {
		for _, col := range bc.cols {
			if _, err := c.Columns.Insert(map[string]interface{}{
				"table_name":  bc.table,
				"column_name": col.Name,
				"data_type":   col.Type.String(),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsCatalogTable reports whether name is one of the three catalog
// relations themselves.
func IsCatalogTable(name string) bool {
	return name == TablesName || name == ColumnsName || name == IndicesName
}

// ValidIdentifier reports whether name is an acceptable table/column
// identifier: not entirely digits, and composed solely of
// [A-Za-z0-9$_].
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	allDigits := true
	for _, r := range name {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '$', r == '_':
			allDigits = false
		default:
			return false
		}
	}
	return !allDigits
}

// GetTable returns the cached relation for name, constructing and
// caching it from _columns if this is the first request. When the
// catalog was built with PageCacheTables false, the cache is never
// consulted and every call reloads the schema from _columns. A newly
// constructed relation is opened if its file exists; if the file has not
// been created yet, the relation is returned unopened for the caller to
// Create.
func (c *Catalog) GetTable(name string) (*relation.Relation, error) {
	if c.cacheTables {
		if r, ok := c.tableCache[name]; ok {
			return r, nil
		}
	}
	handles, err := c.Columns.Select(relation.ValueDict{"table_name": name})
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, dberrors.UnknownTable("table %q is not registered in the catalog", name)
	}
	schema := make([]relation.Column, 0, len(handles))
	for _, h := range handles {
		row, err := c.Columns.Project(h, []string{"column_name", "data_type"})
		if err != nil {
			return nil, err
		}
		colName := row["column_name"].(string)
		colType, err := relation.ParseType(row["data_type"].(string))
		if err != nil {
			return nil, err
		}
		schema = append(schema, relation.Column{Name: colName, Type: colType})
	}
	r := relation.New(c.library, name, schema)
	if err := r.Open(); err != nil && !dberrors.Is(err, dberrors.KindNotFound) {
		return nil, err
	}
	if c.cacheTables {
		c.tableCache[name] = r
	}
	return r, nil
}

// EvictTable removes name from the table cache without touching the
// underlying file. Callers must evict before removing the physical
// file, per §4.D.
func (c *Catalog) EvictTable(name string) {
	delete(c.tableCache, name)
}

// RegisterTable caches r under name directly, for use right after a
// CREATE TABLE has created the physical relation — avoids re-reading
// _columns for a schema the caller already has in hand. A no-op when
// the catalog was built with PageCacheTables false.
func (c *Catalog) RegisterTable(name string, r *relation.Relation) {
	if c.cacheTables {
		c.tableCache[name] = r
	}
}

// InsertTable enforces _tables.insert's uniqueness rule: reject a
// duplicate table_name.
func (c *Catalog) InsertTable(name string) (relation.Handle, error) {
	existing, err := c.Tables.Select(relation.ValueDict{"table_name": name})
	if err != nil {
		return relation.Handle{}, err
	}
	if len(existing) > 0 {
		return relation.Handle{}, dberrors.DuplicateTable("table %q already exists", name)
	}
	return c.Tables.Insert(map[string]interface{}{"table_name": name})
}

// InsertColumn enforces _columns.insert's rules: identifiers must be
// valid, data_type must be one of INT/TEXT/BOOLEAN, and (table_name,
// column_name) must not already exist.
func (c *Catalog) InsertColumn(table, column, dataType string) (relation.Handle, error) {
	if !ValidIdentifier(table) {
		return relation.Handle{}, dberrors.UnsupportedType("invalid table identifier %q", table)
	}
	if !ValidIdentifier(column) {
		return relation.Handle{}, dberrors.UnsupportedType("invalid column identifier %q", column)
	}
	if _, err := relation.ParseType(dataType); err != nil {
		return relation.Handle{}, err
	}
	existing, err := c.Columns.Select(relation.ValueDict{"table_name": table, "column_name": column})
	if err != nil {
		return relation.Handle{}, err
	}
	if len(existing) > 0 {
		return relation.Handle{}, dberrors.DuplicateColumn("column %q.%q already exists", table, column)
	}
	return c.Columns.Insert(map[string]interface{}{
		"table_name":  table,
		"column_name": column,
		"data_type":   dataType,
	})
}

// InsertIndexColumn enforces _indices.insert's rules: reject a duplicate
// (table_name, index_name) pair at seq_in_index 1, and reject a repeated
// column_name within the same (table, index).
func (c *Catalog) InsertIndexColumn(table, indexName, column string, seq int32, indexType string, isUnique bool) (relation.Handle, error) {
	if seq == 1 {
		existing, err := c.Indices.Select(relation.ValueDict{
			"table_name": table, "index_name": indexName, "seq_in_index": int32(1),
		})
		if err != nil {
			return relation.Handle{}, err
		}
		if len(existing) > 0 {
			return relation.Handle{}, dberrors.DuplicateIndex("index %q on %q already exists", indexName, table)
		}
	}
	rows, err := c.Indices.Select(relation.ValueDict{"table_name": table, "index_name": indexName})
	if err != nil {
		return relation.Handle{}, err
	}
	for _, h := range rows {
		row, err := c.Indices.Project(h, []string{"column_name"})
		if err != nil {
			return relation.Handle{}, err
		}
		if row["column_name"].(string) == column {
			return relation.Handle{}, dberrors.DuplicateColumn("column %q repeated in index %q", column, indexName)
		}
	}
	return c.Indices.Insert(map[string]interface{}{
		"table_name":   table,
		"index_name":   indexName,
		"column_name":  column,
		"seq_in_index": seq,
		"index_type":   indexType,
		"is_unique":    isUnique,
	})
}

// IndexColumns returns the key columns (in seq_in_index order) recorded
// for (table, indexName).
func (c *Catalog) IndexColumns(table, indexName string) ([]string, error) {
	handles, err := c.Indices.Select(relation.ValueDict{"table_name": table, "index_name": indexName})
	if err != nil {
		return nil, err
	}
	type seqCol struct {
		seq int32
		col string
	}
	cols := make([]seqCol, 0, len(handles))
	for _, h := range handles {
		row, err := c.Indices.Project(h, []string{"seq_in_index", "column_name"})
		if err != nil {
			return nil, err
		}
		cols = append(cols, seqCol{seq: row["seq_in_index"].(int32), col: row["column_name"].(string)})
	}
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1].seq > cols[j].seq; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
	names := make([]string, len(cols))
	for i, sc := range cols {
		names[i] = sc.col
	}
	return names, nil
}

// IndexNamesForTable returns the distinct index names recorded against
// table in _indices.
func (c *Catalog) IndexNamesForTable(table string) ([]string, error) {
	handles, err := c.Indices.Select(relation.ValueDict{"table_name": table})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, h := range handles {
		row, err := c.Indices.Project(h, []string{"index_name"})
		if err != nil {
			return nil, err
		}
		name := row["index_name"].(string)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// GetIndex returns the cached placeholder index object for (table,
// indexName), lazily constructing it from _indices metadata on first
// request. A missing index is not an error condition here (no index
// lookup failure kind is defined); it yields a nil, non-error result
// the caller must check.
func (c *Catalog) GetIndex(table, indexName string) (*index.Stub, error) {
	key := IndexKey{Table: table, Index: indexName}
	if idx, ok := c.indexCache[key]; ok {
		return idx, nil
	}
	columns, err := c.IndexColumns(table, indexName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, nil
	}
	handles, err := c.Indices.Select(relation.ValueDict{"table_name": table, "index_name": indexName})
	if err != nil {
		return nil, err
	}
	row, err := c.Indices.Project(handles[0], []string{"index_type", "is_unique"})
	if err != nil {
		return nil, err
	}
	idx := index.New(table, indexName, columns, row["index_type"].(string), row["is_unique"].(bool))
	c.indexCache[key] = idx
	return idx, nil
}

// RegisterIndex caches idx under (table, indexName) directly, for use
// right after CREATE INDEX constructs it.
func (c *Catalog) RegisterIndex(table, indexName string, idx *index.Stub) {
	c.indexCache[IndexKey{Table: table, Index: indexName}] = idx
}

// EvictIndex removes (table, indexName) from the index cache.
func (c *Catalog) EvictIndex(table, indexName string) {
	delete(c.indexCache, IndexKey{Table: table, Index: indexName})
}

// IndexesForTable returns every cached index object bound to table —
// the set an INSERT/DELETE should maintain. Indices not yet touched
// this process are lazily pulled in via GetIndex.
func (c *Catalog) IndexesForTable(table string) ([]*index.Stub, error) {
	names, err := c.IndexNamesForTable(table)
	if err != nil {
		return nil, err
	}
	indexes := make([]*index.Stub, 0, len(names))
	for _, name := range names {
		idx, err := c.GetIndex(table, name)
		if err != nil {
			return nil, err
		}
		if idx != nil {
			indexes = append(indexes, idx)
		}
	}
	return indexes, nil
}
