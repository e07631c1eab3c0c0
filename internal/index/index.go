// Package index defines the index maintenance interface the executor
// drives on INSERT/DELETE, plus the no-op stub implementation this
// engine currently supplies in place of a real B-tree or hash index.
//
// Grounded on the original source's index stub (create_index in
// _examples/original_source/SQLExec.cpp constructs an index object and
// calls create() on it, but the B-tree body itself is left as future
// work even there). §4.D and §9's open questions both call this out
// explicitly: the _indices catalog bookkeeping is real, the index body
// is not.
package index

import "github.com/tpkdev/lemurdb/internal/storage/relation"

// Index is the maintenance contract the executor uses. A real
// implementation would use handle to look up or remove entries keyed on
// the indexed columns' values; the stub below does neither.
type Index interface {
	Create() error
	Drop() error
	Open() error
	Close() error
	Insert(h relation.Handle) error
	Del(h relation.Handle) error
	Lookup(key relation.Row) ([]relation.Handle, error)
}

// Stub satisfies Index without doing any work. It exists so that
// CREATE INDEX / DROP INDEX / INSERT / DELETE can drive the same
// lifecycle calls a real index would receive, without this engine
// committing to one index structure yet (§9 open question: "a real
// implementation must supply correct insert/del before enabling them").
type Stub struct {
	Table     string
	IndexName string
	Columns   []string
	IndexType string
	IsUnique  bool
}

// New constructs a placeholder index bound to the given table/index
// name and key columns.
func New(table, indexName string, columns []string, indexType string, isUnique bool) *Stub {
	return &Stub{Table: table, IndexName: indexName, Columns: columns, IndexType: indexType, IsUnique: isUnique}
}

func (s *Stub) Create() error { return nil }
func (s *Stub) Drop() error   { return nil }
func (s *Stub) Open() error   { return nil }
func (s *Stub) Close() error  { return nil }

func (s *Stub) Insert(h relation.Handle) error { return nil }
func (s *Stub) Del(h relation.Handle) error    { return nil }

func (s *Stub) Lookup(key relation.Row) ([]relation.Handle, error) {
	return nil, nil
}
