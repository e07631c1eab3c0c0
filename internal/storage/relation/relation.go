// Package relation implements the row marshalling codec and the
// insert/select/project/delete operations layered on a heap file plus a
// declared column schema.
//
// Grounded on the original HeapTable (_examples/original_source/src/heap_table.cpp):
// marshal/unmarshal, validate-then-append insert, block-scan select, and
// the explicit absence of update (reserved for future work, never
// invoked by the executor per §4.C).
package relation

import (
	"strings"

	"github.com/tpkdev/lemurdb/internal/dberrors"
	"github.com/tpkdev/lemurdb/internal/hostorder"
	"github.com/tpkdev/lemurdb/internal/recordstore"
	"github.com/tpkdev/lemurdb/internal/storage/heap"
	"github.com/tpkdev/lemurdb/internal/storage/page"
)

// ColumnType is one of the three column types this engine supports.
type ColumnType int

const (
	INT ColumnType = iota
	TEXT
	BOOLEAN
)

// ParseType maps a catalog/SQL type tag ("INT", "TEXT", "BOOLEAN",
// case-insensitive) onto a ColumnType. Any other tag (including the
// accepted-but-rejected "DOUBLE") yields dberrors.KindUnsupportedType.
func ParseType(tag string) (ColumnType, error) {
	switch strings.ToUpper(tag) {
	case "INT":
		return INT, nil
	case "TEXT":
		return TEXT, nil
	case "BOOLEAN":
		return BOOLEAN, nil
	default:
		return 0, dberrors.UnsupportedType("unsupported column type %q", tag)
	}
}

func (t ColumnType) String() string {
	switch t {
	case INT:
		return "INT"
	case TEXT:
		return "TEXT"
	case BOOLEAN:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// Column is one declared column: its name and type, in schema order.
type Column struct {
	Name string
	Type ColumnType
}

// Row is a fully-populated row value, keyed by column name.
type Row map[string]interface{}

// ValueDict is an equality predicate: column name to the literal it must
// equal.
type ValueDict map[string]interface{}

// Handle locates one row: the block it lives on and its record id there.
type Handle struct {
	Block  page.BlockID
	Record page.RecordID
}

// slack leaves room for the slot entry a marshalled row occupies.
const slack = 8

// Relation is a heap file plus the column schema describing the bytes it
// holds.
type Relation struct {
	file   *heap.File
	Name   string
	Schema []Column
}

// New binds name to library, with the given declared column schema.
func New(library *recordstore.Library, name string, schema []Column) *Relation {
	return &Relation{file: heap.New(library, name), Name: name, Schema: schema}
}

// Create creates the underlying heap file.
func (r *Relation) Create() error { return r.file.Create() }

// CreateIfNotExists creates the underlying heap file unless it already
// exists, in which case it is opened instead. Reports whether this call
// is the one that created it, so a caller can decide whether to run
// first-time bootstrap logic.
func (r *Relation) CreateIfNotExists() (created bool, err error) {
	err = r.file.Create()
	if err == nil {
		return true, nil
	}
	if dberrors.Is(err, dberrors.KindAlreadyExists) {
		return false, r.file.Open()
	}
	return false, err
}

// Open opens the underlying heap file.
func (r *Relation) Open() error { return r.file.Open() }

// Close closes the underlying heap file.
func (r *Relation) Close() error { return r.file.Close() }

// Drop closes (if open) and removes the underlying heap file.
func (r *Relation) Drop() error { return r.file.Drop() }

// Marshal encodes row as bytes in declared column order: INT as a
// 4-byte signed integer, TEXT as a 2-byte length followed by that many
// bytes, BOOLEAN as a single 0/1 byte. Integers use internal/hostorder's
// fixed little-endian order, not the running machine's native order.
func (r *Relation) Marshal(row Row) ([]byte, error) {
	buf := make([]byte, 0, 64)
	for _, col := range r.Schema {
		v, ok := row[col.Name]
		if !ok {
			return nil, dberrors.UnknownColumn("row is missing column %q", col.Name)
		}
		switch col.Type {
		case INT:
			i, ok := v.(int32)
			if !ok {
				return nil, dberrors.UnsupportedType("column %q: expected INT, got %T", col.Name, v)
			}
			var tmp [4]byte
			hostorder.PutInt32(tmp[:], i)
			buf = append(buf, tmp[:]...)
		case TEXT:
			s, ok := v.(string)
			if !ok {
				return nil, dberrors.UnsupportedType("column %q: expected TEXT, got %T", col.Name, v)
			}
			var tmp [2]byte
			hostorder.PutUint16(tmp[:], uint16(len(s)))
			buf = append(buf, tmp[:]...)
			buf = append(buf, s...)
		case BOOLEAN:
			b, ok := v.(bool)
			if !ok {
				return nil, dberrors.UnsupportedType("column %q: expected BOOLEAN, got %T", col.Name, v)
			}
			if b {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		default:
			return nil, dberrors.UnsupportedType("column %q has unknown type", col.Name)
		}
	}
	if len(buf) > page.BlockSize-slack {
		return nil, dberrors.RowTooLarge("marshalled row is %d bytes, exceeds %d", len(buf), page.BlockSize-slack)
	}
	return buf, nil
}

// Unmarshal decodes data into a Row using the relation's declared column
// order and types.
func (r *Relation) Unmarshal(data []byte) (Row, error) {
	row := make(Row, len(r.Schema))
	off := 0
	for _, col := range r.Schema {
		switch col.Type {
		case INT:
			if off+4 > len(data) {
				return nil, dberrors.UnderlyingIO(nil, "truncated row while reading column %q", col.Name)
			}
			row[col.Name] = hostorder.Int32(data[off : off+4])
			off += 4
		case TEXT:
			if off+2 > len(data) {
				return nil, dberrors.UnderlyingIO(nil, "truncated row while reading column %q", col.Name)
			}
			n := int(hostorder.Uint16(data[off : off+2]))
			off += 2
			if off+n > len(data) {
				return nil, dberrors.UnderlyingIO(nil, "truncated row while reading column %q", col.Name)
			}
			row[col.Name] = string(data[off : off+n])
			off += n
		case BOOLEAN:
			if off+1 > len(data) {
				return nil, dberrors.UnderlyingIO(nil, "truncated row while reading column %q", col.Name)
			}
			row[col.Name] = data[off] != 0
			off++
		default:
			return nil, dberrors.UnsupportedType("column %q has unknown type", col.Name)
		}
	}
	return row, nil
}

// Validate expands values into the full declared column order and
// checks that every declared column is present; no NULLs, no defaults.
func (r *Relation) Validate(values map[string]interface{}) (Row, error) {
	row := make(Row, len(r.Schema))
	for _, col := range r.Schema {
		v, ok := values[col.Name]
		if !ok {
			return nil, dberrors.UnknownColumn("missing value for column %q", col.Name)
		}
		row[col.Name] = v
	}
	return row, nil
}

// Insert validates values against the declared schema, marshals the
// resulting row, and appends it to the heap file.
func (r *Relation) Insert(values map[string]interface{}) (Handle, error) {
	row, err := r.Validate(values)
	if err != nil {
		return Handle{}, err
	}
	data, err := r.Marshal(row)
	if err != nil {
		return Handle{}, err
	}
	return r.Append(data)
}

// Append scans blocks low to high trying to add data; on NoRoom it tries
// the next block; if none fit, it allocates a new one.
func (r *Relation) Append(data []byte) (Handle, error) {
	for _, id := range r.file.BlockIDs() {
		b, err := r.file.Get(id)
		if err != nil {
			return Handle{}, err
		}
		rid, err := b.Add(data)
		if err == nil {
			if err := r.file.Put(b); err != nil {
				return Handle{}, err
			}
			return Handle{Block: id, Record: rid}, nil
		}
		if !dberrors.Is(err, dberrors.KindNoRoom) {
			return Handle{}, err
		}
	}
	b, err := r.file.GetNew()
	if err != nil {
		return Handle{}, err
	}
	rid, err := b.Add(data)
	if err != nil {
		return Handle{}, err
	}
	if err := r.file.Put(b); err != nil {
		return Handle{}, err
	}
	return Handle{Block: b.ID(), Record: rid}, nil
}

// Delete removes the row at h from its block.
func (r *Relation) Delete(h Handle) error {
	b, err := r.file.Get(h.Block)
	if err != nil {
		return err
	}
	if err := b.Del(h.Record); err != nil {
		return err
	}
	return r.file.Put(b)
}

// Select returns the handles of every row matching pred. A nil or empty
// pred matches every row. A row is kept only if every predicate column
// is present in it and equal to the literal given.
func (r *Relation) Select(pred ValueDict) ([]Handle, error) {
	var out []Handle
	for _, blockID := range r.file.BlockIDs() {
		b, err := r.file.Get(blockID)
		if err != nil {
			return nil, err
		}
		for _, rid := range b.IDs() {
			h := Handle{Block: blockID, Record: rid}
			if len(pred) == 0 {
				out = append(out, h)
				continue
			}
			row, err := r.Unmarshal(b.Get(rid))
			if err != nil {
				return nil, err
			}
			if rowMatches(row, pred) {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

func rowMatches(row Row, pred ValueDict) bool {
	for col, want := range pred {
		got, ok := row[col]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Project reads the row at h and restricts it to columns. A nil columns
// list returns the full unmarshalled row.
func (r *Relation) Project(h Handle, columns []string) (Row, error) {
	b, err := r.file.Get(h.Block)
	if err != nil {
		return nil, err
	}
	row, err := r.Unmarshal(b.Get(h.Record))
	if err != nil {
		return nil, err
	}
	if columns == nil {
		return row, nil
	}
	out := make(Row, len(columns))
	for _, name := range columns {
		v, ok := row[name]
		if !ok {
			return nil, dberrors.UnknownColumn("unknown column %q", name)
		}
		out[name] = v
	}
	return out, nil
}

// ColumnNames returns the relation's declared column names in order.
func (r *Relation) ColumnNames() []string {
	names := make([]string, len(r.Schema))
	for i, col := range r.Schema {
		names[i] = col.Name
	}
	return names
}
