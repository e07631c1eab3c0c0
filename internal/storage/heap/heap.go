// Package heap implements the heap file: an ordered sequence of
// fixed-size blocks persisted as records 1..N in one named
// recordstore.Store.
//
// Grounded on the original HeapFile (_examples/original_source/src/heap_file.cpp),
// with the record-store contract supplied by internal/recordstore in
// place of the original's Db handle.
package heap

import (
	"github.com/tpkdev/lemurdb/internal/recordstore"
	"github.com/tpkdev/lemurdb/internal/storage/page"
)

// File is a heap file: blocks numbered 1..last, backed by one
// recordstore.Store named "<relation>.db".
type File struct {
	library *recordstore.Library
	name    string
	store   recordstore.Store
	last    uint32
	closed  bool
}

// New returns a File bound to name (without the ".db" suffix), not yet
// open.
func New(library *recordstore.Library, name string) *File {
	return &File{library: library, name: name + ".db", closed: true}
}

// Create creates the underlying file exclusively and writes an initial,
// empty block 1.
func (f *File) Create() error {
	store, err := f.library.Create(f.name, page.BlockSize)
	if err != nil {
		return err
	}
	f.store = store
	f.closed = false
	f.last = 0
	if _, err := f.GetNew(); err != nil {
		return err
	}
	return nil
}

// Drop closes the file (if open) and removes it. last resets to 0.
func (f *File) Drop() error {
	if !f.closed {
		if err := f.Close(); err != nil {
			return err
		}
	}
	if err := f.library.RemoveFile(f.name); err != nil {
		return err
	}
	f.last = 0
	return nil
}

// Open opens the existing underlying file and restores last from its
// record count. No-op if already open.
func (f *File) Open() error {
	if !f.closed {
		return nil
	}
	store, err := f.library.Open(f.name, page.BlockSize)
	if err != nil {
		return err
	}
	count, err := store.RecordCount()
	if err != nil {
		return err
	}
	f.store = store
	f.last = count
	f.closed = false
	return nil
}

// Close closes the underlying file if open. Idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	err := f.store.Close()
	f.closed = true
	f.store = nil
	return err
}

// GetNew allocates block last+1: writes a zero-initialized page, then
// reads it back so the returned block wraps storage the record store
// owns, not a buffer this process allocated. last is incremented.
func (f *File) GetNew() (*page.Block, error) {
	id := f.last + 1
	blank := make([]byte, page.BlockSize)
	blankBlock, err := page.NewEmpty(page.BlockID(id), blank)
	if err != nil {
		return nil, err
	}
	if err := f.store.Put(id, blankBlock.Bytes()); err != nil {
		return nil, err
	}
	raw, err := f.store.Get(id)
	if err != nil {
		return nil, err
	}
	b, err := page.Open(page.BlockID(id), raw)
	if err != nil {
		return nil, err
	}
	f.last = id
	return b, nil
}

// Get reads block id and binds a page.Block to the returned buffer.
func (f *File) Get(id page.BlockID) (*page.Block, error) {
	raw, err := f.store.Get(uint32(id))
	if err != nil {
		return nil, err
	}
	return page.Open(id, raw)
}

// Put writes b's buffer back under its block id.
func (f *File) Put(b *page.Block) error {
	return f.store.Put(uint32(b.ID()), b.Bytes())
}

// BlockIDs returns [1, last] in order.
func (f *File) BlockIDs() []page.BlockID {
	ids := make([]page.BlockID, 0, f.last)
	for i := uint32(1); i <= f.last; i++ {
		ids = append(ids, page.BlockID(i))
	}
	return ids
}

// Last returns the highest allocated block id.
func (f *File) Last() uint32 { return f.last }

// IsOpen reports whether the underlying file is currently open.
func (f *File) IsOpen() bool { return !f.closed }
