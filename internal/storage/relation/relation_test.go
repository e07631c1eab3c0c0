package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpkdev/lemurdb/internal/dberrors"
	"github.com/tpkdev/lemurdb/internal/recordstore"
)

func newRelation(t *testing.T, name string, schema []Column) *Relation {
	t.Helper()
	lib := recordstore.NewLibrary(t.TempDir())
	r := New(lib, name, schema)
	require.NoError(t, r.Create())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func fooSchema() []Column {
	return []Column{{Name: "a", Type: INT}, {Name: "b", Type: TEXT}}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	r := newRelation(t, "foo", fooSchema())
	row := Row{"a": int32(12), "b": "Hello!"}
	data, err := r.Marshal(row)
	require.NoError(t, err)
	got, err := r.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}

func TestMarshalRejectsOversizedRow(t *testing.T) {
	r := newRelation(t, "foo", fooSchema())
	huge := make([]byte, 5000)
	for i := range huge {
		huge[i] = 'x'
	}
	_, err := r.Marshal(Row{"a": int32(1), "b": string(huge)})
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindRowTooLarge))
}

func TestInsertSelectProjectRoundTrip(t *testing.T) {
	r := newRelation(t, "foo", fooSchema())
	h, err := r.Insert(map[string]interface{}{"a": int32(12), "b": "Hello!"})
	require.NoError(t, err)

	handles, err := r.Select(nil)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, h, handles[0])

	row, err := r.Project(h, nil)
	require.NoError(t, err)
	assert.Equal(t, Row{"a": int32(12), "b": "Hello!"}, row)

	projected, err := r.Project(h, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, Row{"a": int32(12)}, projected)

	_, err = r.Project(h, []string{"zzz"})
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindUnknownColumn))
}

func TestSelectWithPredicateFiltersRows(t *testing.T) {
	r := newRelation(t, "foo", fooSchema())
	h1, err := r.Insert(map[string]interface{}{"a": int32(1), "b": "one"})
	require.NoError(t, err)
	_, err = r.Insert(map[string]interface{}{"a": int32(2), "b": "two"})
	require.NoError(t, err)

	handles, err := r.Select(ValueDict{"a": int32(1)})
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, h1, handles[0])
}

func TestDeleteRemovesRowFromSelect(t *testing.T) {
	r := newRelation(t, "foo", fooSchema())
	h, err := r.Insert(map[string]interface{}{"a": int32(1), "b": "one"})
	require.NoError(t, err)

	require.NoError(t, r.Delete(h))

	handles, err := r.Select(nil)
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestInsertRejectsMissingColumn(t *testing.T) {
	r := newRelation(t, "foo", fooSchema())
	_, err := r.Insert(map[string]interface{}{"a": int32(1)})
	require.Error(t, err)
	assert.True(t, dberrors.Is(err, dberrors.KindUnknownColumn))
}

func TestAppendSpillsIntoNewBlockWhenFull(t *testing.T) {
	schema := []Column{{Name: "a", Type: INT}, {Name: "b", Type: TEXT}}
	r := newRelation(t, "foo", schema)

	padding := make([]byte, 300)
	for i := range padding {
		padding[i] = 'x'
	}
	var lastH Handle
	for i := 0; i < 20; i++ {
		h, err := r.Insert(map[string]interface{}{"a": int32(i), "b": string(padding)})
		require.NoError(t, err)
		lastH = h
	}
	assert.Greater(t, int(lastH.Block), 1, "enough large rows should spill past block 1")

	handles, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, handles, 20)
}
