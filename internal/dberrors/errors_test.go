package dberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfMatchesConstructor(t *testing.T) {
	err := NoRoom("need %d bytes", 10)
	assert.Equal(t, KindNoRoom, KindOf(err))
	assert.True(t, Is(err, KindNoRoom))
	assert.False(t, Is(err, KindRowTooLarge))
}

func TestKindOfUnknownForForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

func TestUnderlyingIOWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := UnderlyingIO(cause, "writing block %d", 4)
	assert.Equal(t, KindUnderlyingIO, KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestKindStringNames(t *testing.T) {
	assert.Equal(t, "DuplicateTable", KindDuplicateTable.String())
	assert.Equal(t, "UnderlyingIo", KindUnderlyingIO.String())
	assert.Equal(t, "Unknown", Kind(999).String())
}
