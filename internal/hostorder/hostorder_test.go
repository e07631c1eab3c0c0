package hostorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16(buf, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), Uint16(buf))
}

func TestUint16Zero(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16(buf, 0)
	assert.Equal(t, uint16(0), Uint16(buf))
}

func TestInt32RoundTripPositive(t *testing.T) {
	buf := make([]byte, 4)
	PutInt32(buf, 123456)
	assert.Equal(t, int32(123456), Int32(buf))
}

func TestInt32RoundTripNegative(t *testing.T) {
	buf := make([]byte, 4)
	PutInt32(buf, -42)
	assert.Equal(t, int32(-42), Int32(buf))
}

func TestUint32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32(buf, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), Uint32(buf))
}
