// Package hostorder implements the fixed-width integer encoding used for
// page headers and marshalled row fields. §6 calls this byte order
// "host-endian... not portable across architectures — acknowledged
// limitation"; rather than detect the running machine's native order
// through unsafe, this package fixes one deterministic order using the
// same manual shift-and-mask style as the teacher's util.ReadUB2/WriteUB2
// helpers (_examples .../util/buffer_reader.go, buffer_writer.go). The
// result round-trips correctly within one process and one on-disk file,
// which is the only property the spec requires; it simply never claims
// to match whatever order a given CPU happens to use.
package hostorder

// PutUint16 writes v into buf[0:2].
func PutUint16(buf []byte, v uint16) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
}

// Uint16 reads a uint16 from buf[0:2].
func Uint16(buf []byte) uint16 {
	return uint16(buf[0]) | uint16(buf[1])<<8
}

// PutInt32 writes v into buf[0:4].
func PutInt32(buf []byte, v int32) {
	u := uint32(v)
	buf[0] = byte(u)
	buf[1] = byte(u >> 8)
	buf[2] = byte(u >> 16)
	buf[3] = byte(u >> 24)
}

// Int32 reads an int32 from buf[0:4].
func Int32(buf []byte) int32 {
	u := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	return int32(u)
}

// PutUint32 writes v into buf[0:4].
func PutUint32(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

// Uint32 reads a uint32 from buf[0:4].
func Uint32(buf []byte) uint32 {
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
}
