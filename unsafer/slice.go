package unsafer

import (
	"unsafe"
)

// SliceToBytes interprets an arbitrary input slice as a byte slice.
//
// Note that the returned slice points to the same underlying data in memory. It
// does not make a copy.
func SliceToBytes[T any](input []T) []byte {
	if len(input) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(input[0])) * len(input)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(input))), size)
}

// StructToBytes returns the memory of the value pointed by input as a byte
// slice. Like SliceToBytes it does not copy.
func StructToBytes[T any](input *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(input)), unsafe.Sizeof(*input))
}
