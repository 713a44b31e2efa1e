// Package shaders loads the SPIR-V bytecode of the graphics pipeline.
package shaders

import (
	"encoding/binary"
	"io/fs"

	"github.com/cockroachdb/errors"
)

//go:generate ./compile.sh

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Names of the compiled shaders produced by compile.sh.
const (
	VertexFile   = "vert.spv"
	FragmentFile = "frag.spv"
)

// Code is the SPIR-V bytecode of the graphics pipeline's shader stages.
type Code struct {
	Vertex   []uint32
	Fragment []uint32
}

// Load reads and validates the vertex and fragment shaders from fsys. Run
// `go generate` in this directory to compile them from the GLSL sources.
func Load(fsys fs.FS) (Code, error) {
	vert, err := readModule(fsys, VertexFile)
	if err != nil {
		return Code{}, errors.Wrap(err, "failed to read vertex shader bytecode")
	}

	frag, err := readModule(fsys, FragmentFile)
	if err != nil {
		return Code{}, errors.Wrap(err, "failed to read fragment shader bytecode")
	}

	return Code{Vertex: vert, Fragment: frag}, nil
}

func readModule(fsys fs.FS, name string) ([]uint32, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	words, err := Words(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return words, nil
}

// Words repacks SPIR-V bytecode into 32 bit words. The byte order is taken
// from the module's magic number.
func Words(code []byte) ([]uint32, error) {
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, errors.Newf("invalid SPIR-V size %d", len(code))
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(code) == spirvMagic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(code) == spirvMagic:
		order = binary.BigEndian
	default:
		return nil, errors.Newf("invalid SPIR-V magic number %#x",
			binary.LittleEndian.Uint32(code))
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = order.Uint32(code[i*4:])
	}
	return words, nil
}
