// Package models holds the geometry drawn by the renderer: a built-in pair of
// quads and a loader for Wavefront OBJ files.
package models

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mokiat/go-data-front/decoder/obj"
	"github.com/xlab/linmath"
)

// Vertex is a single vertex as the vertex shader consumes it.
type Vertex struct {
	Pos      linmath.Vec3
	Color    linmath.Vec3
	TexCoord linmath.Vec2
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Validate checks that the geometry has triangles and that every index points
// at a vertex.
func (g Geometry) Validate() error {
	if len(g.Vertices) == 0 {
		return errors.New("geometry has no vertices")
	}
	if len(g.Indices) == 0 || len(g.Indices)%3 != 0 {
		return errors.Newf("geometry has %d indices, want a positive multiple of 3",
			len(g.Indices))
	}
	for i, index := range g.Indices {
		if int(index) >= len(g.Vertices) {
			return errors.Newf("index %d points at vertex %d of %d",
				i, index, len(g.Vertices))
		}
	}
	return nil
}

// Quads returns two colored quads stacked on top of each other.
func Quads() Geometry {
	return Geometry{
		Vertices: []Vertex{
			{Pos: linmath.Vec3{-0.5, -0.5, 0}, Color: linmath.Vec3{1, 0, 0}, TexCoord: linmath.Vec2{1, 0}},
			{Pos: linmath.Vec3{0.5, -0.5, 0}, Color: linmath.Vec3{0, 1, 0}, TexCoord: linmath.Vec2{0, 0}},
			{Pos: linmath.Vec3{0.5, 0.5, 0}, Color: linmath.Vec3{0, 0, 1}, TexCoord: linmath.Vec2{0, 1}},
			{Pos: linmath.Vec3{-0.5, 0.5, 0}, Color: linmath.Vec3{1, 1, 1}, TexCoord: linmath.Vec2{1, 1}},

			{Pos: linmath.Vec3{-0.5, -0.5, -0.5}, Color: linmath.Vec3{1, 0, 0}, TexCoord: linmath.Vec2{1, 0}},
			{Pos: linmath.Vec3{0.5, -0.5, -0.5}, Color: linmath.Vec3{0, 1, 0}, TexCoord: linmath.Vec2{0, 0}},
			{Pos: linmath.Vec3{0.5, 0.5, -0.5}, Color: linmath.Vec3{0, 0, 1}, TexCoord: linmath.Vec2{0, 1}},
			{Pos: linmath.Vec3{-0.5, 0.5, -0.5}, Color: linmath.Vec3{1, 1, 1}, TexCoord: linmath.Vec2{1, 1}},
		},
		Indices: []uint32{
			0, 1, 2, 2, 3, 0,
			4, 5, 6, 6, 7, 4,
		},
	}
}

// LoadFile reads an OBJ model from path.
func LoadFile(path string) (Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Geometry{}, errors.Wrap(err, "opening model")
	}
	defer f.Close()

	geometry, err := Load(f)
	if err != nil {
		return Geometry{}, errors.Wrapf(err, "loading %s", path)
	}
	return geometry, nil
}

// Load decodes an OBJ model. Faces with more than three corners are split
// into triangle fans and identical corners share one vertex. Texture
// coordinates are flipped vertically since OBJ puts the origin at the bottom.
func Load(r io.Reader) (Geometry, error) {
	decoder := obj.NewDecoder(obj.DefaultLimits())
	model, err := decoder.Decode(r)
	if err != nil {
		return Geometry{}, errors.Wrap(err, "decoding OBJ")
	}

	var (
		geometry Geometry
		unique   = make(map[Vertex]uint32)
	)

	index := func(ref obj.Reference) uint32 {
		v := model.GetVertexFromReference(ref)
		vertex := Vertex{
			Pos:   linmath.Vec3{float32(v.X), float32(v.Y), float32(v.Z)},
			Color: linmath.Vec3{1, 1, 1},
		}
		if ref.HasTexCoord() {
			tc := model.GetTexCoordFromReference(ref)
			vertex.TexCoord = linmath.Vec2{float32(tc.U), 1 - float32(tc.V)}
		}

		if i, ok := unique[vertex]; ok {
			return i
		}
		i := uint32(len(geometry.Vertices))
		unique[vertex] = i
		geometry.Vertices = append(geometry.Vertices, vertex)
		return i
	}

	for _, object := range model.Objects {
		for _, mesh := range object.Meshes {
			for _, face := range mesh.Faces {
				if len(face.References) < 3 {
					continue
				}
				first := index(face.References[0])
				for i := 1; i+1 < len(face.References); i++ {
					geometry.Indices = append(geometry.Indices,
						first,
						index(face.References[i]),
						index(face.References[i+1]),
					)
				}
			}
		}
	}

	if err := geometry.Validate(); err != nil {
		return Geometry{}, err
	}
	return geometry, nil
}
