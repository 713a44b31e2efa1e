package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onsi/gomega"
	"github.com/xlab/linmath"
)

const square = `# a unit square made of one quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
o square
f 1/1 2/2 3/3 4/4
`

func TestQuadsAreValid(t *testing.T) {
	g := gomega.NewWithT(t)

	quads := Quads()
	g.Expect(quads.Validate()).To(gomega.Succeed())
	g.Expect(quads.Vertices).To(gomega.HaveLen(8))
	g.Expect(quads.Indices).To(gomega.HaveLen(12))
}

func TestValidate(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(Geometry{}.Validate()).To(gomega.MatchError(gomega.ContainSubstring("no vertices")))

	g.Expect(Geometry{
		Vertices: make([]Vertex, 3),
		Indices:  []uint32{0, 1},
	}.Validate()).To(gomega.MatchError(gomega.ContainSubstring("multiple of 3")))

	g.Expect(Geometry{
		Vertices: make([]Vertex, 3),
		Indices:  []uint32{0, 1, 3},
	}.Validate()).To(gomega.MatchError(gomega.ContainSubstring("vertex 3 of 3")))
}

func TestLoadTriangulatesQuads(t *testing.T) {
	g := gomega.NewWithT(t)

	geometry, err := Load(strings.NewReader(square))
	g.Expect(err).NotTo(gomega.HaveOccurred())

	g.Expect(geometry.Vertices).To(gomega.HaveLen(4))
	g.Expect(geometry.Indices).To(gomega.Equal([]uint32{0, 1, 2, 0, 2, 3}))

	g.Expect(geometry.Vertices[2].Pos).To(gomega.Equal(linmath.Vec3{1, 1, 0}))
	g.Expect(geometry.Vertices[0].TexCoord).To(gomega.Equal(linmath.Vec2{0, 1}))
	g.Expect(geometry.Vertices[2].TexCoord).To(gomega.Equal(linmath.Vec2{1, 0}))
}

func TestLoadEmptyModel(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := Load(strings.NewReader("# nothing here\n"))
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("no vertices")))
}

func TestLoadFile(t *testing.T) {
	g := gomega.NewWithT(t)

	path := filepath.Join(t.TempDir(), "square.obj")
	g.Expect(os.WriteFile(path, []byte(square), 0o600)).To(gomega.Succeed())

	geometry, err := LoadFile(path)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(geometry.Indices).To(gomega.HaveLen(6))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.obj"))
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("opening model")))
}
