// Package models holds triangle meshes for the tinyrender pipeline: the
// in-memory representation, procedural primitives and a glTF loader.
package models

import (
	"errors"
	"fmt"
	"image"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// ErrIndexOutOfRange is returned by Validate when a face references an
// attribute that does not exist.
var ErrIndexOutOfRange = errors.New("index out of range")

// Mesh is an indexed triangle mesh. Each face corner indexes Positions,
// Normals and TexCoords separately; Colors is indexed by the position
// index. Normals, TexCoords and Colors may be empty, in which case the
// corresponding face indices are ignored and defaults are used.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Colors    []math3d.Vec4
	Normals   []math3d.Vec3
	TexCoords []math3d.Vec2
	Faces     []Face
	Materials []Material

	// Bounding box of Positions, updated by CalculateBounds.
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is one triangle.
type Face struct {
	Pos      [3]int
	Normal   [3]int
	Tex      [3]int
	Material int // index into Mesh.Materials, -1 for none; ignored without materials
}

// Material is the subset of a glTF PBR material the renderer uses.
type Material struct {
	Name      string
	BaseColor math3d.Vec4
	Metallic  float64
	Roughness float64
	BaseMap   image.Image // nil without a base color texture
}

// Corner is the resolved attribute set of one face corner.
type Corner struct {
	Position math3d.Vec3
	Color    math3d.Vec4
	Normal   math3d.Vec3
	TexCoord math3d.Vec2
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Validate checks every face index against the attribute arrays.
func (m *Mesh) Validate() error {
	if len(m.Colors) != 0 && len(m.Colors) < len(m.Positions) {
		return fmt.Errorf("mesh %q: %d colors for %d positions: %w",
			m.Name, len(m.Colors), len(m.Positions), ErrIndexOutOfRange)
	}
	for i, f := range m.Faces {
		for c := range 3 {
			if err := checkIndex("position", f.Pos[c], len(m.Positions), true); err != nil {
				return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
			}
			if err := checkIndex("normal", f.Normal[c], len(m.Normals), false); err != nil {
				return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
			}
			if err := checkIndex("texcoord", f.Tex[c], len(m.TexCoords), false); err != nil {
				return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
			}
		}
		if len(m.Materials) != 0 && (f.Material < -1 || f.Material >= len(m.Materials)) {
			return fmt.Errorf("mesh %q face %d: material %d of %d: %w",
				m.Name, i, f.Material, len(m.Materials), ErrIndexOutOfRange)
		}
	}
	return nil
}

func checkIndex(what string, idx, n int, required bool) error {
	if n == 0 && !required {
		return nil
	}
	if idx < 0 || idx >= n {
		return fmt.Errorf("%s index %d not in [0, %d): %w", what, idx, n, ErrIndexOutOfRange)
	}
	return nil
}

// Corner resolves corner c (0..2) of face i. Missing optional attributes
// default to white, the zero normal and the zero texcoord. The mesh must
// have passed Validate.
func (m *Mesh) Corner(i, c int) Corner {
	f := m.Faces[i]
	out := Corner{
		Position: m.Positions[f.Pos[c]],
		Color:    math3d.V4(1, 1, 1, 1),
	}
	if len(m.Colors) != 0 {
		out.Color = m.Colors[f.Pos[c]]
	}
	if len(m.Normals) != 0 {
		out.Normal = m.Normals[f.Normal[c]]
	}
	if len(m.TexCoords) != 0 {
		out.TexCoord = m.TexCoords[f.Tex[c]]
	}
	return out
}

// Unload releases the mesh storage.
func (m *Mesh) Unload() {
	m.Positions = nil
	m.Colors = nil
	m.Normals = nil
	m.TexCoords = nil
	m.Faces = nil
	m.Materials = nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0, v1, v2 := m.Positions[f.Pos[0]], m.Positions[f.Pos[1]], m.Positions[f.Pos[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateNormals replaces the normals with one flat normal per face.
func (m *Mesh) CalculateNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Faces))
	for i := range m.Faces {
		m.Normals[i] = m.faceNormal(m.Faces[i]).Normalize()
		m.Faces[i].Normal = [3]int{i, i, i}
	}
}

// CalculateSmoothNormals replaces the normals with area-weighted averages
// per position.
func (m *Mesh) CalculateSmoothNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Positions))
	for i := range m.Faces {
		f := &m.Faces[i]
		n := m.faceNormal(*f) // unnormalized: larger faces weigh more
		for c := range 3 {
			m.Normals[f.Pos[c]] = m.Normals[f.Pos[c]].Add(n)
		}
		f.Normal = f.Pos
	}
	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
}

// Transform applies mat to all positions and normals in place.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulPoint(m.Positions[i])
	}
	nm := mat.NormalMatrix()
	for i := range m.Normals {
		m.Normals[i] = nm.MulDir(m.Normals[i]).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh. Material images are shared.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:      m.Name,
		Positions: append([]math3d.Vec3(nil), m.Positions...),
		Colors:    append([]math3d.Vec4(nil), m.Colors...),
		Normals:   append([]math3d.Vec3(nil), m.Normals...),
		TexCoords: append([]math3d.Vec2(nil), m.TexCoords...),
		Faces:     append([]Face(nil), m.Faces...),
		Materials: append([]Material(nil), m.Materials...),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
}

// BaseMap returns the first material texture, or nil.
func (m *Mesh) BaseMap() image.Image {
	for _, mat := range m.Materials {
		if mat.BaseMap != nil {
			return mat.BaseMap
		}
	}
	return nil
}
