package models

import "github.com/taigrr/tinyrender/pkg/math3d"

// uniformFace builds a face whose corners use the same index into every
// attribute array.
func uniformFace(a, b, c int) Face {
	idx := [3]int{a, b, c}
	return Face{Pos: idx, Normal: idx, Tex: idx, Material: -1}
}

// NewTriangle returns a single triangle in the z=0 plane, counter-clockwise
// when seen from +Z, with red, green and blue corners.
func NewTriangle() *Mesh {
	m := &Mesh{
		Name: "triangle",
		Positions: []math3d.Vec3{
			math3d.V3(-1, -1, 0),
			math3d.V3(1, -1, 0),
			math3d.V3(0, 1, 0),
		},
		Colors: []math3d.Vec4{
			math3d.V4(1, 0, 0, 1),
			math3d.V4(0, 1, 0, 1),
			math3d.V4(0, 0, 1, 1),
		},
		Normals: []math3d.Vec3{
			math3d.V3(0, 0, 1), math3d.V3(0, 0, 1), math3d.V3(0, 0, 1),
		},
		TexCoords: []math3d.Vec2{
			math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0.5, 1),
		},
		Faces: []Face{uniformFace(0, 1, 2)},
	}
	m.CalculateBounds()
	return m
}

// NewQuad returns a white 2x2 square in the z=0 plane facing +Z, split
// into two triangles, with texture coordinates spanning [0,1]².
func NewQuad() *Mesh {
	white := math3d.V4(1, 1, 1, 1)
	up := math3d.V3(0, 0, 1)
	m := &Mesh{
		Name: "quad",
		Positions: []math3d.Vec3{
			math3d.V3(-1, -1, 0),
			math3d.V3(1, -1, 0),
			math3d.V3(1, 1, 0),
			math3d.V3(-1, 1, 0),
		},
		Colors:  []math3d.Vec4{white, white, white, white},
		Normals: []math3d.Vec3{up, up, up, up},
		TexCoords: []math3d.Vec2{
			math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1),
		},
		Faces: []Face{uniformFace(0, 1, 2), uniformFace(0, 2, 3)},
	}
	m.CalculateBounds()
	return m
}

// cubeSides lists the outward normal and the in-plane u, v axes of each
// cube side, with u × v = normal so the corners wind counter-clockwise
// from outside.
var cubeSides = [6]struct {
	normal, u, v math3d.Vec3
	color        math3d.Vec4
}{
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0), math3d.V4(1, 0.3, 0.3, 1)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0), math3d.V4(0.3, 1, 1, 1)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V4(0.3, 1, 0.3, 1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1), math3d.V4(1, 0.3, 1, 1)},
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V4(0.3, 0.3, 1, 1)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0), math3d.V4(1, 1, 0.3, 1)},
}

// NewCube returns the cube [-1,1]³ with four vertices per side so every
// side has its own flat normal, color and full [0,1]² texture mapping.
func NewCube() *Mesh {
	m := NewMesh("cube")
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, side := range cubeSides {
		base := len(m.Positions)
		for _, c := range corners {
			p := side.normal.Add(side.u.Scale(c[0])).Add(side.v.Scale(c[1]))
			m.Positions = append(m.Positions, p)
			m.Colors = append(m.Colors, side.color)
			m.Normals = append(m.Normals, side.normal)
			m.TexCoords = append(m.TexCoords, math3d.V2((c[0]+1)/2, (c[1]+1)/2))
		}
		m.Faces = append(m.Faces, uniformFace(base, base+1, base+2), uniformFace(base, base+2, base+3))
	}
	m.CalculateBounds()
	return m
}
