package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/tinyrender/pkg/math3d"
)

// GLTFLoader loads glTF/GLB files into a single Mesh.
type GLTFLoader struct {
	// CalculateNormals generates normals when the file has none.
	CalculateNormals bool
	// SmoothNormals averages generated normals per position instead of
	// using one flat normal per face.
	SmoothNormals bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a glTF or binary glTF (.glb) file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load merges every triangle primitive of every mesh in the file into one
// Mesh. glTF winding (counter-clockwise front faces) is kept. Vertex colors
// combine COLOR_0 with the primitive's material base color, and texture
// coordinates are flipped so v=0 is the bottom of the image.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	hasNormals := false
	for _, n := range mesh.Normals {
		if n.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func readMaterials(doc *gltf.Document, dir string) []Material {
	out := make([]Material, len(doc.Materials))
	for i, mat := range doc.Materials {
		m := Material{
			Name:      mat.Name,
			BaseColor: math3d.V4(1, 1, 1, 1),
			Metallic:  1,
			Roughness: 1,
		}
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				m.BaseColor = math3d.V4(f[0], f[1], f[2], f[3])
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = *pbr.RoughnessFactor
			}
			if pbr.BaseColorTexture != nil {
				// A broken texture leaves the material untextured.
				if img, err := readTextureImage(doc, pbr.BaseColorTexture.Index, dir); err == nil {
					m.BaseMap = img
				}
			}
		}
		out[i] = m
	}
	return out
}

func readTextureImage(doc *gltf.Document, texIdx int, dir string) (image.Image, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil, fmt.Errorf("texture %d has no image", texIdx)
	}
	imgIdx := *doc.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", imgIdx)
	}
	src := doc.Images[imgIdx]

	var data []byte
	switch {
	case src.BufferView != nil:
		bv := doc.BufferViews[*src.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if end := bv.ByteOffset + bv.ByteLength; end <= len(buf.Data) {
			data = buf.Data[bv.ByteOffset:end]
		}
	case src.URI != "" && !strings.HasPrefix(src.URI, "data:"):
		b, err := os.ReadFile(filepath.Join(dir, src.URI))
		if err != nil {
			return nil, err
		}
		data = b
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %d has no data", imgIdx)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", imgIdx, err)
	}
	return img, nil
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// decodeImage decodes the PNG or JPEG payloads glTF allows. The format is
// sniffed here rather than by image.Decode, which hands any input to a
// registered decoder with an empty magic string (TGA).
func decodeImage(data []byte) (image.Image, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return png.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, jpegMagic):
		return jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, errors.New("unsupported image format")
	}
}

// processMesh appends the triangle primitives of m to mesh. Every position
// gets a color, normal and texcoord so one index addresses all of them.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readAccessor(doc, posIdx, gltf.AccessorVec3)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals, uvs, colors [][4]float64
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readAccessor(doc, idx, gltf.AccessorVec3); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readAccessor(doc, idx, gltf.AccessorVec2); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
			if colors, err = readAccessor(doc, idx, gltf.AccessorVec4, gltf.AccessorVec3); err != nil {
				return fmt.Errorf("read colors: %w", err)
			}
		}

		material := -1
		tint := math3d.V4(1, 1, 1, 1)
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
			tint = mesh.Materials[material].BaseColor
		}

		base := len(mesh.Positions)
		for i, p := range positions {
			mesh.Positions = append(mesh.Positions, math3d.V3(p[0], p[1], p[2]))

			var n math3d.Vec3
			if i < len(normals) {
				n = math3d.V3(normals[i][0], normals[i][1], normals[i][2])
			}
			mesh.Normals = append(mesh.Normals, n)

			var uv math3d.Vec2
			if i < len(uvs) {
				// glTF puts v=0 at the top of the image.
				uv = math3d.V2(uvs[i][0], 1-uvs[i][1])
			}
			mesh.TexCoords = append(mesh.TexCoords, uv)

			c := math3d.V4(1, 1, 1, 1)
			if i < len(colors) {
				c = math3d.V4(colors[i][0], colors[i][1], colors[i][2], colors[i][3])
			}
			mesh.Colors = append(mesh.Colors, c.Mul(tint))
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			idx := [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]}
			mesh.Faces = append(mesh.Faces, Face{Pos: idx, Normal: idx, Tex: idx, Material: material})
		}
	}
	return nil
}

// readAccessor reads a float, normalized ubyte or normalized ushort vector
// accessor. Missing components are filled from (0, 0, 0, 1).
func readAccessor(doc *gltf.Document, accessorIdx int, types ...gltf.AccessorType) ([][4]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]

	accepted := false
	for _, t := range types {
		if accessor.Type == t {
			accepted = true
		}
	}
	if !accepted {
		return nil, fmt.Errorf("unexpected accessor type %v", accessor.Type)
	}

	n := componentCount(accessor.Type)
	size := componentSize(accessor.ComponentType)
	if size == 0 {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, n*size)
	if err != nil {
		return nil, err
	}

	out := make([][4]float64, accessor.Count)
	for i := range out {
		out[i] = [4]float64{0, 0, 0, 1}
		for j := range n {
			b := data[i*stride+j*size:]
			switch accessor.ComponentType {
			case gltf.ComponentFloat:
				out[i][j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			case gltf.ComponentUbyte:
				out[i][j] = float64(b[0]) / 255
			case gltf.ComponentUshort:
				out[i][j] = float64(binary.LittleEndian.Uint16(b)) / 65535
			default:
				return nil, fmt.Errorf("unsupported component type %v for %v", accessor.ComponentType, accessor.Type)
			}
		}
	}
	return out, nil
}

// readIndices reads a scalar unsigned index accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor has type %v", accessor.Type)
	}
	size := componentSize(accessor.ComponentType)
	if size == 0 || accessor.ComponentType == gltf.ComponentFloat {
		return nil, fmt.Errorf("unexpected index type %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	out := make([]int, accessor.Count)
	for i := range out {
		b := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		default:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}

// accessorBytes returns the buffer bytes starting at the accessor's first
// element together with the element stride, after checking that every
// element fits.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := doc.BufferViews[*accessor.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + accessor.ByteOffset
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buf.Data) {
			return nil, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(buf.Data))
		}
	}
	return buf.Data[start:], stride, nil
}

func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	default:
		return 4
	}
}

func componentSize(t gltf.ComponentType) int {
	switch t {
	case gltf.ComponentUbyte:
		return 1
	case gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	default:
		return 0
	}
}
