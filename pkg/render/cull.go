package render

import "github.com/taigrr/tinyrender/pkg/math3d"

// viewDir is the direction the camera looks in NDC.
var viewDir = math3d.V3(0, 0, -1)

// IsBackFacing reports whether the triangle with NDC positions v0, v1, v2
// faces away from the viewer. Front faces wind counter-clockwise in NDC
// (y up), which is clockwise on the y-down screen.
func IsBackFacing(v0, v1, v2 math3d.Vec4) bool {
	e0 := v1.Vec3().Sub(v0.Vec3())
	e1 := v2.Vec3().Sub(v1.Vec3())
	return e0.Cross(e1).Dot(viewDir) > 0
}
