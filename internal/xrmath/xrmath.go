// Package xrmath composes the transforms the render pass needs: model matrices from
// translation/rotation/scale, view matrices from rigid head poses and per-eye projections
// from asymmetric fields of view.
//
// All matrices are mgl32.Mat4, column-major (m[col*4+row]), and are chained right-to-left:
// clip = projection * view * model * vertex.
package xrmath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"cubesculpt/internal/xr"
)

// Model returns translation * rotation * scale. The rotation quaternion is expected to be
// unit length, as runtimes report it.
func Model(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r.Mul4(s))
}

// PoseModel is Model with the translation and rotation taken from a pose.
func PoseModel(p xr.Pose, scale mgl32.Vec3) mgl32.Mat4 {
	return Model(p.Position, p.Orientation, scale)
}

// InvertRigid inverts a matrix made only of rotation and translation. The rotation block is
// transposed instead of inverted, which keeps the result exact for orthonormal input.
func InvertRigid(m mgl32.Mat4) mgl32.Mat4 {
	var r mgl32.Mat4
	r[0], r[1], r[2], r[3] = m[0], m[4], m[8], 0
	r[4], r[5], r[6], r[7] = m[1], m[5], m[9], 0
	r[8], r[9], r[10], r[11] = m[2], m[6], m[10], 0
	r[12] = -(m[0]*m[12] + m[1]*m[13] + m[2]*m[14])
	r[13] = -(m[4]*m[12] + m[5]*m[13] + m[6]*m[14])
	r[14] = -(m[8]*m[12] + m[9]*m[13] + m[10]*m[14])
	r[15] = 1
	return r
}

// View returns the world-to-eye matrix for an eye located at pose.
func View(p xr.Pose) mgl32.Mat4 {
	return InvertRigid(PoseModel(p, mgl32.Vec3{1, 1, 1}))
}

// Projection builds an OpenGL style ([-1,1] depth) projection from an asymmetric fov.
// When far <= near the far plane is placed at infinity.
func Projection(fov xr.Fov, near, far float32) mgl32.Mat4 {
	tanLeft := math32.Tan(fov.AngleLeft)
	tanRight := math32.Tan(fov.AngleRight)
	tanDown := math32.Tan(fov.AngleDown)
	tanUp := math32.Tan(fov.AngleUp)

	tanWidth := tanRight - tanLeft
	tanHeight := tanUp - tanDown
	offsetZ := near

	var m mgl32.Mat4
	m[0] = 2 / tanWidth
	m[8] = (tanRight + tanLeft) / tanWidth
	m[5] = 2 / tanHeight
	m[9] = (tanUp + tanDown) / tanHeight
	m[11] = -1

	if far <= near {
		m[10] = -1
		m[14] = -(near + offsetZ)
		return m
	}
	m[10] = -(far + offsetZ) / (far - near)
	m[14] = -(far * (near + offsetZ)) / (far - near)
	return m
}

// ViewProjection is projection * view for one located eye.
func ViewProjection(v xr.View, near, far float32) mgl32.Mat4 {
	return Projection(v.Fov, near, far).Mul4(View(v.Pose))
}

// MVP chains a view-projection with a model matrix.
func MVP(viewProjection, model mgl32.Mat4) mgl32.Mat4 {
	return viewProjection.Mul4(model)
}
