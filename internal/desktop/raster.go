package desktop

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"cubesculpt/internal/xr"
)

// mesh keeps the corners on the CPU for line drawing and, for triangle lists, a GPU copy
// drawn with DrawMesh.
type mesh struct {
	vertices []rl.Vector3
	indices  []uint32
	gpu      *rl.Mesh
	// Backing arrays referenced by gpu.
	positions []float32
	texcoords []float32
	gpuIndex  []uint16
}

// rlMatrix converts a column-major mgl32 matrix to raylib's layout, which is column-major
// as well.
func rlMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

// segments expands an index range into line endpoints for the topology.
func segments(topo xr.Topology, idx []uint32) [][2]uint32 {
	var out [][2]uint32
	switch topo {
	case xr.TopologyLineLoop:
		for i := range idx {
			out = append(out, [2]uint32{idx[i], idx[(i+1)%len(idx)]})
		}
	case xr.TopologyLines:
		for i := 0; i+1 < len(idx); i += 2 {
			out = append(out, [2]uint32{idx[i], idx[i+1]})
		}
	}
	return out
}

// triangleIndices narrows a triangle list to raylib's 16-bit index buffer. ok is false
// when the list is not whole triangles or an index does not fit.
func triangleIndices(indices []uint32, vertexCount int) (out []uint16, ok bool) {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, false
	}
	out = make([]uint16, len(indices))
	for i, v := range indices {
		if v > math.MaxUint16 || int(v) >= vertexCount {
			return nil, false
		}
		out[i] = uint16(v)
	}
	return out, true
}

func color(rgb mgl32.Vec3) rl.Color {
	c := rgb.Mul(255)
	return rl.NewColor(uint8(mgl32.Clamp(c[0], 0, 255)), uint8(mgl32.Clamp(c[1], 0, 255)), uint8(mgl32.Clamp(c[2], 0, 255)), 255)
}

// UploadMesh keeps the geometry for line drawing and uploads index lists made of whole
// triangles to the GPU.
func (r *Runtime) UploadMesh(vertices []float32, indices []uint32) (xr.Mesh, error) {
	m := mesh{indices: append([]uint32(nil), indices...)}
	for i := 0; i+2 < len(vertices); i += 3 {
		m.vertices = append(m.vertices, rl.NewVector3(vertices[i], vertices[i+1], vertices[i+2]))
	}
	for _, v := range indices {
		if int(v) >= len(m.vertices) {
			return 0, fmt.Errorf("index %d out of range for %d vertices", v, len(m.vertices))
		}
	}
	if idx, ok := triangleIndices(indices, len(m.vertices)); ok {
		m.positions = append([]float32(nil), vertices[:len(m.vertices)*3]...)
		m.texcoords = make([]float32, len(m.vertices)*2)
		m.gpuIndex = idx
		gpu := rl.Mesh{
			VertexCount:   int32(len(m.vertices)),
			TriangleCount: int32(len(idx) / 3),
			Vertices:      &m.positions[0],
			Texcoords:     &m.texcoords[0],
			Indices:       &m.gpuIndex[0],
		}
		rl.UploadMesh(&gpu, false)
		if gpu.VboID == nil || *gpu.VboID == 0 {
			return 0, fmt.Errorf("mesh with %d triangles not uploaded", gpu.TriangleCount)
		}
		m.gpu = &gpu
	}
	r.next++
	h := xr.Mesh(r.next)
	r.meshes[h] = m
	return h, nil
}

func (r *Runtime) ReleaseMesh(h xr.Mesh) error {
	m, ok := r.meshes[h]
	if !ok {
		return fmt.Errorf("unknown mesh %d", h)
	}
	if m.gpu != nil {
		rl.UnloadMesh(m.gpu)
	}
	delete(r.meshes, h)
	return nil
}

// BindTarget starts drawing into the swapchain's texture with depth testing on.
func (r *Runtime) BindTarget(sc xr.Swapchain, image int) {
	if tex, ok := r.swapchains[sc]; ok {
		rl.BeginTextureMode(tex)
		rl.EnableDepthTest()
		r.bound = true
	}
}

func (r *Runtime) UnbindTarget() {
	if r.bound {
		rl.EndTextureMode()
		rl.DisableDepthTest()
		r.bound = false
	}
}

func (r *Runtime) Viewport(width, height int) {
	rl.Viewport(0, 0, int32(width), int32(height))
}

// Clear clears color and depth.
func (r *Runtime) Clear() {
	rl.ClearBackground(background)
}

// SetMatrix loads mvp as raylib's projection with an identity modelview, so every later
// mesh or line draw is transformed by exactly mvp. Batched lines are flushed first: they
// are transformed when the batch is drawn, not when they are queued.
func (r *Runtime) SetMatrix(mvp mgl32.Mat4) {
	rl.DrawRenderBatchActive()
	rl.SetMatrixProjection(rlMatrix(mvp))
	rl.SetMatrixModelview(rl.MatrixIdentity())
}

func (r *Runtime) SetColor(rgb mgl32.Vec3) {
	r.color = color(rgb)
}

// DrawIndexed draws through raylib's 3D pipeline: clipping, depth test and backface
// culling happen on the GPU.
func (r *Runtime) DrawIndexed(h xr.Mesh, topo xr.Topology, first, count int) {
	m, ok := r.meshes[h]
	if !r.bound || !ok || first < 0 || first+count > len(m.indices) {
		return
	}
	idx := m.indices[first : first+count]

	if topo == xr.TopologyTriangles {
		if m.gpu != nil && first == 0 && count == len(m.indices) {
			if albedo := r.material.GetMap(rl.MapAlbedo); albedo != nil {
				albedo.Color = r.color
			}
			rl.DrawMesh(*m.gpu, r.material, rl.MatrixIdentity())
			return
		}
		for i := 0; i+2 < len(idx); i += 3 {
			rl.DrawTriangle3D(m.vertices[idx[i]], m.vertices[idx[i+1]], m.vertices[idx[i+2]], r.color)
		}
		return
	}
	for _, s := range segments(topo, idx) {
		rl.DrawLine3D(m.vertices[s[0]], m.vertices[s[1]], r.color)
	}
}
