package gpu

import (
	"fmt"

	"github.com/gekko3d/tesseracts/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

// CameraUniform is the fixed-size camera buffer. Its size is the record size,
// so it never reallocates and its bind group is built once.
type CameraUniform struct {
	backend Backend
	buffer  Buffer
}

func NewCameraUniform(backend Backend) (*CameraUniform, error) {
	buf, err := backend.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  CameraRecordSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	return &CameraUniform{backend: backend, buffer: buf}, nil
}

func (c *CameraUniform) Upload(cam *core.Camera) error {
	return c.backend.WriteBuffer(c.buffer, 0, EncodeCamera(cam))
}

func (c *CameraUniform) Buffer() Buffer { return c.buffer }

func (c *CameraUniform) Release() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}

// SceneUploader encodes materials and the voxel chunk and uploads each through
// its own growable storage buffer.
type SceneUploader struct {
	Materials *GrowableBuffer
	Voxels    *GrowableBuffer
}

// NewSceneUploader sizes both buffers to the kernel's minimum binding sizes.
func NewSceneUploader(backend Backend) (*SceneUploader, error) {
	materials, err := NewGrowableBuffer(backend, wgpu.BufferDescriptor{
		Label: "Materials Storage Buffer",
		Size:  MaterialsMinSize,
		Usage: wgpu.BufferUsageStorage,
	})
	if err != nil {
		return nil, err
	}
	voxels, err := NewGrowableBuffer(backend, wgpu.BufferDescriptor{
		Label: "Voxels Storage Buffer",
		Size:  ChunkRecordSize,
		Usage: wgpu.BufferUsageStorage,
	})
	if err != nil {
		materials.Release()
		return nil, err
	}
	return &SceneUploader{Materials: materials, Voxels: voxels}, nil
}

// Upload writes the scene and reports whether either buffer was recreated, in
// which case the scene data bind group must be rebuilt.
func (u *SceneUploader) Upload(scene *core.Scene) (bool, error) {
	materials, err := EncodeMaterials(scene.Materials)
	if err != nil {
		return false, err
	}
	chunk, err := EncodeChunk(scene.Chunk)
	if err != nil {
		return false, err
	}

	invalidated := false

	realloc, err := u.Materials.SetDataLossy(materials)
	if err != nil {
		return false, fmt.Errorf("upload materials: %w", err)
	}
	invalidated = invalidated || realloc

	realloc, err = u.Voxels.SetDataLossy(chunk)
	if err != nil {
		return invalidated, fmt.Errorf("upload voxels: %w", err)
	}
	invalidated = invalidated || realloc

	return invalidated, nil
}

func (u *SceneUploader) Release() {
	u.Materials.Release()
	u.Voxels.Release()
}
