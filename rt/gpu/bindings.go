package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices of the ray tracing kernel.
const (
	GroupRenderTarget = 0
	GroupCamera       = 1
	GroupSceneData    = 2
)

// BindingRegistry owns the kernel's three bind group layouts and the live bind
// groups built against the current resources. Rebuilds are driven by the
// caller from the reallocation flags of the underlying resources.
type BindingRegistry struct {
	backend Backend

	target *RenderTarget
	camera *CameraUniform
	scene  *SceneUploader

	layouts [3]BindGroupLayout
	groups  [3]BindGroup
}

func NewBindingRegistry(backend Backend, target *RenderTarget, camera *CameraUniform, scene *SceneUploader) (*BindingRegistry, error) {
	r := &BindingRegistry{
		backend: backend,
		target:  target,
		camera:  camera,
		scene:   scene,
	}

	descs := [3]wgpu.BindGroupLayoutDescriptor{
		GroupRenderTarget: {
			Label: "Render Target Bind Group Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        RenderTargetFormat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			}},
		},
		GroupCamera: {
			Label: "Camera Bind Group Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: CameraRecordSize,
				},
			}},
		},
		GroupSceneData: {
			Label: "Scene Data Bind Group Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageCompute,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeReadOnlyStorage,
						MinBindingSize: MaterialsMinSize,
					},
				},
				{
					Binding:    1,
					Visibility: wgpu.ShaderStageCompute,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeReadOnlyStorage,
						MinBindingSize: ChunkRecordSize,
					},
				},
			},
		},
	}

	for i := range descs {
		layout, err := backend.CreateBindGroupLayout(&descs[i])
		if err != nil {
			r.Release()
			return nil, err
		}
		r.layouts[i] = layout
	}

	if err := r.RebuildRenderTargetBinding(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.rebuildCameraBinding(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.RebuildSceneDataBinding(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *BindingRegistry) rebuild(group int, label string, entries []BindGroupEntry) error {
	bg, err := r.backend.CreateBindGroup(&BindGroupDescriptor{
		Label:   label,
		Layout:  r.layouts[group],
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if old := r.groups[group]; old != nil {
		old.Release()
	}
	r.groups[group] = bg
	return nil
}

// RebuildRenderTargetBinding rebinds the current render target texture. Call
// after RenderTarget.Resize reports a new texture.
func (r *BindingRegistry) RebuildRenderTargetBinding() error {
	return r.rebuild(GroupRenderTarget, "Render Target Bind Group", []BindGroupEntry{
		{Binding: 0, Texture: r.target.Texture()},
	})
}

// RebuildSceneDataBinding rebinds the current material and voxel buffers.
// Call after SceneUploader.Upload reports a reallocation.
func (r *BindingRegistry) RebuildSceneDataBinding() error {
	return r.rebuild(GroupSceneData, "Scene Data Bind Group", []BindGroupEntry{
		{Binding: 0, Buffer: r.scene.Materials.Buffer()},
		{Binding: 1, Buffer: r.scene.Voxels.Buffer()},
	})
}

func (r *BindingRegistry) rebuildCameraBinding() error {
	return r.rebuild(GroupCamera, "Camera Bind Group", []BindGroupEntry{
		{Binding: 0, Buffer: r.camera.Buffer()},
	})
}

// Layouts returns the layouts in group index order.
func (r *BindingRegistry) Layouts() []BindGroupLayout {
	return r.layouts[:]
}

// Groups returns the live bind groups in group index order.
func (r *BindingRegistry) Groups() []BindGroup {
	return []BindGroup{r.groups[GroupRenderTarget], r.groups[GroupCamera], r.groups[GroupSceneData]}
}

func (r *BindingRegistry) Group(index int) BindGroup {
	return r.groups[index]
}

func (r *BindingRegistry) Release() {
	for i := range r.groups {
		if r.groups[i] != nil {
			r.groups[i].Release()
			r.groups[i] = nil
		}
	}
	for i := range r.layouts {
		if r.layouts[i] != nil {
			r.layouts[i].Release()
			r.layouts[i] = nil
		}
	}
}
