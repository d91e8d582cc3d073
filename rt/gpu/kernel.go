package gpu

import (
	"github.com/gekko3d/tesseracts/rt/shaders"
)

// WorkgroupSize is the kernel's @workgroup_size in x and y.
const WorkgroupSize = 16

// DispatchSize returns the workgroup grid covering a width x height image.
func DispatchSize(width, height uint32) (x, y, z uint32) {
	return (width + WorkgroupSize - 1) / WorkgroupSize, (height + WorkgroupSize - 1) / WorkgroupSize, 1
}

// NewRayTracingKernel builds the compute pipeline against the registry's layouts.
func NewRayTracingKernel(backend Backend, registry *BindingRegistry) (Kernel, error) {
	return backend.CreateKernel(&KernelDescriptor{
		Label:      "Ray Tracing Pipeline",
		Source:     shaders.RayTracingWGSL,
		EntryPoint: "main",
		Layouts:    registry.Layouts(),
	})
}
