package gpu_test

import (
	"testing"

	"github.com/gekko3d/tesseracts/rt/gpu"
	"github.com/gekko3d/tesseracts/rt/gpu/gputest"
	"github.com/gekko3d/tesseracts/rt/shaders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		w, h    uint32
		x, y, z uint32
	}{
		{1, 1, 1, 1, 1},
		{16, 16, 1, 1, 1},
		{17, 16, 2, 1, 1},
		{33, 17, 3, 2, 1},
		{1280, 720, 80, 45, 1},
	}
	for _, tt := range tests {
		x, y, z := gpu.DispatchSize(tt.w, tt.h)
		assert.Equal(t, [3]uint32{tt.x, tt.y, tt.z}, [3]uint32{x, y, z}, "%dx%d", tt.w, tt.h)
	}
}

func TestNewRayTracingKernel(t *testing.T) {
	f := newFixture(t)
	k, err := gpu.NewRayTracingKernel(f.be, f.registry)
	require.NoError(t, err)

	desc := k.(*gputest.Kernel).Desc
	assert.Equal(t, "main", desc.EntryPoint)
	assert.Equal(t, shaders.RayTracingWGSL, desc.Source)
	assert.Len(t, desc.Layouts, 3)
	assert.Contains(t, shaders.RayTracingWGSL, "@workgroup_size(16, 16, 1)")
}
