package gpu_test

import (
	"encoding/binary"
	"testing"

	"github.com/gekko3d/tesseracts/rt/core"
	"github.com/gekko3d/tesseracts/rt/gpu"
	"github.com/gekko3d/tesseracts/rt/gpu/gputest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneUploader_FirstUploadGrowsMaterials(t *testing.T) {
	be := gputest.New()
	u, err := gpu.NewSceneUploader(be)
	require.NoError(t, err)
	assert.Equal(t, uint64(gpu.MaterialsMinSize), u.Materials.Capacity())
	assert.Equal(t, uint64(gpu.ChunkRecordSize), u.Voxels.Capacity())

	scene := core.DefaultScene()

	// Two materials need 48 bytes, the initial buffer holds one.
	invalidated, err := u.Upload(scene)
	require.NoError(t, err)
	assert.True(t, invalidated)
	assert.Equal(t, uint64(gpu.MaterialsHeaderSize+2*gpu.MaterialStride), u.Materials.Capacity())

	invalidated, err = u.Upload(scene)
	require.NoError(t, err)
	assert.False(t, invalidated)

	voxels := u.Voxels.Buffer().(*gputest.Buffer).Data
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(voxels[8:]))
}

func TestSceneUploader_SingleMaterialNeverReallocates(t *testing.T) {
	be := gputest.New()
	u, err := gpu.NewSceneUploader(be)
	require.NoError(t, err)

	scene := core.NewScene()
	scene.AddMaterial(core.NewMaterial(1, 1, 1))

	for i := 0; i < 3; i++ {
		invalidated, err := u.Upload(scene)
		require.NoError(t, err)
		assert.False(t, invalidated)
	}
}

func TestSceneUploader_GrowingMaterialList(t *testing.T) {
	be := gputest.New()
	u, err := gpu.NewSceneUploader(be)
	require.NoError(t, err)

	scene := core.DefaultScene()
	_, err = u.Upload(scene)
	require.NoError(t, err)

	scene.AddMaterial(core.NewMaterial(0, 0, 1))
	invalidated, err := u.Upload(scene)
	require.NoError(t, err)
	assert.True(t, invalidated)

	scene.Materials = scene.Materials[:1]
	invalidated, err = u.Upload(scene)
	require.NoError(t, err)
	assert.False(t, invalidated)
	assert.Equal(t, uint64(gpu.MaterialsHeaderSize+3*gpu.MaterialStride), u.Materials.Capacity())
}

func TestSceneUploader_EncodingErrorIsFatal(t *testing.T) {
	be := gputest.New()
	u, err := gpu.NewSceneUploader(be)
	require.NoError(t, err)

	_, err = u.Upload(core.NewScene())
	assert.ErrorIs(t, err, gpu.ErrEncoding)
	assert.Empty(t, be.Writes)
}

func TestCameraUniform_Upload(t *testing.T) {
	be := gputest.New()
	cu, err := gpu.NewCameraUniform(be)
	require.NoError(t, err)
	assert.Equal(t, uint64(gpu.CameraRecordSize), cu.Buffer().Size())

	cam := core.NewCamera()
	require.NoError(t, cu.Upload(cam))
	assert.Equal(t, gpu.EncodeCamera(cam), cu.Buffer().(*gputest.Buffer).Data)

	cu.Release()
	assert.Zero(t, be.Live())
}
