package gpu_test

import (
	"errors"
	"testing"

	"github.com/gekko3d/tesseracts/rt/gpu"
	"github.com/gekko3d/tesseracts/rt/gpu/gputest"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer(t *testing.T, be *gputest.Backend, size uint64) *gpu.GrowableBuffer {
	t.Helper()
	buf, err := gpu.NewGrowableBuffer(be, wgpu.BufferDescriptor{
		Label: "Test Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageStorage,
	})
	require.NoError(t, err)
	return buf
}

func TestGrowableBuffer_AddsCopyDst(t *testing.T) {
	be := gputest.New()
	buf := newTestBuffer(t, be, 16)

	fb := buf.Buffer().(*gputest.Buffer)
	assert.NotZero(t, fb.Desc.Usage&wgpu.BufferUsageCopyDst)
	assert.NotZero(t, fb.Desc.Usage&wgpu.BufferUsageStorage)
}

func TestGrowableBuffer_SetDataLossy(t *testing.T) {
	tests := []struct {
		name        string
		initial     uint64
		first       int
		second      int
		wantRealloc bool
		wantCap     uint64
	}{
		{"shrink stays", 16, 64, 32, false, 64},
		{"same size stays", 16, 64, 64, false, 64},
		{"grow reallocates exactly", 16, 64, 68, true, 68},
		{"empty write keeps capacity", 16, 32, 0, false, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := gputest.New()
			buf := newTestBuffer(t, be, tt.initial)

			_, err := buf.SetDataLossy(make([]byte, tt.first))
			require.NoError(t, err)
			capAfterFirst := buf.Capacity()
			assert.Equal(t, tt.wantRealloc, uint64(tt.second) > capAfterFirst)

			realloc, err := buf.SetDataLossy(make([]byte, tt.second))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRealloc, realloc)
			assert.Equal(t, tt.wantCap, buf.Capacity())
			assert.Equal(t, tt.wantCap, buf.Buffer().Size())
		})
	}
}

func TestGrowableBuffer_ReallocationReplacesBuffer(t *testing.T) {
	be := gputest.New()
	buf := newTestBuffer(t, be, 8)
	old := buf.Buffer()

	realloc, err := buf.SetDataLossy([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	require.NoError(t, err)
	assert.True(t, realloc)

	assert.NotEqual(t, old.ID(), buf.Buffer().ID())
	assert.False(t, be.IsLive(old.ID()))
	assert.Equal(t, 1, be.LiveOf(gputest.KindBuffer))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, buf.Buffer().(*gputest.Buffer).Data)
}

func TestGrowableBuffer_InPlaceWriteKeepsIdentity(t *testing.T) {
	be := gputest.New()
	buf := newTestBuffer(t, be, 8)
	id := buf.Buffer().ID()

	realloc, err := buf.SetDataLossy([]byte{9, 9, 9, 9})
	require.NoError(t, err)
	assert.False(t, realloc)
	assert.Equal(t, id, buf.Buffer().ID())

	data := buf.Buffer().(*gputest.Buffer).Data
	assert.Equal(t, []byte{9, 9, 9, 9, 0, 0, 0, 0}, data)
	require.Len(t, be.Writes, 1)
	assert.Equal(t, uint64(0), be.Writes[0].Offset)
}

func TestGrowableBuffer_FailedGrowKeepsOldBuffer(t *testing.T) {
	be := gputest.New()
	buf := newTestBuffer(t, be, 8)
	old := buf.Buffer()

	boom := errors.New("out of memory")
	be.Fail = gputest.FailOnce(gputest.KindBuffer, "Test Buffer", boom)

	_, err := buf.SetDataLossy(make([]byte, 32))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, old.ID(), buf.Buffer().ID())
	assert.Equal(t, uint64(8), buf.Capacity())
	assert.True(t, be.IsLive(old.ID()))
}

func TestGrowableBuffer_Release(t *testing.T) {
	be := gputest.New()
	buf := newTestBuffer(t, be, 8)
	buf.Release()
	buf.Release()
	assert.Zero(t, be.Live())
	assert.Zero(t, be.DoubleReleases)
}
