package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/tesseracts/rt/core"
)

// Byte layouts shared with the ray tracing kernel (WGSL host-shareable rules).
//
//	struct Camera {            // uniform, 80 bytes
//	    position: vec4<f32>,   // 0
//	    forward: vec4<f32>,    // 16
//	    right: vec4<f32>,      // 32
//	    up: vec4<f32>,         // 48
//	    fov: f32,              // 64
//	    max_distance: f32,     // 68
//	}                          // padded to 80
//	struct Material { color: vec3<f32> }                    // stride 16
//	struct Materials { count: u32, data: array<Material> }  // data at 16
//	struct Chunk { data: array<Voxel, 256> }                // Voxel = u32
const (
	CameraRecordSize    = 80
	MaterialStride      = 16
	MaterialsHeaderSize = 16
	MaterialsMinSize    = MaterialsHeaderSize + MaterialStride
	VoxelStride         = 4
	ChunkRecordSize     = core.ChunkVolume * VoxelStride
)

// ErrEncoding means a payload cannot meet the kernel's binding contract.
var ErrEncoding = errors.New("gpu: scene encoding")

func putVec4(buf []byte, v [4]float32) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
}

func EncodeCamera(c *core.Camera) []byte {
	buf := make([]byte, CameraRecordSize)
	putVec4(buf[0:], c.Position)
	putVec4(buf[16:], c.Forward)
	putVec4(buf[32:], c.Right)
	putVec4(buf[48:], c.Up)
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(c.FOV))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(c.MaxDistance))
	return buf
}

// EncodeMaterials writes the count header followed by one 16-byte record per
// material. At least one material is required to reach MaterialsMinSize.
func EncodeMaterials(materials []core.Material) ([]byte, error) {
	if len(materials) == 0 {
		return nil, fmt.Errorf("%w: material list is empty, kernel needs at least %d bytes", ErrEncoding, MaterialsMinSize)
	}
	if uint64(len(materials)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d materials overflow the u32 count", ErrEncoding, len(materials))
	}

	buf := make([]byte, MaterialsHeaderSize+len(materials)*MaterialStride)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(materials)))
	for i, m := range materials {
		off := MaterialsHeaderSize + i*MaterialStride
		putVec4(buf[off:], [4]float32{m.Color[0], m.Color[1], m.Color[2], 0})
	}
	return buf, nil
}

func EncodeChunk(c *core.Chunk) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil chunk", ErrEncoding)
	}
	buf := make([]byte, ChunkRecordSize)
	for i, v := range c.Data {
		binary.LittleEndian.PutUint32(buf[i*VoxelStride:], v.Material)
	}
	return buf, nil
}
