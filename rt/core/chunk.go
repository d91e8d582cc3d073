package core

import (
	"fmt"
	"math"
)

// ChunkSize is the side length of a chunk along each of the four axes.
const ChunkSize = 4

// ChunkVolume is the number of voxels in a chunk.
const ChunkVolume = ChunkSize * ChunkSize * ChunkSize * ChunkSize

// EmptyMaterial marks a voxel with no material.
const EmptyMaterial uint32 = math.MaxUint32

type Voxel struct {
	Material uint32
}

func EmptyVoxel() Voxel {
	return Voxel{Material: EmptyMaterial}
}

func (v Voxel) IsEmpty() bool {
	return v.Material == EmptyMaterial
}

// Chunk is a dense 4D grid of voxels. X varies fastest, W slowest.
type Chunk struct {
	Data [ChunkVolume]Voxel
}

// NewChunk returns a chunk with every voxel empty.
func NewChunk() *Chunk {
	c := &Chunk{}
	for i := range c.Data {
		c.Data[i] = EmptyVoxel()
	}
	return c
}

// Index maps 4D coordinates to the linear voxel index. Coordinates outside
// [0, ChunkSize) panic.
func Index(x, y, z, w int) int {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize ||
		z < 0 || z >= ChunkSize || w < 0 || w >= ChunkSize {
		panic(fmt.Sprintf("chunk coordinate (%d, %d, %d, %d) out of range", x, y, z, w))
	}
	return x + ChunkSize*(y+ChunkSize*(z+ChunkSize*w))
}

// Coords is the inverse of Index.
func Coords(index int) (x, y, z, w int) {
	if index < 0 || index >= ChunkVolume {
		panic(fmt.Sprintf("chunk index %d out of range", index))
	}
	x = index % ChunkSize
	index /= ChunkSize
	y = index % ChunkSize
	index /= ChunkSize
	z = index % ChunkSize
	w = index / ChunkSize
	return
}

func (c *Chunk) At(x, y, z, w int) Voxel {
	return c.Data[Index(x, y, z, w)]
}

func (c *Chunk) Set(x, y, z, w int, v Voxel) {
	c.Data[Index(x, y, z, w)] = v
}

// SetMaterial stores a material index at a linear voxel index.
func (c *Chunk) SetMaterial(index int, material uint32) {
	c.Data[index].Material = material
}

// SolidCount returns the number of non-empty voxels.
func (c *Chunk) SolidCount() int {
	n := 0
	for _, v := range c.Data {
		if !v.IsEmpty() {
			n++
		}
	}
	return n
}
