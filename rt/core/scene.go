package core

import "fmt"

// Scene is everything the kernel reads besides the camera.
type Scene struct {
	Materials []Material
	Chunk     *Chunk
}

func NewScene() *Scene {
	return &Scene{Chunk: NewChunk()}
}

// DefaultScene builds the startup scene: a red and a green material and three
// solid voxels along the X axis of the first row.
func DefaultScene() *Scene {
	s := NewScene()
	s.Materials = []Material{
		NewMaterial(1, 0, 0),
		NewMaterial(0, 1, 0),
	}
	s.Chunk.SetMaterial(0, 0)
	s.Chunk.SetMaterial(2, 1)
	s.Chunk.SetMaterial(4, 1)
	return s
}

// AddMaterial appends m and returns its index.
func (s *Scene) AddMaterial(m Material) uint32 {
	s.Materials = append(s.Materials, m)
	return uint32(len(s.Materials) - 1)
}

// Validate checks that every voxel references an existing material.
func (s *Scene) Validate() error {
	if s.Chunk == nil {
		return fmt.Errorf("scene has no chunk")
	}
	for i, m := range s.Materials {
		if !m.Valid() {
			return fmt.Errorf("material %d color %v outside [0,1]", i, m.Color)
		}
	}
	for i, v := range s.Chunk.Data {
		if !v.IsEmpty() && int(v.Material) >= len(s.Materials) {
			return fmt.Errorf("voxel %d references material %d, only %d defined", i, v.Material, len(s.Materials))
		}
	}
	return nil
}
