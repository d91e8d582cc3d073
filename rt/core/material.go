package core

import "github.com/go-gl/mathgl/mgl32"

// Material is a flat albedo. Its identity is its index in Scene.Materials.
type Material struct {
	Color mgl32.Vec3
}

func NewMaterial(r, g, b float32) Material {
	return Material{Color: mgl32.Vec3{r, g, b}}
}

// Valid reports whether every color component is within [0, 1].
func (m Material) Valid() bool {
	for _, c := range m.Color {
		if c < 0 || c > 1 {
			return false
		}
	}
	return true
}
