package shaders

import (
	_ "embed"
)

//go:embed ray_tracing.wgsl
var RayTracingWGSL string

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed text.wgsl
var TextWGSL string
