package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const hudAtlasSize = 512

// TextVertex matches the vertex layout of the HUD text shader.
type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// TextItem is one block of HUD text. Position is in pixels from the top-left
// corner of the framebuffer.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type GlyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

// TextRenderer rasterises printable ASCII into a single-channel atlas and
// lays out HUD text as screen-space triangles.
type TextRenderer struct {
	AtlasImage *image.Alpha
	Glyphs     map[rune]GlyphInfo
	Face       font.Face
}

// NewHUDTextRenderer uses the Go Mono face bundled with x/image.
func NewHUDTextRenderer(fontSize float64) (*TextRenderer, error) {
	return NewTextRenderer(gomono.TTF, fontSize)
}

func NewTextRenderer(fontBytes []byte, fontSize float64) (*TextRenderer, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, hudAtlasSize, hudAtlasSize))
	glyphs := make(map[rune]GlyphInfo)

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := bounds.Dx(), bounds.Dy()

		if x+w >= hudAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= hudAtlasSize {
			return nil, fmt.Errorf("glyph atlas overflow at %q with size %.0f", r, fontSize)
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, maskp, draw.Src)

		glyphs[r] = GlyphInfo{
			UVMin: [2]float32{float32(x) / hudAtlasSize, float32(y) / hudAtlasSize},
			UVMax: [2]float32{float32(x+w) / hudAtlasSize, float32(y+h) / hudAtlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(adv) / 64.0,
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &TextRenderer{
		AtlasImage: atlas,
		Glyphs:     glyphs,
		Face:       face,
	}, nil
}

// BuildVertices emits two triangles per visible glyph in normalized device
// coordinates for a screenW x screenH framebuffer.
func (tr *TextRenderer) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	if screenW <= 0 || screenH <= 0 {
		return nil
	}
	vertices := make([]TextVertex, 0, len(items)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	metrics := tr.Face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, item := range items {
		startX := item.Position[0]
		penX := startX
		penY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				penX = startX
				penY += lineHeight * item.Scale
				continue
			}
			g, ok := tr.Glyphs[r]
			if !ok {
				continue
			}

			x0 := (penX+g.Off[0]*item.Scale)/sw*2.0 - 1.0
			y0 := 1.0 - (penY+g.Off[1]*item.Scale)/sh*2.0
			x1 := (penX+(g.Off[0]+g.Size[0])*item.Scale)/sw*2.0 - 1.0
			y1 := 1.0 - (penY+(g.Off[1]+g.Size[1])*item.Scale)/sh*2.0

			if g.Size[0] > 0 && g.Size[1] > 0 {
				vertices = append(vertices,
					TextVertex{Pos: [2]float32{x0, y0}, UV: g.UVMin, Color: item.Color},
					TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: item.Color},
					TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: item.Color},
					TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: item.Color},
					TextVertex{Pos: [2]float32{x1, y1}, UV: g.UVMax, Color: item.Color},
					TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: item.Color},
				)
			}

			penX += g.Adv * item.Scale
		}
	}

	return vertices
}

func (tr *TextRenderer) MeasureText(text string, scale float32) (float32, float32) {
	if tr == nil {
		return 0, 0
	}
	lineHeight := float32(tr.Face.Metrics().Height.Ceil())

	maxW, curW := float32(0), float32(0)
	lines := 1
	for _, r := range text {
		if r == '\n' {
			maxW = max(maxW, curW)
			curW = 0
			lines++
			continue
		}
		if g, ok := tr.Glyphs[r]; ok {
			curW += g.Adv * scale
		}
	}
	return max(maxW, curW), lineHeight * scale * float32(lines)
}
