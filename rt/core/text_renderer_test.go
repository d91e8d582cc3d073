package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHUDTextRenderer_Atlas(t *testing.T) {
	tr, err := NewHUDTextRenderer(16)
	require.NoError(t, err)

	for r := rune('0'); r <= '9'; r++ {
		_, ok := tr.Glyphs[r]
		assert.True(t, ok, "missing glyph %q", r)
	}
	assert.Equal(t, hudAtlasSize, tr.AtlasImage.Bounds().Dx())
}

func TestHUDTextRenderer_BuildVertices(t *testing.T) {
	tr, err := NewHUDTextRenderer(16)
	require.NoError(t, err)

	items := []TextItem{{Text: "FPS 60", Position: [2]float32{10, 10}, Scale: 1, Color: [4]float32{1, 1, 0, 1}}}
	verts := tr.BuildVertices(items, 800, 600)

	// Five visible glyphs, the space has no quad.
	assert.Len(t, verts, 5*6)
	for _, v := range verts {
		assert.GreaterOrEqual(t, v.Pos[0], float32(-1))
		assert.LessOrEqual(t, v.Pos[0], float32(1))
		assert.GreaterOrEqual(t, v.Pos[1], float32(-1))
		assert.LessOrEqual(t, v.Pos[1], float32(1))
	}

	assert.Nil(t, tr.BuildVertices(items, 0, 600))
}

func TestHUDTextRenderer_MeasureText(t *testing.T) {
	tr, err := NewHUDTextRenderer(16)
	require.NoError(t, err)

	w1, h1 := tr.MeasureText("abc", 1)
	w2, h2 := tr.MeasureText("abc\nabc", 1)
	assert.Greater(t, w1, float32(0))
	assert.InDelta(t, w1, w2, 1e-4)
	assert.InDelta(t, 2*h1, h2, 1e-4)

	// Monospace: every glyph advances the same amount.
	wa, _ := tr.MeasureText("iii", 1)
	wb, _ := tr.MeasureText("WWW", 1)
	assert.InDelta(t, wa, wb, 1e-4)
}
