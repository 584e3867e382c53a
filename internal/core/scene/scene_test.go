package scene_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyiyo/avatar-voice/internal/core/scene"
	"github.com/steveyiyo/avatar-voice/pkg/types"
)

func TestParseFencedJSON(t *testing.T) {
	t.Parallel()

	raw := "```json\n" + `{
  "segments": [
    {"text": "Hi there!", "visual_description": "girl waving at a cafe", "style_modifier": "warm light"},
    {"text": "How was your day?"},
    {"text": "   "}
  ],
  "script_scene_style": "anime"
}` + "\n```"

	segs, style := scene.Parse(raw)
	require.Len(t, segs, 2)
	assert.Equal(t, types.Segment{Text: "Hi there!", VisualDescription: "girl waving at a cafe", StyleModifier: "warm light"}, segs[0])
	assert.Equal(t, "How was your day?", segs[1].Text)
	assert.Equal(t, "anime", style)
}

func TestParseMalformedDefaults(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not json", `{"segments": [`, "```\n{oops}\n```", `[1,2,3]`} {
		segs, style := scene.Parse(raw)
		assert.NotNil(t, segs, raw)
		assert.Empty(t, segs, raw)
		assert.Equal(t, "realistic", style, raw)
	}
}

func TestParseMissingStyle(t *testing.T) {
	t.Parallel()

	segs, style := scene.Parse(`{"segments":[{"text":"one"}]}`)
	assert.Len(t, segs, 1)
	assert.Equal(t, scene.DefaultStyle, style)
}
