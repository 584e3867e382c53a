// Package scene parses the segmentation reply of the second model call.
package scene

import (
	"encoding/json"
	"strings"

	"github.com/steveyiyo/avatar-voice/internal/core/fence"
	"github.com/steveyiyo/avatar-voice/pkg/types"
)

// DefaultStyle is used whenever the reply has no usable style.
const DefaultStyle = "realistic"

// Parse never fails: anything that is not the expected JSON object yields an
// empty segment list and DefaultStyle.
func Parse(raw string) ([]types.Segment, string) {
	var set types.SegmentSet
	if err := json.Unmarshal([]byte(fence.Strip(raw)), &set); err != nil {
		return []types.Segment{}, DefaultStyle
	}
	segs := make([]types.Segment, 0, len(set.Segments))
	for _, s := range set.Segments {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		segs = append(segs, s)
	}
	style := strings.TrimSpace(set.ScriptSceneStyle)
	if style == "" {
		style = DefaultStyle
	}
	return segs, style
}
