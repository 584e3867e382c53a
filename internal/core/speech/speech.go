// Package speech defines the synthesis capability the respond pipeline uses.
package speech

import (
	"context"
	"fmt"

	"github.com/steveyiyo/avatar-voice/internal/core/timing"
)

// Audio is the synthesized result.
type Audio struct {
	Data        []byte
	Format      string
	ContentType string
}

// Synthesizer speaks an SSML document. Timing marks are appended to rec
// before SpeakSSML returns.
type Synthesizer interface {
	SpeakSSML(ctx context.Context, ssml string, rec *timing.Recorder) (*Audio, error)
}

// SynthesisError is returned when the vendor finished without audio.
type SynthesisError struct {
	Reason    string
	ErrorCode string
	Details   string
}

func (e *SynthesisError) Error() string {
	msg := fmt.Sprintf("synthesis failed with reason: %s", e.Reason)
	if e.ErrorCode != "" || e.Details != "" {
		msg += fmt.Sprintf(", ErrorCode: %s, Details: %s", e.ErrorCode, e.Details)
	}
	return msg
}
