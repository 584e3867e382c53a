// Package azure implements speech.Synthesizer on the Azure Speech SDK.
package azure

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/rs/zerolog"

	vspeech "github.com/steveyiyo/avatar-voice/internal/core/speech"
	"github.com/steveyiyo/avatar-voice/internal/core/timing"
)

type Synthesizer struct {
	config *speech.SpeechConfig
	log    zerolog.Logger
}

// New builds the process-wide speech config. Synthesizer instances are
// created per call because event handlers are bound to them.
func New(key, region, voice string, log zerolog.Logger) (*Synthesizer, error) {
	cfg, err := speech.NewSpeechConfigFromSubscription(key, region)
	if err != nil {
		return nil, fmt.Errorf("azure speech config: %w", err)
	}
	if err := cfg.SetSpeechSynthesisVoiceName(voice); err != nil {
		cfg.Close()
		return nil, fmt.Errorf("azure voice %q: %w", voice, err)
	}
	return &Synthesizer{config: cfg, log: log.With().Str("component", "azure").Logger()}, nil
}

func (s *Synthesizer) Close() {
	s.config.Close()
}

func (s *Synthesizer) SpeakSSML(ctx context.Context, ssml string, rec *timing.Recorder) (*vspeech.Audio, error) {
	synth, err := speech.NewSpeechSynthesizerFromConfig(s.config, nil)
	if err != nil {
		return nil, fmt.Errorf("azure synthesizer: %w", err)
	}

	synth.VisemeReceived(func(e speech.SpeechSynthesisVisemeEventArgs) {
		defer e.Close()
		rec.Viseme(e.AudioOffset, e.VisemeID)
	})
	synth.WordBoundary(func(e speech.SpeechSynthesisWordBoundaryEventArgs) {
		defer e.Close()
		if !isWord(e.Text) {
			return
		}
		rec.Word(e.AudioOffset, e.Duration, e.Text)
	})
	synth.BookmarkReached(func(e speech.SpeechSynthesisBookmarkEventArgs) {
		defer e.Close()
		rec.Bookmark(e.AudioOffset, e.Text)
	})

	var outcome speech.SpeechSynthesisOutcome
	done := synth.SpeakSsmlAsync(ssml)
	select {
	case outcome = <-done:
		defer synth.Close()
	case <-ctx.Done():
		// the native call keeps running; release it once it reports back
		go func() {
			o := <-done
			if o.Result != nil {
				o.Result.Close()
			}
			synth.Close()
		}()
		return nil, ctx.Err()
	}
	if outcome.Error != nil {
		return nil, fmt.Errorf("azure speak: %w", outcome.Error)
	}
	result := outcome.Result
	defer result.Close()

	s.log.Debug().
		Int("reason", int(result.Reason)).
		Int("bytes", len(result.AudioData)).
		Int("events", rec.Len()).
		Msg("synthesis finished")

	if result.Reason != common.SynthesizingAudioCompleted {
		serr := &vspeech.SynthesisError{Reason: reasonName(result.Reason)}
		if result.Reason == common.Canceled {
			if d, err := speech.NewCancellationDetailsFromSpeechSynthesisResult(result); err == nil {
				serr.ErrorCode = fmt.Sprintf("%d", int(d.ErrorCode))
				serr.Details = d.ErrorDetails
			}
		}
		return nil, serr
	}

	data := make([]byte, len(result.AudioData))
	copy(data, result.AudioData)
	return &vspeech.Audio{Data: data, Format: "wav", ContentType: "audio/wav"}, nil
}

func reasonName(r common.ResultReason) string {
	switch r {
	case common.Canceled:
		return "Canceled"
	case common.SynthesizingAudioCompleted:
		return "SynthesizingAudioCompleted"
	}
	return fmt.Sprintf("%d", int(r))
}

// punctuation boundaries carry no mouth movement
func isWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
