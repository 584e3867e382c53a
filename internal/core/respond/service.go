// Package respond runs the message → model → SSML → speech pipeline behind
// POST /api/respond.
package respond

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/steveyiyo/avatar-voice/internal/core/gemini"
	"github.com/steveyiyo/avatar-voice/internal/core/scene"
	"github.com/steveyiyo/avatar-voice/internal/core/speech"
	"github.com/steveyiyo/avatar-voice/internal/core/ssml"
	"github.com/steveyiyo/avatar-voice/internal/core/timing"
	"github.com/steveyiyo/avatar-voice/pkg/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrGeneration = errors.New("generation failed")
	ErrStorage    = errors.New("storage failed")
)

// plain decimals only; ParseFloat also takes NaN, Inf, exponents and hex
var styleDegreePattern = regexp.MustCompile(`^([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

type TextGenerator interface {
	Generate(ctx context.Context, p gemini.Prompt) (string, error)
}

// AudioStore persists a clip under key and returns where clients fetch it.
type AudioStore interface {
	Put(ctx context.Context, key string, a *speech.Audio) (string, error)
}

// styles the Azure neural voices accept in express-as
var styles = map[string]bool{
	"affectionate": true, "angry": true, "assistant": true, "calm": true,
	"chat": true, "cheerful": true, "customerservice": true, "disgruntled": true,
	"embarrassed": true, "empathetic": true, "excited": true, "fearful": true,
	"friendly": true, "gentle": true, "hopeful": true, "lyrical": true,
	"newscast": true, "sad": true, "serious": true, "shouting": true,
	"terrified": true, "unfriendly": true, "whispering": true,
}

type Options struct {
	Voice              string
	Lang               string
	DefaultPersonality string
}

type Service struct {
	gen   TextGenerator
	synth speech.Synthesizer
	store AudioStore
	opts  Options
	log   zerolog.Logger
}

// NewService wires the pipeline. A nil store returns audio inline as base64.
func NewService(gen TextGenerator, synth speech.Synthesizer, store AudioStore, opts Options, log zerolog.Logger) *Service {
	if opts.DefaultPersonality == "" {
		opts.DefaultPersonality = "friendly"
	}
	return &Service{gen: gen, synth: synth, store: store, opts: opts, log: log}
}

// Validate rejects requests the pipeline cannot run.
func Validate(req types.RespondReq) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrBadRequest)
	}
	if req.StyleDegree != "" {
		if !styleDegreePattern.MatchString(req.StyleDegree) {
			return fmt.Errorf("%w: styledegree must be a number in [0.01, 2]", ErrBadRequest)
		}
		d, err := strconv.ParseFloat(req.StyleDegree, 64)
		if err != nil || d < 0.01 || d > 2 {
			return fmt.Errorf("%w: styledegree must be a number in [0.01, 2]", ErrBadRequest)
		}
	}
	return nil
}

func (s *Service) Respond(ctx context.Context, requestID string, req types.RespondReq) (*types.RespondResp, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	log := s.log.With().Str("request_id", requestID).Logger()

	personality := strings.TrimSpace(req.Personality)
	if personality == "" {
		personality = s.opts.DefaultPersonality
	}
	env := ssml.Envelope{
		Voice:       s.opts.Voice,
		Lang:        s.opts.Lang,
		Style:       s.style(personality, log),
		StyleDegree: req.StyleDegree,
	}
	if req.Voice != "" {
		env.Voice = req.Voice
	}

	var doc string
	if req.WantsAiResponse() {
		start := time.Now()
		raw, err := s.gen.Generate(ctx, gemini.Prompt{System: ssmlSystem(personality), User: ssmlUser(req.Message)})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		var fallback bool
		doc, fallback = ssml.Normalize(raw, env)
		if fallback {
			log.Warn().Str("raw", raw).Msg("model markup unparseable, speaking plain text")
		}
		if ssml.Text(doc) == "" {
			return nil, fmt.Errorf("%w: model reply has nothing to speak: %q", ErrGeneration, raw)
		}
		log.Debug().Dur("took", time.Since(start)).Str("ssml", doc).Msg("ssml ready")
	} else {
		doc = ssml.Plain(req.Message, env)
	}

	resp := &types.RespondResp{RequestID: requestID, AiResponse: doc}

	if req.GetScriptContext {
		resp.SplitContext, resp.Style = s.segment(ctx, ssml.Text(doc), log)
	}

	rec := timing.NewRecorder()
	start := time.Now()
	audio, err := s.synth.SpeakSSML(ctx, doc, rec)
	if err != nil {
		return nil, err
	}
	t := timing.Partition(rec.Events())
	resp.PhonemeTimings = t.Phonemes
	resp.WordTimings = t.Words
	resp.BookmarkTimings = t.Bookmarks
	resp.AudioFormat = audio.Format
	log.Info().
		Dur("took", time.Since(start)).
		Int("bytes", len(audio.Data)).
		Int("visemes", len(t.Phonemes)).
		Int("words", len(t.Words)).
		Int("bookmarks", len(t.Bookmarks)).
		Msg("synthesized")

	if s.store == nil {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(audio.Data)
		return resp, nil
	}
	key := uuid.NewString() + "." + audio.Format
	url, err := s.store.Put(ctx, key, audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	resp.AudioURL = url
	return resp, nil
}

func (s *Service) style(personality string, log zerolog.Logger) string {
	p := strings.ToLower(personality)
	if styles[p] {
		return p
	}
	log.Warn().Str("personality", personality).Str("fallback", s.opts.DefaultPersonality).Msg("no express-as style for personality")
	if styles[strings.ToLower(s.opts.DefaultPersonality)] {
		return strings.ToLower(s.opts.DefaultPersonality)
	}
	return ""
}

// segment never fails the request; scene data is optional decoration.
func (s *Service) segment(ctx context.Context, script string, log zerolog.Logger) ([]types.Segment, string) {
	raw, err := s.gen.Generate(ctx, gemini.Prompt{System: sceneInstruction, User: sceneUser(script), JSON: true})
	if err != nil {
		log.Warn().Err(err).Msg("scene segmentation call failed")
		return []types.Segment{}, scene.DefaultStyle
	}
	return scene.Parse(raw)
}
