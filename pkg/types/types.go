package types

type RespondReq struct {
	Message          string `json:"message"`
	Personality      string `json:"personality"`
	StyleDegree      string `json:"styledegree"`
	Voice            string `json:"voice"`
	GetAiResponse    *bool  `json:"getAiResponse"`
	GetScriptContext bool   `json:"getScriptContext"`
}

// WantsAiResponse reports whether the message goes through the model first.
// Absent means yes.
func (r RespondReq) WantsAiResponse() bool {
	return r.GetAiResponse == nil || *r.GetAiResponse
}

type RespondResp struct {
	RequestID       string           `json:"request_id"`
	AudioBase64     string           `json:"audio_base64,omitempty"`
	AudioURL        string           `json:"audio_url,omitempty"`
	AudioFormat     string           `json:"audio_format"`
	AiResponse      string           `json:"ai_response"`
	PhonemeTimings  []PhonemeTiming  `json:"phoneme_timings"`
	WordTimings     []WordTiming     `json:"word_timings"`
	BookmarkTimings []BookmarkTiming `json:"bookmark_timings"`
	SplitContext    []Segment        `json:"splitContext,omitempty"`
	Style           string           `json:"style,omitempty"`
}

type PhonemeTiming struct {
	Time   float64 `json:"time"`
	Viseme uint    `json:"viseme"`
}

type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type BookmarkTiming struct {
	Time float64 `json:"time"`
	Mark string  `json:"mark"`
}

type Segment struct {
	Text              string `json:"text"`
	VisualDescription string `json:"visual_description,omitempty"`
	StyleModifier     string `json:"style_modifier,omitempty"`
}

type SegmentSet struct {
	Segments         []Segment `json:"segments"`
	ScriptSceneStyle string    `json:"script_scene_style"`
}

type ErrorResp struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StreamFrame is what the websocket endpoint writes back per request.
type StreamFrame struct {
	Type     string       `json:"type"`
	TS       int64        `json:"ts"`
	Response *RespondResp `json:"response,omitempty"`
	Error    *ErrorResp   `json:"error,omitempty"`
}
