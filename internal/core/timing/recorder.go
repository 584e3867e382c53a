// Package timing collects the viseme, word and bookmark marks a speech
// vendor reports during synthesis and turns them into response arrays.
package timing

import (
	"sort"
	"sync"
	"time"

	"github.com/steveyiyo/avatar-voice/pkg/types"
)

// TicksPerSecond is the resolution of vendor audio offsets (100ns units).
const TicksPerSecond = 10_000_000

type Kind int

const (
	KindViseme Kind = iota
	KindWord
	KindBookmark
)

func (k Kind) String() string {
	switch k {
	case KindViseme:
		return "viseme"
	case KindWord:
		return "word"
	case KindBookmark:
		return "bookmark"
	}
	return "unknown"
}

// Event is one timing mark. Only the payload field matching Kind is set.
type Event struct {
	Time     float64
	Kind     Kind
	Viseme   uint
	Word     string
	Duration float64
	Mark     string
}

// Recorder is an append-only, request-owned buffer of timing events.
// Synthesizers call it from inside their blocking speak call; the events are
// complete once that call returns.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func TicksToSeconds(ticks uint64) float64 {
	return float64(ticks) / TicksPerSecond
}

func (r *Recorder) Viseme(offsetTicks uint64, id uint) {
	r.add(Event{Time: TicksToSeconds(offsetTicks), Kind: KindViseme, Viseme: id})
}

func (r *Recorder) Word(offsetTicks uint64, dur time.Duration, text string) {
	r.add(Event{Time: TicksToSeconds(offsetTicks), Kind: KindWord, Word: text, Duration: dur.Seconds()})
}

func (r *Recorder) Bookmark(offsetTicks uint64, name string) {
	r.add(Event{Time: TicksToSeconds(offsetTicks), Kind: KindBookmark, Mark: name})
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Events returns a copy of the buffer in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Timings is the partitioned result. Slices are never nil so they encode as
// JSON arrays.
type Timings struct {
	Phonemes  []types.PhonemeTiming
	Words     []types.WordTiming
	Bookmarks []types.BookmarkTiming
}

// Partition splits events by kind. Each sequence is stable-sorted by time, so
// arrival order survives for equal offsets, and negative times become 0.
func Partition(events []Event) Timings {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	for i := range sorted {
		if sorted[i].Time < 0 {
			sorted[i].Time = 0
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	t := Timings{
		Phonemes:  []types.PhonemeTiming{},
		Words:     []types.WordTiming{},
		Bookmarks: []types.BookmarkTiming{},
	}
	var words []Event
	lastViseme := -1.0
	for _, e := range sorted {
		switch e.Kind {
		case KindViseme:
			t.Phonemes = append(t.Phonemes, types.PhonemeTiming{Time: e.Time, Viseme: e.Viseme})
			lastViseme = e.Time
		case KindWord:
			words = append(words, e)
		case KindBookmark:
			t.Bookmarks = append(t.Bookmarks, types.BookmarkTiming{Time: e.Time, Mark: e.Mark})
		}
	}
	t.Words = InferWordEnds(words, lastViseme)
	return t
}

// InferWordEnds derives end times by shifting: a word ends where the next one
// starts. The last word ends at lastViseme (never before its own start); pass
// a negative lastViseme when no visemes arrived, and the vendor-reported
// duration is used instead.
func InferWordEnds(words []Event, lastViseme float64) []types.WordTiming {
	out := make([]types.WordTiming, 0, len(words))
	for i, w := range words {
		wt := types.WordTiming{Word: w.Word, Start: w.Time}
		if i+1 < len(words) {
			wt.End = words[i+1].Time
		} else if lastViseme >= 0 {
			wt.End = max(lastViseme, w.Time)
		} else {
			wt.End = w.Time + w.Duration
		}
		out = append(out, wt)
	}
	return out
}
