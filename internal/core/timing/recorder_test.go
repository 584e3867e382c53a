package timing_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyiyo/avatar-voice/internal/core/timing"
	"github.com/steveyiyo/avatar-voice/pkg/types"
)

func TestTicksToSeconds(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, timing.TicksToSeconds(10_000_000), 1e-9)
	assert.InDelta(t, 0.05, timing.TicksToSeconds(500_000), 1e-9)
	assert.Zero(t, timing.TicksToSeconds(0))
}

func TestRecorderKeepsArrivalOrder(t *testing.T) {
	t.Parallel()

	rec := timing.NewRecorder()
	rec.Viseme(0, 0)
	rec.Word(1_000_000, 200*time.Millisecond, "Hi")
	rec.Bookmark(1_500_000, "Head-Tilt")
	rec.Viseme(2_000_000, 12)

	events := rec.Events()
	require.Len(t, events, 4)
	assert.Equal(t, timing.KindViseme, events[0].Kind)
	assert.Equal(t, timing.KindWord, events[1].Kind)
	assert.Equal(t, "Hi", events[1].Word)
	assert.InDelta(t, 0.2, events[1].Duration, 1e-9)
	assert.Equal(t, timing.KindBookmark, events[2].Kind)
	assert.Equal(t, "Head-Tilt", events[2].Mark)
	assert.Equal(t, uint(12), events[3].Viseme)
	assert.InDelta(t, 0.2, events[3].Time, 1e-9)
}

func TestRecorderConcurrentAppend(t *testing.T) {
	t.Parallel()

	rec := timing.NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec.Viseme(uint64(i*1000+j), uint(j))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 400, rec.Len())
}

func TestPartitionPhonemesNonDecreasing(t *testing.T) {
	t.Parallel()

	events := []timing.Event{
		{Time: 0.3, Kind: timing.KindViseme, Viseme: 3},
		{Time: 0.1, Kind: timing.KindViseme, Viseme: 1},
		{Time: -0.2, Kind: timing.KindViseme, Viseme: 0},
		{Time: 0.3, Kind: timing.KindViseme, Viseme: 4},
		{Time: 0.5, Kind: timing.KindBookmark, Mark: "Pupils-X"},
	}

	got := timing.Partition(events)
	require.Len(t, got.Phonemes, 4)
	for i, p := range got.Phonemes {
		assert.GreaterOrEqual(t, p.Time, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, p.Time, got.Phonemes[i-1].Time)
		}
	}
	// equal offsets keep arrival order
	assert.Equal(t, uint(3), got.Phonemes[2].Viseme)
	assert.Equal(t, uint(4), got.Phonemes[3].Viseme)
	assert.Equal(t, []types.BookmarkTiming{{Time: 0.5, Mark: "Pupils-X"}}, got.Bookmarks)
	assert.Empty(t, got.Words)
}

func TestPartitionEmptyYieldsNonNilSlices(t *testing.T) {
	t.Parallel()

	got := timing.Partition(nil)
	assert.NotNil(t, got.Phonemes)
	assert.NotNil(t, got.Words)
	assert.NotNil(t, got.Bookmarks)
}

func TestInferWordEndsShiftsAndClampsToLastViseme(t *testing.T) {
	t.Parallel()

	words := []timing.Event{
		{Time: 0.0, Kind: timing.KindWord, Word: "how"},
		{Time: 0.8, Kind: timing.KindWord, Word: "are"},
		{Time: 1.2, Kind: timing.KindWord, Word: "you"},
	}

	got := timing.InferWordEnds(words, 1.6)
	require.Len(t, got, 3)
	ends := []float64{got[0].End, got[1].End, got[2].End}
	assert.InDeltaSlice(t, []float64{0.8, 1.2, 1.6}, ends, 1e-9)
	assert.Equal(t, "you", got[2].Word)
}

func TestInferWordEndsWithoutVisemesUsesDuration(t *testing.T) {
	t.Parallel()

	words := []timing.Event{{Time: 0.4, Kind: timing.KindWord, Word: "ok", Duration: 0.3}}

	got := timing.InferWordEnds(words, -1)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.7, got[0].End, 1e-9)
}

func TestInferWordEndsVisemeBeforeLastWord(t *testing.T) {
	t.Parallel()

	words := []timing.Event{{Time: 2.0, Kind: timing.KindWord, Word: "late"}}

	got := timing.InferWordEnds(words, 1.5)
	assert.InDelta(t, 2.0, got[0].End, 1e-9)
}

func TestPartitionWordsUseLastViseme(t *testing.T) {
	t.Parallel()

	rec := timing.NewRecorder()
	rec.Word(0, 0, "hello")
	rec.Viseme(1_000_000, 5)
	rec.Word(4_000_000, 0, "there")
	rec.Viseme(9_000_000, 0)

	got := timing.Partition(rec.Events())
	require.Len(t, got.Words, 2)
	assert.InDelta(t, 0.4, got.Words[0].End, 1e-9)
	assert.InDelta(t, 0.9, got.Words[1].End, 1e-9)
}
