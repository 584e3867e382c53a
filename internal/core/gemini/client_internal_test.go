package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestRetriable(t *testing.T) {
	t.Parallel()

	assert.False(t, retriable(nil))
	assert.True(t, retriable(genai.APIError{Code: 429}))
	assert.True(t, retriable(fmt.Errorf("wrapped: %w", genai.APIError{Code: 503})))
	assert.False(t, retriable(genai.APIError{Code: 400}))
	assert.True(t, retriable(errors.New("read tcp: connection reset by peer")))
	assert.False(t, retriable(errors.New("invalid argument")))
}

func TestSleepHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.False(t, sleep(ctx, time.Minute))
	assert.Less(t, time.Since(start), time.Second)

	assert.True(t, sleep(context.Background(), time.Millisecond))
}
