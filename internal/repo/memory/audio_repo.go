package memory

import (
	"context"
	"sync"
	"time"

	"github.com/steveyiyo/avatar-voice/internal/core/speech"
	"github.com/steveyiyo/avatar-voice/internal/repo"
)

type Clip struct {
	Key         string
	Data        []byte
	ContentType string
	CreatedAt   time.Time
}

// AudioRepo keeps synthesized clips in process so /api/audio/:key can serve
// them until they expire.
type AudioRepo struct {
	m       sync.Map
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewAudioRepo(baseURL string, ttl time.Duration) *AudioRepo {
	return &AudioRepo{baseURL: baseURL, ttl: ttl, now: time.Now}
}

func (r *AudioRepo) Put(_ context.Context, key string, a *speech.Audio) (string, error) {
	r.m.Store(key, &Clip{
		Key:         key,
		Data:        a.Data,
		ContentType: a.ContentType,
		CreatedAt:   r.now(),
	})
	return repo.ServedURL(r.baseURL, key), nil
}

func (r *AudioRepo) Get(_ context.Context, key string) ([]byte, string, error) {
	v, ok := r.m.Load(key)
	if !ok {
		return nil, "", repo.ErrNotFound
	}
	c := v.(*Clip)
	if r.expired(c, r.now()) {
		r.m.Delete(key)
		return nil, "", repo.ErrNotFound
	}
	return c.Data, c.ContentType, nil
}

func (r *AudioRepo) expired(c *Clip, now time.Time) bool {
	return r.ttl > 0 && now.Sub(c.CreatedAt) > r.ttl
}

// Sweep drops expired clips and returns how many were removed.
func (r *AudioRepo) Sweep() int {
	now := r.now()
	n := 0
	r.m.Range(func(k, v any) bool {
		if r.expired(v.(*Clip), now) {
			r.m.Delete(k)
			n++
		}
		return true
	})
	return n
}

// Run sweeps every interval until ctx is done.
func (r *AudioRepo) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}
