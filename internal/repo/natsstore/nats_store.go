// Package natsstore keeps synthesized audio in a NATS JetStream object store.
package natsstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/steveyiyo/avatar-voice/internal/core/speech"
	"github.com/steveyiyo/avatar-voice/internal/repo"
)

const contentTypeHeader = "Content-Type"

// Store implements the respond pipeline's audio store and the audio handler's
// source on one bucket.
type Store struct {
	bucket  string
	store   nats.ObjectStore
	baseURL string
}

// New creates the bucket, or binds to it when it already exists. A zero ttl
// keeps objects forever.
func New(js nats.JetStreamContext, bucketName, baseURL string, ttl time.Duration) (*Store, error) {
	store, err := js.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Synthesized audio for the %s bucket.", bucketName),
		TTL:         ttl,
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return nil, fmt.Errorf("failed to create object store bucket '%s': %w", bucketName, err)
		}
		store, err = js.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to existing object store bucket '%s': %w", bucketName, err)
		}
	}

	return &Store{bucket: bucketName, store: store, baseURL: baseURL}, nil
}

func (s *Store) Put(ctx context.Context, key string, a *speech.Audio) (string, error) {
	meta := &nats.ObjectMeta{
		Name:    key,
		Headers: nats.Header{},
	}
	if a.ContentType != "" {
		meta.Headers.Set(contentTypeHeader, a.ContentType)
	}
	if _, err := s.store.Put(meta, bytes.NewReader(a.Data), nats.Context(ctx)); err != nil {
		return "", fmt.Errorf("failed to put object '%s' to bucket '%s': %w", key, s.bucket, err)
	}
	return repo.ServedURL(s.baseURL, key), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := s.store.Get(key, nats.Context(ctx))
	if err != nil {
		if errors.Is(err, nats.ErrObjectNotFound) {
			return nil, "", repo.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get object '%s' from bucket '%s': %w", key, s.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()
	if readErr != nil {
		return nil, "", fmt.Errorf("failed to read object '%s': %w", key, readErr)
	}
	if closeErr != nil {
		return nil, "", fmt.Errorf("failed to close object '%s': %w", key, closeErr)
	}

	contentType := ""
	if info, err := obj.Info(); err == nil && info.Headers != nil {
		contentType = info.Headers.Get(contentTypeHeader)
	}
	return data, contentType, nil
}
