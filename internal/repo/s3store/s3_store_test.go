package s3store

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyiyo/avatar-voice/internal/core/speech"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPutDefaultURL(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{}
	store := NewWithClient(fake, "aidatingapp-audio", "")

	url, err := store.Put(context.Background(), "x.wav", &speech.Audio{Data: []byte("wav"), ContentType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "https://aidatingapp-audio.s3.amazonaws.com/audio/x.wav", url)
	assert.Equal(t, "aidatingapp-audio", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "audio/x.wav", aws.ToString(fake.in.Key))
	assert.Equal(t, "audio/wav", aws.ToString(fake.in.ContentType))
	assert.Equal(t, []byte("wav"), fake.body)
}

func TestPutCustomURLAndError(t *testing.T) {
	t.Parallel()

	store := NewWithClient(&fakeS3{}, "b", "https://cdn.example.com/")
	url, err := store.Put(context.Background(), "y.wav", &speech.Audio{Data: []byte("1")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/audio/y.wav", url)

	boom := errors.New("access denied")
	store = NewWithClient(&fakeS3{err: boom}, "b", "")
	_, err = store.Put(context.Background(), "z.wav", &speech.Audio{Data: []byte("1")})
	require.ErrorIs(t, err, boom)
}
