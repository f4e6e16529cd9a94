package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlaslearn/atlas/backend/sarvam"
)

func TestAudioCacheKeepsOnlyFixedPhrases(t *testing.T) {
	ctx := context.Background()
	cache := NewAudioCache(t.TempDir(), GreetingPhrase)

	calls := 0
	generate := func() (*sarvam.Speech, error) {
		calls++
		return &sarvam.Speech{Audio: []byte("RIFF-greeting"), MimeType: "audio/wav"}, nil
	}

	speech, err := cache.GetOrGenerate(ctx, GreetingPhrase, "en-US-Neural2-F", generate)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF-greeting"), speech.Audio)

	speech, err = cache.GetOrGenerate(ctx, GreetingPhrase, "en-US-Neural2-F", generate)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF-greeting"), speech.Audio)
	assert.Equal(t, "audio/wav", speech.MimeType)
	assert.Equal(t, 1, calls)

	// A different voice is a different entry.
	_, err = cache.GetOrGenerate(ctx, GreetingPhrase, "hi-IN-Neural2-A", generate)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	for range 2 {
		_, err = cache.GetOrGenerate(ctx, "What is gravity?", "en-US-Neural2-F", generate)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, calls)

	count, size, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(2*len("RIFF-greeting")), size)
}

func TestAudioCacheGenerateError(t *testing.T) {
	cache := NewAudioCache(t.TempDir(), ClarifyPhrase)

	_, err := cache.GetOrGenerate(context.Background(), ClarifyPhrase, "en-US-Neural2-F", func() (*sarvam.Speech, error) {
		return nil, errors.New("tts down")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tts down")

	_, found := cache.Get(context.Background(), ClarifyPhrase, "en-US-Neural2-F")
	assert.False(t, found)
}

func TestAudioCacheSkipsNonWavSpeech(t *testing.T) {
	ctx := context.Background()
	cache := NewAudioCache(t.TempDir(), ClarifyPhrase)

	calls := 0
	generate := func() (*sarvam.Speech, error) {
		calls++
		return &sarvam.Speech{Audio: []byte("ID3-mp3"), MimeType: "audio/mpeg"}, nil
	}

	for range 2 {
		speech, err := cache.GetOrGenerate(ctx, ClarifyPhrase, "en-US-Neural2-F", generate)
		require.NoError(t, err)
		assert.Equal(t, "audio/mpeg", speech.MimeType)
	}
	assert.Equal(t, 2, calls)

	count, _, err := cache.Stats()
	require.NoError(t, err)
	assert.Zero(t, count)
}
