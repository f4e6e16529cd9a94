package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/atlaslearn/atlas/backend/sarvam"
)

const (
	cachedAudioExt  = ".wav"
	cachedAudioMime = "audio/wav"
)

// AudioCache provides filesystem-based caching of synthesized speech
// for the assistant's fixed phrases.
type AudioCache struct {
	cacheDir string
	phrases  map[string]bool
	mutex    sync.RWMutex
}

// NewAudioCache creates a cache in cacheDir that keeps audio for phrases.
func NewAudioCache(cacheDir string, phrases ...string) *AudioCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		slog.Error("Failed to create cache directory", "dir", cacheDir, "error", err)
	}

	set := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		set[p] = true
	}
	return &AudioCache{cacheDir: cacheDir, phrases: set}
}

// generateCacheKey creates a unique key for caching based on text and voice
func generateCacheKey(text, voice string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", text, voice)))
	return hex.EncodeToString(hash[:])
}

func (ac *AudioCache) cachePath(key string) string {
	return filepath.Join(ac.cacheDir, key+cachedAudioExt)
}

// Cacheable reports whether text is one of the fixed phrases.
func (ac *AudioCache) Cacheable(text string) bool {
	return ac.phrases[text]
}

// Get retrieves cached audio data if it exists
func (ac *AudioCache) Get(ctx context.Context, text, voice string) ([]byte, bool) {
	if !ac.Cacheable(text) {
		return nil, false
	}

	ac.mutex.RLock()
	defer ac.mutex.RUnlock()

	path := ac.cachePath(generateCacheKey(text, voice))
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read cached audio", "path", path, "error", err)
		}
		return nil, false
	}

	slog.Debug("Cache hit for assistant phrase", "voice", voice, "size", len(data))
	return data, true
}

// Set stores audio data in the cache
func (ac *AudioCache) Set(ctx context.Context, text, voice string, audio []byte) error {
	if !ac.Cacheable(text) {
		return nil
	}

	ac.mutex.Lock()
	defer ac.mutex.Unlock()

	path := ac.cachePath(generateCacheKey(text, voice))
	if err := os.WriteFile(path, audio, 0644); err != nil {
		slog.Error("Failed to write audio to cache", "path", path, "error", err)
		return err
	}

	slog.Info("Cached assistant phrase audio", "voice", voice, "size", len(audio))
	return nil
}

// GetOrGenerate returns cached speech or calls generate and caches the
// result. Only WAV audio is cached.
func (ac *AudioCache) GetOrGenerate(ctx context.Context, text, voice string, generate func() (*sarvam.Speech, error)) (*sarvam.Speech, error) {
	if data, found := ac.Get(ctx, text, voice); found {
		return &sarvam.Speech{Audio: data, MimeType: cachedAudioMime}, nil
	}

	speech, err := generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audio: %w", err)
	}

	if speech.MimeType == cachedAudioMime {
		if err := ac.Set(ctx, text, voice, speech.Audio); err != nil {
			slog.Warn("Failed to cache audio", "error", err)
		}
	}
	return speech, nil
}

// Stats returns the number of cached files and their total size.
func (ac *AudioCache) Stats() (int, int64, error) {
	ac.mutex.RLock()
	defer ac.mutex.RUnlock()

	entries, err := os.ReadDir(ac.cacheDir)
	if err != nil {
		return 0, 0, err
	}

	var totalSize int64
	fileCount := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != cachedAudioExt {
			continue
		}
		fileCount++
		if info, err := entry.Info(); err == nil {
			totalSize += info.Size()
		}
	}
	return fileCount, totalSize, nil
}
