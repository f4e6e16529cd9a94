package sarvam

import (
	"crypto/sha1"
	"encoding/binary"
	"strings"
)

// pickDeterministic chooses an entry of pool from a hash of key, so the
// same key always gets the same entry.
func pickDeterministic(key string, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	h := sha1.New()
	h.Write([]byte(strings.ToLower(key)))
	sum := h.Sum(nil)
	idx := binary.BigEndian.Uint16(sum) % uint16(len(pool))
	return pool[idx]
}

// VoiceFor returns the TTS voice for a language, English when unsupported.
func VoiceFor(code string) string {
	return Lookup(code).Voice
}
