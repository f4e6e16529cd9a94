package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StringList is stored as a JSON array in SQL columns and as a native
// array in MongoDB documents.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = out
	return nil
}

// ScoreMap holds named scores in the 0..1 range.
type ScoreMap map[string]float64

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ScoreMap) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = ScoreMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ScoreMap", src)
	}
	out := map[string]float64{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode score map: %w", err)
	}
	*m = out
	return nil
}

// MergeTopics returns the union of existing and added topics. Order is
// first appearance; blank entries are dropped.
func MergeTopics(existing, added []string) StringList {
	seen := make(map[string]bool, len(existing)+len(added))
	merged := make(StringList, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}

// NewID returns a new random identifier for any persisted entity.
func NewID() string {
	return uuid.NewString()
}
