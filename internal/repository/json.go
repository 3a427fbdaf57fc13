package repository

import (
	"encoding/json"
	"fmt"
)

// JSON columns hold lists and documents that are always read and written
// whole (meeting times, requirement rules, id lists). They are stored as
// text so the same statements run on MySQL and SQLite.

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(raw []byte, v any, column string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}
