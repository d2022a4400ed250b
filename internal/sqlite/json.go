package sqlite

import (
	"encoding/json"
	"fmt"
)

// encodeList marshals a slice to JSON text for storage. A nil slice is
// stored as "[]", never "null", so the empty case round-trips.
func encodeList[T any](list []T) (string, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding list column: %w", err)
	}
	return string(b), nil
}

// decodeList unmarshals a JSON text column back into a slice. Empty or
// null column text yields an empty, non-nil slice.
func decodeList[T any](text string) ([]T, error) {
	list := []T{}
	if text == "" || text == "null" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("decoding list column: %w", err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
