package pipeline

import (
	"encoding/json"
	"path/filepath"
)

func extOf(path string) string {
	return filepath.Ext(path)
}

// mustMarshalLine re-encodes a JSONL line's already-parsed instance back
// to bytes so it can participate in validation-cache keying the same way
// a whole-file ParsedFile's Content does. Re-marshaling a value this
// package itself just unmarshaled from JSON cannot fail.
func mustMarshalLine(instance any) []byte {
	data, err := json.Marshal(instance)
	if err != nil {
		panic(err)
	}
	return data
}
