package dump

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a dump file and decodes its top-level record array. A file that
// cannot be read or whose top level is not an array of records is a
// structural failure that aborts the whole run.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw dump bytes into records.
func Parse(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("dump is not an array of records: %w", err)
	}
	return records, nil
}

// ClassDef returns the first class-definition record, or nil when the dump
// contains none (a dump holding only inherited behavior is still valid).
func ClassDef(records []Record) *Record {
	for i := range records {
		if records[i].Type == ClassDefType {
			return &records[i]
		}
	}
	return nil
}

// IsClassDump reports whether the records include a class definition.
func IsClassDump(records []Record) bool {
	return ClassDef(records) != nil
}
