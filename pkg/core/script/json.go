package script

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalScript serializes the script with the canonical field names.
func MarshalScript(s *StructuredScript) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalScript is the inverse of MarshalScript; the round trip is identity.
func UnmarshalScript(data []byte) (*StructuredScript, error) {
	var s StructuredScript
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode structured script: %w", err)
	}
	return &s, nil
}

// SaveJSON writes the script artifact to path.
func SaveJSON(s *StructuredScript, path string) error {
	data, err := MarshalScript(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadJSON reads a script artifact from path.
func LoadJSON(path string) (*StructuredScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return UnmarshalScript(data)
}
