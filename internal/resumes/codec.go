package resumes

import (
	"encoding/json"
	"fmt"

	"resume-generator/internal/structuring"
)

// EncodeStructured is the only way structured data is serialized for storage.
func EncodeStructured(r structuring.Resume) ([]byte, error) {
	data, err := json.Marshal(r.Normalize())
	if err != nil {
		return nil, fmt.Errorf("encode structured resume: %w", err)
	}
	return data, nil
}

// DecodeStructured is the inverse of EncodeStructured.
func DecodeStructured(data []byte) (structuring.Resume, error) {
	var r structuring.Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return structuring.Resume{}, fmt.Errorf("decode structured resume: %w", err)
	}
	return r.Normalize(), nil
}
