package graph

import (
	"encoding/json"
	"fmt"
)

// ExtractionError records a note whose contribution was dropped from a build.
// It never aborts the build.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{e.Path, e.Err.Error()})
}

// IdentityCollision reports a node id produced more than once during a build.
// The first occurrence was kept; the rest were discarded.
type IdentityCollision struct {
	ID          string   `json:"id"`
	Occurrences int      `json:"occurrences"`
	Sources     []string `json:"sources"`
}
