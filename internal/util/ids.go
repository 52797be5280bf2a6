package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const buildIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewBuildID returns a short random identifier for one graph build.
func NewBuildID() string {
	id, err := gonanoid.Generate(buildIDAlphabet, 12)
	if err != nil {
		return gonanoid.Must()
	}
	return id
}
