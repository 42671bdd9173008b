// Package id generates unique identifiers for Inkwell entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. Keeping these in one place means an ID is
// self-describing in logs and database dumps.
const (
	PrefixChapter        = "ch"
	PrefixBookComment    = "bcom"
	PrefixChapterComment = "ccom"
	PrefixFavourite      = "fav"
	PrefixLike           = "like"
	PrefixUser           = "usr"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "ch-V1StGXR8_Z5jdHi6B-myT")
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
