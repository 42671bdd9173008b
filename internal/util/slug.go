// Package util provides small shared helpers.
package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric run.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-safe slug.
// "The Hollow Season" -> "the-hollow-season".
// "Café Noir" -> "cafe-noir".
func Slugify(s string) string {
	// Decompose accented characters, then drop what isn't ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BookID builds a human-readable book ID from the author's handle, the
// title and a creation timestamp: "ada-the-hollow-season-lx3k9z0". The
// timestamp suffix keeps IDs unique when an author reuses a title.
func BookID(handle, title string, createdAt time.Time) string {
	slug := Slugify(handle + " " + title)
	if slug == "" {
		slug = "book"
	}
	return slug + "-" + strconv.FormatInt(createdAt.UnixMilli(), 36)
}
