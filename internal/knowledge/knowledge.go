// Package knowledge loads the product knowledge base: a plain text file where
// product descriptions are separated by a dashed delimiter line. The file is
// read wholesale at startup and never mutated afterwards.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode"

	"compass/internal/models"
)

// Separator between product records, as written by cmd/seed.
const Separator = "--------------------------------"

// Load reads the knowledge base file and returns one ProductEntry per record.
// Blank records are skipped. Entry IDs are slugs of each record's first line
// and must be unique.
func Load(path string) ([]models.ProductEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse splits raw knowledge base text into product entries.
func Parse(raw string) ([]models.ProductEntry, error) {
	var entries []models.ProductEntry
	seen := make(map[string]struct{})

	for _, chunk := range strings.Split(raw, Separator) {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		id := Slug(firstLine(text))
		if id == "" {
			return nil, fmt.Errorf("knowledge base entry has no usable title: %q", firstLine(text))
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate knowledge base entry id %q", id)
		}
		seen[id] = struct{}{}
		entries = append(entries, models.ProductEntry{ID: id, Text: text})
	}

	return entries, nil
}

// Fingerprint derives a content hash over all entry texts, in file order.
// The persisted index stores this value; a mismatch at startup forces a rebuild.
func Fingerprint(entries []models.ProductEntry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Slug lowercases s and collapses runs of non-alphanumerics into single dashes.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		} else {
			dash = true
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
