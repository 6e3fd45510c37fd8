// Package decklist parses the plain text deck lists served by the
// tournament site, one "<count> <name>" line per card.
package decklist

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	sourceSeparator  = " / "
	catalogSeparator = " // "
)

var sideboardMarkers = []string{"sideboard", "sb:"}

type Entry struct {
	Name  string
	Count int
}

// Parse returns the mainboard of a deck list in order. The mainboard ends
// at the first blank line or the first line starting with the sideboard
// marker ("Sideboard", "SB:"). A line without a leading count is kept with
// a count of 1.
func Parse(raw string) []Entry {
	entries := []Entry{}
	if raw == "" {
		return entries
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			break
		}
		if isSideboardMarker(line) {
			break
		}
		entries = append(entries, parseLine(line))
	}
	return entries
}

func isSideboardMarker(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	for _, marker := range sideboardMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

func parseLine(line string) Entry {
	line = strings.TrimSpace(line)

	count := 1
	name := line
	// the count may be separated from the name by any whitespace
	if i := strings.IndexFunc(line, unicode.IsSpace); i > 0 {
		n, err := strconv.Atoi(line[:i])
		if err == nil {
			name = strings.TrimSpace(line[i:])
			if n >= 1 {
				count = n
			}
		}
	}

	return Entry{
		Name:  strings.ReplaceAll(name, sourceSeparator, catalogSeparator),
		Count: count,
	}
}

// LookupKey is the form of a deck list name the catalog is keyed by.
func LookupKey(name string) string {
	name = strings.ReplaceAll(name, sourceSeparator, catalogSeparator)
	return strings.ToLower(strings.TrimSpace(name))
}
