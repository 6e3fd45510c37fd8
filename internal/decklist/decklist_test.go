package decklist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []Entry
	}{
		{
			name: "stops at sideboard",
			raw:  "4 Lightning Bolt\r\n2 Counterspell\r\nSideboard\r\n1 Pyroblast",
			expected: []Entry{
				{Name: "Lightning Bolt", Count: 4},
				{Name: "Counterspell", Count: 2},
			},
		},
		{
			name:     "empty",
			raw:      "",
			expected: []Entry{},
		},
		{
			name: "stops at blank line",
			raw:  "4 Tarmogoyf\n\n3 Thoughtseize",
			expected: []Entry{
				{Name: "Tarmogoyf", Count: 4},
			},
		},
		{
			name: "stops at short sideboard marker",
			raw:  "1 Snapcaster Mage\nSB: 2 Surgical Extraction",
			expected: []Entry{
				{Name: "Snapcaster Mage", Count: 1},
			},
		},
		{
			name: "missing count defaults to one",
			raw:  "Lightning Bolt\n3 Fire / Ice",
			expected: []Entry{
				{Name: "Lightning Bolt", Count: 1},
				{Name: "Fire // Ice", Count: 3},
			},
		},
		{
			name: "zero count is kept as one",
			raw:  "0 Island",
			expected: []Entry{
				{Name: "Island", Count: 1},
			},
		},
		{
			name:     "sideboard first",
			raw:      "Sideboard\n1 Pyroblast",
			expected: []Entry{},
		},
		{
			name: "countless names starting with s stay in the mainboard",
			raw:  "Sol Ring\nswamp\n2 Snapcaster Mage\nsideboard\n1 Pyroblast",
			expected: []Entry{
				{Name: "Sol Ring", Count: 1},
				{Name: "swamp", Count: 1},
				{Name: "Snapcaster Mage", Count: 2},
			},
		},
		{
			name: "tab after count",
			raw:  "4\tLightning Bolt\n2 \t Fire / Ice",
			expected: []Entry{
				{Name: "Lightning Bolt", Count: 4},
				{Name: "Fire // Ice", Count: 2},
			},
		},
		{
			name: "trailing newline",
			raw:  "20 Mountain\r\n",
			expected: []Entry{
				{Name: "Mountain", Count: 20},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, Parse(test.raw))
			if diff != "" {
				t.Fatal("unexpected entries", diff)
			}
		})
	}
}

func TestLookupKey(t *testing.T) {
	require.Equal(t, "fire // ice", LookupKey("Fire / Ice"))
	require.Equal(t, "fire // ice", LookupKey("Fire // Ice"))
	require.Equal(t, "lightning bolt", LookupKey(" Lightning Bolt "))

	entries := Parse("2 Fire / Ice")
	require.Len(t, entries, 1)
	require.Equal(t, "fire // ice", LookupKey(entries[0].Name))
}
