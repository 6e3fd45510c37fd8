package catalog

import (
	"encoding/json"
	"testing"

	"cardstorm-backend/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func decode(t testing.TB, raw json.RawMessage) RawCard {
	t.Helper()
	var card RawCard
	require.NoError(t, json.Unmarshal(raw, &card))
	return card
}

func ptr(s string) *string {
	return &s
}

func TestNormalizeLayouts(t *testing.T) {
	testCases := []struct {
		name     string
		raw      json.RawMessage
		expected Card
	}{
		{
			name: "normal",
			raw:  testutil.LightningBolt,
			expected: Card{
				Name:            "lightning bolt",
				ManaValue:       1,
				TypeLine:        "Instant",
				RulesText:       ptr("Lightning Bolt deals 3 damage to any target."),
				ManaCost:        "{R}",
				Colors:          []string{"R"},
				ColorIdentity:   []string{"R"},
				Legalities:      []string{"legacy", "modern"},
				SetCode:         "m10",
				SetName:         "Magic 2010",
				CollectorNumber: "146",
				SourceID:        "e3285e6b-3e79-4d7c-bf96-d920f973b80d",
				Layout:          LayoutNormal,
			},
		},
		{
			name: "leveler",
			raw:  testutil.JoragaTreespeaker,
			expected: Card{
				Name:            "joraga treespeaker",
				ManaValue:       1,
				TypeLine:        "Creature — Elf Druid",
				RulesText:       ptr("Level up {1}{G}"),
				ManaCost:        "{G}",
				Power:           ptr("1"),
				Toughness:       ptr("1"),
				Colors:          []string{"G"},
				ColorIdentity:   []string{"G"},
				Legalities:      []string{"modern"},
				SetCode:         "roe",
				SetName:         "Rise of the Eldrazi",
				CollectorNumber: "190",
				SourceID:        "d3e1c4d1-4a4f-4c58-b1b4-3a7a0cd0e0c2",
				Layout:          LayoutLeveler,
			},
		},
		{
			name: "split",
			raw:  testutil.FireIce,
			expected: Card{
				Name:            "fire // ice",
				ManaValue:       4,
				TypeLine:        "Instant // Instant",
				RulesText:       ptr("Fire deals 2 damage divided as you choose among one or two targets. // Tap target permanent.\nDraw a card."),
				ManaCost:        "{1}{R} // {1}{U}",
				Colors:          []string{"R", "U"},
				ColorIdentity:   []string{"R", "U"},
				Legalities:      []string{"legacy", "modern"},
				SetCode:         "mh2",
				SetName:         "Modern Horizons 2",
				CollectorNumber: "290",
				SourceID:        "2a0a9d6f-0a8c-4e8c-9c39-6f4bd6e0d5a1",
				Layout:          LayoutSplit,
			},
		},
		{
			name: "flip",
			raw:  testutil.BushiTenderfoot,
			expected: Card{
				Name:            "bushi tenderfoot",
				ManaValue:       1,
				TypeLine:        "Creature — Human Soldier // Legendary Creature — Human Samurai",
				RulesText:       ptr("When a creature dealt damage by Bushi Tenderfoot this turn dies, flip Bushi Tenderfoot. // Double strike; bushido 2"),
				ManaCost:        "{W} // ",
				Power:           ptr("1"),
				Toughness:       ptr("1"),
				Colors:          []string{"W"},
				ColorIdentity:   []string{"W"},
				Legalities:      []string{"modern"},
				SetCode:         "chk",
				SetName:         "Champions of Kamigawa",
				CollectorNumber: "2",
				SourceID:        "7e3b0e4f-5b0c-4f59-9e4c-2e8c3a3c6b11",
				Layout:          LayoutFlip,
			},
		},
		{
			name: "transform",
			raw:  testutil.DelverOfSecrets,
			expected: Card{
				Name:            "delver of secrets",
				ManaValue:       1,
				TypeLine:        "Creature — Human Wizard // Creature — Human Insect",
				RulesText:       ptr("At the beginning of your upkeep, look at the top card of your library. You may reveal that card. If an instant or sorcery card is revealed this way, transform Delver of Secrets. // "),
				ManaCost:        "{U} // ",
				Power:           ptr("1"),
				Toughness:       ptr("1"),
				Colors:          []string{"U"},
				ColorIdentity:   []string{"U"},
				Legalities:      []string{"legacy", "modern", "pauper"},
				SetCode:         "isd",
				SetName:         "Innistrad",
				CollectorNumber: "51",
				SourceID:        "11bf83bb-c95b-4b4f-9a56-ce7a1816307a",
				Layout:          LayoutTransform,
			},
		},
		{
			name: "meld",
			raw:  testutil.BriselaVoiceOfNightmares,
			expected: Card{
				Name:            "brisela, voice of nightmares",
				ManaValue:       11,
				TypeLine:        "Legendary Creature — Eldrazi Angel",
				RulesText:       ptr("Flying, first strike, vigilance, lifelink\nYour opponents can't cast spells with mana value 3 or less."),
				ManaCost:        "",
				Power:           ptr("9"),
				Toughness:       ptr("10"),
				Colors:          []string{"W"},
				ColorIdentity:   []string{"W"},
				Legalities:      []string{"modern"},
				SetCode:         "emn",
				SetName:         "Eldritch Moon",
				CollectorNumber: "15b",
				SourceID:        "5a7a212e-e0b6-4f12-a95c-173cae023f93",
				Layout:          LayoutMeld,
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			card, err := Normalize(decode(t, test.raw))
			require.NoError(t, err)
			if diff := cmp.Diff(test.expected, card); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestNormalizeNonCreatureHasNoPowerToughness(t *testing.T) {
	for _, raw := range []json.RawMessage{testutil.LightningBolt, testutil.FireIce} {
		card, err := Normalize(decode(t, raw))
		require.NoError(t, err)
		require.Nil(t, card.Power)
		require.Nil(t, card.Toughness)
		require.NotNil(t, card.RulesText)
	}
}

func TestNormalizeTransformColorsUnion(t *testing.T) {
	raw := decode(t, testutil.DelverOfSecrets)
	raw.CardFaces[1].Colors = []string{"B", "U"}

	card, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "U"}, card.Colors)
}

func TestNormalizeMissingRulesTextIsNil(t *testing.T) {
	raw := decode(t, testutil.LightningBolt)
	raw.OracleText = nil

	card, err := Normalize(raw)
	require.NoError(t, err)
	require.Nil(t, card.RulesText)
}

func TestClassify(t *testing.T) {
	variant, err := Classify(decode(t, testutil.FireIce))
	require.NoError(t, err)
	split, ok := variant.(SplitVariant)
	require.True(t, ok)
	require.Equal(t, "Fire", split.Front.Name)
	require.Equal(t, "Ice", split.Back.Name)

	variant, err = Classify(decode(t, testutil.JoragaTreespeaker))
	require.NoError(t, err)
	normal, ok := variant.(NormalVariant)
	require.True(t, ok)
	require.True(t, normal.Leveler)
}

func TestClassifyErrors(t *testing.T) {
	_, err := Classify(decode(t, testutil.GoblinToken))
	require.ErrorIs(t, err, ErrUnsupportedLayout)

	faceless := decode(t, testutil.DelverOfSecrets)
	faceless.CardFaces = faceless.CardFaces[:1]
	_, err = Classify(faceless)
	require.ErrorIs(t, err, ErrMissingFaces)

	nameless := decode(t, testutil.LightningBolt)
	nameless.Name = ""
	_, err = Classify(nameless)
	require.ErrorIs(t, err, ErrMissingField)
}

func TestParams(t *testing.T) {
	card, err := Normalize(decode(t, testutil.Tarmogoyf))
	require.NoError(t, err)

	params := card.Params()
	require.Equal(t, "tarmogoyf", params.Name)
	require.Equal(t, "normal", params.Layout)
	require.Equal(t, "*", *params.Power)
	require.Equal(t, "1+*", *params.Toughness)
	require.Equal(t, []string{"legacy", "modern"}, params.Legalities)
}
