package db

// InsertCardParams is one normalized catalog card, the string sets are
// stored as sorted JSON arrays.
type InsertCardParams struct {
	Name            string
	ManaValue       float64
	TypeLine        string
	RulesText       *string
	ManaCost        string
	Power           *string
	Toughness       *string
	Colors          []string
	ColorIdentity   []string
	Legalities      []string
	SetCode         string
	SetName         string
	CollectorNumber string
	SourceID        string
	Layout          string
}

type CardName struct {
	InternalID int64
	Name       string
}

type CardSource struct {
	InternalID int64
	SourceID   string
}

type LayoutCount struct {
	Layout string
	Count  int64
}

// DeckFact is one (event, deck, card) row, CardID is always a resolved
// internal id.
type DeckFact struct {
	EventID int64
	DeckID  int64
	CardID  int64
	RawName string
	Count   int
}

type CardImage struct {
	InternalID  int64
	ContentType string
	Bytes       []byte
	// FetchedAt is a unix timestamp in seconds.
	FetchedAt int64
}
