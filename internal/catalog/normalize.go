// Package catalog turns raw catalog objects into card records and loads
// them into the store.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cardstorm-backend/internal/components/db"
)

var (
	ErrUnsupportedLayout = errors.New("catalog: unsupported layout")
	ErrMissingFaces      = errors.New("catalog: multi-faced layout without two faces")
	ErrMissingField      = errors.New("catalog: required field missing")
)

// FaceSeparator joins the halves of a multi-faced card.
const FaceSeparator = " // "

type Layout string

const (
	LayoutNormal    Layout = "normal"
	LayoutLeveler   Layout = "leveler"
	LayoutSplit     Layout = "split"
	LayoutFlip      Layout = "flip"
	LayoutTransform Layout = "transform"
	LayoutMeld      Layout = "meld"
)

type RawFace struct {
	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost"`
	TypeLine   string   `json:"type_line"`
	OracleText *string  `json:"oracle_text"`
	Power      *string  `json:"power"`
	Toughness  *string  `json:"toughness"`
	Colors     []string `json:"colors"`
}

// RawCard is a catalog object as the API returns it.
type RawCard struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Layout          string            `json:"layout"`
	CMC             float64           `json:"cmc"`
	TypeLine        string            `json:"type_line"`
	OracleText      *string           `json:"oracle_text"`
	ManaCost        string            `json:"mana_cost"`
	Power           *string           `json:"power"`
	Toughness       *string           `json:"toughness"`
	Colors          []string          `json:"colors"`
	ColorIdentity   []string          `json:"color_identity"`
	Legalities      map[string]string `json:"legalities"`
	Set             string            `json:"set"`
	SetName         string            `json:"set_name"`
	CollectorNumber string            `json:"collector_number"`
	CardFaces       []RawFace         `json:"card_faces"`
}

func (r RawCard) primaryFace() Face {
	return Face{
		Name:      r.Name,
		TypeLine:  r.TypeLine,
		RulesText: r.OracleText,
		ManaCost:  r.ManaCost,
		Power:     r.Power,
		Toughness: r.Toughness,
		Colors:    r.Colors,
	}
}

func (f RawFace) face() Face {
	return Face{
		Name:      f.Name,
		TypeLine:  f.TypeLine,
		RulesText: f.OracleText,
		ManaCost:  f.ManaCost,
		Power:     f.Power,
		Toughness: f.Toughness,
		Colors:    f.Colors,
	}
}

// Face is one side of a card, or the whole card for single faced layouts.
type Face struct {
	Name      string
	TypeLine  string
	RulesText *string
	ManaCost  string
	Power     *string
	Toughness *string
	Colors    []string
}

// Printing holds what every layout reads from the top level object.
type Printing struct {
	ManaValue       float64
	ColorIdentity   []string
	Legalities      []string
	SetCode         string
	SetName         string
	CollectorNumber string
	SourceID        string
}

// Variant is one of NormalVariant, SplitVariant, FlipVariant,
// TransformVariant or MeldVariant.
type Variant interface {
	printing() Printing
}

// NormalVariant covers the normal and leveler layouts.
type NormalVariant struct {
	Printing
	Leveler bool
	Card    Face
}

type SplitVariant struct {
	Printing
	Name   string
	Colors []string
	Front  Face
	Back   Face
}

type FlipVariant struct {
	Printing
	Colors []string
	Front  Face
	Back   Face
}

type TransformVariant struct {
	Printing
	Front Face
	Back  Face
}

type MeldVariant struct {
	Printing
	Card Face
}

func (v NormalVariant) printing() Printing    { return v.Printing }
func (v SplitVariant) printing() Printing     { return v.Printing }
func (v FlipVariant) printing() Printing      { return v.Printing }
func (v TransformVariant) printing() Printing { return v.Printing }
func (v MeldVariant) printing() Printing      { return v.Printing }

// Classify sorts a raw object into the variant of its layout, keeping only
// what that layout can produce.
func Classify(raw RawCard) (Variant, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: name of %s", ErrMissingField, raw.ID)
	}

	printing := Printing{
		ManaValue:       raw.CMC,
		ColorIdentity:   raw.ColorIdentity,
		Legalities:      legalFormats(raw.Legalities),
		SetCode:         raw.Set,
		SetName:         raw.SetName,
		CollectorNumber: raw.CollectorNumber,
		SourceID:        raw.ID,
	}

	layout := Layout(raw.Layout)
	switch layout {
	case LayoutNormal, LayoutLeveler:
		return NormalVariant{
			Printing: printing,
			Leveler:  layout == LayoutLeveler,
			Card:     raw.primaryFace(),
		}, nil
	case LayoutMeld:
		return MeldVariant{Printing: printing, Card: raw.primaryFace()}, nil
	case LayoutSplit, LayoutFlip, LayoutTransform:
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedLayout, raw.Layout, raw.Name)
	}

	if len(raw.CardFaces) < 2 {
		return nil, fmt.Errorf("%w: %s has %d", ErrMissingFaces, raw.Name, len(raw.CardFaces))
	}
	front := raw.CardFaces[0].face()
	back := raw.CardFaces[1].face()

	switch layout {
	case LayoutSplit:
		return SplitVariant{
			Printing: printing,
			Name:     raw.Name,
			Colors:   raw.Colors,
			Front:    front,
			Back:     back,
		}, nil
	case LayoutFlip:
		return FlipVariant{
			Printing: printing,
			Colors:   raw.Colors,
			Front:    front,
			Back:     back,
		}, nil
	default:
		return TransformVariant{Printing: printing, Front: front, Back: back}, nil
	}
}

// Card is the canonical catalog record.
type Card struct {
	Name      string
	ManaValue float64
	TypeLine  string
	RulesText *string
	ManaCost  string
	// Power and Toughness are nil both for non-creatures and for creatures
	// the catalog has no value for, the source does not tell them apart.
	Power           *string
	Toughness       *string
	Colors          []string
	ColorIdentity   []string
	Legalities      []string
	SetCode         string
	SetName         string
	CollectorNumber string
	SourceID        string
	// InternalID is assigned by the store, 0 until the card is inserted.
	InternalID int64
	Layout     Layout
}

// Normalize turns a raw catalog object into a Card.
func Normalize(raw RawCard) (Card, error) {
	variant, err := Classify(raw)
	if err != nil {
		return Card{}, err
	}

	p := variant.printing()
	card := Card{
		ManaValue:       p.ManaValue,
		ColorIdentity:   sortedSet(p.ColorIdentity),
		Legalities:      p.Legalities,
		SetCode:         p.SetCode,
		SetName:         p.SetName,
		CollectorNumber: p.CollectorNumber,
		SourceID:        p.SourceID,
	}

	switch v := variant.(type) {
	case NormalVariant:
		card.Layout = LayoutNormal
		if v.Leveler {
			card.Layout = LayoutLeveler
		}
		card.fromFace(v.Card)
	case MeldVariant:
		card.Layout = LayoutMeld
		card.fromFace(v.Card)
	case SplitVariant:
		card.Layout = LayoutSplit
		card.Name = v.Name
		card.joinFaces(v.Front, v.Back)
		card.Colors = sortedSet(v.Colors)
	case FlipVariant:
		card.Layout = LayoutFlip
		card.Name = v.Front.Name
		card.joinFaces(v.Front, v.Back)
		card.Power = v.Front.Power
		card.Toughness = v.Front.Toughness
		card.Colors = sortedSet(v.Colors)
	case TransformVariant:
		card.Layout = LayoutTransform
		card.Name = v.Front.Name
		card.joinFaces(v.Front, v.Back)
		card.Power = v.Front.Power
		card.Toughness = v.Front.Toughness
		card.Colors = sortedSet(append(append([]string{}, v.Front.Colors...), v.Back.Colors...))
	default:
		panic(fmt.Sprintf("unhandled catalog variant %T", variant))
	}

	card.Name = strings.ToLower(card.Name)
	return card, nil
}

func (c *Card) fromFace(f Face) {
	c.Name = f.Name
	c.TypeLine = f.TypeLine
	c.RulesText = f.RulesText
	c.ManaCost = f.ManaCost
	c.Power = f.Power
	c.Toughness = f.Toughness
	c.Colors = sortedSet(f.Colors)
}

// joinFaces fills the fields read from both faces, a face without rules
// text joins as an empty string.
func (c *Card) joinFaces(front, back Face) {
	c.TypeLine = front.TypeLine + FaceSeparator + back.TypeLine
	rules := deref(front.RulesText) + FaceSeparator + deref(back.RulesText)
	c.RulesText = &rules
	c.ManaCost = front.ManaCost + FaceSeparator + back.ManaCost
}

// Params is the card as the store inserts it.
func (c Card) Params() db.InsertCardParams {
	return db.InsertCardParams{
		Name:            c.Name,
		ManaValue:       c.ManaValue,
		TypeLine:        c.TypeLine,
		RulesText:       c.RulesText,
		ManaCost:        c.ManaCost,
		Power:           c.Power,
		Toughness:       c.Toughness,
		Colors:          c.Colors,
		ColorIdentity:   c.ColorIdentity,
		Legalities:      c.Legalities,
		SetCode:         c.SetCode,
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		SourceID:        c.SourceID,
		Layout:          string(c.Layout),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func legalFormats(legalities map[string]string) []string {
	formats := []string{}
	for format, status := range legalities {
		if status == "legal" {
			formats = append(formats, format)
		}
	}
	sort.Strings(formats)
	return formats
}

func sortedSet(values []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
