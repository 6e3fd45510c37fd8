package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DBTX is anything Queries can run on: the pool, a single connection or
// a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

func encodeSet(values []string) (string, error) {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	encoded, err := json.Marshal(sorted)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

const insertCard = `
INSERT INTO cards (
    name, mana_value, type_line, rules_text, mana_cost, power, toughness,
    colors, color_identity, legalities, set_code, set_name, collector_number,
    source_id, layout
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING internal_id`

// InsertCard inserts a card and returns the internal id the store assigned
// to it. A card whose name or source id already exists fails with an
// error wrapping ErrConflict.
func (q *Queries) InsertCard(ctx context.Context, arg InsertCardParams) (int64, error) {
	sets := make([]string, 3)
	for i, values := range [][]string{arg.Colors, arg.ColorIdentity, arg.Legalities} {
		encoded, err := encodeSet(values)
		if err != nil {
			return 0, err
		}
		sets[i] = encoded
	}

	var id int64
	err := q.queryRow(
		ctx, insertCard,
		arg.Name,
		arg.ManaValue,
		arg.TypeLine,
		arg.RulesText,
		arg.ManaCost,
		arg.Power,
		arg.Toughness,
		sets[0],
		sets[1],
		sets[2],
		arg.SetCode,
		arg.SetName,
		arg.CollectorNumber,
		arg.SourceID,
		arg.Layout,
	).Scan(&id)
	if IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return id, err
}

const listCardNames = `SELECT internal_id, name FROM cards ORDER BY internal_id`

func (q *Queries) ListCardNames(ctx context.Context) ([]CardName, error) {
	rows, err := q.query(ctx, listCardNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CardName
	for rows.Next() {
		var i CardName
		if err := rows.Scan(&i.InternalID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listCardSources = `SELECT internal_id, source_id FROM cards ORDER BY internal_id`

func (q *Queries) ListCardSources(ctx context.Context) ([]CardSource, error) {
	rows, err := q.query(ctx, listCardSources)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CardSource
	for rows.Next() {
		var i CardSource
		if err := rows.Scan(&i.InternalID, &i.SourceID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countCards = `SELECT COUNT(*) FROM cards`

func (q *Queries) CountCards(ctx context.Context) (int64, error) {
	var count int64
	err := q.queryRow(ctx, countCards).Scan(&count)
	return count, err
}

const countCardsByLayout = `
SELECT layout, COUNT(*) FROM cards
GROUP BY layout
ORDER BY layout`

func (q *Queries) CountCardsByLayout(ctx context.Context) ([]LayoutCount, error) {
	rows, err := q.query(ctx, countCardsByLayout)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LayoutCount
	for rows.Next() {
		var i LayoutCount
		if err := rows.Scan(&i.Layout, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listIngestedDeckIDs = `SELECT DISTINCT deck_id FROM decks`

func (q *Queries) ListIngestedDeckIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.query(ctx, listIngestedDeckIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

// InsertDeckFacts writes every fact in one multi-row statement and returns
// the number of rows written. An empty slice is a no-op. Any fact that
// already exists fails the whole statement with an error wrapping
// ErrConflict.
func (q *Queries) InsertDeckFacts(ctx context.Context, facts []DeckFact) (int64, error) {
	if len(facts) == 0 {
		return 0, nil
	}

	var query strings.Builder
	query.WriteString("INSERT INTO decks (event_id, deck_id, internal_id, raw_name, count) VALUES ")
	args := make([]any, 0, len(facts)*5)
	for i, f := range facts {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, f.EventID, f.DeckID, f.CardID, f.RawName, f.Count)
	}

	res, err := q.exec(ctx, query.String(), args...)
	if IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countFacts = `SELECT COUNT(*) FROM decks`

func (q *Queries) CountFacts(ctx context.Context) (int64, error) {
	var count int64
	err := q.queryRow(ctx, countFacts).Scan(&count)
	return count, err
}

const countDecks = `SELECT COUNT(DISTINCT deck_id) FROM decks`

func (q *Queries) CountDecks(ctx context.Context) (int64, error) {
	var count int64
	err := q.queryRow(ctx, countDecks).Scan(&count)
	return count, err
}

const listDeckFacts = `
SELECT event_id, deck_id, internal_id, raw_name, count FROM decks
WHERE deck_id = ?
ORDER BY internal_id`

func (q *Queries) ListDeckFacts(ctx context.Context, deckID int64) ([]DeckFact, error) {
	rows, err := q.query(ctx, listDeckFacts, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DeckFact
	for rows.Next() {
		var i DeckFact
		if err := rows.Scan(&i.EventID, &i.DeckID, &i.CardID, &i.RawName, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertCardImage = `
INSERT INTO card_images (internal_id, content_type, bytes, fetched_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (internal_id) DO UPDATE SET
    content_type = excluded.content_type,
    bytes = excluded.bytes,
    fetched_at = excluded.fetched_at`

func (q *Queries) UpsertCardImage(ctx context.Context, arg CardImage) error {
	_, err := q.exec(ctx, upsertCardImage, arg.InternalID, arg.ContentType, arg.Bytes, arg.FetchedAt)
	return err
}

const hasCardImage = `SELECT COUNT(*) FROM card_images WHERE internal_id = ?`

func (q *Queries) HasCardImage(ctx context.Context, internalID int64) (bool, error) {
	var count int64
	err := q.queryRow(ctx, hasCardImage, internalID).Scan(&count)
	return count > 0, err
}

const getCardImage = `
SELECT internal_id, content_type, bytes, fetched_at FROM card_images
WHERE internal_id = ?`

func (q *Queries) GetCardImage(ctx context.Context, internalID int64) (CardImage, error) {
	var i CardImage
	err := q.queryRow(ctx, getCardImage, internalID).Scan(
		&i.InternalID,
		&i.ContentType,
		&i.Bytes,
		&i.FetchedAt,
	)
	return i, err
}
