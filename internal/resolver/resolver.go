// Package resolver maps card names as written in deck lists to catalog
// internal ids.
package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"

	"github.com/antzucaro/matchr"
)

const report_resolver_build = "resolver.build"

type Source interface {
	ListCardNames(ctx context.Context) ([]db.CardName, error)
}

// Resolver is a read-only snapshot of the catalog taken once by Build, cards
// added to the catalog afterwards are not visible until it is rebuilt.
type Resolver struct {
	ids   map[string]int64
	names map[int64]string
}

func Build(ctx context.Context, source Source, tel telemetry.API) (*Resolver, error) {
	assert.NotNil(source)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("resolver", tel)

	rows, err := source.ListCardNames(ctx)
	if err != nil {
		tel.ReportBroken(report_resolver_build, err)
		return nil, fmt.Errorf("load catalog names: %w", err)
	}

	r := &Resolver{
		ids:   make(map[string]int64, len(rows)),
		names: make(map[int64]string, len(rows)),
	}
	for _, row := range rows {
		key := normalize(row.Name)
		if row.InternalID == 0 || key == "" {
			tel.ReportWarning(report_resolver_build, fmt.Errorf("invalid catalog row"), row.InternalID, row.Name)
			continue
		}
		if existing, ok := r.ids[key]; ok {
			tel.ReportWarning(report_resolver_build, fmt.Errorf("duplicate name"), key, existing, row.InternalID)
			continue
		}
		if existing, ok := r.names[row.InternalID]; ok {
			tel.ReportWarning(report_resolver_build, fmt.Errorf("duplicate id"), row.InternalID, existing, key)
			continue
		}
		r.ids[key] = row.InternalID
		r.names[row.InternalID] = key
	}
	return r, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve looks a name up case-insensitively. Unknown names are expected
// (typos, proxies, alternate spellings) and report ok=false.
func (r *Resolver) Resolve(raw string) (int64, bool) {
	id, ok := r.ids[normalize(raw)]
	return id, ok
}

func (r *Resolver) Name(id int64) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

func (r *Resolver) Len() int {
	return len(r.ids)
}

// AllIDs returns every internal id in ascending order, positions in the
// result are stable across runs over the same catalog.
func (r *Resolver) AllIDs() []int64 {
	ids := make([]int64, 0, len(r.names))
	for id := range r.names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Suggest returns the catalog name closest to raw and its similarity.
func (r *Resolver) Suggest(raw string) (string, float64) {
	key := normalize(raw)

	var best string
	var bestScore float64
	for name := range r.ids {
		score := matchr.JaroWinkler(key, name, false)
		if score > bestScore || (score == bestScore && name < best) {
			best = name
			bestScore = score
		}
	}
	return best, bestScore
}
