package query

import (
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kubedo8/web-ui/pkg/model"
)

var equateEmpty = cmpopts.EquateEmpty()

// Normalize returns a copy of q with blank fulltexts and stems without a
// collection removed, duplicate fulltexts collapsed and pagination cleared
// when no page size is set.
func Normalize(q *model.Query) model.Query {
	if q == nil {
		return model.Query{}
	}

	result := model.Query{Page: q.Page, PageSize: q.PageSize}
	if result.PageSize <= 0 {
		result.Page, result.PageSize = 0, 0
	}
	for _, fulltext := range q.Fulltexts {
		fulltext = strings.TrimSpace(fulltext)
		if fulltext != "" && !slices.Contains(result.Fulltexts, fulltext) {
			result.Fulltexts = append(result.Fulltexts, fulltext)
		}
	}
	for _, stem := range q.Stems {
		if stem.CollectionID == "" {
			continue
		}
		result.Stems = append(result.Stems, NormalizeStem(stem))
	}
	return result
}

// NormalizeStem returns a copy of stem with nil slices for empty parts.
func NormalizeStem(stem model.QueryStem) model.QueryStem {
	return model.QueryStem{
		ID:           stem.ID,
		CollectionID: stem.CollectionID,
		LinkTypeIDs:  nilIfEmpty(stem.LinkTypeIDs),
		DocumentIDs:  nilIfEmpty(stem.DocumentIDs),
		Filters:      nilIfEmpty(stem.Filters),
		LinkFilters:  nilIfEmpty(stem.LinkFilters),
	}
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// sameElements reports whether a and b hold the same set of elements.
// Repeated elements count once.
func sameElements[T any](a, b []T) bool {
	return isSubset(a, b) && isSubset(b, a)
}

// isSubset reports whether every element of sub occurs in super.
func isSubset[T any](sub, super []T) bool {
	for _, x := range sub {
		if !slices.ContainsFunc(super, func(y T) bool { return cmp.Equal(x, y, equateEmpty) }) {
			return false
		}
	}
	return true
}

// AreQueryStemsEqual compares stems ignoring the order of their parts.
func AreQueryStemsEqual(a, b *model.QueryStem) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.CollectionID == b.CollectionID &&
		sameElements(a.Filters, b.Filters) &&
		sameElements(a.LinkFilters, b.LinkFilters) &&
		sameElements(a.DocumentIDs, b.DocumentIDs) &&
		sameElements(a.LinkTypeIDs, b.LinkTypeIDs)
}

// AreQueriesEqual matches stems one to one regardless of order and compares
// fulltexts as sets and pagination exactly.
func AreQueriesEqual(a, b *model.Query) bool {
	first, second := Normalize(a), Normalize(b)
	if first.Page != second.Page || first.PageSize != second.PageSize {
		return false
	}
	if !sameElements(first.Fulltexts, second.Fulltexts) || len(first.Stems) != len(second.Stems) {
		return false
	}

	used := make([]bool, len(second.Stems))
	for i := range first.Stems {
		matched := false
		for j := range second.Stems {
			if !used[j] && AreQueryStemsEqual(&first.Stems[i], &second.Stems[j]) {
				used[j], matched = true, true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// AreDataQueriesEqual additionally requires the same sub item option.
func AreDataQueriesEqual(a, b *model.DataQuery) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IncludeSubItems == b.IncludeSubItems && AreQueriesEqual(&a.Query, &b.Query)
}
