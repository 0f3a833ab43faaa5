package query

import (
	"slices"

	"github.com/kubedo8/web-ui/pkg/model"
)

// IsQuerySubset reports whether every document needed by a is guaranteed to
// be present after loading b.
//
// A paginated b only covers an equal query. An unpaginated b covers a when
// its fulltexts are absent or include all of a's, and each stem of a has a
// stem in b on the same collection and link chain whose filters, link
// filters and document ids are no more restrictive. A b without stems spans
// every collection.
func IsQuerySubset(a, b *model.Query) bool {
	first, second := Normalize(a), Normalize(b)

	if second.IsPaginated() {
		return AreQueriesEqual(&first, &second)
	}

	if len(second.Fulltexts) > 0 {
		if len(first.Fulltexts) == 0 || !isSubset(first.Fulltexts, second.Fulltexts) {
			return false
		}
	}

	if len(second.Stems) == 0 {
		return true
	}
	if len(first.Stems) == 0 {
		return false
	}

	for i := range first.Stems {
		if !slices.ContainsFunc(second.Stems, func(stem model.QueryStem) bool {
			return isStemSubset(&first.Stems[i], &stem)
		}) {
			return false
		}
	}
	return true
}

func isStemSubset(a, b *model.QueryStem) bool {
	if a.CollectionID != b.CollectionID || !slices.Equal(a.LinkTypeIDs, b.LinkTypeIDs) {
		return false
	}
	if !isSubset(b.Filters, a.Filters) || !isSubset(b.LinkFilters, a.LinkFilters) {
		return false
	}
	if len(b.DocumentIDs) == 0 {
		return true
	}
	return len(a.DocumentIDs) > 0 && isSubset(a.DocumentIDs, b.DocumentIDs)
}

// IsDataQueryLoaded reports whether q is covered by any of loaded with the
// same sub item option. Public views always load everything, so only an
// unrestricted loaded query covers them.
func IsDataQueryLoaded(q *model.DataQuery, loaded []model.DataQuery, publicView bool) bool {
	if q == nil {
		return false
	}
	effective := q.Query
	if publicView {
		effective = model.Query{}
	}
	for i := range loaded {
		if loaded[i].IncludeSubItems == q.IncludeSubItems && IsQuerySubset(&effective, &loaded[i].Query) {
			return true
		}
	}
	return false
}
