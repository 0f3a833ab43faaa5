package query

import (
	"errors"
	"slices"

	"github.com/kubedo8/web-ui/pkg/model"
)

// ErrNoNewLinkType is returned when two queries do not differ by exactly one link type.
var ErrNoNewLinkType = errors.New("no new link type in query")

// IsEmpty reports whether q selects everything on a single unbounded page.
func IsEmpty(q *model.Query) bool {
	n := Normalize(q)
	return IsEmptyExceptPagination(&n) && !n.IsPaginated()
}

// IsEmptyExceptPagination reports whether q has no stems and no fulltexts.
func IsEmptyExceptPagination(q *model.Query) bool {
	n := Normalize(q)
	return len(n.Stems) == 0 && len(n.Fulltexts) == 0
}

// WithoutFilters drops filters, link filters and fulltexts, keeping the
// shape of the stems.
func WithoutFilters(q *model.Query) model.Query {
	n := Normalize(q)
	n.Fulltexts = nil
	for i := range n.Stems {
		n.Stems[i].Filters = nil
		n.Stems[i].LinkFilters = nil
	}
	return n
}

// WithoutLinks reduces every stem to its root collection.
func WithoutLinks(q *model.Query) model.Query {
	n := Normalize(q)
	for i := range n.Stems {
		collectionID := n.Stems[i].CollectionID
		n.Stems[i].LinkTypeIDs = nil
		n.Stems[i].LinkFilters = nil
		n.Stems[i].Filters = slices.DeleteFunc(n.Stems[i].Filters, func(f model.CollectionAttributeFilter) bool {
			return f.CollectionID != collectionID
		})
	}
	return n
}

// BaseCollectionIDs returns the root collection of every stem.
func BaseCollectionIDs(q *model.Query) []string {
	n := Normalize(q)
	ids := make([]string, 0, len(n.Stems))
	for _, stem := range n.Stems {
		ids = append(ids, stem.CollectionID)
	}
	return ids
}

// HasNewLink reports whether newQuery extends the first stem of oldQuery by
// link types while keeping the same roots.
func HasNewLink(oldQuery, newQuery *model.Query) bool {
	oldN, newN := Normalize(oldQuery), Normalize(newQuery)
	if len(oldN.Stems) != len(newN.Stems) || len(newN.Stems) == 0 {
		return false
	}
	if !slices.Equal(BaseCollectionIDs(&oldN), BaseCollectionIDs(&newN)) {
		return false
	}

	oldIDs, newIDs := oldN.Stems[0].LinkTypeIDs, newN.Stems[0].LinkTypeIDs
	return len(newIDs) > len(oldIDs) && isSubset(oldIDs, newIDs)
}

// NewLinkTypeID returns the single link type present in the first stem of
// newQuery but not in that of oldQuery.
func NewLinkTypeID(oldQuery, newQuery *model.Query) (string, error) {
	oldN, newN := Normalize(oldQuery), Normalize(newQuery)
	var oldIDs, newIDs []string
	if len(oldN.Stems) > 0 {
		oldIDs = oldN.Stems[0].LinkTypeIDs
	}
	if len(newN.Stems) > 0 {
		newIDs = newN.Stems[0].LinkTypeIDs
	}

	var added []string
	for _, id := range newIDs {
		if !slices.Contains(oldIDs, id) {
			added = append(added, id)
		}
	}
	if len(added) != 1 {
		return "", ErrNoNewLinkType
	}
	return added[0], nil
}
