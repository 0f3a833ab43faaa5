package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kubedo8/web-ui/pkg/model"
)

// Key returns a 64-bit identity of q. Queries that AreQueriesEqual share a key.
func Key(q *model.Query) uint64 {
	n := Normalize(q)

	stems := make([]string, 0, len(n.Stems))
	for _, stem := range n.Stems {
		stems = append(stems, strings.Join([]string{
			stem.CollectionID,
			sortedEncoding(stem.LinkTypeIDs),
			sortedEncoding(stem.DocumentIDs),
			sortedEncoding(stem.Filters),
			sortedEncoding(stem.LinkFilters),
		}, "|"))
	}
	slices.Sort(stems)

	hasher := xxhash.New()
	_, _ = hasher.WriteString(fmt.Sprintf("%d/%d;", n.Page, n.PageSize))
	_, _ = hasher.WriteString(sortedEncoding(n.Fulltexts))
	for _, stem := range stems {
		_, _ = hasher.WriteString(";" + stem)
	}
	return hasher.Sum64()
}

// DataQueryKey extends Key with the sub item option.
func DataQueryKey(q *model.DataQuery) uint64 {
	if q == nil {
		return Key(nil)
	}
	hasher := xxhash.New()
	_, _ = hasher.WriteString(fmt.Sprintf("%d:%t", Key(&q.Query), q.IncludeSubItems))
	return hasher.Sum64()
}

func sortedEncoding[T any](items []T) string {
	encoded := make([]string, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			encoded = append(encoded, fmt.Sprintf("%v", item))
			continue
		}
		encoded = append(encoded, string(b))
	}
	slices.Sort(encoded)
	return strings.Join(slices.Compact(encoded), ",")
}
