// Package perspective keeps persisted perspective configurations consistent
// with the current query and schema.
package perspective

import (
	"github.com/kubedo8/web-ui/pkg/model"
)

// QueryAttribute references an attribute of one resource in a stem chain.
// ResourceIndex is the position of the resource within the chain.
type QueryAttribute struct {
	ResourceIndex int                `json:"resourceIndex"`
	AttributeID   string             `json:"attributeId"`
	ResourceID    string             `json:"resourceId"`
	ResourceType  model.ResourceType `json:"resourceType"`
}

// QueryResource references one resource in a stem chain.
type QueryResource struct {
	ResourceIndex int                `json:"resourceIndex"`
	ResourceID    string             `json:"resourceId"`
	ResourceType  model.ResourceType `json:"resourceType"`
}

// StemResourceIDs returns the ids a stem records, root collection first.
func StemResourceIDs(stem *model.QueryStem) []string {
	if stem == nil {
		return nil
	}
	ids := make([]string, 0, len(stem.LinkTypeIDs)+1)
	ids = append(ids, stem.CollectionID)
	return append(ids, stem.LinkTypeIDs...)
}

// BestStemConfigIndex returns the index of the chain sharing the longest
// common prefix or suffix with stemChain. The first chain wins a tie. It
// returns -1 when no chain shares anything with stemChain.
func BestStemConfigIndex(chains [][]string, stemChain []string) int {
	best, bestScore := -1, 0
	for i, chain := range chains {
		if score := max(commonPrefix(chain, stemChain), commonSuffix(chain, stemChain)); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func commonSuffix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// pairStemConfigs assigns each stem the best matching config. A config is
// assigned at most once; stems without a match get nil.
func pairStemConfigs[C any](configs []C, stemOf func(C) *model.QueryStem, stems []model.QueryStem) []*C {
	remaining := make([]C, len(configs))
	copy(remaining, configs)

	paired := make([]*C, len(stems))
	for i := range stems {
		chains := make([][]string, len(remaining))
		for j, config := range remaining {
			chains[j] = StemResourceIDs(stemOf(config))
		}

		idx := BestStemConfigIndex(chains, StemResourceIDs(&stems[i]))
		if idx < 0 {
			continue
		}
		config := remaining[idx]
		paired[i] = &config
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return paired
}

func resourceMatches(resource model.AttributesResource, id string, resourceType model.ResourceType) bool {
	return resource != nil && resource.GetID() == id && resource.Type() == resourceType
}

// CheckOrTransformAttribute validates attr against the resources of a stem
// chain. A reference that still points at its position is kept; one whose
// resource moved is re-indexed; anything else is dropped.
func CheckOrTransformAttribute(attr *QueryAttribute, resources []model.AttributesResource) *QueryAttribute {
	if attr == nil {
		return nil
	}
	valid := func(i int) bool {
		r := resources[i]
		return resourceMatches(r, attr.ResourceID, attr.ResourceType) && model.FindAttribute(r.GetAttributes(), attr.AttributeID) != nil
	}

	if attr.ResourceIndex >= 0 && attr.ResourceIndex < len(resources) && valid(attr.ResourceIndex) {
		kept := *attr
		return &kept
	}
	for i := range resources {
		if valid(i) {
			transformed := *attr
			transformed.ResourceIndex = i
			return &transformed
		}
	}
	return nil
}

// CheckOrTransformResource validates ref the way CheckOrTransformAttribute
// validates attributes.
func CheckOrTransformResource(ref *QueryResource, resources []model.AttributesResource) *QueryResource {
	if ref == nil {
		return nil
	}
	if ref.ResourceIndex >= 0 && ref.ResourceIndex < len(resources) && resourceMatches(resources[ref.ResourceIndex], ref.ResourceID, ref.ResourceType) {
		kept := *ref
		return &kept
	}
	for i, r := range resources {
		if resourceMatches(r, ref.ResourceID, ref.ResourceType) {
			transformed := *ref
			transformed.ResourceIndex = i
			return &transformed
		}
	}
	return nil
}
