// Package query resolves the resources a query touches and compares queries
// for identity and coverage.
package query

import (
	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/kubedo8/web-ui/pkg/model"
)

// ResourceRef is one element of a stem chain. Index is the position within
// the chain; collections sit at even indexes and link types at odd ones.
type ResourceRef struct {
	ID    string
	Type  model.ResourceType
	Index int
}

// Chain is the alternating collection, link type, collection... sequence a
// stem traverses.
type Chain struct {
	Resources []ResourceRef
	// Complete is false when a link type could not be attached to the
	// running collection and the chain was cut there.
	Complete bool
	// Unresolved lists the link type ids dropped from the end of the stem.
	Unresolved []string
}

// CollectionIDs returns the collection of every hop, root first.
func (c Chain) CollectionIDs() []string {
	ids := make([]string, 0, len(c.Resources)/2+1)
	for _, r := range c.Resources {
		if r.Type == model.ResourceTypeCollection {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// LinkTypeIDs returns the resolved link types in chain order.
func (c Chain) LinkTypeIDs() []string {
	ids := make([]string, 0, len(c.Resources)/2)
	for _, r := range c.Resources {
		if r.Type == model.ResourceTypeLinkType {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// ResourceChainForStem walks stem.LinkTypeIDs from the root collection. Each
// link type must touch the previous collection; its other end becomes the
// next one. The walk stops at the first link type that cannot be attached.
func ResourceChainForStem(stem *model.QueryStem, linkTypes []model.LinkType) Chain {
	if stem == nil || stem.CollectionID == "" {
		return Chain{Complete: len(stemLinkTypeIDs(stem)) == 0, Unresolved: stemLinkTypeIDs(stem)}
	}

	byID := model.LinkTypesByID(linkTypes)
	chain := Chain{
		Resources: []ResourceRef{{ID: stem.CollectionID, Type: model.ResourceTypeCollection, Index: 0}},
		Complete:  true,
	}
	current := stem.CollectionID
	for i, linkTypeID := range stem.LinkTypeIDs {
		linkType, ok := byID[linkTypeID]
		var next string
		if ok {
			next, ok = linkType.OtherCollectionID(current)
		}
		if !ok {
			chain.Complete = false
			chain.Unresolved = append([]string(nil), stem.LinkTypeIDs[i:]...)
			break
		}
		chain.Resources = append(chain.Resources,
			ResourceRef{ID: linkTypeID, Type: model.ResourceTypeLinkType, Index: len(chain.Resources)},
			ResourceRef{ID: next, Type: model.ResourceTypeCollection, Index: len(chain.Resources) + 1},
		)
		current = next
	}
	return chain
}

func stemLinkTypeIDs(stem *model.QueryStem) []string {
	if stem == nil {
		return nil
	}
	return stem.LinkTypeIDs
}

// CollectionIDsChainForStem returns the collections visited by stem in order.
func CollectionIDsChainForStem(stem *model.QueryStem, linkTypes []model.LinkType) []string {
	return ResourceChainForStem(stem, linkTypes).CollectionIDs()
}

// CollectionsInScope returns the collections reached by any stem of q,
// ordered by first appearance. A query without stems spans every collection.
func CollectionsInScope(q *model.Query, collections []model.Collection, linkTypes []model.LinkType) []model.Collection {
	if q == nil || len(q.Stems) == 0 {
		return collections
	}

	ids := linkedhashset.New()
	for i := range q.Stems {
		for _, id := range CollectionIDsChainForStem(&q.Stems[i], linkTypes) {
			ids.Add(id)
		}
	}

	byID := model.CollectionsByID(collections)
	result := make([]model.Collection, 0, ids.Size())
	for _, id := range ids.Values() {
		if collection, ok := byID[id.(string)]; ok {
			result = append(result, *collection)
		}
	}
	return result
}

// LinkTypesInScope returns the link types resolved by any stem of q, ordered
// by first appearance. A query without stems spans every link type.
func LinkTypesInScope(q *model.Query, linkTypes []model.LinkType) []model.LinkType {
	if q == nil || len(q.Stems) == 0 {
		return linkTypes
	}

	ids := linkedhashset.New()
	for i := range q.Stems {
		for _, id := range ResourceChainForStem(&q.Stems[i], linkTypes).LinkTypeIDs() {
			ids.Add(id)
		}
	}

	byID := model.LinkTypesByID(linkTypes)
	result := make([]model.LinkType, 0, ids.Size())
	for _, id := range ids.Values() {
		result = append(result, *byID[id.(string)])
	}
	return result
}

// AttributesResourcesOrder returns the resources of the stem chain in order,
// skipping collections that are not part of the universe.
func AttributesResourcesOrder(stem *model.QueryStem, collections []model.Collection, linkTypes []model.LinkType) []model.AttributesResource {
	chain := ResourceChainForStem(stem, linkTypes)
	collectionsByID := model.CollectionsByID(collections)
	linkTypesByID := model.LinkTypesByID(linkTypes)

	resources := make([]model.AttributesResource, 0, len(chain.Resources))
	for _, ref := range chain.Resources {
		switch ref.Type {
		case model.ResourceTypeCollection:
			if collection, ok := collectionsByID[ref.ID]; ok {
				resources = append(resources, collection)
				continue
			}
			// drop the link type leading to the missing collection as well
			return resources[:max(ref.Index-1, 0)]
		case model.ResourceTypeLinkType:
			resources = append(resources, linkTypesByID[ref.ID])
		}
	}
	return resources
}
