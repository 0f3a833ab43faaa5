package filter

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/kubedo8/web-ui/pkg/constraint"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/permission"
	"github.com/kubedo8/web-ui/pkg/query"
)

// evaluation holds the read-only indexes of one Filter call. It is shared by
// the concurrently evaluated stems.
type evaluation struct {
	in          *Input
	collections map[string]*model.Collection
	linkTypes   map[string]*model.LinkType

	// readable documents by id, and grouped by collection in input order
	documents         map[string]*model.Document
	readableDocuments []*model.Document
	byCollection      map[string][]*model.Document

	// valid link instances of readable link types joining readable documents
	readableLinks []*model.LinkInstance
	linksByType   map[string][]*model.LinkInstance
}

func newEvaluation(in *Input) *evaluation {
	ev := &evaluation{
		in:           in,
		collections:  model.CollectionsByID(in.Collections),
		linkTypes:    model.LinkTypesByID(in.LinkTypes),
		documents:    make(map[string]*model.Document),
		byCollection: make(map[string][]*model.Document),
		linksByType:  make(map[string][]*model.LinkInstance),
	}

	for i := range in.Documents {
		doc := &in.Documents[i]
		if _, ok := ev.collections[doc.CollectionID]; !ok || !ev.readableCollection(doc.CollectionID) {
			continue
		}
		ev.documents[doc.ID] = doc
		ev.readableDocuments = append(ev.readableDocuments, doc)
		ev.byCollection[doc.CollectionID] = append(ev.byCollection[doc.CollectionID], doc)
	}

	allDocuments := model.DocumentsByID(in.Documents)
	for i := range in.LinkInstances {
		li := &in.LinkInstances[i]
		linkType, ok := ev.linkTypes[li.LinkTypeID]
		if !ok || !ev.readableLinkType(li.LinkTypeID) || !IsLinkInstanceValid(li, linkType, allDocuments) {
			continue
		}
		if ev.documents[li.DocumentIDs[0]] == nil || ev.documents[li.DocumentIDs[1]] == nil {
			continue
		}
		ev.readableLinks = append(ev.readableLinks, li)
		ev.linksByType[li.LinkTypeID] = append(ev.linksByType[li.LinkTypeID], li)
	}
	return ev
}

func (ev *evaluation) readableCollection(id string) bool {
	return permission.Allows(ev.in.CollectionsPermissions[id], model.RoleRead, ev.in.WithView)
}

func (ev *evaluation) readableLinkType(id string) bool {
	return permission.Allows(ev.in.LinkTypesPermissions[id], model.RoleRead, ev.in.WithView)
}

type stemResult struct {
	chain           query.Chain
	droppedFilters  int
	documentIDs       []string
	linkedDocumentIDs []string
	linkInstanceIDs   []string
}

// evaluateStem keeps the root documents lying on a path through the whole
// chain of stem whose every hop passes its local filters. Documents at later
// hops and the links of such paths are kept as well.
func (ev *evaluation) evaluateStem(stem *model.QueryStem) stemResult {
	chain := query.ResourceChainForStem(stem, ev.in.LinkTypes)
	result := stemResult{chain: chain}
	if !chain.Complete {
		result.droppedFilters = droppedFilters(stem, chain)
	}

	collectionIDs := chain.CollectionIDs()
	linkTypeIDs := chain.LinkTypeIDs()
	if len(collectionIDs) == 0 {
		return result
	}

	candidates := make([]map[string]bool, len(collectionIDs))
	for k, collectionID := range collectionIDs {
		collection, ok := ev.collections[collectionID]
		if !ok || !ev.readableCollection(collectionID) {
			return result
		}
		filters := collectionFilters(stem, collectionID, k == 0)
		candidates[k] = make(map[string]bool)
		for _, doc := range ev.byCollection[collectionID] {
			if k == 0 && len(stem.DocumentIDs) > 0 && !slices.Contains(stem.DocumentIDs, doc.ID) {
				continue
			}
			if ev.meetsFilters(doc.DataValues, doc.Data, collection.Attributes, filters) {
				candidates[k][doc.ID] = true
			}
		}
	}

	hops := make([][]*model.LinkInstance, len(linkTypeIDs))
	for j, linkTypeID := range linkTypeIDs {
		if !ev.readableLinkType(linkTypeID) {
			return result
		}
		filters := linkFilters(stem, linkTypeID)
		attributes := ev.linkTypes[linkTypeID].Attributes
		for _, li := range ev.linksByType[linkTypeID] {
			if ev.meetsLinkFilters(li, attributes, filters) {
				hops[j] = append(hops[j], li)
			}
		}
	}

	// alive[k] holds hop k documents with a satisfying continuation to the end of the chain
	last := len(collectionIDs) - 1
	alive := make([]map[string]bool, len(collectionIDs))
	alive[last] = candidates[last]
	for k := last - 1; k >= 0; k-- {
		alive[k] = make(map[string]bool)
		for _, li := range hops[k] {
			for side := 0; side < 2; side++ {
				from, to := li.DocumentIDs[side], li.DocumentIDs[1-side]
				if candidates[k][from] && alive[k+1][to] {
					alive[k][from] = true
				}
			}
		}
	}

	reached := alive[0]
	seen := make(map[string]bool)
	appendDocuments := func(dst *[]string, ids map[string]bool) {
		for _, doc := range ev.readableDocuments {
			if ids[doc.ID] && !seen[doc.ID] {
				seen[doc.ID] = true
				*dst = append(*dst, doc.ID)
			}
		}
	}
	appendDocuments(&result.documentIDs, reached)
	for k := 0; k < last; k++ {
		next := make(map[string]bool)
		for _, li := range hops[k] {
			used := false
			for side := 0; side < 2; side++ {
				from, to := li.DocumentIDs[side], li.DocumentIDs[1-side]
				if reached[from] && alive[k+1][to] {
					next[to] = true
					used = true
				}
			}
			if used {
				result.linkInstanceIDs = append(result.linkInstanceIDs, li.ID)
			}
		}
		appendDocuments(&result.linkedDocumentIDs, next)
		reached = next
	}
	return result
}

// collectionFilters returns the filters that apply to a hop on collectionID.
// A collection appearing at several hops gets its filters at every one of
// them. Filters without a collection belong to the root.
func collectionFilters(stem *model.QueryStem, collectionID string, root bool) []model.CollectionAttributeFilter {
	var filters []model.CollectionAttributeFilter
	for _, f := range stem.Filters {
		if f.CollectionID == collectionID || (root && f.CollectionID == "") {
			filters = append(filters, f)
		}
	}
	return filters
}

func linkFilters(stem *model.QueryStem, linkTypeID string) []model.LinkAttributeFilter {
	var filters []model.LinkAttributeFilter
	for _, f := range stem.LinkFilters {
		if f.LinkTypeID == linkTypeID {
			filters = append(filters, f)
		}
	}
	return filters
}

// droppedFilters counts filters referencing resources beyond the resolved chain.
func droppedFilters(stem *model.QueryStem, chain query.Chain) int {
	collectionIDs, linkTypeIDs := chain.CollectionIDs(), chain.LinkTypeIDs()
	dropped := 0
	for _, f := range stem.Filters {
		if f.CollectionID != "" && !slices.Contains(collectionIDs, f.CollectionID) {
			dropped++
		}
	}
	for _, f := range stem.LinkFilters {
		if !slices.Contains(linkTypeIDs, f.LinkTypeID) {
			dropped++
		}
	}
	return dropped
}

// value prefers an already projected data value over recomputing it.
func (ev *evaluation) value(dataValues model.DataValues, data map[string]any, attributes []model.Attribute, attributeID string) constraint.Value {
	if v, ok := dataValues[attributeID].(constraint.Value); ok {
		return v
	}
	return constraint.ForAttribute(model.FindAttribute(attributes, attributeID)).CreateDataValue(data[attributeID], ev.in.ConstraintData)
}

// meetsFilters treats filters without an attribute as met.
func (ev *evaluation) meetsFilters(dataValues model.DataValues, data map[string]any, attributes []model.Attribute, filters []model.CollectionAttributeFilter) bool {
	for _, f := range filters {
		if f.AttributeID == "" {
			continue
		}
		if !ev.value(dataValues, data, attributes, f.AttributeID).MeetsCondition(f.Condition, f.ConditionValues) {
			return false
		}
	}
	return true
}

func (ev *evaluation) meetsLinkFilters(li *model.LinkInstance, attributes []model.Attribute, filters []model.LinkAttributeFilter) bool {
	for _, f := range filters {
		if f.AttributeID == "" {
			continue
		}
		if !ev.value(li.DataValues, li.Data, attributes, f.AttributeID).MeetsCondition(f.Condition, f.ConditionValues) {
			return false
		}
	}
	return true
}

// meetsFulltexts reports whether any attribute value of doc contains any of the terms.
func (ev *evaluation) meetsFulltexts(doc *model.Document, fulltexts []string) bool {
	if doc == nil {
		return false
	}
	var attributes []model.Attribute
	if collection, ok := ev.collections[doc.CollectionID]; ok {
		attributes = collection.Attributes
	}
	for attributeID := range doc.Data {
		if ev.value(doc.DataValues, doc.Data, attributes, attributeID).MeetsFulltexts(fulltexts) {
			return true
		}
	}
	return false
}

// descendants returns the readable documents below any of roots in the parent
// hierarchy, in input order. Each document is visited at most once, so
// cyclic parent references terminate.
func (ev *evaluation) descendants(roots map[string]bool) []string {
	g := simple.NewDirectedGraph()
	nodeIDs := make(map[string]int64, len(ev.readableDocuments))
	for i, doc := range ev.readableDocuments {
		nodeIDs[doc.ID] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for i, doc := range ev.readableDocuments {
		parent, ok := ev.documents[doc.ParentID]
		if !ok || parent.ID == doc.ID || parent.CollectionID != doc.CollectionID {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(nodeIDs[parent.ID]), simple.Node(i)))
	}

	found := make(map[int64]bool)
	bfs := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			found[n.ID()] = true
		},
	}
	for i, doc := range ev.readableDocuments {
		if roots[doc.ID] {
			bfs.Walk(g, simple.Node(i), nil)
		}
	}

	var ids []string
	for i, doc := range ev.readableDocuments {
		if found[int64(i)] && !roots[doc.ID] {
			ids = append(ids, doc.ID)
		}
	}
	return ids
}
