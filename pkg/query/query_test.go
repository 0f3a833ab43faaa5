package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kubedo8/web-ui/pkg/model"
)

var (
	collections = []model.Collection{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	linkTypes   = []model.LinkType{
		{ID: "AB", CollectionIDs: [2]string{"A", "B"}},
		{ID: "BC", CollectionIDs: [2]string{"C", "B"}},
		{ID: "CC", CollectionIDs: [2]string{"C", "C"}},
		{ID: "DD", CollectionIDs: [2]string{"D", "D"}},
	}
)

func eqFilter(collectionID, attributeID string, value any) model.CollectionAttributeFilter {
	return model.CollectionAttributeFilter{
		CollectionID:    collectionID,
		AttributeID:     attributeID,
		Condition:       model.ConditionEquals,
		ConditionValues: []model.ConditionValue{{Value: value}},
	}
}

func TestResourceChainForStem(t *testing.T) {
	chain := ResourceChainForStem(&model.QueryStem{CollectionID: "A", LinkTypeIDs: []string{"AB", "BC", "CC"}}, linkTypes)

	require.True(t, chain.Complete)
	require.Empty(t, chain.Unresolved)
	require.Equal(t, []ResourceRef{
		{ID: "A", Type: model.ResourceTypeCollection, Index: 0},
		{ID: "AB", Type: model.ResourceTypeLinkType, Index: 1},
		{ID: "B", Type: model.ResourceTypeCollection, Index: 2},
		{ID: "BC", Type: model.ResourceTypeLinkType, Index: 3},
		{ID: "C", Type: model.ResourceTypeCollection, Index: 4},
		{ID: "CC", Type: model.ResourceTypeLinkType, Index: 5},
		{ID: "C", Type: model.ResourceTypeCollection, Index: 6},
	}, chain.Resources)
	require.Equal(t, []string{"A", "B", "C", "C"}, chain.CollectionIDs())
	require.Equal(t, []string{"AB", "BC", "CC"}, chain.LinkTypeIDs())
}

func TestResourceChainTruncatesUnresolvedHops(t *testing.T) {
	for _, tc := range []struct {
		name               string
		linkTypeIDs        []string
		expectedCollection []string
		expectedUnresolved []string
	}{
		{name: "link type not touching previous collection", linkTypeIDs: []string{"AB", "DD", "BC"}, expectedCollection: []string{"A", "B"}, expectedUnresolved: []string{"DD", "BC"}},
		{name: "unknown link type", linkTypeIDs: []string{"XX"}, expectedCollection: []string{"A"}, expectedUnresolved: []string{"XX"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chain := ResourceChainForStem(&model.QueryStem{CollectionID: "A", LinkTypeIDs: tc.linkTypeIDs}, linkTypes)
			require.False(t, chain.Complete)
			require.Equal(t, tc.expectedCollection, chain.CollectionIDs())
			require.Equal(t, tc.expectedUnresolved, chain.Unresolved)
		})
	}
}

func TestScope(t *testing.T) {
	q := &model.Query{Stems: []model.QueryStem{
		{CollectionID: "C", LinkTypeIDs: []string{"BC"}},
		{CollectionID: "A", LinkTypeIDs: []string{"AB", "BC"}},
		{CollectionID: "X"},
	}}

	scoped := CollectionsInScope(q, collections, linkTypes)
	ids := make([]string, 0, len(scoped))
	for _, c := range scoped {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"C", "B", "A"}, ids)

	scopedLinks := LinkTypesInScope(q, linkTypes)
	require.Len(t, scopedLinks, 2)
	require.Equal(t, "BC", scopedLinks[0].ID)
	require.Equal(t, "AB", scopedLinks[1].ID)

	require.Len(t, CollectionsInScope(&model.Query{Fulltexts: []string{"x"}}, collections, linkTypes), len(collections))
	require.Len(t, LinkTypesInScope(nil, linkTypes), len(linkTypes))
}

func TestAttributesResourcesOrder(t *testing.T) {
	resources := AttributesResourcesOrder(&model.QueryStem{CollectionID: "A", LinkTypeIDs: []string{"AB", "BC"}}, collections, linkTypes)
	require.Len(t, resources, 5)
	require.Equal(t, "A", resources[0].GetID())
	require.Equal(t, model.ResourceTypeLinkType, resources[1].Type())
	require.Equal(t, "C", resources[4].GetID())

	partial := AttributesResourcesOrder(&model.QueryStem{CollectionID: "A", LinkTypeIDs: []string{"AB", "BC"}}, collections[:2], linkTypes)
	require.Len(t, partial, 3)
}

func TestAreQueriesEqual(t *testing.T) {
	first := &model.Query{
		Stems: []model.QueryStem{
			{CollectionID: "A", LinkTypeIDs: []string{"AB"}, Filters: []model.CollectionAttributeFilter{eqFilter("A", "a1", "x"), eqFilter("B", "b1", "y")}},
			{CollectionID: "C", DocumentIDs: []string{"d1", "d2"}},
		},
		Fulltexts: []string{"foo", "bar"},
	}
	second := &model.Query{
		Stems: []model.QueryStem{
			{CollectionID: "C", DocumentIDs: []string{"d2", "d1"}, Filters: []model.CollectionAttributeFilter{}},
			{CollectionID: "A", LinkTypeIDs: []string{"AB"}, Filters: []model.CollectionAttributeFilter{eqFilter("B", "b1", "y"), eqFilter("A", "a1", "x")}},
		},
		Fulltexts: []string{"bar", "foo", " "},
	}
	require.True(t, AreQueriesEqual(first, second))
	require.Equal(t, Key(first), Key(second))

	paginated := *second
	paginated.PageSize = 20
	require.False(t, AreQueriesEqual(first, &paginated))
	require.NotEqual(t, Key(first), Key(&paginated))

	different := &model.Query{Stems: []model.QueryStem{first.Stems[0], first.Stems[0]}, Fulltexts: first.Fulltexts}
	require.False(t, AreQueriesEqual(first, different))

	repeated := &model.Query{Stems: []model.QueryStem{{CollectionID: "A", LinkTypeIDs: []string{"AB", "AB"}, DocumentIDs: []string{"d1", "d1"}}}}
	single := &model.Query{Stems: []model.QueryStem{{CollectionID: "A", LinkTypeIDs: []string{"AB"}, DocumentIDs: []string{"d1"}}}}
	require.True(t, AreQueriesEqual(repeated, single))
	require.True(t, AreQueriesEqual(single, repeated))
	require.Equal(t, Key(repeated), Key(single))

	require.True(t, AreDataQueriesEqual(&model.DataQuery{Query: *first}, &model.DataQuery{Query: *second}))
	require.False(t, AreDataQueriesEqual(&model.DataQuery{Query: *first}, &model.DataQuery{Query: *second, IncludeSubItems: true}))
}

func TestIsQuerySubset(t *testing.T) {
	whole := &model.Query{Stems: []model.QueryStem{{CollectionID: "A"}}}
	filtered := &model.Query{Stems: []model.QueryStem{{CollectionID: "A", Filters: []model.CollectionAttributeFilter{eqFilter("A", "a1", "x")}}}}
	docs := &model.Query{Stems: []model.QueryStem{{CollectionID: "A", DocumentIDs: []string{"d1"}}}}
	linked := &model.Query{Stems: []model.QueryStem{{CollectionID: "A", LinkTypeIDs: []string{"AB"}}}}
	other := &model.Query{Stems: []model.QueryStem{{CollectionID: "B"}}}
	fulltext := &model.Query{Fulltexts: []string{"foo"}}
	everything := &model.Query{}
	page := &model.Query{Page: 1, PageSize: 10}

	for _, tc := range []struct {
		name     string
		a, b     *model.Query
		expected bool
	}{
		{"reflexive whole", whole, whole, true},
		{"reflexive filtered", filtered, filtered, true},
		{"reflexive linked", linked, linked, true},
		{"reflexive page", page, page, true},
		{"whole covers filtered", filtered, whole, true},
		{"filtered does not cover whole", whole, filtered, false},
		{"whole covers document ids", docs, whole, true},
		{"document ids do not cover whole", whole, docs, false},
		{"different collection", other, whole, false},
		{"different chain", linked, whole, false},
		{"everything covers all", linked, everything, true},
		{"stems do not cover everything", everything, whole, false},
		{"fulltext covers narrower fulltext", &model.Query{Fulltexts: []string{"foo"}, Stems: whole.Stems}, &model.Query{Fulltexts: []string{"foo", "bar"}}, true},
		{"fulltext does not cover unrestricted", whole, fulltext, false},
		{"unpaginated covers page", &model.Query{Stems: whole.Stems, PageSize: 10}, whole, true},
		{"page covers only equal query", whole, &model.Query{Stems: whole.Stems, PageSize: 10}, false},
		{"empty page does not cover everything", everything, page, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, IsQuerySubset(tc.a, tc.b))
		})
	}
}

func TestIsDataQueryLoaded(t *testing.T) {
	loaded := []model.DataQuery{
		{Query: model.Query{Stems: []model.QueryStem{{CollectionID: "A"}}}},
		{Query: model.Query{}, IncludeSubItems: true},
	}
	filtered := model.DataQuery{Query: model.Query{Stems: []model.QueryStem{{CollectionID: "A", Filters: []model.CollectionAttributeFilter{eqFilter("A", "a1", 1)}}}}}

	require.True(t, IsDataQueryLoaded(&filtered, loaded, false))
	require.False(t, IsDataQueryLoaded(&model.DataQuery{Query: model.Query{Stems: []model.QueryStem{{CollectionID: "B"}}}}, loaded, false))
	require.True(t, IsDataQueryLoaded(&model.DataQuery{Query: model.Query{Stems: []model.QueryStem{{CollectionID: "B"}}}, IncludeSubItems: true}, loaded, false))
	require.False(t, IsDataQueryLoaded(&filtered, loaded, true))
	require.False(t, IsDataQueryLoaded(nil, loaded, false))
}

func TestHelpers(t *testing.T) {
	q := &model.Query{
		Stems: []model.QueryStem{{
			CollectionID: "A",
			LinkTypeIDs:  []string{"AB"},
			Filters:      []model.CollectionAttributeFilter{eqFilter("A", "a1", "x"), eqFilter("B", "b1", "y")},
			LinkFilters:  []model.LinkAttributeFilter{{LinkTypeID: "AB", AttributeID: "l1", Condition: model.ConditionNotEmpty}},
		}},
		Fulltexts: []string{"foo"},
	}

	withoutFilters := WithoutFilters(q)
	require.Empty(t, cmp.Diff(model.Query{Stems: []model.QueryStem{{CollectionID: "A", LinkTypeIDs: []string{"AB"}}}}, withoutFilters))
	require.Len(t, q.Stems[0].Filters, 2, "input must not be mutated")

	withoutLinks := WithoutLinks(q)
	require.Empty(t, withoutLinks.Stems[0].LinkTypeIDs)
	require.Empty(t, withoutLinks.Stems[0].LinkFilters)
	require.Equal(t, []model.CollectionAttributeFilter{eqFilter("A", "a1", "x")}, withoutLinks.Stems[0].Filters)

	require.True(t, IsEmpty(&model.Query{Fulltexts: []string{""}}))
	require.False(t, IsEmpty(&model.Query{PageSize: 5}))
	require.True(t, IsEmptyExceptPagination(&model.Query{PageSize: 5}))
	require.False(t, IsEmptyExceptPagination(q))

	oldQuery := &model.Query{Stems: []model.QueryStem{{CollectionID: "A"}}}
	newQuery := &model.Query{Stems: []model.QueryStem{{CollectionID: "A", LinkTypeIDs: []string{"AB"}}}}
	require.True(t, HasNewLink(oldQuery, newQuery))
	require.False(t, HasNewLink(newQuery, oldQuery))
	require.False(t, HasNewLink(oldQuery, &model.Query{Stems: []model.QueryStem{{CollectionID: "B", LinkTypeIDs: []string{"AB"}}}}))

	id, err := NewLinkTypeID(oldQuery, newQuery)
	require.NoError(t, err)
	require.Equal(t, "AB", id)

	_, err = NewLinkTypeID(newQuery, newQuery)
	require.ErrorIs(t, err, ErrNoNewLinkType)
}

func TestDataQueryKey(t *testing.T) {
	q := model.DataQuery{Query: model.Query{Stems: []model.QueryStem{{CollectionID: "A"}}}}
	withSubItems := q
	withSubItems.IncludeSubItems = true

	require.Equal(t, DataQueryKey(&q), DataQueryKey(&model.DataQuery{Query: model.Query{Stems: []model.QueryStem{{CollectionID: "A", Filters: []model.CollectionAttributeFilter{}}}}}))
	require.NotEqual(t, DataQueryKey(&q), DataQueryKey(&withSubItems))
}
