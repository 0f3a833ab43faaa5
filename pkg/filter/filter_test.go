package filter

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
)

var (
	readable = model.AllowedPermissions{Read: true}
	base     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func documentIDs(docs []model.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}

func linkIDs(links []model.LinkInstance) []string {
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	return ids
}

// tasksAndPeople is the Tasks <-Assignee-> People schema.
func tasksAndPeople() Input {
	return Input{
		Collections: []model.Collection{
			{ID: "Tasks", Attributes: []model.Attribute{{ID: "title", Name: "Title"}, {ID: "status", Name: "Status"}}},
			{ID: "People", Attributes: []model.Attribute{{ID: "name", Name: "Name"}}},
		},
		LinkTypes: []model.LinkType{
			{ID: "Assignee", CollectionIDs: [2]string{"Tasks", "People"}},
		},
		Documents: []model.Document{
			{ID: "t1", CollectionID: "Tasks", Data: map[string]any{"status": "open"}, CreationDate: at(1)},
			{ID: "t2", CollectionID: "Tasks", Data: map[string]any{"status": "done"}, CreationDate: at(2)},
			{ID: "p1", CollectionID: "People", Data: map[string]any{"name": "Alice"}, CreationDate: at(0)},
		},
		LinkInstances: []model.LinkInstance{
			{ID: "l1", LinkTypeID: "Assignee", DocumentIDs: [2]string{"t1", "p1"}, CreationDate: at(3)},
		},
		Query: &model.Query{Stems: []model.QueryStem{{
			CollectionID: "Tasks",
			LinkTypeIDs:  []string{"Assignee"},
			Filters: []model.CollectionAttributeFilter{{
				CollectionID:    "People",
				AttributeID:     "name",
				Condition:       model.ConditionEquals,
				ConditionValues: []model.ConditionValue{{Value: "Alice"}},
			}},
		}}},
		CollectionsPermissions: map[string]model.AllowedPermissions{"Tasks": readable, "People": readable},
		LinkTypesPermissions:   map[string]model.AllowedPermissions{"Assignee": readable},
	}
}

// chainABC has collections A, B, C with link types AB and BC.
//
//	a1 - b1 - c1(ok)
//	a2 - b2 - c2(ko)
//	a3 - b3
//	a4
func chainABC() Input {
	return Input{
		Collections: []model.Collection{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		LinkTypes: []model.LinkType{
			{ID: "AB", CollectionIDs: [2]string{"A", "B"}},
			{ID: "BC", CollectionIDs: [2]string{"B", "C"}},
		},
		Documents: []model.Document{
			{ID: "a1", CollectionID: "A", Data: map[string]any{"x": "same"}, CreationDate: at(1)},
			{ID: "a2", CollectionID: "A", Data: map[string]any{"x": "same"}, CreationDate: at(2)},
			{ID: "a3", CollectionID: "A", Data: map[string]any{"x": "same"}, CreationDate: at(3)},
			{ID: "a4", CollectionID: "A", Data: map[string]any{"x": "same"}, CreationDate: at(4)},
			{ID: "b1", CollectionID: "B", CreationDate: at(5)},
			{ID: "b2", CollectionID: "B", CreationDate: at(6)},
			{ID: "b3", CollectionID: "B", CreationDate: at(7)},
			{ID: "c1", CollectionID: "C", Data: map[string]any{"state": "ok"}, CreationDate: at(8)},
			{ID: "c2", CollectionID: "C", Data: map[string]any{"state": "ko"}, CreationDate: at(9)},
		},
		LinkInstances: []model.LinkInstance{
			{ID: "ab1", LinkTypeID: "AB", DocumentIDs: [2]string{"a1", "b1"}},
			{ID: "ab2", LinkTypeID: "AB", DocumentIDs: [2]string{"a2", "b2"}},
			{ID: "ab3", LinkTypeID: "AB", DocumentIDs: [2]string{"a3", "b3"}},
			{ID: "bc1", LinkTypeID: "BC", DocumentIDs: [2]string{"b1", "c1"}},
			{ID: "bc2", LinkTypeID: "BC", DocumentIDs: [2]string{"b2", "c2"}},
		},
		Query: &model.Query{Stems: []model.QueryStem{{
			CollectionID: "A",
			LinkTypeIDs:  []string{"AB", "BC"},
			Filters: []model.CollectionAttributeFilter{
				{CollectionID: "A", AttributeID: "x", Condition: model.ConditionEquals, ConditionValues: []model.ConditionValue{{Value: "same"}}},
				{CollectionID: "C", AttributeID: "state", Condition: model.ConditionEquals, ConditionValues: []model.ConditionValue{{Value: "ok"}}},
			},
		}}},
		CollectionsPermissions: map[string]model.AllowedPermissions{"A": readable, "B": readable, "C": readable},
		LinkTypesPermissions:   map[string]model.AllowedPermissions{"AB": readable, "BC": readable},
	}
}

func TestFilter(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	engine := NewEngine()
	ctx := context.Background()

	t.Run("linked_filter_keeps_only_connected_documents", func(t *testing.T) {
		result := engine.Filter(ctx, tasksAndPeople())

		require.Equal(t, []string{"t1"}, documentIDs(result.Documents))
		require.Equal(t, []string{"p1"}, documentIDs(result.LinkedDocuments))
		require.Equal(t, []string{"l1"}, linkIDs(result.LinkInstances))
		require.Equal(t, 0, result.StemIndex["t1"])
		require.Empty(t, result.IncompleteStems)
	})

	t.Run("unreadable_hop_breaks_the_chain", func(t *testing.T) {
		in := tasksAndPeople()
		in.CollectionsPermissions["People"] = model.AllowedPermissions{}

		result := engine.Filter(ctx, in)
		require.Empty(t, result.Documents)
		require.Empty(t, result.LinkInstances)
	})

	t.Run("unreadable_link_type_breaks_the_chain", func(t *testing.T) {
		in := tasksAndPeople()
		in.LinkTypesPermissions = nil

		result := engine.Filter(ctx, in)
		require.Empty(t, result.Documents)
	})

	t.Run("chain_connectivity", func(t *testing.T) {
		result := engine.Filter(ctx, chainABC())

		require.Equal(t, []string{"a1"}, documentIDs(result.Documents))
		require.Equal(t, []string{"b1", "c1"}, documentIDs(result.LinkedDocuments))
		require.Equal(t, []string{"ab1", "bc1"}, linkIDs(result.LinkInstances))
	})

	t.Run("chain_without_filters_still_requires_paths", func(t *testing.T) {
		in := chainABC()
		in.Query = &model.Query{Stems: []model.QueryStem{{CollectionID: "A", LinkTypeIDs: []string{"AB"}}}}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"a1", "a2", "a3"}, documentIDs(result.Documents))
		require.Equal(t, []string{"b1", "b2", "b3"}, documentIDs(result.LinkedDocuments))
	})

	t.Run("root_document_is_not_repeated_as_linked", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query = &model.Query{Stems: []model.QueryStem{
			{CollectionID: "Tasks", LinkTypeIDs: []string{"Assignee"}},
			{CollectionID: "People"},
		}}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"p1", "t1"}, documentIDs(result.Documents))
		require.Empty(t, result.LinkedDocuments)
		require.Equal(t, []string{"l1"}, linkIDs(result.LinkInstances))
	})

	t.Run("idempotent", func(t *testing.T) {
		in := chainABC()
		first := engine.Filter(ctx, in)
		second := engine.Filter(ctx, in)

		require.Empty(t, cmp.Diff(first, second))
		require.Empty(t, cmp.Diff(chainABC(), in))
	})

	t.Run("document_ids_restrict_the_root", func(t *testing.T) {
		in := chainABC()
		in.Query = &model.Query{Stems: []model.QueryStem{{CollectionID: "A", DocumentIDs: []string{"a2", "a4"}}}}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"a2", "a4"}, documentIDs(result.Documents))
	})

	t.Run("link_filters", func(t *testing.T) {
		in := tasksAndPeople()
		in.LinkInstances[0].Data = map[string]any{"role": "owner"}
		in.Query.Stems[0].LinkFilters = []model.LinkAttributeFilter{{
			LinkTypeID:      "Assignee",
			AttributeID:     "role",
			Condition:       model.ConditionEquals,
			ConditionValues: []model.ConditionValue{{Value: "reviewer"}},
		}}

		require.Empty(t, engine.Filter(ctx, in).Documents)
	})

	t.Run("malformed_filters_are_met", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query = &model.Query{Stems: []model.QueryStem{{
			CollectionID: "Tasks",
			Filters: []model.CollectionAttributeFilter{
				{CollectionID: "Tasks", Condition: model.ConditionEquals},
				{CollectionID: "Tasks", AttributeID: "status", Condition: "bogus", ConditionValues: []model.ConditionValue{{Value: 1}}},
				{CollectionID: "Tasks", AttributeID: "status", Condition: model.ConditionEquals},
			},
		}}}

		require.Equal(t, []string{"t1", "t2"}, documentIDs(engine.Filter(ctx, in).Documents))
	})

	t.Run("dedup_first_stem_wins", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query = &model.Query{Stems: []model.QueryStem{
			{CollectionID: "People"},
			{CollectionID: "Tasks", LinkTypeIDs: []string{"Assignee"}},
		}}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"p1", "t1"}, documentIDs(result.Documents))
		require.Equal(t, 0, result.StemIndex["p1"])
		require.Equal(t, 1, result.StemIndex["t1"])
	})

	t.Run("sort_desc", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query = nil
		in.Desc = true

		require.Equal(t, []string{"t2", "t1", "p1"}, documentIDs(engine.Filter(ctx, in).Documents))
	})

	t.Run("empty_query_returns_everything_readable", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query = &model.Query{}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"p1", "t1", "t2"}, documentIDs(result.Documents))
		require.Equal(t, []string{"l1"}, linkIDs(result.LinkInstances))

		in.CollectionsPermissions["People"] = model.AllowedPermissions{}
		result = engine.Filter(ctx, in)
		require.Equal(t, []string{"t1", "t2"}, documentIDs(result.Documents))
		require.Empty(t, result.LinkInstances)
	})

	t.Run("with_view_permissions", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query = &model.Query{}
		in.CollectionsPermissions["People"] = model.AllowedPermissions{ReadWithView: true}

		require.Len(t, engine.Filter(ctx, in).Documents, 2)
		in.WithView = true
		require.Len(t, engine.Filter(ctx, in).Documents, 3)
	})
}

func TestFilterFulltexts(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	engine := NewEngine()
	ctx := context.Background()

	t.Run("fulltext_only_spans_every_collection", func(t *testing.T) {
		in := tasksAndPeople()
		in.Documents[0].Data["title"] = "Call Zoë"
		in.Query = &model.Query{Fulltexts: []string{"zoe", "ALICE"}}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"p1", "t1"}, documentIDs(result.Documents))
		require.Empty(t, result.LinkInstances)
	})

	t.Run("fulltext_restricts_stem_results", func(t *testing.T) {
		in := tasksAndPeople()
		in.Query.Fulltexts = []string{"open"}

		result := engine.Filter(ctx, in)
		require.Equal(t, []string{"t1"}, documentIDs(result.Documents))
		require.Empty(t, result.LinkInstances)
	})
}

func TestFilterIncludeChildren(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	in := Input{
		Collections: []model.Collection{{ID: "Tasks"}},
		Documents: []model.Document{
			{ID: "root", CollectionID: "Tasks", Data: map[string]any{"kind": "epic"}, CreationDate: at(0)},
			{ID: "child", CollectionID: "Tasks", ParentID: "root", CreationDate: at(1)},
			{ID: "grandchild", CollectionID: "Tasks", ParentID: "child", CreationDate: at(2)},
			{ID: "loop1", CollectionID: "Tasks", ParentID: "loop2", Data: map[string]any{"kind": "epic"}, CreationDate: at(3)},
			{ID: "loop2", CollectionID: "Tasks", ParentID: "loop1", CreationDate: at(4)},
			{ID: "self", CollectionID: "Tasks", ParentID: "self", CreationDate: at(5)},
			{ID: "other", CollectionID: "Tasks", CreationDate: at(6)},
		},
		Query: &model.Query{Stems: []model.QueryStem{{
			CollectionID: "Tasks",
			Filters: []model.CollectionAttributeFilter{{
				CollectionID: "Tasks", AttributeID: "kind", Condition: model.ConditionEquals,
				ConditionValues: []model.ConditionValue{{Value: "epic"}},
			}},
		}}},
		CollectionsPermissions: map[string]model.AllowedPermissions{"Tasks": readable},
	}

	engine := NewEngine()
	require.Equal(t, []string{"root", "loop1"}, documentIDs(engine.Filter(context.Background(), in).Documents))

	in.IncludeChildren = true
	require.Equal(t, []string{"root", "child", "grandchild", "loop1", "loop2"}, documentIDs(engine.Filter(context.Background(), in).Documents))
}

func TestFilterReportsTruncatedChain(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	log, logs := logger.NewObserverLogger("warn")
	engine := NewEngine(WithLogger(log))

	in := chainABC()
	in.Query.Stems[0].LinkTypeIDs = []string{"AB", "missing"}

	result := engine.Filter(context.Background(), in)

	require.Equal(t, []IncompleteStem{{Index: 0, CollectionID: "A", Unresolved: []string{"missing"}, DroppedFilters: 1}}, result.IncompleteStems)
	require.Equal(t, []string{"a1", "a2", "a3"}, documentIDs(result.Documents))
	require.Equal(t, []string{"b1", "b2", "b3"}, documentIDs(result.LinkedDocuments))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "A", logs.All()[0].ContextMap()["collection_id"])
}

func TestIsLinkInstanceValid(t *testing.T) {
	linkType := &model.LinkType{ID: "lt", CollectionIDs: [2]string{"A", "B"}}
	documents := map[string]*model.Document{
		"a": {ID: "a", CollectionID: "A"},
		"b": {ID: "b", CollectionID: "B"},
	}

	require.True(t, IsLinkInstanceValid(&model.LinkInstance{LinkTypeID: "lt", DocumentIDs: [2]string{"a", "b"}}, linkType, documents))
	require.False(t, IsLinkInstanceValid(&model.LinkInstance{LinkTypeID: "lt", DocumentIDs: [2]string{"b", "a"}}, linkType, documents))
	require.False(t, IsLinkInstanceValid(&model.LinkInstance{LinkTypeID: "lt", DocumentIDs: [2]string{"a", "x"}}, linkType, documents))
	require.False(t, IsLinkInstanceValid(&model.LinkInstance{LinkTypeID: "other", DocumentIDs: [2]string{"a", "b"}}, linkType, documents))
	require.False(t, IsLinkInstanceValid(nil, linkType, documents))
}

func TestSortDocumentsByCreationDate(t *testing.T) {
	docs := []model.Document{
		{ID: "late", CreationDate: at(5)},
		{ID: "tie1", CreationDate: at(1)},
		{ID: "tie2", CreationDate: at(1)},
	}

	SortDocumentsByCreationDate(docs, false)
	require.Equal(t, []string{"tie1", "tie2", "late"}, documentIDs(docs))

	SortDocumentsByCreationDate(docs, true)
	require.Equal(t, []string{"late", "tie1", "tie2"}, documentIDs(docs))
}
