package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kubedo8/web-ui/pkg/datacache"
	"github.com/kubedo8/web-ui/pkg/model"
)

func readers(userID string) model.Permissions {
	return model.Permissions{Users: []model.Permission{{ID: userID, Roles: []model.Role{model.RoleRead}}}}
}

func assigneeQuery() *model.Query {
	return &model.Query{Stems: []model.QueryStem{{
		CollectionID: "tasks",
		LinkTypeIDs:  []string{"assignee"},
		Filters: []model.CollectionAttributeFilter{{
			CollectionID:    "people",
			AttributeID:     "name",
			Condition:       model.ConditionEquals,
			ConditionValues: []model.ConditionValue{{Value: "Alice"}},
		}},
	}}}
}

func seedScenario(store *Store, peoplePermissions model.Permissions) {
	user := &model.User{ID: "u1", Email: "u1@example.com"}
	store.SetContext(&model.Organization{ID: "org"}, &model.Project{ID: "proj", OrganizationID: "org"}, user, nil)

	collections := store.Collections()
	for _, c := range collections {
		if c.ID == "people" {
			c.Permissions = peoplePermissions
		} else {
			c.Permissions = readers("u1")
		}
		store.UpsertCollection(c)
	}

	store.ApplyFetch(model.DataQuery{}, []model.Document{
		{ID: "t1", CollectionID: "tasks", Data: map[string]any{"status": "open"}},
		{ID: "t2", CollectionID: "tasks", Data: map[string]any{"status": "done"}},
		{ID: "p1", CollectionID: "people", Data: map[string]any{"name": "Alice"}},
	}, []model.LinkInstance{
		{ID: "l1", LinkTypeID: "assignee", DocumentIDs: [2]string{"t1", "p1"}},
	})
}

func documentIDs(documents []model.Document) []string {
	ids := make([]string, 0, len(documents))
	for _, doc := range documents {
		ids = append(ids, doc.ID)
	}
	return ids
}

func TestSelectDocumentsAndLinks(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	t.Run("chain_filter_through_readable_resources", func(t *testing.T) {
		store, _ := newTestStore(t)
		seedScenario(store, readers("u1"))

		selectors, err := NewSelectors(store)
		require.NoError(t, err)
		defer selectors.Close()

		result := selectors.SelectDocumentsAndLinks(context.Background(), assigneeQuery(), SelectOptions{})
		require.Equal(t, []string{"t1"}, documentIDs(result.Documents))
		require.Equal(t, []string{"p1"}, documentIDs(result.LinkedDocuments))
		require.Len(t, result.LinkInstances, 1)
		require.Equal(t, "l1", result.LinkInstances[0].ID)
	})

	t.Run("unreadable_resource_blocks_the_chain", func(t *testing.T) {
		store, _ := newTestStore(t)
		seedScenario(store, model.Permissions{})

		selectors, err := NewSelectors(store)
		require.NoError(t, err)
		defer selectors.Close()

		result := selectors.SelectDocumentsAndLinks(context.Background(), assigneeQuery(), SelectOptions{})
		require.Empty(t, result.Documents)

		require.Equal(t, []string{"tasks"}, func() []string {
			var ids []string
			for _, c := range selectors.SelectCollectionsByQuery(assigneeQuery()) {
				ids = append(ids, c.ID)
			}
			return ids
		}())
		require.Len(t, selectors.SelectLinkTypesInQuery(assigneeQuery()), 1)
	})

	t.Run("patched_data_is_projected_again", func(t *testing.T) {
		store, _ := newTestStore(t)
		seedScenario(store, readers("u1"))

		cache := datacache.NewCache()
		defer cache.Stop()
		selectors, err := NewSelectors(store, WithDataCache(cache))
		require.NoError(t, err)
		defer selectors.Close()

		q := &model.Query{Stems: []model.QueryStem{{CollectionID: "tasks"}}}
		first := selectors.SelectDocumentsAndLinks(context.Background(), q, SelectOptions{})
		require.Equal(t, []string{"t1", "t2"}, documentIDs(first.Documents))
		require.Equal(t, "Open", first.Documents[0].DataValues["status"].Format())
		require.True(t, cache.Cached(datacache.KindDocument, "tasks", "t1"))

		again := selectors.SelectDocumentsAndLinks(context.Background(), q, SelectOptions{})
		require.Same(t, first.Documents[0].DataValues["status"], again.Documents[0].DataValues["status"])

		_, err = store.PatchDocumentData("t1", map[string]any{"status": "done"})
		require.NoError(t, err)
		require.False(t, cache.Cached(datacache.KindDocument, "tasks", "t1"))

		patched := selectors.SelectDocumentsAndLinks(context.Background(), q, SelectOptions{})
		require.Equal(t, "Done", patched.Documents[0].DataValues["status"].Format())

		doc, ok := selectors.SelectDocumentByID("t1")
		require.True(t, ok)
		require.Equal(t, "Done", doc.DataValues["status"].Format())
		_, ok = selectors.SelectDocumentByID("missing")
		require.False(t, ok)
	})

	t.Run("view_grants_read_on_its_resources", func(t *testing.T) {
		store, _ := newTestStore(t)
		seedScenario(store, model.Permissions{})

		selectors, err := NewSelectors(store)
		require.NoError(t, err)
		defer selectors.Close()

		view := &model.View{ID: "v1", Query: *assigneeQuery(), Permissions: readers("u1"), Version: 1}
		require.False(t, selectors.SelectPermissions(nil).Collections["people"].ReadWithView)
		require.True(t, selectors.SelectPermissions(view).Collections["people"].ReadWithView)

		result := selectors.SelectDocumentsAndLinks(context.Background(), assigneeQuery(), SelectOptions{View: view})
		require.Equal(t, []string{"t1"}, documentIDs(result.Documents))
	})
}

func TestSelectorsNeverObserveStaleValues(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	q := &model.Query{Stems: []model.QueryStem{{CollectionID: "tasks"}}}

	var selectors *Selectors
	var observed []string
	store, _ := newTestStore(t, WithSubscriber(func(event datacache.Event) {
		if _, ok := event.(datacache.AttributesChanged); ok && selectors != nil {
			result := selectors.SelectDocumentsAndLinks(context.Background(), q, SelectOptions{})
			observed = append(observed, result.Documents[0].DataValues["status"].Format())
		}
	}))
	seedScenario(store, readers("u1"))

	selectors, err := NewSelectors(store)
	require.NoError(t, err)
	defer selectors.Close()

	before := selectors.SelectDocumentsAndLinks(context.Background(), q, SelectOptions{})
	require.Equal(t, "Open", before.Documents[0].DataValues["status"].Format())

	require.NoError(t, store.ChangeAttribute("tasks", model.Attribute{ID: "status", Name: "Status"}))
	require.Equal(t, []string{"open"}, observed)

	after := selectors.SelectDocumentsAndLinks(context.Background(), q, SelectOptions{})
	require.Equal(t, "open", after.Documents[0].DataValues["status"].Format())
}
