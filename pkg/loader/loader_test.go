package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/kubedo8/web-ui/internal/mocks"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/query"
	"github.com/kubedo8/web-ui/pkg/workspace"
)

var errRemote = errors.New("remote unavailable")

func tasksQuery() model.DataQuery {
	return model.DataQuery{Query: model.Query{Stems: []model.QueryStem{{
		CollectionID: "tasks",
		LinkTypeIDs:  []string{"assignee"},
		Filters: []model.CollectionAttributeFilter{{
			CollectionID: "tasks", AttributeID: "status", Condition: model.ConditionEquals,
			ConditionValues: []model.ConditionValue{{Value: "open"}},
		}},
	}}}}
}

func newStore() *workspace.Store {
	return workspace.NewStore(model.Workspace{OrganizationID: "org", ProjectID: "proj"})
}

func TestLoadQuery(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	t.Run("fetches_once_and_marks_loaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		store := newStore()
		ld := NewLoader(store, fetcher)

		q := tasksQuery()
		fetcher.EXPECT().FetchDocuments(gomock.Any(), q).Return([]model.Document{
			{ID: "t1", CollectionID: "tasks", Data: map[string]any{"status": "open"}},
		}, nil).Times(1)
		fetcher.EXPECT().FetchLinkInstances(gomock.Any(), query.WithoutFilters(&q.Query)).Return([]model.LinkInstance{
			{ID: "l1", LinkTypeID: "assignee", DocumentIDs: [2]string{"t1", "p1"}},
		}, nil).Times(1)

		require.NoError(t, ld.LoadQuery(context.Background(), q))
		require.Len(t, store.Documents(), 1)
		require.Len(t, store.LinkInstances(), 1)

		require.NoError(t, ld.LoadQuery(context.Background(), q))
		require.True(t, store.IsQueryLoaded(&q))
	})

	t.Run("failure_leaves_query_unloaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		store := newStore()
		ld := NewLoader(store, fetcher)

		q := tasksQuery()
		fetcher.EXPECT().FetchDocuments(gomock.Any(), q).Return(nil, errRemote)
		fetcher.EXPECT().FetchLinkInstances(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		err := ld.LoadQuery(context.Background(), q)
		require.ErrorIs(t, err, ErrFetch)
		require.ErrorIs(t, err, errRemote)
		require.False(t, store.IsQueryLoaded(&q))
		require.Empty(t, store.Documents())
	})

	t.Run("concurrent_loads_share_one_fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		ld := NewLoader(newStore(), fetcher)

		q := tasksQuery()
		started := make(chan struct{})
		release := make(chan struct{})
		fetcher.EXPECT().FetchDocuments(gomock.Any(), q).DoAndReturn(func(context.Context, model.DataQuery) ([]model.Document, error) {
			close(started)
			<-release
			return nil, nil
		}).Times(1)
		fetcher.EXPECT().FetchLinkInstances(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[0] = ld.LoadQuery(context.Background(), q)
		}()
		<-started

		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[1] = ld.LoadQuery(context.Background(), q)
		}()
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
	})
}

func TestOptimisticWrites(t *testing.T) {
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})

	seeded := func() *workspace.Store {
		store := newStore()
		store.ApplyFetch(model.DataQuery{}, []model.Document{
			{ID: "t1", CollectionID: "tasks", Data: map[string]any{"status": "open"}},
		}, []model.LinkInstance{
			{ID: "l1", LinkTypeID: "assignee", DocumentIDs: [2]string{"t1", "p1"}, Data: map[string]any{"role": "owner"}},
		})
		return store
	}

	t.Run("failed_patch_is_reverted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		store := seeded()
		ld := NewLoader(store, fetcher)

		fetcher.EXPECT().PatchDocumentData(gomock.Any(), "tasks", "t1", map[string]any{"status": "done"}).
			DoAndReturn(func(context.Context, string, string, map[string]any) (model.Document, error) {
				doc, _ := store.Document("t1")
				require.Equal(t, "done", doc.Data["status"])
				return model.Document{}, errRemote
			})

		_, err := ld.PatchDocumentData(context.Background(), "t1", map[string]any{"status": "done"})
		require.ErrorIs(t, err, ErrRemoteSync)
		require.ErrorIs(t, err, errRemote)

		doc, _ := store.Document("t1")
		require.Equal(t, "open", doc.Data["status"])
	})

	t.Run("successful_update_stores_server_version", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		store := seeded()
		ld := NewLoader(store, fetcher)

		server := model.Document{ID: "t1", CollectionID: "tasks", Data: map[string]any{"status": "done", "updatedBy": "server"}}
		fetcher.EXPECT().UpdateDocumentData(gomock.Any(), "tasks", "t1", map[string]any{"status": "done"}).Return(server, nil)

		updated, err := ld.UpdateDocumentData(context.Background(), "t1", map[string]any{"status": "done"})
		require.NoError(t, err)
		require.Equal(t, server, updated)
		doc, _ := store.Document("t1")
		require.Equal(t, "server", doc.Data["updatedBy"])
	})

	t.Run("missing_document_is_not_sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ld := NewLoader(seeded(), mocks.NewMockFetcher(ctrl))

		_, err := ld.PatchDocumentData(context.Background(), "missing", map[string]any{"status": "done"})
		require.ErrorIs(t, err, workspace.ErrDocumentNotFound)
		_, err = ld.UpdateLinkInstanceData(context.Background(), "missing", nil)
		require.ErrorIs(t, err, workspace.ErrLinkInstanceNotFound)
	})

	t.Run("create_document", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		store := seeded()
		ld := NewLoader(store, fetcher)

		fetcher.EXPECT().CreateDocument(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, doc model.Document) (model.Document, error) {
			require.NotEmpty(t, doc.CorrelationID)
			doc.ID = "t2"
			return doc, nil
		})
		created, err := ld.CreateDocument(context.Background(), model.Document{CollectionID: "tasks"})
		require.NoError(t, err)
		require.Equal(t, "t2", created.ID)
		_, ok := store.Document("t2")
		require.True(t, ok)

		fetcher.EXPECT().CreateDocument(gomock.Any(), gomock.Any()).Return(model.Document{}, errRemote)
		_, err = ld.CreateDocument(context.Background(), model.Document{CollectionID: "tasks"})
		require.ErrorIs(t, err, ErrRemoteSync)
		require.Len(t, store.Documents(), 2)
	})

	t.Run("link_instance_writes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		store := seeded()
		ld := NewLoader(store, fetcher)

		fetcher.EXPECT().PatchLinkInstanceData(gomock.Any(), "assignee", "l1", map[string]any{"role": "reviewer"}).Return(model.LinkInstance{}, errRemote)
		_, err := ld.PatchLinkInstanceData(context.Background(), "l1", map[string]any{"role": "reviewer"})
		require.ErrorIs(t, err, ErrRemoteSync)
		require.Equal(t, "owner", store.LinkInstances()[0].Data["role"])

		fetcher.EXPECT().CreateLinkInstance(gomock.Any(), gomock.Any()).Return(model.LinkInstance{}, errRemote)
		_, err = ld.CreateLinkInstance(context.Background(), model.LinkInstance{LinkTypeID: "assignee", DocumentIDs: [2]string{"t1", "p2"}})
		require.ErrorIs(t, err, ErrRemoteSync)
		require.Len(t, store.LinkInstances(), 1)

		server := model.LinkInstance{ID: "l1", LinkTypeID: "assignee", DocumentIDs: [2]string{"t1", "p1"}, Data: map[string]any{"role": "lead"}}
		fetcher.EXPECT().UpdateLinkInstanceData(gomock.Any(), "assignee", "l1", map[string]any{"role": "lead"}).Return(server, nil)
		_, err = ld.UpdateLinkInstanceData(context.Background(), "l1", map[string]any{"role": "lead"})
		require.NoError(t, err)
		require.Equal(t, "lead", store.LinkInstances()[0].Data["role"])
	})
}
