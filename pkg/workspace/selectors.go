package workspace

import (
	"context"
	"fmt"

	"github.com/Yiling-J/theine-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kubedo8/web-ui/pkg/datacache"
	"github.com/kubedo8/web-ui/pkg/filter"
	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/permission"
	"github.com/kubedo8/web-ui/pkg/query"
)

const defaultMaxSelectors = 1000

var tracer = otel.Tracer("pkg/workspace")

var selectorMemoCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workspace_selector_memo_total_count",
	Help: "The total number of selector evaluations by selector and whether the memoized result was used.",
}, []string{"selector", "outcome"})

type memoKey struct {
	selector string
	revision uint64
	query    uint64
	options  string
}

// SelectOptions tune SelectDocumentsAndLinks.
type SelectOptions struct {
	IncludeChildren bool
	Desc            bool
	// View grants the permissions of a shared view to the resources of its query.
	View *model.View
}

func (o SelectOptions) key() string {
	viewID, version := "", int64(0)
	if o.View != nil {
		viewID, version = o.View.ID, o.View.Version
	}
	return fmt.Sprintf("%t/%t/%s/%d", o.IncludeChildren, o.Desc, viewID, version)
}

// Selectors derive filtered and projected views of a Store. Results are
// memoized per store revision, query and options and are shared between
// callers, so they must not be modified.
type Selectors struct {
	store     *Store
	engine    *filter.Engine
	cache     *datacache.Cache
	ownsCache bool
	memo      *theine.Cache[memoKey, any]
	maxMemo   int64
	logger    logger.Logger
}

type SelectorsOption func(*Selectors)

// WithDataCache projects data values through c instead of a private cache.
func WithDataCache(c *datacache.Cache) SelectorsOption {
	return func(s *Selectors) {
		s.cache = c
	}
}

func WithFilterEngine(engine *filter.Engine) SelectorsOption {
	return func(s *Selectors) {
		s.engine = engine
	}
}

func WithMaxSelectors(n int64) SelectorsOption {
	return func(s *Selectors) {
		s.maxMemo = n
	}
}

func WithSelectorsLogger(l logger.Logger) SelectorsOption {
	return func(s *Selectors) {
		s.logger = l
	}
}

// NewSelectors subscribes the data cache to the mutations of store. Close
// must be called to release the memo.
func NewSelectors(store *Store, opts ...SelectorsOption) (*Selectors, error) {
	s := &Selectors{
		store:   store,
		maxMemo: defaultMaxSelectors,
		logger:  logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = filter.NewEngine(filter.WithLogger(s.logger))
	}

	memo, err := theine.NewBuilder[memoKey, any](s.maxMemo).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build selector memo: %w", err)
	}
	s.memo = memo

	if s.cache == nil {
		s.cache = datacache.NewCache(datacache.WithLogger(s.logger))
		s.ownsCache = true
	}
	store.AddInvalidator(s.cache.Apply)
	return s, nil
}

func (s *Selectors) Close() {
	s.memo.Close()
	if s.ownsCache {
		s.cache.Stop()
	}
}

func memoize[T any](s *Selectors, key memoKey, compute func() T) T {
	if cached, ok := s.memo.Get(key); ok {
		if v, ok := cached.(T); ok {
			selectorMemoCounter.WithLabelValues(key.selector, "hit").Inc()
			return v
		}
	}
	selectorMemoCounter.WithLabelValues(key.selector, "miss").Inc()
	v := compute()
	s.memo.Set(key, v, 1)
	return v
}

func (s *Selectors) permissions(snapshot *Snapshot, view *model.View) model.ResourcesPermissions {
	var opts []permission.ComputeOption
	if view != nil {
		collectionIDs := make([]string, 0)
		for _, c := range query.CollectionsInScope(&view.Query, snapshot.Collections, snapshot.LinkTypes) {
			collectionIDs = append(collectionIDs, c.ID)
		}
		linkTypeIDs := make([]string, 0)
		for _, l := range query.LinkTypesInScope(&view.Query, snapshot.LinkTypes) {
			linkTypeIDs = append(linkTypeIDs, l.ID)
		}
		opts = append(opts, permission.WithView(view, collectionIDs, linkTypeIDs))
	}
	return permission.ComputeResourcesPermissions(snapshot.User, snapshot.Organization, snapshot.Project,
		snapshot.Collections, snapshot.LinkTypes, snapshot.Teams, opts...)
}

// SelectPermissions resolves the permissions of the current user on every
// collection and link type.
func (s *Selectors) SelectPermissions(view *model.View) model.ResourcesPermissions {
	snapshot, revision := s.store.Snapshot()
	key := memoKey{selector: "permissions", revision: revision, options: SelectOptions{View: view}.key()}
	return memoize(s, key, func() model.ResourcesPermissions {
		return s.permissions(&snapshot, view)
	})
}

// SelectDocumentsAndLinks filters the held documents and link instances by q
// and the permissions of the current user. Returned entities carry their
// data values.
func (s *Selectors) SelectDocumentsAndLinks(ctx context.Context, q *model.Query, opts SelectOptions) filter.Result {
	snapshot, revision := s.store.Snapshot()
	key := memoKey{selector: "documentsAndLinks", revision: revision, query: query.Key(q), options: opts.key()}

	return memoize(s, key, func() filter.Result {
		ctx, span := tracer.Start(ctx, "workspace.SelectDocumentsAndLinks", trace.WithAttributes(
			attribute.Int64("revision", int64(revision)),
		))
		defer span.End()

		permissions := s.permissions(&snapshot, opts.View)
		constraintData := snapshot.ConstraintData()
		return s.engine.Filter(ctx, filter.Input{
			Documents:              s.cache.ProjectDocuments(snapshot.Documents, snapshot.Collections, constraintData),
			Collections:            snapshot.Collections,
			LinkTypes:              snapshot.LinkTypes,
			LinkInstances:          s.cache.ProjectLinkInstances(snapshot.LinkInstances, snapshot.LinkTypes, constraintData),
			Query:                  q,
			CollectionsPermissions: permissions.Collections,
			LinkTypesPermissions:   permissions.LinkTypes,
			IncludeChildren:        opts.IncludeChildren,
			Desc:                   opts.Desc,
			ConstraintData:         constraintData,
			WithView:               opts.View != nil,
		})
	})
}

// SelectCollectionsByQuery returns the readable collections q touches.
func (s *Selectors) SelectCollectionsByQuery(q *model.Query) []model.Collection {
	snapshot, revision := s.store.Snapshot()
	key := memoKey{selector: "collectionsByQuery", revision: revision, query: query.Key(q)}

	return memoize(s, key, func() []model.Collection {
		permissions := s.permissions(&snapshot, nil)
		var readable []model.Collection
		for _, c := range query.CollectionsInScope(q, snapshot.Collections, snapshot.LinkTypes) {
			if permissions.Collections[c.ID].Read {
				readable = append(readable, c)
			}
		}
		return readable
	})
}

// SelectLinkTypesInQuery returns the link types q touches.
func (s *Selectors) SelectLinkTypesInQuery(q *model.Query) []model.LinkType {
	snapshot, revision := s.store.Snapshot()
	key := memoKey{selector: "linkTypesInQuery", revision: revision, query: query.Key(q)}

	return memoize(s, key, func() []model.LinkType {
		return query.LinkTypesInScope(q, snapshot.LinkTypes)
	})
}

// SelectDocumentByID returns the document with its data values.
func (s *Selectors) SelectDocumentByID(id string) (model.Document, bool) {
	snapshot, _ := s.store.Snapshot()
	i, ok := find(snapshot.Documents, id, documentID)
	if !ok {
		return model.Document{}, false
	}
	doc := snapshot.Documents[i]
	return s.cache.ProjectDocument(doc, model.CollectionsByID(snapshot.Collections)[doc.CollectionID], snapshot.ConstraintData()), true
}
