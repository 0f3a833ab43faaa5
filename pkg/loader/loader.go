// Package loader synchronizes the workspace store with the remote data:
// it loads the documents of queries and performs optimistic writes.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/query"
	"github.com/kubedo8/web-ui/pkg/workspace"
)

var tracer = otel.Tracer("pkg/loader")

var (
	// ErrFetch wraps failures of loading a query.
	ErrFetch = errors.New("failed to fetch query data")
	// ErrRemoteSync wraps failed writes. The local change has been reverted
	// when it is returned.
	ErrRemoteSync = errors.New("remote sync failed")
)

var loadCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loader_query_total_count",
	Help: "The total number of query loads by outcome.",
}, []string{"outcome"})

// Loader has no retry policy: a failed load is repeated only when the
// caller asks for the query again.
type Loader struct {
	store   *workspace.Store
	fetcher Fetcher
	group   singleflight.Group
	logger  logger.Logger
}

type LoaderOption func(*Loader)

func WithLogger(l logger.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

func NewLoader(store *workspace.Store, fetcher Fetcher, opts ...LoaderOption) *Loader {
	ld := &Loader{
		store:   store,
		fetcher: fetcher,
		logger:  logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadQuery makes the documents of q and the link instances between them
// available in the store. Queries covered by an already loaded query are not
// fetched again and identical concurrent loads share one fetch.
func (ld *Loader) LoadQuery(ctx context.Context, q model.DataQuery) error {
	ctx, span := tracer.Start(ctx, "loader.LoadQuery")
	defer span.End()

	if ld.store.IsQueryLoaded(&q) {
		loadCounter.WithLabelValues("loaded").Inc()
		span.SetAttributes(attribute.Bool("loaded", true))
		return nil
	}

	key := strconv.FormatUint(query.DataQueryKey(&q), 16)
	_, err, shared := ld.group.Do(key, func() (any, error) {
		return nil, ld.fetch(ctx, q)
	})
	span.SetAttributes(attribute.Bool("shared", shared))
	if err != nil {
		loadCounter.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	loadCounter.WithLabelValues("fetched").Inc()
	return nil
}

func (ld *Loader) fetch(ctx context.Context, q model.DataQuery) error {
	var (
		documents     []model.Document
		linkInstances []model.LinkInstance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		documents, err = ld.fetcher.FetchDocuments(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		linkInstances, err = ld.fetcher.FetchLinkInstances(gctx, query.WithoutFilters(&q.Query))
		return err
	})
	if err := g.Wait(); err != nil {
		ld.logger.ErrorWithContext(ctx, "query load failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	ld.store.ApplyFetch(q, documents, linkInstances)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("documents", len(documents)),
		attribute.Int("link_instances", len(linkInstances)),
	)
	return nil
}

func (ld *Loader) syncFailed(ctx context.Context, op, id string, err error) error {
	ld.logger.WarnWithContext(ctx, "remote write failed, local change reverted",
		zap.String("operation", op), zap.String("id", id), zap.Error(err))
	return fmt.Errorf("%w: %s %s: %w", ErrRemoteSync, op, id, err)
}

// CreateDocument adds doc locally under a temporary id and replaces it with
// the created document once the remote call succeeds.
func (ld *Loader) CreateDocument(ctx context.Context, doc model.Document) (model.Document, error) {
	temp := ld.store.CreateDocument(doc)
	created, err := ld.fetcher.CreateDocument(ctx, temp)
	if err != nil {
		ld.store.CreateDocumentFailed(temp.CorrelationID)
		return model.Document{}, ld.syncFailed(ctx, "create document", temp.CorrelationID, err)
	}
	ld.store.CreateDocumentSucceeded(temp.CorrelationID, created)
	return created, nil
}

func (ld *Loader) PatchDocumentData(ctx context.Context, documentID string, patch map[string]any) (model.Document, error) {
	original, err := ld.store.PatchDocumentData(documentID, patch)
	if err != nil {
		return model.Document{}, err
	}
	updated, err := ld.fetcher.PatchDocumentData(ctx, original.CollectionID, documentID, patch)
	if err != nil {
		ld.store.UpdateDocumentFailed(original)
		return model.Document{}, ld.syncFailed(ctx, "patch document", documentID, err)
	}
	ld.store.UpdateDocumentSucceeded(updated)
	return updated, nil
}

func (ld *Loader) UpdateDocumentData(ctx context.Context, documentID string, data map[string]any) (model.Document, error) {
	original, err := ld.store.UpdateDocumentData(documentID, data)
	if err != nil {
		return model.Document{}, err
	}
	updated, err := ld.fetcher.UpdateDocumentData(ctx, original.CollectionID, documentID, data)
	if err != nil {
		ld.store.UpdateDocumentFailed(original)
		return model.Document{}, ld.syncFailed(ctx, "update document", documentID, err)
	}
	ld.store.UpdateDocumentSucceeded(updated)
	return updated, nil
}

func (ld *Loader) CreateLinkInstance(ctx context.Context, li model.LinkInstance) (model.LinkInstance, error) {
	temp := ld.store.CreateLinkInstance(li)
	created, err := ld.fetcher.CreateLinkInstance(ctx, temp)
	if err != nil {
		ld.store.CreateLinkInstanceFailed(temp.CorrelationID)
		return model.LinkInstance{}, ld.syncFailed(ctx, "create link instance", temp.CorrelationID, err)
	}
	ld.store.CreateLinkInstanceSucceeded(temp.CorrelationID, created)
	return created, nil
}

func (ld *Loader) PatchLinkInstanceData(ctx context.Context, linkInstanceID string, patch map[string]any) (model.LinkInstance, error) {
	original, err := ld.store.PatchLinkInstanceData(linkInstanceID, patch)
	if err != nil {
		return model.LinkInstance{}, err
	}
	updated, err := ld.fetcher.PatchLinkInstanceData(ctx, original.LinkTypeID, linkInstanceID, patch)
	if err != nil {
		ld.store.UpdateLinkInstanceFailed(original)
		return model.LinkInstance{}, ld.syncFailed(ctx, "patch link instance", linkInstanceID, err)
	}
	ld.store.UpdateLinkInstanceSucceeded(updated)
	return updated, nil
}

func (ld *Loader) UpdateLinkInstanceData(ctx context.Context, linkInstanceID string, data map[string]any) (model.LinkInstance, error) {
	original, err := ld.store.UpdateLinkInstanceData(linkInstanceID, data)
	if err != nil {
		return model.LinkInstance{}, err
	}
	updated, err := ld.fetcher.UpdateLinkInstanceData(ctx, original.LinkTypeID, linkInstanceID, data)
	if err != nil {
		ld.store.UpdateLinkInstanceFailed(original)
		return model.LinkInstance{}, ld.syncFailed(ctx, "update link instance", linkInstanceID, err)
	}
	ld.store.UpdateLinkInstanceSucceeded(updated)
	return updated, nil
}
