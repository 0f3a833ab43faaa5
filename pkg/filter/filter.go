// Package filter selects the documents and link instances a query shows to a
// user.
package filter

import (
	"context"

	"github.com/sourcegraph/conc/iter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/pkg/constraint"
	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/query"
)

var tracer = otel.Tracer("pkg/filter")

// Input is an immutable snapshot to filter. Nothing reachable from it is modified.
type Input struct {
	Documents              []model.Document
	Collections            []model.Collection
	LinkTypes              []model.LinkType
	LinkInstances          []model.LinkInstance
	Query                  *model.Query
	CollectionsPermissions map[string]model.AllowedPermissions
	LinkTypesPermissions   map[string]model.AllowedPermissions
	IncludeChildren        bool
	Desc                   bool
	ConstraintData         *constraint.Data
	// WithView also counts read grants obtained through a shared view.
	WithView bool
}

// IncompleteStem describes a stem whose link chain was cut short.
type IncompleteStem struct {
	Index          int
	CollectionID   string
	Unresolved     []string
	DroppedFilters int
}

type Result struct {
	// Documents are the documents of the stem root collections.
	Documents []model.Document
	// LinkedDocuments are reached through the link chain of a stem without
	// being selected as a root by any stem.
	LinkedDocuments []model.Document
	LinkInstances   []model.LinkInstance
	// StemIndex maps every included document to the first stem that selected it.
	// Documents added only as children or by an unrestricted query are absent.
	StemIndex       map[string]int
	IncompleteStems []IncompleteStem
}

// Engine evaluates queries over snapshots. It holds no state between calls.
type Engine struct {
	logger logger.Logger
}

type EngineOption func(*Engine)

// WithLogger sets the logger used to report truncated chains.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Filter restricts in.Documents and in.LinkInstances to what in.Query selects
// and the permissions allow to read.
func (e *Engine) Filter(ctx context.Context, in Input) Result {
	ctx, span := tracer.Start(ctx, "filter.Filter", trace.WithAttributes(
		attribute.Int("documents", len(in.Documents)),
		attribute.Int("link_instances", len(in.LinkInstances)),
	))
	defer span.End()

	ev := newEvaluation(&in)
	q := query.Normalize(in.Query)

	result := Result{StemIndex: make(map[string]int)}
	included := make(map[string]bool)
	linked := make(map[string]bool)
	usedLinks := make(map[string]bool)

	stems := q.Stems
	switch {
	case len(stems) == 0 && len(q.Fulltexts) == 0:
		for _, doc := range ev.readableDocuments {
			included[doc.ID] = true
		}
	case len(stems) == 0:
		stems = ev.fulltextStems()
	}

	stemResults := iter.Map(stems, func(stem *model.QueryStem) stemResult {
		return ev.evaluateStem(stem)
	})

	for i, sr := range stemResults {
		if !sr.chain.Complete {
			incomplete := IncompleteStem{
				Index:          i,
				CollectionID:   stems[i].CollectionID,
				Unresolved:     sr.chain.Unresolved,
				DroppedFilters: sr.droppedFilters,
			}
			result.IncompleteStems = append(result.IncompleteStems, incomplete)
			if sr.droppedFilters > 0 {
				e.logger.WarnWithContext(ctx, "query stem chain truncated, filters on unresolved hops ignored",
					zap.String("collection_id", incomplete.CollectionID),
					zap.Strings("unresolved_link_types", incomplete.Unresolved),
					zap.Int("dropped_filters", incomplete.DroppedFilters))
			}
		}
		for _, id := range sr.documentIDs {
			if _, ok := result.StemIndex[id]; !ok {
				result.StemIndex[id] = i
			}
			included[id] = true
		}
		for _, id := range sr.linkedDocumentIDs {
			if _, ok := result.StemIndex[id]; !ok {
				result.StemIndex[id] = i
			}
			linked[id] = true
		}
		for _, id := range sr.linkInstanceIDs {
			usedLinks[id] = true
		}
	}

	for id := range linked {
		if included[id] {
			delete(linked, id)
		}
	}

	if len(q.Fulltexts) > 0 {
		for _, ids := range []map[string]bool{included, linked} {
			for id := range ids {
				if !ev.meetsFulltexts(ev.documents[id], q.Fulltexts) {
					delete(ids, id)
					delete(result.StemIndex, id)
				}
			}
		}
	}

	if in.IncludeChildren {
		for _, id := range ev.descendants(included) {
			included[id] = true
		}
	}

	for i := range in.Documents {
		id := in.Documents[i].ID
		if ev.documents[id] == nil {
			continue
		}
		switch {
		case included[id]:
			result.Documents = append(result.Documents, in.Documents[i])
		case linked[id]:
			result.LinkedDocuments = append(result.LinkedDocuments, in.Documents[i])
		}
	}

	// A query without stems keeps every readable link between included documents.
	unrestricted := len(q.Stems) == 0 && len(q.Fulltexts) == 0
	present := func(id string) bool { return included[id] || linked[id] }
	for _, li := range ev.readableLinks {
		if !present(li.DocumentIDs[0]) || !present(li.DocumentIDs[1]) {
			continue
		}
		if unrestricted || usedLinks[li.ID] {
			result.LinkInstances = append(result.LinkInstances, *li)
		}
	}

	SortDocumentsByCreationDate(result.Documents, in.Desc)
	SortDocumentsByCreationDate(result.LinkedDocuments, in.Desc)
	SortLinkInstances(result.LinkInstances)

	span.SetAttributes(
		attribute.Int("result.documents", len(result.Documents)),
		attribute.Int("result.linked_documents", len(result.LinkedDocuments)),
		attribute.Int("result.link_instances", len(result.LinkInstances)),
	)
	return result
}

// fulltextStems spans every readable collection with a plain stem.
func (ev *evaluation) fulltextStems() []model.QueryStem {
	stems := make([]model.QueryStem, 0, len(ev.in.Collections))
	for _, collection := range ev.in.Collections {
		if ev.readableCollection(collection.ID) {
			stems = append(stems, model.QueryStem{CollectionID: collection.ID})
		}
	}
	return stems
}
