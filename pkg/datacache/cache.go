// Package datacache memoizes the data values derived from the raw data of
// documents and link instances.
package datacache

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/pkg/constraint"
	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
)

const defaultTTL = 24 * time.Hour

var (
	projectionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datacache_projection_total_count",
		Help: "The total number of data value projections by kind and outcome.",
	}, []string{"kind", "outcome"})

	invalidationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datacache_invalidation_total_count",
		Help: "The total number of invalidated data value entries by kind.",
	}, []string{"kind"})
)

// entry keeps everything the values were derived from so a projection of
// changed data or a changed schema can never be served from the cache.
type entry struct {
	values         model.DataValues
	source         map[string]any
	attributes     []model.Attribute
	constraintData constraint.Data
}

func (e *entry) derivedFrom(data map[string]any, attributes []model.Attribute, constraintData *constraint.Data) bool {
	var cd constraint.Data
	if constraintData != nil {
		cd = *constraintData
	}
	return reflect.DeepEqual(e.source, data) &&
		reflect.DeepEqual(e.attributes, attributes) &&
		reflect.DeepEqual(e.constraintData, cd)
}

// Cache holds one bucket per entity kind, keyed by resource id and entity id.
// It is never a source of truth: every value can be derived again from the
// entity data and the current schema.
type Cache struct {
	documents     *lru[*entry]
	linkInstances *lru[*entry]
	logger        logger.Logger
	ttl           time.Duration
}

type CacheOpt func(*cacheOptions)

type cacheOptions struct {
	logger           logger.Logger
	maxDocuments     int64
	maxLinkInstances int64
	ttl              time.Duration
}

func WithLogger(l logger.Logger) CacheOpt {
	return func(o *cacheOptions) {
		o.logger = l
	}
}

// WithMaxDocuments bounds the number of cached documents.
func WithMaxDocuments(n int64) CacheOpt {
	return func(o *cacheOptions) {
		o.maxDocuments = n
	}
}

// WithMaxLinkInstances bounds the number of cached link instances.
func WithMaxLinkInstances(n int64) CacheOpt {
	return func(o *cacheOptions) {
		o.maxLinkInstances = n
	}
}

func WithTTL(ttl time.Duration) CacheOpt {
	return func(o *cacheOptions) {
		o.ttl = ttl
	}
}

func NewCache(opts ...CacheOpt) *Cache {
	o := cacheOptions{
		logger:           logger.NewNoopLogger(),
		maxDocuments:     defaultMaxEntries,
		maxLinkInstances: defaultMaxEntries,
		ttl:              defaultTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache{
		documents:     newLRU(withMaxEntries[*entry](o.maxDocuments)),
		linkInstances: newLRU(withMaxEntries[*entry](o.maxLinkInstances)),
		logger:        o.logger,
		ttl:           o.ttl,
	}
}

// Stop releases the cache workers.
func (c *Cache) Stop() {
	c.documents.Stop()
	c.linkInstances.Stop()
}

func cacheKey(resourceID, entityID string) string {
	return resourceID + "/" + entityID
}

func (c *Cache) bucket(kind Kind) *lru[*entry] {
	if kind == KindLinkInstance {
		return c.linkInstances
	}
	return c.documents
}

func (c *Cache) project(kind Kind, resourceID, entityID string, data map[string]any, attributes []model.Attribute, constraintData *constraint.Data) model.DataValues {
	bucket := c.bucket(kind)
	key := cacheKey(resourceID, entityID)

	if cached := bucket.Get(key); cached != nil {
		if cached.derivedFrom(data, attributes, constraintData) {
			projectionCounter.WithLabelValues(string(kind), "hit").Inc()
			return cached.values
		}
		projectionCounter.WithLabelValues(string(kind), "stale").Inc()
		c.logger.Debug("cached data values derived from outdated data or schema",
			zap.String("kind", string(kind)), zap.String("key", key))
	} else {
		projectionCounter.WithLabelValues(string(kind), "miss").Inc()
	}

	values := constraint.CreateDataValues(data, attributes, constraintData)
	stored := &entry{values: values, source: model.CopyData(data), attributes: slices.Clone(attributes)}
	if constraintData != nil {
		stored.constraintData = *constraintData
		stored.constraintData.Users = slices.Clone(constraintData.Users)
	}
	bucket.Set(key, stored, c.ttl)
	return values
}

// ProjectDocument returns doc with DataValues derived from its data and the
// attributes of collection. The input is not modified.
func (c *Cache) ProjectDocument(doc model.Document, collection *model.Collection, constraintData *constraint.Data) model.Document {
	var attributes []model.Attribute
	if collection != nil {
		attributes = collection.Attributes
	}
	doc.DataValues = c.project(KindDocument, doc.CollectionID, doc.ID, doc.Data, attributes, constraintData)
	return doc
}

// ProjectLinkInstance returns li with DataValues derived from its data and
// the attributes of linkType. The input is not modified.
func (c *Cache) ProjectLinkInstance(li model.LinkInstance, linkType *model.LinkType, constraintData *constraint.Data) model.LinkInstance {
	var attributes []model.Attribute
	if linkType != nil {
		attributes = linkType.Attributes
	}
	li.DataValues = c.project(KindLinkInstance, li.LinkTypeID, li.ID, li.Data, attributes, constraintData)
	return li
}

// ProjectDocuments projects every document with the attributes of its collection.
func (c *Cache) ProjectDocuments(documents []model.Document, collections []model.Collection, constraintData *constraint.Data) []model.Document {
	byID := model.CollectionsByID(collections)
	result := make([]model.Document, 0, len(documents))
	for _, doc := range documents {
		result = append(result, c.ProjectDocument(doc, byID[doc.CollectionID], constraintData))
	}
	return result
}

// ProjectLinkInstances projects every link instance with the attributes of its link type.
func (c *Cache) ProjectLinkInstances(linkInstances []model.LinkInstance, linkTypes []model.LinkType, constraintData *constraint.Data) []model.LinkInstance {
	byID := model.LinkTypesByID(linkTypes)
	result := make([]model.LinkInstance, 0, len(linkInstances))
	for _, li := range linkInstances {
		result = append(result, c.ProjectLinkInstance(li, byID[li.LinkTypeID], constraintData))
	}
	return result
}

// Cached reports whether values of the entity are currently held.
func (c *Cache) Cached(kind Kind, resourceID, entityID string) bool {
	return c.bucket(kind).Get(cacheKey(resourceID, entityID)) != nil
}

// Invalidate removes exactly one entry.
func (c *Cache) Invalidate(kind Kind, resourceID, entityID string) {
	if c.bucket(kind).Delete(cacheKey(resourceID, entityID)) {
		invalidationCounter.WithLabelValues(string(kind)).Inc()
	}
}

// InvalidateResource removes every entry of the resource.
func (c *Cache) InvalidateResource(kind Kind, resourceID string) {
	removed := c.bucket(kind).DeletePrefix(cacheKey(resourceID, ""))
	invalidationCounter.WithLabelValues(string(kind)).Add(float64(removed))
}

// Clear removes every entry of both buckets.
func (c *Cache) Clear() {
	c.documents.Clear()
	c.linkInstances.Clear()
}

// Apply invalidates the entries event may have made stale.
func (c *Cache) Apply(event Event) {
	switch e := event.(type) {
	case Created:
		if e.PreviousID != "" && e.PreviousID != e.Ref.EntityID {
			c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.PreviousID)
		}
		c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.Ref.EntityID)
	case Patched:
		c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.Ref.EntityID)
	case Updated:
		c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.Ref.EntityID)
	case UpdateSucceeded:
		c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.Ref.EntityID)
	case UpdateFailed:
		c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.Ref.EntityID)
	case EntityRemoved:
		c.Invalidate(e.Ref.Kind, e.Ref.ResourceID, e.Ref.EntityID)
	case AttributesChanged:
		c.InvalidateResource(e.Kind, e.ResourceID)
	case ResourceDeleted:
		c.InvalidateResource(e.Kind, e.ResourceID)
	case ConstraintDataChanged:
		c.Clear()
	default:
		c.logger.Error("unknown data cache event, clearing cache", zap.String("event", fmt.Sprintf("%T", event)))
		c.Clear()
	}
}
