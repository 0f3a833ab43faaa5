// Package workspace holds the local state of one workspace: its schema, the
// loaded documents and link instances and the queries they were loaded for.
package workspace

import (
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/internal/featureflags"
	"github.com/kubedo8/web-ui/pkg/constraint"
	"github.com/kubedo8/web-ui/pkg/datacache"
	"github.com/kubedo8/web-ui/pkg/logger"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/query"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrLinkInstanceNotFound = errors.New("link instance not found")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrUnknownEvent         = errors.New("unknown remote event")
	ErrInvalidEvent         = errors.New("invalid remote event")
)

// Snapshot is a consistent copy of the store state. Slices are owned by the
// caller.
type Snapshot struct {
	Workspace     model.Workspace
	Organization  *model.Organization
	Project       *model.Project
	User          *model.User
	Users         []model.User
	Teams         []model.Team
	Collections   []model.Collection
	LinkTypes     []model.LinkType
	Documents     []model.Document
	LinkInstances []model.LinkInstance
	Views         []model.View
}

// ConstraintData returns the data needed to interpret attribute values.
func (s *Snapshot) ConstraintData() *constraint.Data {
	data := &constraint.Data{Users: s.Users}
	if s.User != nil {
		data.CurrentUserEmail = s.User.Email
	}
	return data
}

// Subscriber receives every mutation that may make derived values stale.
type Subscriber func(datacache.Event)

// Store is safe for concurrent use. Every mutation bumps the revision and
// publishes its events after the lock is released, in mutation order.
// Invalidators see the events before the new revision becomes readable.
type Store struct {
	mu       sync.RWMutex
	publish  sync.Mutex
	revision uint64

	workspace     model.Workspace
	organization  *model.Organization
	project       *model.Project
	user          *model.User
	users         []model.User
	teams         []model.Team
	collections   []model.Collection
	linkTypes     []model.LinkType
	documents     []model.Document
	linkInstances []model.LinkInstance
	views         []model.View
	loaded        []model.DataQuery
	publicView    bool

	invalidators []Subscriber
	subscribers  []Subscriber
	flags        featureflags.Client
	logger       logger.Logger
}

type StoreOption func(*Store)

func WithLogger(l logger.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

func WithFeatureFlags(client featureflags.Client) StoreOption {
	return func(s *Store) {
		s.flags = client
	}
}

// WithPublicView marks the workspace as an anonymously shared view, which
// is always loaded in full.
func WithPublicView(publicView bool) StoreOption {
	return func(s *Store) {
		s.publicView = publicView
	}
}

// WithSubscriber registers fn before any mutation happens.
func WithSubscriber(fn Subscriber) StoreOption {
	return func(s *Store) {
		s.subscribers = append(s.subscribers, fn)
	}
}

func NewStore(workspace model.Workspace, opts ...StoreOption) *Store {
	s := &Store{
		workspace: workspace,
		flags:     featureflags.NewDefaultClient(nil),
		logger:    logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for the events of subsequent mutations.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// AddInvalidator registers fn to run under the write lock of every
// subsequent mutation. fn must not call back into the store.
func (s *Store) AddInvalidator(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidators = append(s.invalidators, fn)
}

// mutate runs fn under the write lock, invalidates derived values and
// publishes the events it returns.
func (s *Store) mutate(fn func() []datacache.Event) {
	s.publish.Lock()
	defer s.publish.Unlock()

	s.mu.Lock()
	events := fn()
	for _, event := range events {
		for _, invalidate := range s.invalidators {
			invalidate(event)
		}
	}
	s.revision++
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, event := range events {
		for _, subscriber := range subscribers {
			subscriber(event)
		}
	}
}

// Revision increases with every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns a copy of the state together with its revision.
func (s *Store) Snapshot() (Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Workspace:     s.workspace,
		Organization:  s.organization,
		Project:       s.project,
		User:          s.user,
		Users:         slices.Clone(s.users),
		Teams:         slices.Clone(s.teams),
		Collections:   slices.Clone(s.collections),
		LinkTypes:     slices.Clone(s.linkTypes),
		Documents:     slices.Clone(s.documents),
		LinkInstances: slices.Clone(s.linkInstances),
		Views:         slices.Clone(s.views),
	}, s.revision
}

// IsCurrentWorkspace reports whether an entity tagged with the given ids
// belongs to this workspace.
func (s *Store) IsCurrentWorkspace(organizationID, projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return organizationID == s.workspace.OrganizationID && projectID == s.workspace.ProjectID
}

// SetContext replaces the organization, project, current user and teams
// permissions are resolved for.
func (s *Store) SetContext(organization *model.Organization, project *model.Project, user *model.User, teams []model.Team) {
	s.mutate(func() []datacache.Event {
		s.organization, s.project, s.user = organization, project, user
		s.teams = slices.Clone(teams)
		return []datacache.Event{datacache.ConstraintDataChanged{}}
	})
}

// SetUsers replaces the user directory.
func (s *Store) SetUsers(users []model.User) {
	s.mutate(func() []datacache.Event {
		s.users = slices.Clone(users)
		return []datacache.Event{datacache.ConstraintDataChanged{}}
	})
}

// IsQueryLoaded reports whether documents of q are already held.
func (s *Store) IsQueryLoaded(q *model.DataQuery) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.IsDataQueryLoaded(q, s.loaded, s.publicView)
}

// ApplyFetch merges the fetched entities by id and marks q as loaded in one
// step, so readers never observe a partial merge.
func (s *Store) ApplyFetch(q model.DataQuery, documents []model.Document, linkInstances []model.LinkInstance) {
	s.mutate(func() []datacache.Event {
		events := make([]datacache.Event, 0, len(documents)+len(linkInstances))
		s.documents = merge(s.documents, documents, documentID)
		for _, doc := range documents {
			events = append(events, datacache.Updated{Ref: documentRef(&doc)})
		}
		s.linkInstances = merge(s.linkInstances, linkInstances, linkInstanceID)
		for _, li := range linkInstances {
			events = append(events, datacache.Updated{Ref: linkInstanceRef(&li)})
		}
		if !slices.ContainsFunc(s.loaded, func(loaded model.DataQuery) bool { return query.AreDataQueriesEqual(&loaded, &q) }) {
			s.loaded = append(s.loaded, q)
		}
		s.logger.Debug("fetched entities merged",
			zap.Int("documents", len(documents)), zap.Int("link_instances", len(linkInstances)))
		return events
	})
}

// ClearLoadedQueries forgets every loaded query, so the next load fetches again.
func (s *Store) ClearLoadedQueries() {
	s.mutate(func() []datacache.Event {
		s.loaded = nil
		return nil
	})
}

func documentID(d model.Document) string         { return d.ID }
func linkInstanceID(l model.LinkInstance) string { return l.ID }
func collectionID(c model.Collection) string     { return c.ID }
func linkTypeID(l model.LinkType) string         { return l.ID }
func viewID(v model.View) string                 { return v.ID }

func documentRef(d *model.Document) datacache.EntityRef {
	return datacache.EntityRef{Kind: datacache.KindDocument, ResourceID: d.CollectionID, EntityID: d.ID}
}

func linkInstanceRef(l *model.LinkInstance) datacache.EntityRef {
	return datacache.EntityRef{Kind: datacache.KindLinkInstance, ResourceID: l.LinkTypeID, EntityID: l.ID}
}

// upsert replaces the item with the same id in place or appends it.
func upsert[T any](items []T, item T, id func(T) string) []T {
	if i := slices.IndexFunc(items, func(existing T) bool { return id(existing) == id(item) }); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

// merge upserts every fetched item, keeping the position of replaced ones.
func merge[T any](items, fetched []T, id func(T) string) []T {
	index := make(map[string]int, len(items)+len(fetched))
	for i, item := range items {
		index[id(item)] = i
	}
	for _, item := range fetched {
		if i, ok := index[id(item)]; ok {
			items[i] = item
			continue
		}
		index[id(item)] = len(items)
		items = append(items, item)
	}
	return items
}

func find[T any](items []T, itemID string, id func(T) string) (int, bool) {
	i := slices.IndexFunc(items, func(existing T) bool { return id(existing) == itemID })
	return i, i >= 0
}
