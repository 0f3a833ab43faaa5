package workspace

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kubedo8/web-ui/pkg/datacache"
	"github.com/kubedo8/web-ui/pkg/model"
)

func (s *Store) Collections() []model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.collections)
}

func (s *Store) LinkTypes() []model.LinkType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.linkTypes)
}

func (s *Store) Views() []model.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.views)
}

func attributesChanged(previous, current []model.Attribute) bool {
	return !cmp.Equal(previous, current, cmpopts.EquateEmpty())
}

// UpsertCollection stores collection. Documents of the collection are
// projected again when its attributes differ from the held ones.
func (s *Store) UpsertCollection(collection model.Collection) {
	s.mutate(func() []datacache.Event {
		var events []datacache.Event
		if i, ok := find(s.collections, collection.ID, collectionID); ok && attributesChanged(s.collections[i].Attributes, collection.Attributes) {
			events = append(events, datacache.AttributesChanged{Kind: datacache.KindDocument, ResourceID: collection.ID})
		}
		s.collections = upsert(s.collections, collection, collectionID)
		return events
	})
}

// CreateAttributes adds or replaces attributes of the collection.
func (s *Store) CreateAttributes(collectionID string, attributes []model.Attribute) error {
	return s.changeCollectionAttributes(collectionID, func(current []model.Attribute) []model.Attribute {
		for _, attr := range attributes {
			current = upsert(current, attr, attributeID)
		}
		return current
	})
}

// ChangeAttribute replaces one attribute of the collection.
func (s *Store) ChangeAttribute(collectionID string, attribute model.Attribute) error {
	return s.CreateAttributes(collectionID, []model.Attribute{attribute})
}

// DeleteAttribute removes one attribute of the collection. The document data
// stored under it is left untouched.
func (s *Store) DeleteAttribute(collectionID, id string) error {
	return s.changeCollectionAttributes(collectionID, func(current []model.Attribute) []model.Attribute {
		return slices.DeleteFunc(current, func(a model.Attribute) bool { return a.ID == id })
	})
}

func (s *Store) changeCollectionAttributes(id string, change func([]model.Attribute) []model.Attribute) error {
	var err error
	s.mutate(func() []datacache.Event {
		i, ok := find(s.collections, id, collectionID)
		if !ok {
			err = fmt.Errorf("%w: collection %s", ErrResourceNotFound, id)
			return nil
		}
		s.collections[i].Attributes = change(slices.Clone(s.collections[i].Attributes))
		return []datacache.Event{datacache.AttributesChanged{Kind: datacache.KindDocument, ResourceID: id}}
	})
	return err
}

// DeleteCollection removes the collection, its documents, the link types
// touching it and their link instances.
func (s *Store) DeleteCollection(id string) {
	s.mutate(func() []datacache.Event {
		events := []datacache.Event{datacache.ResourceDeleted{Kind: datacache.KindDocument, ResourceID: id}}
		s.collections = slices.DeleteFunc(s.collections, func(c model.Collection) bool { return c.ID == id })
		s.documents = slices.DeleteFunc(s.documents, func(d model.Document) bool { return d.CollectionID == id })

		for _, lt := range slices.Clone(s.linkTypes) {
			if lt.CollectionIDs[0] == id || lt.CollectionIDs[1] == id {
				events = append(events, s.deleteLinkType(lt.ID)...)
			}
		}
		return events
	})
}

func (s *Store) UpsertLinkType(linkType model.LinkType) {
	s.mutate(func() []datacache.Event {
		var events []datacache.Event
		if i, ok := find(s.linkTypes, linkType.ID, linkTypeID); ok && attributesChanged(s.linkTypes[i].Attributes, linkType.Attributes) {
			events = append(events, datacache.AttributesChanged{Kind: datacache.KindLinkInstance, ResourceID: linkType.ID})
		}
		s.linkTypes = upsert(s.linkTypes, linkType, linkTypeID)
		return events
	})
}

func (s *Store) CreateLinkTypeAttributes(linkTypeID string, attributes []model.Attribute) error {
	return s.changeLinkTypeAttributes(linkTypeID, func(current []model.Attribute) []model.Attribute {
		for _, attr := range attributes {
			current = upsert(current, attr, attributeID)
		}
		return current
	})
}

func (s *Store) ChangeLinkTypeAttribute(linkTypeID string, attribute model.Attribute) error {
	return s.CreateLinkTypeAttributes(linkTypeID, []model.Attribute{attribute})
}

func (s *Store) DeleteLinkTypeAttribute(linkTypeID, id string) error {
	return s.changeLinkTypeAttributes(linkTypeID, func(current []model.Attribute) []model.Attribute {
		return slices.DeleteFunc(current, func(a model.Attribute) bool { return a.ID == id })
	})
}

func (s *Store) changeLinkTypeAttributes(id string, change func([]model.Attribute) []model.Attribute) error {
	var err error
	s.mutate(func() []datacache.Event {
		i, ok := find(s.linkTypes, id, linkTypeID)
		if !ok {
			err = fmt.Errorf("%w: link type %s", ErrResourceNotFound, id)
			return nil
		}
		s.linkTypes[i].Attributes = change(slices.Clone(s.linkTypes[i].Attributes))
		return []datacache.Event{datacache.AttributesChanged{Kind: datacache.KindLinkInstance, ResourceID: id}}
	})
	return err
}

// DeleteLinkType removes the link type and its link instances.
func (s *Store) DeleteLinkType(id string) {
	s.mutate(func() []datacache.Event {
		return s.deleteLinkType(id)
	})
}

func (s *Store) deleteLinkType(id string) []datacache.Event {
	s.linkTypes = slices.DeleteFunc(s.linkTypes, func(l model.LinkType) bool { return l.ID == id })
	s.linkInstances = slices.DeleteFunc(s.linkInstances, func(l model.LinkInstance) bool { return l.LinkTypeID == id })
	return []datacache.Event{datacache.ResourceDeleted{Kind: datacache.KindLinkInstance, ResourceID: id}}
}

// UpsertView stores view unless the held view is at least as new. It
// reports whether view was stored.
func (s *Store) UpsertView(view model.View) bool {
	var stored bool
	s.mutate(func() []datacache.Event {
		if i, ok := find(s.views, view.ID, viewID); ok && !view.IsNewerThan(&s.views[i]) {
			return nil
		}
		s.views = upsert(s.views, view, viewID)
		stored = true
		return nil
	})
	return stored
}

func (s *Store) DeleteView(id string) {
	s.mutate(func() []datacache.Event {
		s.views = slices.DeleteFunc(s.views, func(v model.View) bool { return v.ID == id })
		return nil
	})
}

func attributeID(a model.Attribute) string { return a.ID }
