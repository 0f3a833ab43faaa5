package workspace

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/kubedo8/web-ui/pkg/datacache"
	"github.com/kubedo8/web-ui/pkg/id"
	"github.com/kubedo8/web-ui/pkg/model"
)

// NewCorrelationID returns a fresh id for an optimistically created entity.
func NewCorrelationID() string {
	return id.New()
}

// Documents returns a copy of the held documents.
func (s *Store) Documents() []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.documents)
}

// Document returns the document with the given id.
func (s *Store) Document(id string) (model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := find(s.documents, id, documentID); ok {
		return s.documents[i], true
	}
	return model.Document{}, false
}

// LinkInstances returns a copy of the held link instances.
func (s *Store) LinkInstances() []model.LinkInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.linkInstances)
}

// CreateDocument adds doc under a temporary id equal to its correlation id
// and returns the stored document. A correlation id is generated when doc
// has none.
func (s *Store) CreateDocument(doc model.Document) model.Document {
	if doc.CorrelationID == "" {
		doc.CorrelationID = NewCorrelationID()
	}
	doc.ID = doc.CorrelationID
	doc.Data = model.CopyData(doc.Data)

	s.mutate(func() []datacache.Event {
		s.documents = upsert(s.documents, doc, documentID)
		return nil
	})
	return doc
}

// CreateDocumentSucceeded replaces the temporary document with the server
// one and rewrites every local reference to the temporary id.
func (s *Store) CreateDocumentSucceeded(correlationID string, created model.Document) {
	s.mutate(func() []datacache.Event {
		created.CorrelationID = correlationID
		// the push channel may have delivered the created document already
		s.documents = slices.DeleteFunc(s.documents, func(d model.Document) bool { return d.ID == correlationID })
		s.documents = upsert(s.documents, created, documentID)

		for i := range s.documents {
			if s.documents[i].ParentID == correlationID {
				s.documents[i].ParentID = created.ID
			}
		}
		for i := range s.linkInstances {
			ids := &s.linkInstances[i].DocumentIDs
			for j := range ids {
				if ids[j] == correlationID {
					ids[j] = created.ID
				}
			}
		}
		return []datacache.Event{datacache.Created{Ref: documentRef(&created), PreviousID: correlationID}}
	})
}

// CreateDocumentFailed removes the temporary document and its links.
func (s *Store) CreateDocumentFailed(correlationID string) {
	s.mutate(func() []datacache.Event {
		return s.removeDocument(correlationID)
	})
}

// PatchDocumentData merges patch into the data of the document and returns
// the document as it was before, for a later revert.
func (s *Store) PatchDocumentData(id string, patch map[string]any) (model.Document, error) {
	return s.changeDocumentData(id, func(data map[string]any) map[string]any {
		patched := model.CopyData(data)
		if patched == nil {
			patched = make(map[string]any, len(patch))
		}
		maps.Copy(patched, patch)
		return patched
	}, func(ref datacache.EntityRef) datacache.Event { return datacache.Patched{Ref: ref} })
}

// UpdateDocumentData replaces the data of the document and returns the
// document as it was before.
func (s *Store) UpdateDocumentData(id string, data map[string]any) (model.Document, error) {
	return s.changeDocumentData(id, func(map[string]any) map[string]any {
		return model.CopyData(data)
	}, func(ref datacache.EntityRef) datacache.Event { return datacache.Updated{Ref: ref} })
}

func (s *Store) changeDocumentData(id string, change func(map[string]any) map[string]any, event func(datacache.EntityRef) datacache.Event) (model.Document, error) {
	var (
		original model.Document
		err      error
	)
	s.mutate(func() []datacache.Event {
		i, ok := find(s.documents, id, documentID)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
			return nil
		}
		original = s.documents[i]
		s.documents[i].Data = change(original.Data)
		return []datacache.Event{event(documentRef(&original))}
	})
	return original, err
}

// UpdateDocumentSucceeded stores the document confirmed by the server.
func (s *Store) UpdateDocumentSucceeded(doc model.Document) {
	s.mutate(func() []datacache.Event {
		s.documents = upsert(s.documents, doc, documentID)
		return []datacache.Event{datacache.UpdateSucceeded{Ref: documentRef(&doc)}}
	})
}

// UpdateDocumentFailed restores original, the document returned by the
// failed patch or update.
func (s *Store) UpdateDocumentFailed(original model.Document) {
	s.mutate(func() []datacache.Event {
		if _, ok := find(s.documents, original.ID, documentID); !ok {
			s.logger.Warn("reverted document is no longer held", zap.String("document_id", original.ID))
		}
		s.documents = upsert(s.documents, original, documentID)
		return []datacache.Event{datacache.UpdateFailed{Ref: documentRef(&original)}}
	})
}

// RemoveDocument removes the document and every link instance touching it.
func (s *Store) RemoveDocument(id string) {
	s.mutate(func() []datacache.Event {
		return s.removeDocument(id)
	})
}

func (s *Store) removeDocument(id string) []datacache.Event {
	var events []datacache.Event
	if i, ok := find(s.documents, id, documentID); ok {
		events = append(events, datacache.EntityRemoved{Ref: documentRef(&s.documents[i])})
		s.documents = slices.Delete(s.documents, i, i+1)
	}
	s.linkInstances = slices.DeleteFunc(s.linkInstances, func(li model.LinkInstance) bool {
		if li.DocumentIDs[0] == id || li.DocumentIDs[1] == id {
			events = append(events, datacache.EntityRemoved{Ref: linkInstanceRef(&li)})
			return true
		}
		return false
	})
	return events
}

// CreateLinkInstance adds li under a temporary id equal to its correlation id.
func (s *Store) CreateLinkInstance(li model.LinkInstance) model.LinkInstance {
	if li.CorrelationID == "" {
		li.CorrelationID = NewCorrelationID()
	}
	li.ID = li.CorrelationID
	li.Data = model.CopyData(li.Data)

	s.mutate(func() []datacache.Event {
		s.linkInstances = upsert(s.linkInstances, li, linkInstanceID)
		return nil
	})
	return li
}

// CreateLinkInstanceSucceeded replaces the temporary link instance with the
// server one.
func (s *Store) CreateLinkInstanceSucceeded(correlationID string, created model.LinkInstance) {
	s.mutate(func() []datacache.Event {
		created.CorrelationID = correlationID
		s.linkInstances = slices.DeleteFunc(s.linkInstances, func(l model.LinkInstance) bool { return l.ID == correlationID })
		s.linkInstances = upsert(s.linkInstances, created, linkInstanceID)
		return []datacache.Event{datacache.Created{Ref: linkInstanceRef(&created), PreviousID: correlationID}}
	})
}

// CreateLinkInstanceFailed removes the temporary link instance.
func (s *Store) CreateLinkInstanceFailed(correlationID string) {
	s.RemoveLinkInstance(correlationID)
}

// PatchLinkInstanceData merges patch into the data of the link instance and
// returns it as it was before.
func (s *Store) PatchLinkInstanceData(id string, patch map[string]any) (model.LinkInstance, error) {
	return s.changeLinkInstanceData(id, func(data map[string]any) map[string]any {
		patched := model.CopyData(data)
		if patched == nil {
			patched = make(map[string]any, len(patch))
		}
		maps.Copy(patched, patch)
		return patched
	}, func(ref datacache.EntityRef) datacache.Event { return datacache.Patched{Ref: ref} })
}

// UpdateLinkInstanceData replaces the data of the link instance and returns
// it as it was before.
func (s *Store) UpdateLinkInstanceData(id string, data map[string]any) (model.LinkInstance, error) {
	return s.changeLinkInstanceData(id, func(map[string]any) map[string]any {
		return model.CopyData(data)
	}, func(ref datacache.EntityRef) datacache.Event { return datacache.Updated{Ref: ref} })
}

func (s *Store) changeLinkInstanceData(id string, change func(map[string]any) map[string]any, event func(datacache.EntityRef) datacache.Event) (model.LinkInstance, error) {
	var (
		original model.LinkInstance
		err      error
	)
	s.mutate(func() []datacache.Event {
		i, ok := find(s.linkInstances, id, linkInstanceID)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrLinkInstanceNotFound, id)
			return nil
		}
		original = s.linkInstances[i]
		s.linkInstances[i].Data = change(original.Data)
		return []datacache.Event{event(linkInstanceRef(&original))}
	})
	return original, err
}

func (s *Store) UpdateLinkInstanceSucceeded(li model.LinkInstance) {
	s.mutate(func() []datacache.Event {
		s.linkInstances = upsert(s.linkInstances, li, linkInstanceID)
		return []datacache.Event{datacache.UpdateSucceeded{Ref: linkInstanceRef(&li)}}
	})
}

func (s *Store) UpdateLinkInstanceFailed(original model.LinkInstance) {
	s.mutate(func() []datacache.Event {
		s.linkInstances = upsert(s.linkInstances, original, linkInstanceID)
		return []datacache.Event{datacache.UpdateFailed{Ref: linkInstanceRef(&original)}}
	})
}

func (s *Store) RemoveLinkInstance(id string) {
	s.mutate(func() []datacache.Event {
		i, ok := find(s.linkInstances, id, linkInstanceID)
		if !ok {
			return nil
		}
		event := datacache.EntityRemoved{Ref: linkInstanceRef(&s.linkInstances[i])}
		s.linkInstances = slices.Delete(s.linkInstances, i, i+1)
		return []datacache.Event{event}
	})
}
