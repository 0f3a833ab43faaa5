package model

import "time"

// DataValue is a typed view over one raw attribute value.
type DataValue interface {
	// Serialize returns the value in its storable form.
	Serialize() any
	// Format returns the human readable representation.
	Format() string
	IsEmpty() bool
}

// DataValues maps attribute ids to derived values. It is never persisted.
type DataValues map[string]DataValue

// DataResource is implemented by Document and LinkInstance.
type DataResource interface {
	GetID() string
	GetResourceID() string
	GetData() map[string]any
	ResourceType() ResourceType
}

type Document struct {
	ID            string         `json:"id"`
	CollectionID  string         `json:"collectionId"`
	CorrelationID string         `json:"correlationId,omitempty"`
	ParentID      string         `json:"parentId,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	DataValues    DataValues     `json:"-"`
	CreationDate  time.Time      `json:"creationDate"`
	UpdateDate    time.Time      `json:"updateDate,omitempty"`
}

var _ DataResource = (*Document)(nil)

func (d *Document) GetID() string              { return d.ID }
func (d *Document) GetResourceID() string      { return d.CollectionID }
func (d *Document) GetData() map[string]any    { return d.Data }
func (d *Document) ResourceType() ResourceType { return ResourceTypeCollection }

type LinkInstance struct {
	ID            string         `json:"id"`
	LinkTypeID    string         `json:"linkTypeId"`
	CorrelationID string         `json:"correlationId,omitempty"`
	DocumentIDs   [2]string      `json:"documentIds"`
	Data          map[string]any `json:"data,omitempty"`
	DataValues    DataValues     `json:"-"`
	CreationDate  time.Time      `json:"creationDate"`
	UpdateDate    time.Time      `json:"updateDate,omitempty"`
}

var _ DataResource = (*LinkInstance)(nil)

func (l *LinkInstance) GetID() string              { return l.ID }
func (l *LinkInstance) GetResourceID() string      { return l.LinkTypeID }
func (l *LinkInstance) GetData() map[string]any    { return l.Data }
func (l *LinkInstance) ResourceType() ResourceType { return ResourceTypeLinkType }

// OtherDocumentID returns the document on the opposite end of documentID.
func (l *LinkInstance) OtherDocumentID(documentID string) (string, bool) {
	switch documentID {
	case l.DocumentIDs[0]:
		return l.DocumentIDs[1], true
	case l.DocumentIDs[1]:
		return l.DocumentIDs[0], true
	}
	return "", false
}

// CopyData returns a shallow copy of data so callers can patch without
// mutating a shared snapshot.
func CopyData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// DocumentsByID indexes documents by id.
func DocumentsByID(documents []Document) map[string]*Document {
	m := make(map[string]*Document, len(documents))
	for i := range documents {
		m[documents[i].ID] = &documents[i]
	}
	return m
}
