// Package model contains the entities the core reasons about: resources
// (collections and link types), data resources (documents and link
// instances), queries and permissions.
package model

// ResourceType distinguishes the two kinds of attribute-owning resources.
type ResourceType string

const (
	ResourceTypeCollection ResourceType = "collection"
	ResourceTypeLinkType   ResourceType = "linkType"
)

// ConstraintType names the value type of an attribute.
type ConstraintType string

const (
	ConstraintTypeNone     ConstraintType = "None"
	ConstraintTypeText     ConstraintType = "Text"
	ConstraintTypeNumber   ConstraintType = "Number"
	ConstraintTypeBoolean  ConstraintType = "Boolean"
	ConstraintTypeSelect   ConstraintType = "Select"
	ConstraintTypeUser     ConstraintType = "User"
	ConstraintTypeDateTime ConstraintType = "DateTime"
)

// Constraint governs how raw values of an attribute are parsed, formatted and compared.
type Constraint struct {
	Type   ConstraintType `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Attribute is identified by its immutable ID. Names are mutable and unique
// within the owning resource.
type Attribute struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Constraint *Constraint `json:"constraint,omitempty"`
}

// Permission lists the roles granted to one user or group.
type Permission struct {
	ID    string `json:"id"`
	Roles []Role `json:"roles"`
}

// Permissions is the permission block carried by every permission-bearing entity.
type Permissions struct {
	Users  []Permission `json:"users,omitempty"`
	Groups []Permission `json:"groups,omitempty"`
}

// AttributesResource is implemented by Collection and LinkType.
type AttributesResource interface {
	GetID() string
	GetAttributes() []Attribute
	GetPermissions() Permissions
	Type() ResourceType
}

type Collection struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Color              string      `json:"color,omitempty"`
	Icon               string      `json:"icon,omitempty"`
	Attributes         []Attribute `json:"attributes,omitempty"`
	DefaultAttributeID string      `json:"defaultAttributeId,omitempty"`
	Permissions        Permissions `json:"permissions,omitempty"`
	Version            int64       `json:"version,omitempty"`
}

var _ AttributesResource = (*Collection)(nil)

func (c *Collection) GetID() string               { return c.ID }
func (c *Collection) GetAttributes() []Attribute  { return c.Attributes }
func (c *Collection) GetPermissions() Permissions { return c.Permissions }
func (c *Collection) Type() ResourceType          { return ResourceTypeCollection }

// LinkType connects exactly two collections. Both ids may be equal for self-links.
type LinkType struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	CollectionIDs [2]string   `json:"collectionIds"`
	Attributes    []Attribute `json:"attributes,omitempty"`
	Permissions   Permissions `json:"permissions,omitempty"`
	Version       int64       `json:"version,omitempty"`
}

var _ AttributesResource = (*LinkType)(nil)

func (l *LinkType) GetID() string               { return l.ID }
func (l *LinkType) GetAttributes() []Attribute  { return l.Attributes }
func (l *LinkType) GetPermissions() Permissions { return l.Permissions }
func (l *LinkType) Type() ResourceType          { return ResourceTypeLinkType }

// OtherCollectionID returns the collection on the opposite side of collectionID.
// The second result is false if the link type does not touch collectionID.
func (l *LinkType) OtherCollectionID(collectionID string) (string, bool) {
	switch collectionID {
	case l.CollectionIDs[0]:
		return l.CollectionIDs[1], true
	case l.CollectionIDs[1]:
		return l.CollectionIDs[0], true
	}
	return "", false
}

// IsSelfLink reports whether both ends belong to the same collection.
func (l *LinkType) IsSelfLink() bool {
	return l.CollectionIDs[0] == l.CollectionIDs[1]
}

// FindAttribute returns the attribute with the given id, or nil.
func FindAttribute(attributes []Attribute, attributeID string) *Attribute {
	for i := range attributes {
		if attributes[i].ID == attributeID {
			return &attributes[i]
		}
	}
	return nil
}

// FindAttributeByName resolves a human supplied attribute name. This is the
// only place where attributes are referenced by name.
func FindAttributeByName(attributes []Attribute, name string) *Attribute {
	for i := range attributes {
		if attributes[i].Name == name {
			return &attributes[i]
		}
	}
	return nil
}

// CollectionsByID indexes collections by id.
func CollectionsByID(collections []Collection) map[string]*Collection {
	m := make(map[string]*Collection, len(collections))
	for i := range collections {
		m[collections[i].ID] = &collections[i]
	}
	return m
}

// LinkTypesByID indexes link types by id.
func LinkTypesByID(linkTypes []LinkType) map[string]*LinkType {
	m := make(map[string]*LinkType, len(linkTypes))
	for i := range linkTypes {
		m[linkTypes[i].ID] = &linkTypes[i]
	}
	return m
}
