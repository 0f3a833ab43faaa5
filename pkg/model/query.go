package model

// ConditionType is the operator of an attribute filter.
type ConditionType string

const (
	ConditionEquals         ConditionType = "eq"
	ConditionNotEquals      ConditionType = "neq"
	ConditionLowerThan      ConditionType = "lt"
	ConditionLowerThanEqual ConditionType = "lte"
	ConditionGreaterThan    ConditionType = "gt"
	ConditionGreaterThanEq  ConditionType = "gte"
	ConditionIn             ConditionType = "in"
	ConditionHasSome        ConditionType = "hasSome"
	ConditionHasAll         ConditionType = "hasAll"
	ConditionHasNoneOf      ConditionType = "nin"
	ConditionBetween        ConditionType = "between"
	ConditionNotBetween     ConditionType = "notBetween"
	ConditionContains       ConditionType = "contains"
	ConditionNotContains    ConditionType = "notContains"
	ConditionStartsWith     ConditionType = "startsWith"
	ConditionEndsWith       ConditionType = "endsWith"
	ConditionIsEmpty        ConditionType = "empty"
	ConditionNotEmpty       ConditionType = "notEmpty"
	ConditionEnabled        ConditionType = "enabled"
	ConditionDisabled       ConditionType = "disabled"
)

// ConditionValue is one operand of a condition. Type is empty for literal
// values; "currentUser" and similar dynamic operands set it instead.
type ConditionValue struct {
	Type  string `json:"type,omitempty"`
	Value any    `json:"value,omitempty"`
}

// CollectionAttributeFilter constrains one attribute of a collection at any
// hop of a stem where that collection appears.
type CollectionAttributeFilter struct {
	CollectionID    string           `json:"collectionId"`
	AttributeID     string           `json:"attributeId"`
	Condition       ConditionType    `json:"condition"`
	ConditionValues []ConditionValue `json:"conditionValues,omitempty"`
}

// LinkAttributeFilter constrains one attribute of link instances of a link type.
type LinkAttributeFilter struct {
	LinkTypeID      string           `json:"linkTypeId"`
	AttributeID     string           `json:"attributeId"`
	Condition       ConditionType    `json:"condition"`
	ConditionValues []ConditionValue `json:"conditionValues,omitempty"`
}

// QueryStem is a root collection plus an ordered chain of link types.
type QueryStem struct {
	ID           string                      `json:"id,omitempty"`
	CollectionID string                      `json:"collectionId"`
	LinkTypeIDs  []string                    `json:"linkTypeIds,omitempty"`
	DocumentIDs  []string                    `json:"documentIds,omitempty"`
	Filters      []CollectionAttributeFilter `json:"filters,omitempty"`
	LinkFilters  []LinkAttributeFilter       `json:"linkFilters,omitempty"`
}

// Query selects documents and link instances. Page and PageSize are zero
// when the query is not paginated.
type Query struct {
	Stems     []QueryStem `json:"stems,omitempty"`
	Fulltexts []string    `json:"fulltexts,omitempty"`
	Page      int         `json:"page,omitempty"`
	PageSize  int         `json:"pageSize,omitempty"`
}

// IsPaginated reports whether the query requests a single page.
func (q *Query) IsPaginated() bool {
	return q.PageSize > 0
}

// DataQuery is a query as fetched from the remote layer.
type DataQuery struct {
	Query
	IncludeSubItems bool `json:"includeSubItems,omitempty"`
}
