package perspective

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kubedo8/web-ui/pkg/id"
	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/query"
)

const (
	KanbanConfigVersion = "2"

	defaultColumnWidth = 300
	defaultCardLayout  = "half"
	defaultColumnSize  = "m"
)

type KanbanConfig struct {
	Columns      []KanbanColumn     `json:"columns"`
	OtherColumn  *KanbanColumn      `json:"otherColumn,omitempty"`
	StemsConfigs []KanbanStemConfig `json:"stemsConfigs"`
	Version      string             `json:"version,omitempty"`
	CardLayout   string             `json:"cardLayout,omitempty"`
	ColumnSize   string             `json:"columnSize,omitempty"`
}

// KanbanStemConfig selects the attribute whose values form the columns of
// the cards of one stem.
type KanbanStemConfig struct {
	Attribute        *QueryAttribute  `json:"attribute,omitempty"`
	Stem             *model.QueryStem `json:"stem,omitempty"`
	DueDate          *QueryAttribute  `json:"dueDate,omitempty"`
	DoneColumnTitles []string         `json:"doneColumnTitles,omitempty"`
	Aggregation      *QueryAttribute  `json:"aggregation,omitempty"`
}

type KanbanColumn struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Width          int                   `json:"width"`
	ConstraintType model.ConstraintType  `json:"constraintType,omitempty"`
	ResourcesOrder []KanbanResourceOrder `json:"resourcesOrder,omitempty"`
}

// KanbanResourceOrder places one card within a column.
type KanbanResourceOrder struct {
	ID           string             `json:"id"`
	ResourceType model.ResourceType `json:"resourceType"`
	StemIndex    int                `json:"stemIndex"`
}

// DefaultKanbanConfig has one empty stem config per stem of q.
func DefaultKanbanConfig(q *model.Query) KanbanConfig {
	config := KanbanConfig{
		Columns:    []KanbanColumn{},
		Version:    KanbanConfigVersion,
		CardLayout: defaultCardLayout,
		ColumnSize: defaultColumnSize,
	}
	if q != nil {
		for i := range q.Stems {
			config.StemsConfigs = append(config.StemsConfigs, defaultKanbanStemConfig(q.Stems[i]))
		}
	}
	return config
}

func defaultKanbanStemConfig(stem model.QueryStem) KanbanStemConfig {
	return KanbanStemConfig{Stem: &stem, DoneColumnTitles: []string{}}
}

// ReconcileKanban re-pairs the stem configs of config with the stems of q and
// re-validates their attribute references against the current schema. A nil
// config yields the default one.
func ReconcileKanban(config *KanbanConfig, q *model.Query, collections []model.Collection, linkTypes []model.LinkType) KanbanConfig {
	if config == nil {
		return DefaultKanbanConfig(q)
	}

	result := *config
	result.StemsConfigs = nil
	if q == nil {
		return result
	}

	paired := pairStemConfigs(config.StemsConfigs, func(c KanbanStemConfig) *model.QueryStem { return c.Stem }, q.Stems)
	for i, stemConfig := range paired {
		result.StemsConfigs = append(result.StemsConfigs, reconcileKanbanStemConfig(stemConfig, q.Stems[i], collections, linkTypes))
	}
	return result
}

func reconcileKanbanStemConfig(stemConfig *KanbanStemConfig, stem model.QueryStem, collections []model.Collection, linkTypes []model.LinkType) KanbanStemConfig {
	if stemConfig == nil || stemConfig.Attribute == nil {
		return defaultKanbanStemConfig(stem)
	}

	resources := query.AttributesResourcesOrder(&stem, collections, linkTypes)
	return KanbanStemConfig{
		Attribute:        CheckOrTransformAttribute(stemConfig.Attribute, resources),
		Stem:             &stem,
		DueDate:          CheckOrTransformAttribute(stemConfig.DueDate, resources),
		DoneColumnTitles: slices.Clone(stemConfig.DoneColumnTitles),
		Aggregation:      CheckOrTransformAttribute(stemConfig.Aggregation, resources),
	}
}

// IsKanbanConfigEmpty reports whether no stem config selects an attribute.
func IsKanbanConfigEmpty(config *KanbanConfig) bool {
	if config == nil {
		return true
	}
	for _, stemConfig := range config.StemsConfigs {
		if stemConfig.Attribute != nil {
			return false
		}
	}
	return true
}

// RebuildKanbanColumns lays the cards out into columns by the values of the
// configured attributes. Existing columns keep their order, width and card
// order; newly seen values are appended as new columns and cards without a
// value go to the other column.
func RebuildKanbanColumns(config KanbanConfig, documents []model.Document, linkInstances []model.LinkInstance, collections []model.Collection, linkTypes []model.LinkType) KanbanConfig {
	collectionsByID := model.CollectionsByID(collections)
	linkTypesByID := model.LinkTypesByID(linkTypes)

	var titles []string
	cards := make(map[string][]KanbanResourceOrder)
	constraintTypes := make(map[string]model.ConstraintType)
	var otherCards []KanbanResourceOrder

	place := func(raw any, order KanbanResourceOrder, constraintType model.ConstraintType) {
		values := columnTitles(raw)
		if len(values) == 0 {
			otherCards = append(otherCards, order)
			return
		}
		for _, title := range values {
			if _, ok := cards[title]; !ok {
				titles = append(titles, title)
				constraintTypes[title] = constraintType
			}
			cards[title] = append(cards[title], order)
		}
	}

	for stemIndex, stemConfig := range config.StemsConfigs {
		attr := stemConfig.Attribute
		if attr == nil {
			continue
		}

		switch attr.ResourceType {
		case model.ResourceTypeCollection:
			collection, ok := collectionsByID[attr.ResourceID]
			if !ok {
				continue
			}
			constraintType := attributeConstraintType(collection.Attributes, attr.AttributeID)
			for _, doc := range documents {
				if doc.CollectionID == attr.ResourceID {
					place(doc.Data[attr.AttributeID], KanbanResourceOrder{ID: doc.ID, ResourceType: model.ResourceTypeCollection, StemIndex: stemIndex}, constraintType)
				}
			}
		case model.ResourceTypeLinkType:
			linkType, ok := linkTypesByID[attr.ResourceID]
			if !ok {
				continue
			}
			constraintType := attributeConstraintType(linkType.Attributes, attr.AttributeID)
			for _, li := range linkInstances {
				if li.LinkTypeID == attr.ResourceID {
					place(li.Data[attr.AttributeID], KanbanResourceOrder{ID: li.ID, ResourceType: model.ResourceTypeLinkType, StemIndex: stemIndex}, constraintType)
				}
			}
		}
	}

	result := config
	result.Columns = make([]KanbanColumn, 0, len(config.Columns)+len(titles))
	existing := make(map[string]bool, len(config.Columns))
	for _, column := range config.Columns {
		existing[column.Title] = true
		column.ResourcesOrder = mergeResourcesOrder(column.ResourcesOrder, cards[column.Title])
		if constraintType, ok := constraintTypes[column.Title]; ok {
			column.ConstraintType = constraintType
		}
		result.Columns = append(result.Columns, column)
	}
	for _, title := range titles {
		if existing[title] {
			continue
		}
		result.Columns = append(result.Columns, KanbanColumn{
			ID:             id.New(),
			Title:          title,
			Width:          defaultColumnWidth,
			ConstraintType: constraintTypes[title],
			ResourcesOrder: mergeResourcesOrder(nil, cards[title]),
		})
	}

	if len(otherCards) > 0 || config.OtherColumn != nil {
		other := KanbanColumn{ID: id.New(), Width: defaultColumnWidth}
		if config.OtherColumn != nil {
			other = *config.OtherColumn
		}
		other.ResourcesOrder = mergeResourcesOrder(other.ResourcesOrder, otherCards)
		result.OtherColumn = &other
	}
	return result
}

func attributeConstraintType(attributes []model.Attribute, attributeID string) model.ConstraintType {
	if attr := model.FindAttribute(attributes, attributeID); attr != nil && attr.Constraint != nil {
		return attr.Constraint.Type
	}
	return model.ConstraintTypeNone
}

// mergeResourcesOrder keeps the previous position of cards still present and
// appends the new ones in the order they were seen.
func mergeResourcesOrder(previous, current []KanbanResourceOrder) []KanbanResourceOrder {
	present := make(map[KanbanResourceOrder]bool, len(current))
	for _, order := range current {
		present[order] = true
	}

	merged := make([]KanbanResourceOrder, 0, len(current))
	seen := make(map[KanbanResourceOrder]bool, len(current))
	for _, order := range previous {
		if present[order] && !seen[order] {
			merged = append(merged, order)
			seen[order] = true
		}
	}
	for _, order := range current {
		if !seen[order] {
			merged = append(merged, order)
			seen[order] = true
		}
	}
	return merged
}

func columnTitles(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return slices.DeleteFunc(slices.Clone(v), func(s string) bool { return s == "" })
	case []any:
		titles := make([]string, 0, len(v))
		for _, item := range v {
			titles = append(titles, columnTitles(item)...)
		}
		return titles
	default:
		return []string{fmt.Sprint(v)}
	}
}

// IsKanbanConfigChanged reports whether current differs from the persisted
// config in anything worth saving. Column ids and constraint types are
// derived and do not count.
func IsKanbanConfigChanged(persisted, current *KanbanConfig) bool {
	if persisted == nil || current == nil {
		return persisted != current
	}

	if !cmp.Equal(normalizeKanbanStemsConfigs(persisted.StemsConfigs), normalizeKanbanStemsConfigs(current.StemsConfigs), cmpopts.EquateEmpty()) {
		return true
	}
	if len(persisted.Columns) != len(current.Columns) {
		return true
	}
	for i := range persisted.Columns {
		if kanbanColumnChanged(&persisted.Columns[i], &current.Columns[i]) {
			return true
		}
	}
	return kanbanColumnChanged(persisted.OtherColumn, current.OtherColumn)
}

func normalizeKanbanStemsConfigs(configs []KanbanStemConfig) []KanbanStemConfig {
	normalized := make([]KanbanStemConfig, len(configs))
	for i, config := range configs {
		if config.Stem != nil {
			stem := query.NormalizeStem(*config.Stem)
			config.Stem = &stem
		}
		normalized[i] = config
	}
	return normalized
}

func kanbanColumnChanged(a, b *KanbanColumn) bool {
	if a == nil || b == nil {
		return (a == nil) != (b == nil)
	}
	return a.Title != b.Title || a.Width != b.Width || !slices.Equal(orderIDs(a.ResourcesOrder), orderIDs(b.ResourcesOrder))
}

func orderIDs(orders []KanbanResourceOrder) []string {
	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	return ids
}
