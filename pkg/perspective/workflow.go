package perspective

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kubedo8/web-ui/pkg/model"
	"github.com/kubedo8/web-ui/pkg/query"
)

const WorkflowConfigVersion = "1"

type WorkflowConfig struct {
	StemsConfigs []WorkflowStemConfig `json:"stemsConfigs"`
	Columns      []WorkflowColumn     `json:"columns,omitempty"`
	Version      string               `json:"version,omitempty"`
}

// WorkflowStemConfig selects the resource whose rows are shown for one stem
// and the attribute they are grouped by.
type WorkflowStemConfig struct {
	Stem       *model.QueryStem `json:"stem,omitempty"`
	Collection *QueryResource   `json:"collection,omitempty"`
	Attribute  *QueryAttribute  `json:"attribute,omitempty"`
}

// WorkflowColumn stores the width of one attribute column.
type WorkflowColumn struct {
	AttributeID  string             `json:"attributeId"`
	ResourceID   string             `json:"resourceId"`
	ResourceType model.ResourceType `json:"resourceType"`
	Width        int                `json:"width"`
}

func DefaultWorkflowConfig(q *model.Query) WorkflowConfig {
	config := WorkflowConfig{Version: WorkflowConfigVersion}
	if q != nil {
		for i := range q.Stems {
			stem := q.Stems[i]
			config.StemsConfigs = append(config.StemsConfigs, WorkflowStemConfig{Stem: &stem})
		}
	}
	return config
}

// ReconcileWorkflow re-pairs the stem configs of config with the stems of q,
// re-validates their references and drops column settings of attributes
// that no longer exist.
func ReconcileWorkflow(config *WorkflowConfig, q *model.Query, collections []model.Collection, linkTypes []model.LinkType) WorkflowConfig {
	if config == nil {
		return DefaultWorkflowConfig(q)
	}

	result := *config
	result.StemsConfigs = nil
	if q != nil {
		paired := pairStemConfigs(config.StemsConfigs, func(c WorkflowStemConfig) *model.QueryStem { return c.Stem }, q.Stems)
		for i, stemConfig := range paired {
			stem := q.Stems[i]
			reconciled := WorkflowStemConfig{Stem: &stem}
			if stemConfig != nil {
				resources := query.AttributesResourcesOrder(&stem, collections, linkTypes)
				reconciled.Collection = CheckOrTransformResource(stemConfig.Collection, resources)
				reconciled.Attribute = CheckOrTransformAttribute(stemConfig.Attribute, resources)
			}
			result.StemsConfigs = append(result.StemsConfigs, reconciled)
		}
	}

	collectionsByID := model.CollectionsByID(collections)
	linkTypesByID := model.LinkTypesByID(linkTypes)
	result.Columns = nil
	for _, column := range config.Columns {
		var attributes []model.Attribute
		switch column.ResourceType {
		case model.ResourceTypeCollection:
			if c, ok := collectionsByID[column.ResourceID]; ok {
				attributes = c.Attributes
			}
		case model.ResourceTypeLinkType:
			if l, ok := linkTypesByID[column.ResourceID]; ok {
				attributes = l.Attributes
			}
		}
		if model.FindAttribute(attributes, column.AttributeID) != nil {
			result.Columns = append(result.Columns, column)
		}
	}
	return result
}

// IsWorkflowConfigChanged reports whether current differs from persisted.
func IsWorkflowConfigChanged(persisted, current *WorkflowConfig) bool {
	if persisted == nil || current == nil {
		return persisted != current
	}
	normalize := func(configs []WorkflowStemConfig) []WorkflowStemConfig {
		normalized := make([]WorkflowStemConfig, len(configs))
		for i, config := range configs {
			if config.Stem != nil {
				stem := query.NormalizeStem(*config.Stem)
				config.Stem = &stem
			}
			normalized[i] = config
		}
		return normalized
	}
	return !cmp.Equal(normalize(persisted.StemsConfigs), normalize(current.StemsConfigs), cmpopts.EquateEmpty()) ||
		!cmp.Equal(persisted.Columns, current.Columns, cmpopts.EquateEmpty()) ||
		persisted.Version != current.Version
}
