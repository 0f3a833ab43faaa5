// Package constraint turns raw attribute values into typed data values that
// know how to format themselves and evaluate filter conditions.
package constraint

import (
	"time"

	"github.com/kubedo8/web-ui/pkg/model"
)

// Data is shared state needed to interpret values, such as the user
// directory for user constraints.
type Data struct {
	CurrentUserEmail string
	Users            []model.User
	// Location is used to format and compare date-time values. UTC when nil.
	Location *time.Location
}

func (d *Data) location() *time.Location {
	if d == nil || d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func (d *Data) userByEmail(email string) *model.User {
	if d == nil {
		return nil
	}
	for i := range d.Users {
		if normalizeText(d.Users[i].Email) == normalizeText(email) {
			return &d.Users[i]
		}
	}
	return nil
}

// Value is a data value that can be matched against filters.
type Value interface {
	model.DataValue
	// MeetsCondition evaluates cond against the operands. Conditions that do
	// not apply to the value type, or lack required operands, are met.
	MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool
	// MeetsFulltexts reports whether any of the terms occurs in the formatted value.
	MeetsFulltexts(terms []string) bool
}

type Constraint interface {
	Type() model.ConstraintType
	CreateDataValue(raw any, data *Data) Value
}

// ForAttribute returns the constraint of attr. Attributes without a known
// constraint behave as text.
func ForAttribute(attr *model.Attribute) Constraint {
	if attr == nil || attr.Constraint == nil {
		return textConstraint{}
	}

	config := attr.Constraint.Config
	switch attr.Constraint.Type {
	case model.ConstraintTypeNumber:
		return numberConstraint{decimals: configInt(config, "decimals", -1)}
	case model.ConstraintTypeBoolean:
		return booleanConstraint{}
	case model.ConstraintTypeSelect:
		return selectConstraint{
			options:       configOptions(config),
			multi:         configBool(config, "multi"),
			displayValues: !configBool(config, "hideDisplayValues"),
		}
	case model.ConstraintTypeUser:
		return userConstraint{multi: configBool(config, "multi")}
	case model.ConstraintTypeDateTime:
		return dateTimeConstraint{layout: configString(config, "format", defaultDateTimeLayout)}
	default:
		return textConstraint{}
	}
}

// CreateDataValues derives the data values of every attribute present in data.
// Keys of data without an attribute definition are interpreted as text.
func CreateDataValues(data map[string]any, attributes []model.Attribute, constraintData *Data) model.DataValues {
	values := make(model.DataValues, len(data))
	for attributeID, raw := range data {
		values[attributeID] = ForAttribute(model.FindAttribute(attributes, attributeID)).CreateDataValue(raw, constraintData)
	}
	return values
}

func configInt(config map[string]any, key string, fallback int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func configBool(config map[string]any, key string) bool {
	v, _ := config[key].(bool)
	return v
}

func configString(config map[string]any, key, fallback string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
