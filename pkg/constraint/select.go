package constraint

import (
	"slices"
	"strings"

	"github.com/kubedo8/web-ui/pkg/model"
)

// SelectOption is one allowed value of a select attribute.
type SelectOption struct {
	Value        string
	DisplayValue string
}

func configOptions(config map[string]any) []SelectOption {
	items, _ := config["options"].([]any)
	options := make([]SelectOption, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		options = append(options, SelectOption{
			Value:        rawToString(m["value"]),
			DisplayValue: rawToString(m["displayValue"]),
		})
	}
	return options
}

func rawToStrings(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := rawToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := rawToString(raw); s != "" {
		return []string{s}
	}
	return nil
}

// meetsSetCondition evaluates set conditions over normalized keys. Scalar
// conditions compare the whole set, so a single valued attribute behaves
// like a plain equality.
func meetsSetCondition(self []string, cond model.ConditionType, operands []string) bool {
	switch cond {
	case model.ConditionIsEmpty:
		return len(self) == 0
	case model.ConditionNotEmpty:
		return len(self) > 0
	}
	if len(operands) == 0 {
		return true
	}

	switch cond {
	case model.ConditionEquals, model.ConditionNotEquals:
		equal := len(self) == len(operands)
		for _, op := range operands {
			equal = equal && slices.Contains(self, op)
		}
		return equal == (cond == model.ConditionEquals)
	case model.ConditionIn, model.ConditionHasSome:
		for _, op := range operands {
			if slices.Contains(self, op) {
				return true
			}
		}
		return false
	case model.ConditionHasAll:
		for _, op := range operands {
			if !slices.Contains(self, op) {
				return false
			}
		}
		return true
	case model.ConditionHasNoneOf:
		for _, op := range operands {
			if slices.Contains(self, op) {
				return false
			}
		}
		return true
	}
	return true
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = normalizeText(v)
	}
	return out
}

type selectConstraint struct {
	options       []SelectOption
	multi         bool
	displayValues bool
}

func (selectConstraint) Type() model.ConstraintType {
	return model.ConstraintTypeSelect
}

func (c selectConstraint) CreateDataValue(raw any, _ *Data) Value {
	values := rawToStrings(raw)
	if !c.multi && len(values) > 1 {
		values = values[:1]
	}
	return &SelectValue{values: values, constraint: c}
}

// SelectValue formats option values to their display values.
type SelectValue struct {
	values     []string
	constraint selectConstraint
}

func (v *SelectValue) Serialize() any {
	if v.constraint.multi {
		return v.values
	}
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

func (v *SelectValue) Format() string {
	formatted := make([]string, 0, len(v.values))
	for _, value := range v.values {
		formatted = append(formatted, v.display(value))
	}
	return strings.Join(formatted, ", ")
}

func (v *SelectValue) display(value string) string {
	for _, option := range v.constraint.options {
		if option.Value == value {
			if v.constraint.displayValues && option.DisplayValue != "" {
				return option.DisplayValue
			}
			return option.Value
		}
	}
	return value
}

// optionIndex orders values by their position in the option list.
func (v *SelectValue) optionIndex(value string) int {
	for i, option := range v.constraint.options {
		if normalizeText(option.Value) == value {
			return i
		}
	}
	return len(v.constraint.options)
}

func (v *SelectValue) IsEmpty() bool {
	return len(v.values) == 0
}

func (v *SelectValue) MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool {
	self := normalizeAll(v.values)
	operands := make([]string, 0, len(values))
	for _, cv := range values {
		operands = append(operands, normalizeAll(rawToStrings(cv.Value))...)
	}

	switch cond {
	case model.ConditionContains, model.ConditionNotContains, model.ConditionStartsWith, model.ConditionEndsWith:
		return meetsTextCondition(v.Format(), cond, operandStrings(values))
	case model.ConditionLowerThan, model.ConditionLowerThanEqual, model.ConditionGreaterThan, model.ConditionGreaterThanEq:
		if len(operands) == 0 {
			return true
		}
		if len(self) == 0 {
			return false
		}
		a, b := v.optionIndex(self[0]), v.optionIndex(operands[0])
		switch cond {
		case model.ConditionLowerThan:
			return a < b
		case model.ConditionLowerThanEqual:
			return a <= b
		case model.ConditionGreaterThan:
			return a > b
		default:
			return a >= b
		}
	}
	return meetsSetCondition(self, cond, operands)
}

func (v *SelectValue) MeetsFulltexts(terms []string) bool {
	return meetsFulltexts(v.Format(), terms)
}
