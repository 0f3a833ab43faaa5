package constraint

import (
	"strconv"
	"strings"

	"github.com/kubedo8/web-ui/pkg/model"
)

type booleanConstraint struct{}

func (booleanConstraint) Type() model.ConstraintType {
	return model.ConstraintTypeBoolean
}

func (booleanConstraint) CreateDataValue(raw any, _ *Data) Value {
	return &BooleanValue{value: parseBool(raw)}
}

func parseBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// BooleanValue treats anything that is not a recognisable true as false.
type BooleanValue struct {
	value bool
}

func (v *BooleanValue) Serialize() any {
	return v.value
}

func (v *BooleanValue) Format() string {
	return strconv.FormatBool(v.value)
}

func (v *BooleanValue) IsEmpty() bool {
	return !v.value
}

func (v *BooleanValue) MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool {
	switch cond {
	case model.ConditionEnabled:
		return v.value
	case model.ConditionDisabled:
		return !v.value
	case model.ConditionIsEmpty:
		return !v.value
	case model.ConditionNotEmpty:
		return v.value
	case model.ConditionEquals, model.ConditionNotEquals:
		if len(values) == 0 || values[0].Value == nil {
			return true
		}
		equal := v.value == parseBool(values[0].Value)
		return equal == (cond == model.ConditionEquals)
	}
	return true
}

func (v *BooleanValue) MeetsFulltexts(terms []string) bool {
	return meetsFulltexts(v.Format(), terms)
}
