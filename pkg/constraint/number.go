package constraint

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kubedo8/web-ui/pkg/model"
)

type numberConstraint struct {
	// decimals is the number of fraction digits to format, -1 for as many as needed.
	decimals int
}

func (numberConstraint) Type() model.ConstraintType {
	return model.ConstraintTypeNumber
}

func (c numberConstraint) CreateDataValue(raw any, _ *Data) Value {
	n, ok := parseNumber(raw)
	return &NumberValue{raw: raw, number: n, valid: ok, decimals: c.decimals}
}

func parseNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// NumberValue orders numerically. Unparsable input keeps its text form and
// falls back to text semantics.
type NumberValue struct {
	raw      any
	number   float64
	valid    bool
	decimals int
}

func (v *NumberValue) Serialize() any {
	if v.valid {
		return v.number
	}
	return v.raw
}

func (v *NumberValue) Format() string {
	if !v.valid {
		return rawToString(v.raw)
	}
	return strconv.FormatFloat(v.number, 'f', v.decimals, 64)
}

func (v *NumberValue) IsEmpty() bool {
	return !v.valid && strings.TrimSpace(rawToString(v.raw)) == ""
}

func (v *NumberValue) MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool {
	switch cond {
	case model.ConditionIsEmpty:
		return v.IsEmpty()
	case model.ConditionNotEmpty:
		return !v.IsEmpty()
	case model.ConditionContains, model.ConditionNotContains, model.ConditionStartsWith, model.ConditionEndsWith:
		return meetsTextCondition(v.Format(), cond, operandStrings(values))
	}

	operands := make([]float64, 0, len(values))
	for _, cv := range values {
		if cv.Value == nil {
			continue
		}
		n, ok := parseNumber(cv.Value)
		if !ok {
			return meetsTextCondition(v.Format(), cond, operandStrings(values))
		}
		operands = append(operands, n)
	}
	if len(operands) == 0 {
		return true
	}
	if !v.valid {
		return cond == model.ConditionNotEquals || cond == model.ConditionHasNoneOf || cond == model.ConditionNotBetween
	}

	first := operands[0]
	switch cond {
	case model.ConditionEquals:
		return v.number == first
	case model.ConditionNotEquals:
		return v.number != first
	case model.ConditionLowerThan:
		return v.number < first
	case model.ConditionLowerThanEqual:
		return v.number <= first
	case model.ConditionGreaterThan:
		return v.number > first
	case model.ConditionGreaterThanEq:
		return v.number >= first
	case model.ConditionBetween, model.ConditionNotBetween:
		if len(operands) < 2 {
			return true
		}
		low, high := first, operands[1]
		if low > high {
			low, high = high, low
		}
		between := v.number >= low && v.number <= high
		return between == (cond == model.ConditionBetween)
	case model.ConditionIn, model.ConditionHasSome:
		for _, op := range operands {
			if v.number == op {
				return true
			}
		}
		return false
	case model.ConditionHasNoneOf:
		for _, op := range operands {
			if v.number == op {
				return false
			}
		}
		return true
	case model.ConditionHasAll:
		for _, op := range operands {
			if v.number != op {
				return false
			}
		}
		return true
	}
	return true
}

func (v *NumberValue) MeetsFulltexts(terms []string) bool {
	return meetsFulltexts(v.Format(), terms)
}
