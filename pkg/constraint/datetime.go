package constraint

import (
	"strings"
	"time"

	"github.com/kubedo8/web-ui/pkg/model"
)

const defaultDateTimeLayout = "2006-01-02 15:04"

// ConditionValueToday is the operand type resolved to the start of the current day.
const ConditionValueToday = "today"

// now is replaced in tests.
var now = time.Now

type dateTimeConstraint struct {
	layout string
}

func (dateTimeConstraint) Type() model.ConstraintType {
	return model.ConstraintTypeDateTime
}

func (c dateTimeConstraint) CreateDataValue(raw any, data *Data) Value {
	t, ok := parseTime(raw, c.layout, data.location())
	return &DateTimeValue{raw: raw, time: t, valid: ok, layout: c.layout, location: data.location()}
}

func parseTime(raw any, layout string, loc *time.Location) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case float64:
		return time.UnixMilli(int64(v)), true
	case int64:
		return time.UnixMilli(v), true
	case int:
		return time.UnixMilli(int64(v)), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, l := range []string{time.RFC3339Nano, layout, time.DateOnly} {
			if t, err := time.ParseInLocation(l, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// DateTimeValue orders by instant and formats with the attribute's layout.
type DateTimeValue struct {
	raw      any
	time     time.Time
	valid    bool
	layout   string
	location *time.Location
}

func (v *DateTimeValue) Serialize() any {
	if !v.valid {
		return v.raw
	}
	return v.time.UTC().Format(time.RFC3339)
}

func (v *DateTimeValue) Format() string {
	if !v.valid {
		return rawToString(v.raw)
	}
	return v.time.In(v.location).Format(v.layout)
}

func (v *DateTimeValue) IsEmpty() bool {
	return !v.valid && strings.TrimSpace(rawToString(v.raw)) == ""
}

func (v *DateTimeValue) operand(cv model.ConditionValue) (time.Time, bool) {
	if cv.Type == ConditionValueToday {
		y, m, d := now().In(v.location).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, v.location), true
	}
	return parseTime(cv.Value, v.layout, v.location)
}

func (v *DateTimeValue) MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool {
	switch cond {
	case model.ConditionIsEmpty:
		return v.IsEmpty()
	case model.ConditionNotEmpty:
		return !v.IsEmpty()
	case model.ConditionContains, model.ConditionNotContains, model.ConditionStartsWith, model.ConditionEndsWith:
		return meetsTextCondition(v.Format(), cond, operandStrings(values))
	}

	operands := make([]time.Time, 0, len(values))
	for _, cv := range values {
		if t, ok := v.operand(cv); ok {
			operands = append(operands, t)
		}
	}
	if len(operands) == 0 {
		return true
	}
	if !v.valid {
		return cond == model.ConditionNotEquals || cond == model.ConditionNotBetween
	}

	// Equality is judged at the precision the layout displays.
	same := func(t time.Time) bool {
		return v.time.In(v.location).Format(v.layout) == t.In(v.location).Format(v.layout)
	}
	first := operands[0]
	switch cond {
	case model.ConditionEquals:
		return same(first)
	case model.ConditionNotEquals:
		return !same(first)
	case model.ConditionLowerThan:
		return v.time.Before(first) && !same(first)
	case model.ConditionLowerThanEqual:
		return v.time.Before(first) || same(first)
	case model.ConditionGreaterThan:
		return v.time.After(first) && !same(first)
	case model.ConditionGreaterThanEq:
		return v.time.After(first) || same(first)
	case model.ConditionBetween, model.ConditionNotBetween:
		if len(operands) < 2 {
			return true
		}
		low, high := first, operands[1]
		if low.After(high) {
			low, high = high, low
		}
		between := (v.time.After(low) || same(low)) && (v.time.Before(high) || same(high))
		return between == (cond == model.ConditionBetween)
	}
	return true
}

func (v *DateTimeValue) MeetsFulltexts(terms []string) bool {
	return meetsFulltexts(v.Format(), terms)
}
