package constraint

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kubedo8/web-ui/pkg/model"
)

// normalizeText folds case and strips diacritics so "Émile" matches "emile".
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func rawToString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func operandStrings(values []model.ConditionValue) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v.Value == nil {
			continue
		}
		out = append(out, rawToString(v.Value))
	}
	return out
}

func meetsFulltexts(formatted string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := normalizeText(formatted)
	for _, term := range terms {
		if term = normalizeText(strings.TrimSpace(term)); term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// meetsTextCondition evaluates cond on normalized strings. It is shared by
// every value type for the substring conditions.
func meetsTextCondition(self string, cond model.ConditionType, operands []string) bool {
	self = normalizeText(self)
	switch cond {
	case model.ConditionIsEmpty:
		return strings.TrimSpace(self) == ""
	case model.ConditionNotEmpty:
		return strings.TrimSpace(self) != ""
	}

	if len(operands) == 0 {
		return true
	}
	first := normalizeText(operands[0])
	switch cond {
	case model.ConditionEquals:
		return self == first
	case model.ConditionNotEquals:
		return self != first
	case model.ConditionContains:
		return strings.Contains(self, first)
	case model.ConditionNotContains:
		return !strings.Contains(self, first)
	case model.ConditionStartsWith:
		return strings.HasPrefix(self, first)
	case model.ConditionEndsWith:
		return strings.HasSuffix(self, first)
	case model.ConditionLowerThan:
		return self < first
	case model.ConditionLowerThanEqual:
		return self <= first
	case model.ConditionGreaterThan:
		return self > first
	case model.ConditionGreaterThanEq:
		return self >= first
	case model.ConditionBetween, model.ConditionNotBetween:
		if len(operands) < 2 {
			return true
		}
		second := normalizeText(operands[1])
		between := self >= first && self <= second
		return between == (cond == model.ConditionBetween)
	case model.ConditionIn, model.ConditionHasSome:
		for _, op := range operands {
			if self == normalizeText(op) {
				return true
			}
		}
		return false
	case model.ConditionHasNoneOf:
		for _, op := range operands {
			if self == normalizeText(op) {
				return false
			}
		}
		return true
	case model.ConditionHasAll:
		for _, op := range operands {
			if self != normalizeText(op) {
				return false
			}
		}
		return true
	}
	return true
}

type textConstraint struct{}

func (textConstraint) Type() model.ConstraintType {
	return model.ConstraintTypeText
}

func (textConstraint) CreateDataValue(raw any, _ *Data) Value {
	return &TextValue{raw: raw, text: rawToString(raw)}
}

// TextValue is the fallback value type.
type TextValue struct {
	raw  any
	text string
}

func (v *TextValue) Serialize() any {
	return v.raw
}

func (v *TextValue) Format() string {
	return v.text
}

func (v *TextValue) IsEmpty() bool {
	return strings.TrimSpace(v.text) == ""
}

func (v *TextValue) MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool {
	return meetsTextCondition(v.text, cond, operandStrings(values))
}

func (v *TextValue) MeetsFulltexts(terms []string) bool {
	return meetsFulltexts(v.text, terms)
}
