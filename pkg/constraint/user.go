package constraint

import (
	"strings"

	"github.com/kubedo8/web-ui/pkg/model"
)

// ConditionValueCurrentUser is the operand type resolved to the current user's email.
const ConditionValueCurrentUser = "currentUser"

type userConstraint struct {
	multi bool
}

func (userConstraint) Type() model.ConstraintType {
	return model.ConstraintTypeUser
}

func (c userConstraint) CreateDataValue(raw any, data *Data) Value {
	emails := rawToStrings(raw)
	if !c.multi && len(emails) > 1 {
		emails = emails[:1]
	}
	return &UserValue{emails: emails, multi: c.multi, data: data}
}

// UserValue holds user emails and formats them to names from the directory.
type UserValue struct {
	emails []string
	multi  bool
	data   *Data
}

func (v *UserValue) Serialize() any {
	if v.multi {
		return v.emails
	}
	if len(v.emails) == 0 {
		return ""
	}
	return v.emails[0]
}

func (v *UserValue) Format() string {
	names := make([]string, 0, len(v.emails))
	for _, email := range v.emails {
		if user := v.data.userByEmail(email); user != nil && user.Name != "" {
			names = append(names, user.Name)
			continue
		}
		names = append(names, email)
	}
	return strings.Join(names, ", ")
}

func (v *UserValue) IsEmpty() bool {
	return len(v.emails) == 0
}

func (v *UserValue) MeetsCondition(cond model.ConditionType, values []model.ConditionValue) bool {
	operands := make([]string, 0, len(values))
	for _, cv := range values {
		if cv.Type == ConditionValueCurrentUser {
			if v.data != nil && v.data.CurrentUserEmail != "" {
				operands = append(operands, normalizeText(v.data.CurrentUserEmail))
			}
			continue
		}
		operands = append(operands, normalizeAll(rawToStrings(cv.Value))...)
	}

	switch cond {
	case model.ConditionContains, model.ConditionNotContains, model.ConditionStartsWith, model.ConditionEndsWith:
		return meetsTextCondition(v.Format(), cond, operandStrings(values))
	}
	return meetsSetCondition(normalizeAll(v.emails), cond, operands)
}

func (v *UserValue) MeetsFulltexts(terms []string) bool {
	return meetsFulltexts(v.Format(), terms) || meetsFulltexts(strings.Join(v.emails, " "), terms)
}
