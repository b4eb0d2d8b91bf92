package activities

import (
	"fmt"
	"strings"

	"github.com/speaklexi/lesson-service/internal/models"
)

// TrueFalse manages activities made of statements the student marks true or
// false. Statements and answer values are index-aligned at all times.
type TrueFalse struct{}

func (TrueFalse) Type() models.ActivityType { return models.TypeTrueFalse }

func (TrueFalse) CreateDefault() *models.Activity {
	return &models.Activity{
		Type:    models.TypeTrueFalse,
		Title:   "Actividad verdadero/falso",
		Points:  defaultPoints,
		Config:  defaultConfig(),
		Content: &models.TrueFalseContent{Statements: []string{""}},
		Answer:  &models.TrueFalseAnswer{Values: []bool{true}},
	}
}

func (m TrueFalse) content(a *models.Activity) (*models.TrueFalseContent, *models.TrueFalseAnswer, error) {
	c, ok := a.Content.(*models.TrueFalseContent)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry true_false content", a.ID)
	}
	ans, ok := a.Answer.(*models.TrueFalseAnswer)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry true_false answer", a.ID)
	}
	return c, ans, nil
}

// AddStatement appends a statement and a matching default-true value.
func (m TrueFalse) AddStatement(a *models.Activity, statement string) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	c.Statements = append(c.Statements, statement)
	ans.Values = append(ans.Values, true)
	return nil
}

func (m TrueFalse) SetStatement(a *models.Activity, index int, statement string) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Statements) {
		return fmt.Errorf("statement index %d out of range", index)
	}
	c.Statements[index] = statement
	return nil
}

func (m TrueFalse) SetValue(a *models.Activity, index int, value bool) error {
	_, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(ans.Values) {
		return fmt.Errorf("statement index %d out of range", index)
	}
	ans.Values[index] = value
	return nil
}

// RemoveStatement drops a statement and its aligned value. Removing the last
// remaining statement is a no-op; the validator reports the empty case.
func (m TrueFalse) RemoveStatement(a *models.Activity, index int) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Statements) {
		return fmt.Errorf("statement index %d out of range", index)
	}
	if len(c.Statements) <= 1 {
		return nil
	}
	c.Statements = append(c.Statements[:index], c.Statements[index+1:]...)
	ans.Values = append(ans.Values[:index], ans.Values[index+1:]...)
	return nil
}

func (m TrueFalse) Validate(a *models.Activity) []string {
	errs := validateCommon(a)

	c, ans, err := m.content(a)
	if err != nil {
		return append(errs, "content does not match the true_false shape")
	}

	if len(c.Statements) == 0 {
		errs = append(errs, "at least one statement required")
	}
	for i, s := range c.Statements {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Sprintf("statement %d is empty", i+1))
		}
	}
	if len(ans.Values) != len(c.Statements) {
		errs = append(errs, "answer values must match statements one to one")
	}

	return errs
}
