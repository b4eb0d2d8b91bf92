package activities

import (
	"fmt"
	"strings"

	"github.com/speaklexi/lesson-service/internal/models"
)

// MultipleChoice manages activities with one question and a set of options,
// any number of which may be marked correct.
type MultipleChoice struct{}

func (MultipleChoice) Type() models.ActivityType { return models.TypeMultipleChoice }

func (MultipleChoice) CreateDefault() *models.Activity {
	return &models.Activity{
		Type:   models.TypeMultipleChoice,
		Title:  "Pregunta de selección múltiple",
		Points: defaultPoints,
		Config: defaultConfig(),
		Content: &models.MultipleChoiceContent{
			Question: "",
			Options:  []string{"", "", "", ""},
		},
		Answer: &models.MultipleChoiceAnswer{Indices: []int{0}},
	}
}

func (m MultipleChoice) content(a *models.Activity) (*models.MultipleChoiceContent, *models.MultipleChoiceAnswer, error) {
	c, ok := a.Content.(*models.MultipleChoiceContent)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry multiple_choice content", a.ID)
	}
	ans, ok := a.Answer.(*models.MultipleChoiceAnswer)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry multiple_choice answer", a.ID)
	}
	return c, ans, nil
}

func (m MultipleChoice) SetQuestion(a *models.Activity, question string) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	c.Question = question
	return nil
}

func (m MultipleChoice) SetOption(a *models.Activity, index int, text string) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	c.Options[index] = text
	return nil
}

func (m MultipleChoice) AddOption(a *models.Activity) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	c.Options = append(c.Options, "")
	return nil
}

// RemoveOption drops the option at index and re-aligns the answer: indices
// pointing at the removed option are dropped, later ones shift down. If no
// correct option survives, the first option becomes correct so content and
// answer stay consistent.
func (m MultipleChoice) RemoveOption(a *models.Activity, index int) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	c.Options = append(c.Options[:index], c.Options[index+1:]...)

	kept := ans.Indices[:0]
	for _, i := range ans.Indices {
		switch {
		case i < index:
			kept = append(kept, i)
		case i > index:
			kept = append(kept, i-1)
		}
	}
	ans.Indices = kept
	if len(ans.Indices) == 0 && len(c.Options) > 0 {
		ans.Indices = []int{0}
	}
	return nil
}

// ToggleCorrect flips the correct flag of one option position.
func (m MultipleChoice) ToggleCorrect(a *models.Activity, index int) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	for pos, i := range ans.Indices {
		if i == index {
			ans.Indices = append(ans.Indices[:pos], ans.Indices[pos+1:]...)
			return nil
		}
	}
	ans.Indices = append(ans.Indices, index)
	return nil
}

func (m MultipleChoice) Validate(a *models.Activity) []string {
	errs := validateCommon(a)

	c, ans, err := m.content(a)
	if err != nil {
		return append(errs, "content does not match the multiple_choice shape")
	}

	if strings.TrimSpace(c.Question) == "" {
		errs = append(errs, "question is required")
	}

	valid := 0
	for _, opt := range c.Options {
		if strings.TrimSpace(opt) != "" {
			valid++
		}
	}
	if valid < 2 {
		errs = append(errs, "at least 2 non-empty options required")
	}

	if len(ans.Indices) == 0 {
		errs = append(errs, "at least one correct option required")
	}
	seen := make(map[int]bool, len(ans.Indices))
	for _, i := range ans.Indices {
		if i < 0 || i >= len(c.Options) {
			errs = append(errs, fmt.Sprintf("correct option index %d does not match any option", i))
			continue
		}
		if seen[i] {
			errs = append(errs, fmt.Sprintf("correct option index %d listed twice", i))
		}
		seen[i] = true
	}

	return errs
}
