package activities

import (
	"fmt"
	"strings"

	"github.com/speaklexi/lesson-service/internal/models"
)

// Writing manages free-writing activities graded by hand against a list of
// criteria.
type Writing struct{}

const minWordsFloor = 10

func (Writing) Type() models.ActivityType { return models.TypeWriting }

func (Writing) CreateDefault() *models.Activity {
	return &models.Activity{
		Type:   models.TypeWriting,
		Title:  "Actividad de escritura",
		Points: defaultPoints,
		Config: defaultConfig(),
		Content: &models.WritingContent{
			Prompt:   "",
			MinWords: 50,
		},
		Answer: &models.WritingAnswer{
			Mode:     models.WritingModeManual,
			Criteria: []string{"Claridad", "Precisión", "Coherencia"},
		},
	}
}

func (m Writing) content(a *models.Activity) (*models.WritingContent, *models.WritingAnswer, error) {
	c, ok := a.Content.(*models.WritingContent)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry writing content", a.ID)
	}
	ans, ok := a.Answer.(*models.WritingAnswer)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry writing answer", a.ID)
	}
	return c, ans, nil
}

func (m Writing) SetPrompt(a *models.Activity, prompt string) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	c.Prompt = prompt
	return nil
}

func (m Writing) SetMinWords(a *models.Activity, minWords int) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	c.MinWords = minWords
	return nil
}

func (m Writing) AddCriterion(a *models.Activity, criterion string) error {
	_, ans, err := m.content(a)
	if err != nil {
		return err
	}
	ans.Criteria = append(ans.Criteria, criterion)
	return nil
}

func (m Writing) SetCriterion(a *models.Activity, index int, criterion string) error {
	_, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(ans.Criteria) {
		return fmt.Errorf("criterion index %d out of range", index)
	}
	ans.Criteria[index] = criterion
	return nil
}

func (m Writing) RemoveCriterion(a *models.Activity, index int) error {
	_, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(ans.Criteria) {
		return fmt.Errorf("criterion index %d out of range", index)
	}
	ans.Criteria = append(ans.Criteria[:index], ans.Criteria[index+1:]...)
	return nil
}

func (m Writing) Validate(a *models.Activity) []string {
	errs := validateCommon(a)

	c, ans, err := m.content(a)
	if err != nil {
		return append(errs, "content does not match the writing shape")
	}

	if strings.TrimSpace(c.Prompt) == "" {
		errs = append(errs, "prompt is required")
	}
	if c.MinWords < minWordsFloor {
		errs = append(errs, fmt.Sprintf("minimum word count must be at least %d", minWordsFloor))
	}

	if ans.Mode != models.WritingModeManual {
		errs = append(errs, "writing answers must use manual grading mode")
	}
	if len(ans.Criteria) == 0 {
		errs = append(errs, "at least one grading criterion required")
	}
	for i, cr := range ans.Criteria {
		if strings.TrimSpace(cr) == "" {
			errs = append(errs, fmt.Sprintf("grading criterion %d is empty", i+1))
		}
	}

	return errs
}
