package activities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/speaklexi/lesson-service/internal/models"
)

// FillBlank manages cloze activities: a text with [[word]] markers, one blank
// per marker. The blank list and the answer words both derive from the
// markers, so every mutation keeps text, blanks and words in lockstep.
type FillBlank struct{}

var blankMarker = regexp.MustCompile(`\[\[(.*?)\]\]`)

func (FillBlank) Type() models.ActivityType { return models.TypeFillBlank }

func (FillBlank) CreateDefault() *models.Activity {
	return &models.Activity{
		Type:    models.TypeFillBlank,
		Title:   "Completar espacios",
		Points:  defaultPoints,
		Config:  defaultConfig(),
		Content: &models.FillBlankContent{Text: "", Blanks: []string{}},
		Answer:  &models.FillBlankAnswer{Words: []string{}},
	}
}

// ExtractBlanks returns the words inside [[...]] markers, in order.
func ExtractBlanks(text string) []string {
	matches := blankMarker.FindAllStringSubmatch(text, -1)
	blanks := make([]string, 0, len(matches))
	for _, m := range matches {
		blanks = append(blanks, m[1])
	}
	return blanks
}

func (m FillBlank) content(a *models.Activity) (*models.FillBlankContent, *models.FillBlankAnswer, error) {
	c, ok := a.Content.(*models.FillBlankContent)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry fill_blank content", a.ID)
	}
	ans, ok := a.Answer.(*models.FillBlankAnswer)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry fill_blank answer", a.ID)
	}
	return c, ans, nil
}

// SetText replaces the cloze text and re-derives blanks and answer words from
// its markers.
func (m FillBlank) SetText(a *models.Activity, text string) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	c.Text = text
	c.Blanks = ExtractBlanks(text)
	ans.Words = append([]string(nil), c.Blanks...)
	return nil
}

// SetBlank rewrites blank index to a new word: the marker literal in the
// text, the extracted blank and the answer word all change together.
func (m FillBlank) SetBlank(a *models.Activity, index int, word string) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Blanks) {
		return fmt.Errorf("blank index %d out of range", index)
	}

	c.Text = replaceMarker(c.Text, index, "[["+word+"]]")
	c.Blanks[index] = word
	ans.Words[index] = word
	return nil
}

// RemoveBlank drops the marker at index from the text and removes the same
// position from both the blank list and the answer words.
func (m FillBlank) RemoveBlank(a *models.Activity, index int) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Blanks) {
		return fmt.Errorf("blank index %d out of range", index)
	}

	c.Text = strings.TrimSpace(collapseSpaces(replaceMarker(c.Text, index, "")))
	c.Blanks = append(c.Blanks[:index], c.Blanks[index+1:]...)
	ans.Words = append(ans.Words[:index], ans.Words[index+1:]...)
	return nil
}

// replaceMarker substitutes only the n-th [[...]] occurrence.
func replaceMarker(text string, n int, replacement string) string {
	count := -1
	return blankMarker.ReplaceAllStringFunc(text, func(match string) string {
		count++
		if count == n {
			return replacement
		}
		return match
	})
}

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

func collapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(s, " ")
}

func (m FillBlank) Validate(a *models.Activity) []string {
	errs := validateCommon(a)

	c, ans, err := m.content(a)
	if err != nil {
		return append(errs, "content does not match the fill_blank shape")
	}

	if strings.TrimSpace(c.Text) == "" {
		errs = append(errs, "text is required")
	}

	markers := ExtractBlanks(c.Text)
	if len(markers) == 0 {
		errs = append(errs, "text must contain at least one [[word]] marker")
	}
	if len(c.Blanks) != len(markers) {
		errs = append(errs, "blanks must match the markers in the text")
	}
	if len(ans.Words) != len(c.Blanks) {
		errs = append(errs, "answer words must match blanks one to one")
	}
	for i, w := range ans.Words {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, fmt.Sprintf("answer for blank %d is empty", i+1))
		}
	}

	return errs
}
