package activities

import (
	"fmt"
	"strings"

	"github.com/speaklexi/lesson-service/internal/models"
)

// Matching manages pair-matching activities. Each pair stores its own correct
// correspondence, so the answer is the identity permutation over the pair
// positions; every pair mutation re-derives it.
type Matching struct{}

func (Matching) Type() models.ActivityType { return models.TypeMatching }

func (Matching) CreateDefault() *models.Activity {
	return &models.Activity{
		Type:   models.TypeMatching,
		Title:  "Actividad de emparejamiento",
		Points: defaultPoints,
		Config: defaultConfig(),
		Content: &models.MatchingContent{
			Pairs: []models.MatchingPair{{}, {}},
		},
		Answer: &models.MatchingAnswer{Indices: []int{0, 1}},
	}
}

func (m Matching) content(a *models.Activity) (*models.MatchingContent, *models.MatchingAnswer, error) {
	c, ok := a.Content.(*models.MatchingContent)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry matching content", a.ID)
	}
	ans, ok := a.Answer.(*models.MatchingAnswer)
	if !ok {
		return nil, nil, fmt.Errorf("activity %s does not carry matching answer", a.ID)
	}
	return c, ans, nil
}

// IdentityIndices returns [0..n-1].
func IdentityIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (m Matching) AddPair(a *models.Activity) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	c.Pairs = append(c.Pairs, models.MatchingPair{})
	ans.Indices = IdentityIndices(len(c.Pairs))
	return nil
}

func (m Matching) RemovePair(a *models.Activity, index int) error {
	c, ans, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Pairs) {
		return fmt.Errorf("pair index %d out of range", index)
	}
	c.Pairs = append(c.Pairs[:index], c.Pairs[index+1:]...)
	ans.Indices = IdentityIndices(len(c.Pairs))
	return nil
}

func (m Matching) SetLeft(a *models.Activity, index int, text string) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Pairs) {
		return fmt.Errorf("pair index %d out of range", index)
	}
	c.Pairs[index].Left = text
	return nil
}

func (m Matching) SetRight(a *models.Activity, index int, text string) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Pairs) {
		return fmt.Errorf("pair index %d out of range", index)
	}
	c.Pairs[index].Right = text
	return nil
}

// MovePair shifts a pair up or down one position. The answer stays the
// identity permutation since the correspondence travels with the pair.
func (m Matching) MovePair(a *models.Activity, index, delta int) error {
	c, _, err := m.content(a)
	if err != nil {
		return err
	}
	target := index + delta
	if index < 0 || index >= len(c.Pairs) || target < 0 || target >= len(c.Pairs) {
		return fmt.Errorf("cannot move pair %d by %d", index, delta)
	}
	c.Pairs[index], c.Pairs[target] = c.Pairs[target], c.Pairs[index]
	return nil
}

func (m Matching) Validate(a *models.Activity) []string {
	errs := validateCommon(a)

	c, ans, err := m.content(a)
	if err != nil {
		return append(errs, "content does not match the matching shape")
	}

	if len(c.Pairs) < 2 {
		errs = append(errs, "at least 2 pairs required")
	}

	left := make(map[string]bool, len(c.Pairs))
	for i, p := range c.Pairs {
		l := strings.TrimSpace(p.Left)
		r := strings.TrimSpace(p.Right)
		if l == "" || r == "" {
			errs = append(errs, fmt.Sprintf("pair %d must have both sides filled in", i+1))
		}
		if l != "" && left[l] {
			errs = append(errs, fmt.Sprintf("left value %q appears more than once", p.Left))
		}
		left[l] = true
	}

	if len(ans.Indices) != len(c.Pairs) {
		errs = append(errs, "answer must cover every pair exactly once")
	} else {
		for i, idx := range ans.Indices {
			if idx != i {
				errs = append(errs, "answer must be the identity over the pair positions")
				break
			}
		}
	}

	return errs
}
