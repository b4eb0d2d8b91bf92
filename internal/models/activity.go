package models

type ActivityType string

const (
	TypeMultipleChoice ActivityType = "multiple_choice"
	TypeTrueFalse      ActivityType = "true_false"
	TypeFillBlank      ActivityType = "fill_blank"
	TypeMatching       ActivityType = "matching"
	TypeWriting        ActivityType = "writing"
)

// Content is the closed set of per-type activity payloads. Each activity type
// has exactly one content shape and one answer shape; the two are always
// consistent in cardinality (see the per-type structs below).
type Content interface {
	ActivityType() ActivityType
	CloneContent() Content
}

// Answer is the closed set of per-type correct-answer payloads.
type Answer interface {
	ActivityType() ActivityType
	CloneAnswer() Answer
}

// ===== MULTIPLE CHOICE =====

type MultipleChoiceContent struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// MultipleChoiceAnswer holds the positions of the correct options.
type MultipleChoiceAnswer struct {
	Indices []int `json:"indices"`
}

func (MultipleChoiceContent) ActivityType() ActivityType { return TypeMultipleChoice }
func (MultipleChoiceAnswer) ActivityType() ActivityType  { return TypeMultipleChoice }

func (c *MultipleChoiceContent) CloneContent() Content {
	return &MultipleChoiceContent{Question: c.Question, Options: append([]string(nil), c.Options...)}
}

func (a *MultipleChoiceAnswer) CloneAnswer() Answer {
	return &MultipleChoiceAnswer{Indices: append([]int(nil), a.Indices...)}
}

// ===== TRUE / FALSE =====

// TrueFalseContent and TrueFalseAnswer are index-aligned: Values[i] grades
// Statements[i], and both slices always have the same length.
type TrueFalseContent struct {
	Statements []string `json:"statements"`
}

type TrueFalseAnswer struct {
	Values []bool `json:"values"`
}

func (TrueFalseContent) ActivityType() ActivityType { return TypeTrueFalse }
func (TrueFalseAnswer) ActivityType() ActivityType  { return TypeTrueFalse }

func (c *TrueFalseContent) CloneContent() Content {
	return &TrueFalseContent{Statements: append([]string(nil), c.Statements...)}
}

func (a *TrueFalseAnswer) CloneAnswer() Answer {
	return &TrueFalseAnswer{Values: append([]bool(nil), a.Values...)}
}

// ===== FILL IN THE BLANK =====

// FillBlankContent.Text contains one [[word]] marker per blank. Blanks holds
// the words extracted from the markers, in order, and FillBlankAnswer.Words
// mirrors Blanks index for index.
type FillBlankContent struct {
	Text   string   `json:"text"`
	Blanks []string `json:"blanks"`
}

type FillBlankAnswer struct {
	Words []string `json:"words"`
}

func (FillBlankContent) ActivityType() ActivityType { return TypeFillBlank }
func (FillBlankAnswer) ActivityType() ActivityType  { return TypeFillBlank }

func (c *FillBlankContent) CloneContent() Content {
	return &FillBlankContent{Text: c.Text, Blanks: append([]string(nil), c.Blanks...)}
}

func (a *FillBlankAnswer) CloneAnswer() Answer {
	return &FillBlankAnswer{Words: append([]string(nil), a.Words...)}
}

// ===== MATCHING =====

type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchingContent struct {
	Pairs []MatchingPair `json:"pairs"`
}

// MatchingAnswer.Indices is always the identity permutation over Pairs:
// each pair already stores its own correct correspondence, so the answer is
// [0..n-1] by construction. Mutators re-derive it after every pair edit.
type MatchingAnswer struct {
	Indices []int `json:"indices"`
}

func (MatchingContent) ActivityType() ActivityType { return TypeMatching }
func (MatchingAnswer) ActivityType() ActivityType  { return TypeMatching }

func (c *MatchingContent) CloneContent() Content {
	return &MatchingContent{Pairs: append([]MatchingPair(nil), c.Pairs...)}
}

func (a *MatchingAnswer) CloneAnswer() Answer {
	return &MatchingAnswer{Indices: append([]int(nil), a.Indices...)}
}

// ===== WRITING =====

type WritingContent struct {
	Prompt   string `json:"prompt"`
	MinWords int    `json:"min_words"`
}

// WritingAnswer: writing is graded by hand against a list of criteria, so
// Mode is always "manual".
type WritingAnswer struct {
	Mode     string   `json:"mode"`
	Criteria []string `json:"criteria"`
}

const WritingModeManual = "manual"

func (WritingContent) ActivityType() ActivityType { return TypeWriting }
func (WritingAnswer) ActivityType() ActivityType  { return TypeWriting }

func (c *WritingContent) CloneContent() Content {
	return &WritingContent{Prompt: c.Prompt, MinWords: c.MinWords}
}

func (a *WritingAnswer) CloneAnswer() Answer {
	return &WritingAnswer{Mode: a.Mode, Criteria: append([]string(nil), a.Criteria...)}
}

// ===== ACTIVITY =====

// ActivityConfig carries optional presentation/grading settings.
// AllowedAttempts of 0 means unlimited.
type ActivityConfig struct {
	TimeLimitSeconds *int `json:"time_limit_seconds"`
	AllowedAttempts  int  `json:"allowed_attempts"`
	ShowExplanation  bool `json:"show_explanation"`
}

func (c ActivityConfig) clone() ActivityConfig {
	out := c
	if c.TimeLimitSeconds != nil {
		v := *c.TimeLimitSeconds
		out.TimeLimitSeconds = &v
	}
	return out
}

// Activity is one gradable exercise unit inside a lesson, as edited in the
// authoring session. ID is a client-generated opaque string, stable for the
// editing session. Order is 1-based and unique within a lesson.
type Activity struct {
	ID          string         `json:"id"`
	Type        ActivityType   `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Points      int            `json:"points"`
	Order       int            `json:"order"`
	Content     Content        `json:"content"`
	Answer      Answer         `json:"answer"`
	Config      ActivityConfig `json:"config"`
}

// Clone returns a deep copy sharing no mutable state with the receiver.
// The ID is copied as-is; callers duplicating an activity assign a fresh one.
func (a *Activity) Clone() *Activity {
	out := &Activity{
		ID:          a.ID,
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		Points:      a.Points,
		Order:       a.Order,
		Config:      a.Config.clone(),
	}
	if a.Content != nil {
		out.Content = a.Content.CloneContent()
	}
	if a.Answer != nil {
		out.Answer = a.Answer.CloneAnswer()
	}
	return out
}
