package translation

// Per-language outcomes of a pipeline run.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

// LanguageResult records the outcome of one language's attempt in a run.
type LanguageResult struct {
	Language string `json:"language"`
	Action   string `json:"action"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunSummary aggregates the settled results of a full worklist run.
type RunSummary struct {
	ArticleID  string           `json:"article_id"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Results    []LanguageResult `json:"results"`
}

// SyncPayload is the task payload of a queued pipeline run.
type SyncPayload struct {
	ArticleID string   `json:"article_id"`
	Languages []string `json:"languages"`
	Force     bool     `json:"force,omitempty"`
	// Retry marks the one follow-up run for failed languages; it never
	// schedules another retry itself.
	Retry bool `json:"retry,omitempty"`
}

// ArticleChange describes what an article mutation touched. The trigger
// policy only reacts to changes that can invalidate translations.
type ArticleChange struct {
	ContentChanged bool
	TitleChanged   bool
	JustPublished  bool
	TargetsChanged bool
}

// Any reports whether the mutation touched anything translation-relevant.
func (c ArticleChange) Any() bool {
	return c.ContentChanged || c.TitleChanged || c.JustPublished || c.TargetsChanged
}

// TranslateRequest carries the source content handed to a Translator.
type TranslateRequest struct {
	Title           string
	Excerpt         string
	Text            string
	MetaTitle       string
	MetaDescription string
	Keywords        []string

	SourceLanguage string
	TargetLanguage string
}

// TranslateResult is a Translator's structured output.
type TranslateResult struct {
	Title           string
	Excerpt         string
	Text            string
	MetaTitle       string
	MetaDescription string
	Keywords        []string

	Confidence   float64
	QualityScore float64
	NeedsReview  bool
	// Model names the producer; "mock" for the deterministic fallback.
	Model string
}
