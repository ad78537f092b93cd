package models

// Translation statuses.
const (
	TranslationPending    = "pending"
	TranslationProcessing = "processing"
	TranslationCompleted  = "completed"
	TranslationFailed     = "failed"
)

// TranslationJob statuses.
const (
	JobPending    = "PENDING"
	JobProcessing = "PROCESSING"
	JobCompleted  = "COMPLETED"
	JobFailed     = "FAILED"
)

// TranslationModel holds the translated content of one article in one language.
// At most one row per (article, language), enforced by the compound unique key.
type TranslationModel struct {
	Base
	ArticleID string `json:"article_id" gorm:"uniqueIndex:idx_translations_article_lang;not null"`
	Language  string `json:"language"   gorm:"uniqueIndex:idx_translations_article_lang;not null"`

	Title           string      `json:"title"`
	Excerpt         string      `json:"excerpt"          gorm:"type:text"`
	Text            string      `json:"text"             gorm:"type:longtext"`
	MetaTitle       string      `json:"meta_title"`
	MetaDescription string      `json:"meta_description" gorm:"type:text"`
	Keywords        StringArray `json:"keywords"         gorm:"type:json"`

	Status string `json:"status" gorm:"default:'pending';index"`
	// ContentHash is the source content hash captured when this translation
	// was produced; it detects staleness relative to the article.
	ContentHash  string  `json:"content_hash"`
	Confidence   float64 `json:"confidence"`
	QualityScore float64 `json:"quality_score"`
	NeedsReview  bool    `json:"needs_review"`
	AttemptCount int     `json:"attempt_count" gorm:"default:0"`
}

func (TranslationModel) TableName() string { return "translations" }

// TranslationJobModel tracks the latest attempt to produce a Translation,
// kept separate so in-flight and failed work never pollutes the content table.
type TranslationJobModel struct {
	Base
	ArticleID      string `json:"article_id"      gorm:"uniqueIndex:idx_translation_jobs_article_lang;not null"`
	TargetLanguage string `json:"target_language" gorm:"uniqueIndex:idx_translation_jobs_article_lang;not null"`

	Status       string `json:"status" gorm:"default:'PENDING';index"`
	AttemptCount int    `json:"attempt_count" gorm:"default:0"`
	ErrorMessage string `json:"error_message"  gorm:"type:text"`
	AIModel      string `json:"ai_model"`
}

func (TranslationJobModel) TableName() string { return "translation_jobs" }
