package models

// Article statuses.
const (
	ArticleDraft     = "draft"
	ArticlePublished = "published"
	ArticleArchived  = "archived"
)

// ArticleModel is a platform article and the source of truth for its translations.
type ArticleModel struct {
	Base
	Slug            string      `json:"slug"             gorm:"uniqueIndex;not null"`
	Title           string      `json:"title"            gorm:"not null"`
	Excerpt         string      `json:"excerpt"          gorm:"type:text"`
	Text            string      `json:"text"             gorm:"type:longtext"`
	MetaTitle       string      `json:"meta_title"`
	MetaDescription string      `json:"meta_description" gorm:"type:text"`
	Keywords        StringArray `json:"keywords"         gorm:"type:json"`
	Status          string      `json:"status"           gorm:"default:'draft';index"`

	OriginalLanguage string `json:"original_language" gorm:"default:'en'"`
	AutoTranslate    bool   `json:"auto_translate"    gorm:"default:false"`
	// TargetLanguages is the author-selected set of language codes to keep translated.
	TargetLanguages StringArray `json:"target_languages" gorm:"type:json"`
	// AvailableLanguages is a derived cache: original language plus every language
	// with a completed translation. Recomputed whenever translations change.
	AvailableLanguages StringArray `json:"available_languages" gorm:"type:json"`
}

func (ArticleModel) TableName() string { return "articles" }

// IsPublished reports whether the article is publicly visible.
func (a *ArticleModel) IsPublished() bool { return a.Status == ArticlePublished }
