package article

import "github.com/luminpress/core/internal/models"

// CreateArticleDTO is the request body for creating an article.
type CreateArticleDTO struct {
	Slug             string   `json:"slug"  binding:"required"`
	Title            string   `json:"title" binding:"required"`
	Text             string   `json:"text"  binding:"required"`
	Excerpt          string   `json:"excerpt"`
	MetaTitle        string   `json:"metaTitle"`
	MetaDescription  string   `json:"metaDescription"`
	Keywords         []string `json:"keywords"`
	Status           *string  `json:"status"`
	OriginalLanguage *string  `json:"originalLanguage"`
	AutoTranslate    *bool    `json:"autoTranslate"`
	TargetLanguages  []string `json:"targetLanguages"`
}

// UpdateArticleDTO is the request body for updating an article (all fields
// optional).
type UpdateArticleDTO struct {
	Slug            *string  `json:"slug"`
	Title           *string  `json:"title"`
	Text            *string  `json:"text"`
	Excerpt         *string  `json:"excerpt"`
	MetaTitle       *string  `json:"metaTitle"`
	MetaDescription *string  `json:"metaDescription"`
	Keywords        []string `json:"keywords"`
	Status          *string  `json:"status"`
	AutoTranslate   *bool    `json:"autoTranslate"`
	TargetLanguages []string `json:"targetLanguages"`
}

// ListQuery holds query params for listing articles.
type ListQuery struct {
	Status *string `form:"status"`
}

// articleResponse is the API response shape for an article read.
type articleResponse struct {
	*models.ArticleModel
	Language   string `json:"language,omitempty"`
	Translated bool   `json:"translated,omitempty"`
	HTML       string `json:"html,omitempty"`
}
