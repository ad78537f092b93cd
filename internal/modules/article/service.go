package article

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/luminpress/core/internal/models"
	"github.com/luminpress/core/internal/modules/translation"
	"github.com/luminpress/core/internal/pkg/pagination"
	"github.com/luminpress/core/internal/pkg/response"
	"gorm.io/gorm"
)

var ErrSlugTaken = errors.New("slug already exists")

// Service handles article business logic. Writes feed the translation
// pipeline; reads can overlay a completed translation.
type Service struct {
	db           *gorm.DB
	translations *translation.Service
}

func NewService(db *gorm.DB, translations *translation.Service) *Service {
	return &Service{db: db, translations: translations}
}

// List returns a paginated list of articles. Non-admin callers only see
// published ones.
func (s *Service) List(q pagination.Query, lq ListQuery, isAdmin bool) ([]models.ArticleModel, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleModel{}).Order("created_at DESC")
	if !isAdmin {
		tx = tx.Where("status = ?", models.ArticlePublished)
	} else if lq.Status != nil {
		tx = tx.Where("status = ?", *lq.Status)
	}

	var articles []models.ArticleModel
	pag, err := pagination.Paginate(tx, q, &articles)
	return articles, pag, err
}

// GetByID fetches an article by ID. Returns (nil, nil) when missing.
func (s *Service) GetByID(id string) (*models.ArticleModel, error) {
	var article models.ArticleModel
	if err := s.db.First(&article, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// GetBySlug fetches an article by slug.
func (s *Service) GetBySlug(slug string, isAdmin bool) (*models.ArticleModel, error) {
	var article models.ArticleModel
	tx := s.db.Where("slug = ?", slug)
	if !isAdmin {
		tx = tx.Where("status = ?", models.ArticlePublished)
	}
	if err := tx.First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// GetByIdentifier fetches an article by ID first, then falls back to slug.
func (s *Service) GetByIdentifier(identifier string, isAdmin bool) (*models.ArticleModel, error) {
	if article, err := s.GetByID(identifier); err != nil {
		return nil, err
	} else if article != nil {
		if !isAdmin && !article.IsPublished() {
			return nil, nil
		}
		return article, nil
	}
	return s.GetBySlug(identifier, isAdmin)
}

// Create inserts a new article and feeds the translation trigger.
func (s *Service) Create(dto *CreateArticleDTO) (*models.ArticleModel, error) {
	var count int64
	s.db.Model(&models.ArticleModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}

	article := models.ArticleModel{
		Slug:             dto.Slug,
		Title:            dto.Title,
		Text:             dto.Text,
		Excerpt:          dto.Excerpt,
		MetaTitle:        dto.MetaTitle,
		MetaDescription:  dto.MetaDescription,
		Keywords:         dto.Keywords,
		Status:           models.ArticleDraft,
		OriginalLanguage: "en",
		TargetLanguages:  dto.TargetLanguages,
	}
	if dto.Status != nil {
		article.Status = *dto.Status
	}
	if dto.OriginalLanguage != nil {
		article.OriginalLanguage = strings.ToLower(strings.TrimSpace(*dto.OriginalLanguage))
	}
	if dto.AutoTranslate != nil {
		article.AutoTranslate = *dto.AutoTranslate
	}
	article.AvailableLanguages = models.StringArray{article.OriginalLanguage}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}

	s.fireTranslation(&article, translation.ArticleChange{
		JustPublished: article.IsPublished(),
	})
	return &article, nil
}

// Update patches an article by ID and feeds the translation trigger with
// what actually changed.
func (s *Service) Update(id string, dto *UpdateArticleDTO) (*models.ArticleModel, error) {
	article, err := s.GetByID(id)
	if err != nil || article == nil {
		return article, err
	}

	var change translation.ArticleChange
	updates := map[string]interface{}{}

	if dto.Slug != nil && *dto.Slug != article.Slug {
		var count int64
		s.db.Model(&models.ArticleModel{}).Where("slug = ? AND id <> ?", *dto.Slug, id).Count(&count)
		if count > 0 {
			return nil, ErrSlugTaken
		}
		updates["slug"] = *dto.Slug
		article.Slug = *dto.Slug
	}
	if dto.Title != nil && *dto.Title != article.Title {
		updates["title"] = *dto.Title
		article.Title = *dto.Title
		change.TitleChanged = true
	}
	if dto.Text != nil && *dto.Text != article.Text {
		updates["text"] = *dto.Text
		article.Text = *dto.Text
		change.ContentChanged = true
	}
	if dto.Excerpt != nil {
		updates["excerpt"] = *dto.Excerpt
		article.Excerpt = *dto.Excerpt
	}
	if dto.MetaTitle != nil {
		updates["meta_title"] = *dto.MetaTitle
		article.MetaTitle = *dto.MetaTitle
	}
	if dto.MetaDescription != nil {
		updates["meta_description"] = *dto.MetaDescription
		article.MetaDescription = *dto.MetaDescription
	}
	if dto.Keywords != nil {
		updates["keywords"] = models.StringArray(dto.Keywords)
		article.Keywords = dto.Keywords
	}
	if dto.Status != nil && *dto.Status != article.Status {
		if *dto.Status == models.ArticlePublished {
			change.JustPublished = true
		}
		updates["status"] = *dto.Status
		article.Status = *dto.Status
	}
	if dto.AutoTranslate != nil {
		updates["auto_translate"] = *dto.AutoTranslate
		article.AutoTranslate = *dto.AutoTranslate
	}
	if dto.TargetLanguages != nil && !slices.Equal(dto.TargetLanguages, []string(article.TargetLanguages)) {
		updates["target_languages"] = models.StringArray(dto.TargetLanguages)
		article.TargetLanguages = dto.TargetLanguages
		change.TargetsChanged = true
	}

	if len(updates) == 0 {
		return article, nil
	}
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.fireTranslation(article, change)
	return article, nil
}

// Publish flips an article to published and feeds the translation trigger.
func (s *Service) Publish(id string) (*models.ArticleModel, error) {
	article, err := s.GetByID(id)
	if err != nil || article == nil {
		return article, err
	}
	if article.IsPublished() {
		return article, nil
	}

	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", id).
		Update("status", models.ArticlePublished).Error; err != nil {
		return nil, err
	}
	article.Status = models.ArticlePublished

	s.fireTranslation(article, translation.ArticleChange{JustPublished: true})
	return article, nil
}

// Delete soft-deletes an article and its translation state.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ArticleModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.TranslationModel{}, "article_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.TranslationJobModel{}, "article_id = ?", id).Error
	})
}

// Localize overlays a completed translation onto a copy of the article.
// The original is returned unchanged when no completed translation exists.
// Region subtags collapse to the bare code, so ?lang=fr-FR finds the fr row.
func (s *Service) Localize(article *models.ArticleModel, lang string) (*models.ArticleModel, bool) {
	code := translation.NormalizeLanguageCode(lang)
	if code == "" || code == translation.NormalizeLanguageCode(article.OriginalLanguage) {
		return article, false
	}

	var tr models.TranslationModel
	err := s.db.Where("article_id = ? AND language = ? AND status = ?",
		article.ID, code, models.TranslationCompleted).First(&tr).Error
	if err != nil {
		return article, false
	}

	overlaid := *article
	overlaid.Title = tr.Title
	overlaid.Text = tr.Text
	if tr.Excerpt != "" {
		overlaid.Excerpt = tr.Excerpt
	}
	if tr.MetaTitle != "" {
		overlaid.MetaTitle = tr.MetaTitle
	}
	if tr.MetaDescription != "" {
		overlaid.MetaDescription = tr.MetaDescription
	}
	if len(tr.Keywords) > 0 {
		overlaid.Keywords = tr.Keywords
	}
	return &overlaid, true
}

// TouchAvailability re-aggregates availableLanguages in the background;
// reads with a lang param self-heal a drifted cache this way.
func (s *Service) TouchAvailability(articleID string) {
	if s.translations == nil {
		return
	}
	go func() {
		_ = s.translations.RecomputeAvailability(context.Background(), articleID)
	}()
}

func (s *Service) fireTranslation(article *models.ArticleModel, change translation.ArticleChange) {
	if s.translations == nil || !change.Any() {
		return
	}
	snapshot := *article
	go s.translations.HandleArticleMutation(context.Background(), &snapshot, change)
}
