package translation

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/luminpress/core/internal/models"
	"gorm.io/gorm"
)

// RecomputeAvailability refreshes the article's availableLanguages cache:
// the original language plus every language with a completed translation,
// sorted. Persists only when the set actually changed.
func (s *Service) RecomputeAvailability(ctx context.Context, articleID string) error {
	var article models.ArticleModel
	if err := s.db.WithContext(ctx).First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var langs []string
	if err := s.db.WithContext(ctx).Model(&models.TranslationModel{}).
		Where("article_id = ? AND status = ?", articleID, models.TranslationCompleted).
		Pluck("language", &langs).Error; err != nil {
		return err
	}

	available := availableSet(article.OriginalLanguage, langs)
	if slices.Equal(available, []string(article.AvailableLanguages)) {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.ArticleModel{}).
		Where("id = ?", articleID).
		Update("available_languages", models.StringArray(available)).Error
}

// ResyncAllAvailability sweeps every article; the nightly safety net against
// cache drift from manual row edits or partial failures.
func (s *Service) ResyncAllAvailability(ctx context.Context) error {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.ArticleModel{}).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.RecomputeAvailability(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func availableSet(original string, langs []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(raw string) {
		lang := NormalizeLanguageCode(raw)
		if lang == "" || seen[lang] {
			return
		}
		seen[lang] = true
		out = append(out, lang)
	}
	add(original)
	for _, lang := range langs {
		add(lang)
	}
	sort.Strings(out)
	return out
}
