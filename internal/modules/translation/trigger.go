package translation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/luminpress/core/internal/models"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleArticleMutation applies the trigger policy after an article write.
// Failures are logged and never surface to the caller; a broken pipeline
// must not block article saves.
func (s *Service) HandleArticleMutation(ctx context.Context, article *models.ArticleModel, change ArticleChange) {
	task, err := s.MaybeQueueRun(ctx, article, change)
	if err != nil {
		s.logger.Warn("translation trigger failed",
			zap.String("article_id", article.ID),
			zap.Error(err))
		return
	}
	if task != nil {
		s.logger.Info("translation run queued",
			zap.String("article_id", article.ID),
			zap.String("task_id", task.ID))
	}
}

// MaybeQueueRun evaluates the trigger policy and queues a pipeline run when
// it fires. Returns (nil, nil) when the policy decides nothing needs doing.
func (s *Service) MaybeQueueRun(ctx context.Context, article *models.ArticleModel, change ArticleChange) (*taskqueue.Task, error) {
	if !s.ShouldTranslate(article, change) {
		return nil, nil
	}
	worklist, err := s.PlanWorklist(ctx, article, change)
	if err != nil {
		return nil, err
	}
	if len(worklist) == 0 {
		return nil, nil
	}
	return s.QueueRun(ctx, article.ID, worklist, false)
}

// ShouldTranslate gates the pipeline: only published articles that opted in
// and declared targets are eligible, and only for relevant mutations.
func (s *Service) ShouldTranslate(article *models.ArticleModel, change ArticleChange) bool {
	if article == nil || !article.IsPublished() || !article.AutoTranslate {
		return false
	}
	if len(article.TargetLanguages) == 0 {
		return false
	}
	return change.Any()
}

// PlanWorklist decides, per target language, whether a translation is needed.
// Languages without a completed translation are always due. Languages with a
// completed translation are due only when the source changed and the
// translation has aged past the staleness window.
func (s *Service) PlanWorklist(ctx context.Context, article *models.ArticleModel, change ArticleChange) ([]string, error) {
	original := NormalizeLanguageCode(article.OriginalLanguage)
	sourceChanged := change.ContentChanged || change.TitleChanged

	var worklist []string
	seen := make(map[string]bool)
	for _, raw := range article.TargetLanguages {
		lang := NormalizeLanguageCode(raw)
		if lang == "" || lang == original || seen[lang] {
			continue
		}
		seen[lang] = true

		var tr models.TranslationModel
		err := s.db.WithContext(ctx).
			Where("article_id = ? AND language = ?", article.ID, lang).
			First(&tr).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				worklist = append(worklist, lang)
				continue
			}
			return nil, err
		}

		if tr.Status != models.TranslationCompleted {
			worklist = append(worklist, lang)
			continue
		}
		if sourceChanged && time.Since(tr.UpdatedAt) > s.stalenessWindow {
			worklist = append(worklist, lang)
		}
	}
	return worklist, nil
}

// targetLanguagesOf normalizes an author-provided language list against the
// article's original language.
func targetLanguagesOf(article *models.ArticleModel, requested []string) []string {
	source := requested
	if len(source) == 0 {
		source = article.TargetLanguages
	}
	original := NormalizeLanguageCode(article.OriginalLanguage)

	var out []string
	seen := make(map[string]bool)
	for _, raw := range source {
		lang := NormalizeLanguageCode(strings.TrimSpace(raw))
		if lang == "" || lang == original || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}
