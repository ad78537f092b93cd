package translation

import (
	"context"
	"time"

	"github.com/luminpress/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertJob records the latest attempt state for (article, language). The
// attempt counter only advances when a new attempt starts, not when it
// settles.
func (s *Service) upsertJob(ctx context.Context, articleID, lang, status, errMsg, model string) error {
	job := models.TranslationJobModel{
		ArticleID:      articleID,
		TargetLanguage: lang,
		Status:         status,
		ErrorMessage:   errMsg,
		AIModel:        model,
	}
	assignments := map[string]interface{}{
		"status":        status,
		"error_message": errMsg,
		"updated_at":    time.Now(),
	}
	if model != "" {
		assignments["ai_model"] = model
	}
	if status == models.JobProcessing {
		job.AttemptCount = 1
		assignments["attempt_count"] = gorm.Expr("attempt_count + 1")
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}, {Name: "target_language"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&job).Error
}

// ListArticleState returns the stored translations and job rows for one
// article, for the status endpoint.
func (s *Service) ListArticleState(ctx context.Context, articleID string) ([]models.TranslationModel, []models.TranslationJobModel, error) {
	var translations []models.TranslationModel
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("language asc").
		Find(&translations).Error; err != nil {
		return nil, nil, err
	}
	var jobs []models.TranslationJobModel
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("target_language asc").
		Find(&jobs).Error; err != nil {
		return nil, nil, err
	}
	return translations, jobs, nil
}

// CleanupJobs purges settled job rows older than the retention window.
func (s *Service) CleanupJobs(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := s.db.WithContext(ctx).Unscoped().
		Where("status IN ? AND updated_at < ?", []string{models.JobCompleted, models.JobFailed}, cutoff).
		Delete(&models.TranslationJobModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		s.logger.Info("purged settled translation jobs",
			zap.Int64("count", result.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
	return result.RowsAffected, nil
}
