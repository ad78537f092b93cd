package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luminpress/core/internal/models"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const TaskTypeTranslate = "translation:article"

// QueueRun enqueues a pipeline run and starts executing it. Deduplication on
// the article ID means a second trigger while a run is in flight returns the
// existing task instead of piling on.
func (s *Service) QueueRun(ctx context.Context, articleID string, languages []string, force bool) (*taskqueue.Task, error) {
	payload := SyncPayload{ArticleID: articleID, Languages: languages, Force: force}
	task, err := s.tasks.Enqueue(ctx, TaskTypeTranslate, payload, articleID, articleID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("no task enqueued for article %s", articleID)
	}
	if task.Status == taskqueue.TaskPending {
		go s.executeRun(context.Background(), task.ID, payload)
	}
	return task, nil
}

func (s *Service) executeRun(ctx context.Context, taskID string, payload SyncPayload) {
	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	summary, err := s.ProcessWorklist(ctx, payload.ArticleID, payload.Languages, payload.Force)
	if err != nil {
		s.logger.Error("translation run failed",
			zap.String("task_id", taskID),
			zap.String("article_id", payload.ArticleID),
			zap.Error(err))
		_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}
	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, summary, "")

	failed := FailedLanguages(summary)
	if len(failed) == 0 || payload.Retry {
		return
	}
	s.logger.Warn("scheduling one retry for failed languages",
		zap.String("article_id", payload.ArticleID),
		zap.Strings("languages", failed),
		zap.Duration("delay", s.retryDelay))
	time.AfterFunc(s.retryDelay, func() {
		retry := SyncPayload{
			ArticleID: payload.ArticleID,
			Languages: failed,
			Force:     payload.Force,
			Retry:     true,
		}
		task, err := s.tasks.Enqueue(context.Background(), TaskTypeTranslate, retry, payload.ArticleID, payload.ArticleID)
		if err != nil {
			s.logger.Error("retry enqueue failed",
				zap.String("article_id", payload.ArticleID),
				zap.Error(err))
			return
		}
		if task != nil && task.Status == taskqueue.TaskPending {
			s.executeRun(context.Background(), task.ID, retry)
		}
	})
}

// ProcessWorklist translates the given languages in fixed-size batches.
// Batches run sequentially with a delay in between; languages within a batch
// run concurrently and every outcome is collected before the next batch
// starts. One failed language never aborts the others.
func (s *Service) ProcessWorklist(ctx context.Context, articleID string, languages []string, force bool) (*RunSummary, error) {
	var article models.ArticleModel
	if err := s.db.WithContext(ctx).First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("article %s not found", articleID)
		}
		return nil, err
	}

	summary := &RunSummary{ArticleID: articleID}
	for start := 0; start < len(languages); start += s.batchSize {
		end := min(start+s.batchSize, len(languages))
		batch := languages[start:end]

		results := make([]LanguageResult, len(batch))
		done := make(chan struct{})
		for i, lang := range batch {
			go func(i int, lang string) {
				results[i] = s.translateLanguage(ctx, &article, lang, force)
				done <- struct{}{}
			}(i, lang)
		}
		for range batch {
			<-done
		}
		summary.Results = append(summary.Results, results...)

		if end < len(languages) {
			if err := sleepCtx(ctx, s.batchDelay); err != nil {
				return summary, err
			}
		}
	}

	for _, r := range summary.Results {
		switch r.Action {
		case ActionCreated, ActionUpdated:
			summary.Successful++
		case ActionSkipped:
			summary.Skipped++
		case ActionFailed:
			summary.Failed++
		}
	}

	if summary.Successful > 0 {
		if err := s.RecomputeAvailability(ctx, articleID); err != nil {
			s.logger.Warn("availability recompute failed",
				zap.String("article_id", articleID),
				zap.Error(err))
		}
	}
	return summary, nil
}

func (s *Service) translateLanguage(ctx context.Context, article *models.ArticleModel, rawLang string, force bool) LanguageResult {
	lang := NormalizeLanguageCode(rawLang)
	res := LanguageResult{Language: lang}
	if lang == "" || lang == NormalizeLanguageCode(article.OriginalLanguage) {
		res.Action = ActionSkipped
		res.Reason = "original language"
		return res
	}

	hash := ContentHash(article.Title, article.Text)

	var existing *models.TranslationModel
	var row models.TranslationModel
	err := s.db.WithContext(ctx).
		Where("article_id = ? AND language = ?", article.ID, lang).
		First(&row).Error
	switch {
	case err == nil:
		existing = &row
	case !errors.Is(err, gorm.ErrRecordNotFound):
		res.Action = ActionFailed
		res.Error = err.Error()
		return res
	}

	if !force && existing != nil && existing.Status == models.TranslationCompleted &&
		existing.ContentHash == hash && time.Since(existing.UpdatedAt) < s.recentWindow {
		res.Action = ActionSkipped
		res.Reason = "Recent translation exists"
		return res
	}

	if err := s.upsertJob(ctx, article.ID, lang, models.JobProcessing, "", ""); err != nil {
		res.Action = ActionFailed
		res.Error = err.Error()
		return res
	}

	req := &TranslateRequest{
		Title:           article.Title,
		Excerpt:         article.Excerpt,
		Text:            article.Text,
		MetaTitle:       article.MetaTitle,
		MetaDescription: article.MetaDescription,
		Keywords:        article.Keywords,
		SourceLanguage:  article.OriginalLanguage,
		TargetLanguage:  lang,
	}
	out, err := s.translator.Translate(ctx, req)
	if err != nil {
		if !ShouldFallbackToMock(err) {
			_ = s.upsertJob(ctx, article.ID, lang, models.JobFailed, err.Error(), "")
			res.Action = ActionFailed
			res.Error = err.Error()
			return res
		}
		s.logger.Warn("provider unreachable, using mock translation",
			zap.String("article_id", article.ID),
			zap.String("language", lang),
			zap.Error(err))
		out = MockTranslate(req)
	}

	attempt := 1
	if existing != nil {
		attempt = existing.AttemptCount + 1
	}
	record := models.TranslationModel{
		ArticleID:       article.ID,
		Language:        lang,
		Title:           out.Title,
		Excerpt:         out.Excerpt,
		Text:            out.Text,
		MetaTitle:       out.MetaTitle,
		MetaDescription: out.MetaDescription,
		Keywords:        models.StringArray(out.Keywords),
		Status:          models.TranslationCompleted,
		ContentHash:     hash,
		Confidence:      out.Confidence,
		QualityScore:    out.QualityScore,
		NeedsReview:     out.NeedsReview,
		AttemptCount:    attempt,
	}
	if err := s.upsertTranslation(ctx, &record); err != nil {
		_ = s.upsertJob(ctx, article.ID, lang, models.JobFailed, err.Error(), out.Model)
		res.Action = ActionFailed
		res.Error = err.Error()
		return res
	}
	_ = s.upsertJob(ctx, article.ID, lang, models.JobCompleted, "", out.Model)

	if existing == nil {
		res.Action = ActionCreated
	} else {
		res.Action = ActionUpdated
	}
	return res
}

// upsertTranslation writes the (article, language) row atomically; the
// compound unique key plus ON CONFLICT makes concurrent attempts safe.
func (s *Service) upsertTranslation(ctx context.Context, record *models.TranslationModel) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "article_id"}, {Name: "language"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "excerpt", "text", "meta_title", "meta_description", "keywords",
			"status", "content_hash", "confidence", "quality_score", "needs_review",
			"attempt_count", "updated_at",
		}),
	}).Create(record).Error
}

// FailedLanguages extracts the languages whose attempt failed in a run.
func FailedLanguages(summary *RunSummary) []string {
	var out []string
	for _, r := range summary.Results {
		if r.Action == ActionFailed {
			out = append(out, r.Language)
		}
	}
	return out
}
