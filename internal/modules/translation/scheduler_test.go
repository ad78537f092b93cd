package translation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/luminpress/core/internal/models"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessWorklistBatching(t *testing.T) {
	ft := &fakeTranslator{}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, func(a *models.ArticleModel) {
		a.TargetLanguages = models.StringArray{"de", "es", "fr", "it", "pt"}
	})

	summary, err := svc.ProcessWorklist(context.Background(), article.ID,
		[]string{"de", "es", "fr", "it", "pt"}, false)
	require.NoError(t, err)
	require.Equal(t, 5, summary.Successful)
	require.Zero(t, summary.Failed)
	require.Len(t, ft.calls, 5)

	// Batches of two run in order; languages inside a batch race each other.
	assert.ElementsMatch(t, []string{"de", "es"}, ft.calls[0:2])
	assert.ElementsMatch(t, []string{"fr", "it"}, ft.calls[2:4])
	assert.Equal(t, "pt", ft.calls[4])
}

func TestProcessWorklistCreatesTranslations(t *testing.T) {
	ft := &fakeTranslator{}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr", "de"}, false)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Successful)
	for _, r := range summary.Results {
		assert.Equal(t, ActionCreated, r.Action)
	}

	var translations []models.TranslationModel
	require.NoError(t, svc.db.Where("article_id = ?", article.ID).Find(&translations).Error)
	require.Len(t, translations, 2)
	for _, tr := range translations {
		assert.Equal(t, models.TranslationCompleted, tr.Status)
		assert.Equal(t, ContentHash(article.Title, article.Text), tr.ContentHash)
		assert.Equal(t, 1, tr.AttemptCount)
	}

	var jobs []models.TranslationJobModel
	require.NoError(t, svc.db.Where("article_id = ?", article.ID).Find(&jobs).Error)
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		assert.Equal(t, models.JobCompleted, job.Status)
		assert.Equal(t, "fake", job.AIModel)
	}

	var stored models.ArticleModel
	require.NoError(t, svc.db.First(&stored, "id = ?", article.ID).Error)
	assert.Equal(t, models.StringArray{"de", "en", "fr"}, stored.AvailableLanguages)
}

func TestProcessWorklistSkipsRecent(t *testing.T) {
	ft := &fakeTranslator{}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	_, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, ft.callCount())

	// Second run right away: fresh translation, unchanged hash, no force.
	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, "Recent translation exists", summary.Results[0].Reason)
	require.Equal(t, 1, ft.callCount())

	// Force bypasses the recent-skip and bumps the attempt counter.
	summary, err = svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, true)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, summary.Results[0].Action)
	require.Equal(t, 2, ft.callCount())

	var tr models.TranslationModel
	require.NoError(t, svc.db.Where("article_id = ? AND language = ?", article.ID, "fr").First(&tr).Error)
	assert.Equal(t, 2, tr.AttemptCount)

	var count int64
	svc.db.Model(&models.TranslationModel{}).Where("article_id = ?", article.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestProcessWorklistRetranslatesChangedContent(t *testing.T) {
	ft := &fakeTranslator{}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	_, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, ft.callCount())

	newText := "# Hello\n\nThe body was rewritten."
	require.NoError(t, svc.db.Model(&models.ArticleModel{}).
		Where("id = ?", article.ID).
		Update("text", newText).Error)

	// A changed source hash bypasses the recent-skip even inside the window.
	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, summary.Results[0].Action)
	require.Equal(t, 2, ft.callCount())

	var tr models.TranslationModel
	require.NoError(t, svc.db.Where("article_id = ? AND language = ?", article.ID, "fr").First(&tr).Error)
	assert.Equal(t, ContentHash(article.Title, newText), tr.ContentHash)
	assert.Equal(t, 2, tr.AttemptCount)
	assert.Equal(t, models.TranslationCompleted, tr.Status)
}

func TestQueueRunRecoversStaleDedupEntry(t *testing.T) {
	ft := &fakeTranslator{}
	svc := newTestService(t, ft)
	tasks, rdb := newTestTaskQueue(t)
	svc.tasks = tasks
	article := seedArticle(t, svc.db, nil)

	// A dedup field left pointing at an expired task must not crash or block
	// a new trigger.
	require.NoError(t, rdb.HSet(context.Background(),
		"lp:tasks:dedup:"+TaskTypeTranslate, article.ID, uuid.New().String()).Err())

	task, err := svc.QueueRun(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, taskqueue.TaskPending, task.Status)
	assert.Equal(t, TaskTypeTranslate, task.Type)
}

func TestProcessWorklistSkipsOriginalLanguage(t *testing.T) {
	ft := &fakeTranslator{}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"en"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, "original language", summary.Results[0].Reason)
	require.Zero(t, ft.callCount())
}

func TestProcessWorklistFatalProviderError(t *testing.T) {
	ft := &fakeTranslator{fn: func(*TranslateRequest) (*TranslateResult, error) {
		return nil, &providerError{status: 401, msg: "Invalid Groq API key", fatal: true}
	}}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, ActionFailed, summary.Results[0].Action)
	require.Contains(t, summary.Results[0].Error, "Invalid Groq API key")
	require.Equal(t, []string{"fr"}, FailedLanguages(summary))

	// No mock substitution on auth errors: no translation row appears and
	// the availability cache stays untouched.
	var count int64
	svc.db.Model(&models.TranslationModel{}).Where("article_id = ?", article.ID).Count(&count)
	assert.Zero(t, count)

	var job models.TranslationJobModel
	require.NoError(t, svc.db.Where("article_id = ? AND target_language = ?", article.ID, "fr").First(&job).Error)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "Invalid Groq API key")

	var stored models.ArticleModel
	require.NoError(t, svc.db.First(&stored, "id = ?", article.ID).Error)
	assert.Equal(t, models.StringArray{"en"}, stored.AvailableLanguages)
}

func TestProcessWorklistFallsBackToMock(t *testing.T) {
	ft := &fakeTranslator{fn: func(*TranslateRequest) (*TranslateResult, error) {
		return nil, &providerError{msg: "network error calling groq: context deadline exceeded"}
	}}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Successful)
	require.Equal(t, ActionCreated, summary.Results[0].Action)

	var tr models.TranslationModel
	require.NoError(t, svc.db.Where("article_id = ? AND language = ?", article.ID, "fr").First(&tr).Error)
	assert.Equal(t, "[FR] Hello World", tr.Title)
	assert.Equal(t, models.TranslationCompleted, tr.Status)
	assert.Equal(t, 0.5, tr.Confidence)
	assert.True(t, tr.NeedsReview)

	var job models.TranslationJobModel
	require.NoError(t, svc.db.Where("article_id = ? AND target_language = ?", article.ID, "fr").First(&job).Error)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, "mock", job.AIModel)
}

func TestProcessWorklistPartialFailure(t *testing.T) {
	ft := &fakeTranslator{fn: func(req *TranslateRequest) (*TranslateResult, error) {
		if req.TargetLanguage == "de" {
			return nil, &providerError{status: 503, msg: "groq server error (status 503)"}
		}
		return &TranslateResult{Title: "ok", Text: "ok", Confidence: 0.9, Model: "fake"}, nil
	}}
	svc := newTestService(t, ft)
	article := seedArticle(t, svc.db, nil)

	summary, err := svc.ProcessWorklist(context.Background(), article.ID, []string{"fr", "de"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Successful)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, []string{"de"}, FailedLanguages(summary))

	// The successful language still lands in the availability cache.
	var stored models.ArticleModel
	require.NoError(t, svc.db.First(&stored, "id = ?", article.ID).Error)
	assert.Equal(t, models.StringArray{"en", "fr"}, stored.AvailableLanguages)
}
