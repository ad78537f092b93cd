package translation

import (
	"context"
	"testing"
	"time"

	"github.com/luminpress/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertJobLifecycle(t *testing.T) {
	svc := newTestService(t, &fakeTranslator{})
	article := seedArticle(t, svc.db, nil)
	ctx := context.Background()

	require.NoError(t, svc.upsertJob(ctx, article.ID, "fr", models.JobProcessing, "", ""))
	require.NoError(t, svc.upsertJob(ctx, article.ID, "fr", models.JobFailed, "boom", ""))
	require.NoError(t, svc.upsertJob(ctx, article.ID, "fr", models.JobProcessing, "", ""))
	require.NoError(t, svc.upsertJob(ctx, article.ID, "fr", models.JobCompleted, "", "llama-3.3-70b-versatile"))

	var jobs []models.TranslationJobModel
	require.NoError(t, svc.db.Where("article_id = ?", article.ID).Find(&jobs).Error)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, 2, job.AttemptCount)
	assert.Equal(t, "llama-3.3-70b-versatile", job.AIModel)
	assert.Empty(t, job.ErrorMessage)
}

func TestCleanupJobs(t *testing.T) {
	svc := newTestService(t, &fakeTranslator{})
	article := seedArticle(t, svc.db, nil)
	ctx := context.Background()

	require.NoError(t, svc.upsertJob(ctx, article.ID, "fr", models.JobCompleted, "", ""))
	require.NoError(t, svc.upsertJob(ctx, article.ID, "de", models.JobFailed, "boom", ""))
	require.NoError(t, svc.upsertJob(ctx, article.ID, "es", models.JobProcessing, "", ""))

	backdate := func(lang string) {
		require.NoError(t, svc.db.Model(&models.TranslationJobModel{}).
			Where("article_id = ? AND target_language = ?", article.ID, lang).
			UpdateColumn("updated_at", time.Now().Add(-8*24*time.Hour)).Error)
	}
	backdate("de")
	backdate("es")

	purged, err := svc.CleanupJobs(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	// The fresh settled job and the old in-flight job both survive.
	var langs []string
	require.NoError(t, svc.db.Model(&models.TranslationJobModel{}).
		Where("article_id = ?", article.ID).
		Order("target_language asc").
		Pluck("target_language", &langs).Error)
	assert.Equal(t, []string{"es", "fr"}, langs)
}
