package article

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luminpress/core/internal/database"
	"github.com/luminpress/core/internal/models"
	"github.com/luminpress/core/internal/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db, nil)
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(&CreateArticleDTO{Slug: "hello", Title: "Hello", Text: "Body"})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleDraft, first.Status)
	assert.Equal(t, "en", first.OriginalLanguage)
	assert.Equal(t, models.StringArray{"en"}, first.AvailableLanguages)

	_, err = svc.Create(&CreateArticleDTO{Slug: "hello", Title: "Again", Text: "Body"})
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestGetByIdentifierVisibility(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(&CreateArticleDTO{Slug: "draft-post", Title: "Draft", Text: "Body"})
	require.NoError(t, err)

	// Drafts are invisible to the public, by ID or slug.
	got, err := svc.GetByIdentifier(created.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = svc.GetByIdentifier("draft-post", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetByIdentifier("draft-post", true)
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = svc.Publish(created.ID)
	require.NoError(t, err)

	got, err = svc.GetByIdentifier("draft-post", false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ArticlePublished, got.Status)
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(&CreateArticleDTO{Slug: "hello", Title: "Hello", Text: "Body"})
	require.NoError(t, err)

	updated, err := svc.Update(created.ID, &UpdateArticleDTO{
		Title:           strptr("Hello v2"),
		Status:          strptr(models.ArticlePublished),
		AutoTranslate:   boolptr(true),
		TargetLanguages: []string{"fr"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello v2", updated.Title)
	assert.True(t, updated.AutoTranslate)

	var stored models.ArticleModel
	require.NoError(t, svc.db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "Hello v2", stored.Title)
	assert.Equal(t, models.ArticlePublished, stored.Status)
	assert.Equal(t, models.StringArray{"fr"}, stored.TargetLanguages)

	missing, err := svc.Update("missing", &UpdateArticleDTO{Title: strptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPublishIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(&CreateArticleDTO{Slug: "hello", Title: "Hello", Text: "Body"})
	require.NoError(t, err)

	published, err := svc.Publish(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticlePublished, published.Status)

	again, err := svc.Publish(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticlePublished, again.Status)
}

func TestLocalize(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(&CreateArticleDTO{
		Slug: "hello", Title: "Hello", Text: "Body", Excerpt: "An excerpt",
	})
	require.NoError(t, err)

	require.NoError(t, svc.db.Create(&models.TranslationModel{
		ArticleID: created.ID,
		Language:  "fr",
		Title:     "Bonjour",
		Text:      "Corps",
		Status:    models.TranslationCompleted,
	}).Error)
	require.NoError(t, svc.db.Create(&models.TranslationModel{
		ArticleID: created.ID,
		Language:  "de",
		Title:     "Hallo",
		Text:      "Körper",
		Status:    models.TranslationFailed,
	}).Error)

	localized, translated := svc.Localize(created, "fr")
	assert.True(t, translated)
	assert.Equal(t, "Bonjour", localized.Title)
	assert.Equal(t, "Corps", localized.Text)
	// Fields the translation left empty keep the original content.
	assert.Equal(t, "An excerpt", localized.Excerpt)
	// The source article is untouched.
	assert.Equal(t, "Hello", created.Title)

	// Region subtags collapse to the bare language code.
	regional, translated := svc.Localize(created, "fr-FR")
	assert.True(t, translated)
	assert.Equal(t, "Bonjour", regional.Title)

	// Incomplete translations never leak out.
	same, translated := svc.Localize(created, "de")
	assert.False(t, translated)
	assert.Equal(t, "Hello", same.Title)

	same, translated = svc.Localize(created, "en")
	assert.False(t, translated)
	assert.Equal(t, "Hello", same.Title)
}

func TestDeleteRemovesTranslationState(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(&CreateArticleDTO{Slug: "hello", Title: "Hello", Text: "Body"})
	require.NoError(t, err)

	require.NoError(t, svc.db.Create(&models.TranslationModel{
		ArticleID: created.ID, Language: "fr", Status: models.TranslationCompleted,
	}).Error)
	require.NoError(t, svc.db.Create(&models.TranslationJobModel{
		ArticleID: created.ID, TargetLanguage: "fr", Status: models.JobCompleted,
	}).Error)

	require.NoError(t, svc.Delete(created.ID))

	got, err := svc.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var count int64
	svc.db.Unscoped().Model(&models.TranslationModel{}).Where("article_id = ?", created.ID).Count(&count)
	assert.Zero(t, count)
	svc.db.Unscoped().Model(&models.TranslationJobModel{}).Where("article_id = ?", created.ID).Count(&count)
	assert.Zero(t, count)
}

func TestListVisibility(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(&CreateArticleDTO{Slug: "draft", Title: "Draft", Text: "Body"})
	require.NoError(t, err)
	_, err = svc.Create(&CreateArticleDTO{
		Slug: "live", Title: "Live", Text: "Body", Status: strptr(models.ArticlePublished),
	})
	require.NoError(t, err)

	q := pagination.Query{Page: 1, Size: 10}

	public, pag, err := svc.List(q, ListQuery{}, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "live", public[0].Slug)
	assert.EqualValues(t, 1, pag.Total)

	admin, _, err := svc.List(q, ListQuery{}, true)
	require.NoError(t, err)
	assert.Len(t, admin, 2)

	drafts, _, err := svc.List(q, ListQuery{Status: strptr(models.ArticleDraft)}, true)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "draft", drafts[0].Slug)
}

func TestRenderHTML(t *testing.T) {
	html, err := renderHTML("# Title\n\nSome **bold** text.")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")

	empty, err := renderHTML("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
