package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/luminpress/core/internal/database"
	"github.com/luminpress/core/internal/models"
	redisc "github.com/luminpress/core/internal/pkg/redis"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestService(t *testing.T, tr Translator) *Service {
	t.Helper()
	return &Service{
		db:              newTestDB(t),
		logger:          zap.NewNop(),
		translator:      tr,
		batchSize:       2,
		batchDelay:      time.Millisecond,
		recentWindow:    time.Hour,
		stalenessWindow: 24 * time.Hour,
		retryDelay:      time.Minute,
	}
}

func newTestTaskQueue(t *testing.T) (*taskqueue.Service, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return taskqueue.NewService(redisc.NewFromClient(rdb)), rdb
}

func seedArticle(t *testing.T, db *gorm.DB, mutate func(*models.ArticleModel)) *models.ArticleModel {
	t.Helper()
	article := &models.ArticleModel{
		Slug:               "hello-world",
		Title:              "Hello World",
		Text:               "# Hello\n\nThis is the body.",
		Excerpt:            "A greeting.",
		Status:             models.ArticlePublished,
		OriginalLanguage:   "en",
		AutoTranslate:      true,
		TargetLanguages:    models.StringArray{"fr", "de"},
		AvailableLanguages: models.StringArray{"en"},
	}
	if mutate != nil {
		mutate(article)
	}
	require.NoError(t, db.Create(article).Error)
	return article
}

// fakeTranslator records call order and delegates to fn when set.
type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
	fn    func(req *TranslateRequest) (*TranslateResult, error)
}

func (f *fakeTranslator) Translate(_ context.Context, req *TranslateRequest) (*TranslateResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.TargetLanguage)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(req)
	}
	return &TranslateResult{
		Title:        "[" + req.TargetLanguage + "] " + req.Title,
		Excerpt:      req.Excerpt,
		Text:         req.Text,
		Confidence:   0.9,
		QualityScore: 0.9,
		Model:        "fake",
	}, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
