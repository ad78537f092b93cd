package translation

import (
	"time"

	"github.com/luminpress/core/internal/config"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service drives the article translation pipeline: trigger policy, batch
// scheduling, provider calls, job bookkeeping and the availability cache.
type Service struct {
	db         *gorm.DB
	logger     *zap.Logger
	tasks      *taskqueue.Service
	translator Translator

	batchSize       int
	batchDelay      time.Duration
	recentWindow    time.Duration
	stalenessWindow time.Duration
	retryDelay      time.Duration
}

func NewService(db *gorm.DB, logger *zap.Logger, tasks *taskqueue.Service, aiCfg config.AIConfig, cfg config.TranslationConfig) *Service {
	log := logger.Named("translation")

	var tr Translator
	if aiCfg.APIKey == "" {
		log.Warn("ai.api_key is empty, translations use the mock provider")
		tr = mockClient{}
	} else {
		tr = NewGroqClient(aiCfg, log)
	}

	return &Service{
		db:              db,
		logger:          log,
		tasks:           tasks,
		translator:      tr,
		batchSize:       cfg.BatchSize,
		batchDelay:      cfg.BatchDelay(),
		recentWindow:    cfg.RecentWindow(),
		stalenessWindow: cfg.StalenessWindow(),
		retryDelay:      cfg.RetryDelay(),
	}
}
