package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultCleanupInterval = time.Hour

// Service 异步队列服务
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	consumer  *Consumer
	scheduler *cleanupScheduler
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:      "worker",
		server:    server,
		mux:       mux,
		consumer:  consumer,
		scheduler: newCleanupScheduler(cfg.Cart, consumer.QueueClient),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.scheduler != nil {
		go s.scheduler.run(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// cleanupScheduler 周期性投递游客购物车清理任务，多个 worker 实例依靠 asynq.Unique 去重
type cleanupScheduler struct {
	interval  time.Duration
	batchSize int
	enqueuer  cleanupEnqueuer
}

type cleanupEnqueuer interface {
	EnqueueGuestCartCleanup(payload queue.GuestCartCleanupPayload, uniqueFor time.Duration) error
}

func newCleanupScheduler(cfg config.CartConfig, enqueuer cleanupEnqueuer) *cleanupScheduler {
	if enqueuer == nil {
		return nil
	}
	if qc, ok := enqueuer.(*queue.Client); ok && qc == nil {
		return nil
	}
	interval := defaultCleanupInterval
	if cfg.CleanupIntervalMinutes > 0 {
		interval = time.Duration(cfg.CleanupIntervalMinutes) * time.Minute
	}
	return &cleanupScheduler{
		interval:  interval,
		batchSize: cfg.CleanupBatchSize,
		enqueuer:  enqueuer,
	}
}

func (s *cleanupScheduler) enqueue() {
	payload := queue.GuestCartCleanupPayload{BatchSize: s.batchSize}
	if err := s.enqueuer.EnqueueGuestCartCleanup(payload, s.interval); err != nil {
		logger.Warnw("worker_guest_cleanup_enqueue_failed", "error", err)
	}
}

func (s *cleanupScheduler) run(ctx context.Context) {
	if s == nil {
		return
	}
	s.enqueue()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueue()
		}
	}
}
