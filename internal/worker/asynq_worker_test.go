package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *repository.GormCartRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{Cart: config.CartConfig{GuestCartTTLDays: 30, CleanupBatchSize: 1}}
	cartRepo := repository.NewCartRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	taxes := service.NewTaxResolver(repository.NewTaxProfileRepository(db))
	discounts := service.NewDiscountResolver(repository.NewDiscountRepository(db), repository.NewDiscountRedemptionRepository(db), catalogRepo)
	pricing := service.NewCartPricingService(cartRepo, discounts, taxes)
	queueClient, _ := queue.NewClient(nil)
	container := &provider.Container{
		Config:      cfg,
		QueueClient: queueClient,
		CartRepo:    cartRepo,
		CartService: service.NewCartService(cfg, cartRepo, catalogRepo, pricing, service.NewShippingResolver(repository.NewShippingRepository(db)), taxes, queueClient),
	}
	return NewConsumer(container), cartRepo
}

func TestHandleGuestCartCleanupUsesConfiguredTTL(t *testing.T) {
	consumer, cartRepo := setupWorkerTest(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	consumer.now = func() time.Time { return now }

	for i, age := range []int{45, 31, 10} {
		cart := models.NewGuestCart(fmt.Sprintf("guest-%d", i), "PKR", now.Add(-time.Duration(age)*24*time.Hour))
		if err := cartRepo.Create(cart); err != nil {
			t.Fatalf("create cart failed: %v", err)
		}
	}

	task, err := queue.NewGuestCartCleanupTask(queue.GuestCartCleanupPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleGuestCartCleanup(context.Background(), task); err != nil {
		t.Fatalf("cleanup handler failed: %v", err)
	}
	if cart, _ := cartRepo.FindActiveByGuestToken("guest-2"); cart == nil {
		t.Fatalf("recent guest cart must survive")
	}
	for _, token := range []string{"guest-0", "guest-1"} {
		if cart, _ := cartRepo.FindActiveByGuestToken(token); cart != nil {
			t.Fatalf("stale guest cart %s should be removed", token)
		}
	}
}

func TestHandlersRejectBrokenPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	broken := asynq.NewTask(queue.TaskCartMerged, []byte("{"))
	if err := consumer.handleCartMerged(context.Background(), broken); err == nil {
		t.Fatalf("expected unmarshal error for merged payload")
	}
	broken = asynq.NewTask(queue.TaskCartCodeRejected, []byte("{"))
	if err := consumer.handleCartCodeRejected(context.Background(), broken); err == nil {
		t.Fatalf("expected unmarshal error for rejected payload")
	}

	body, _ := json.Marshal(queue.CartMergedPayload{GuestCartID: 1, UserCartID: 2, UserID: 3, Total: "10.00"})
	if err := consumer.handleCartMerged(context.Background(), asynq.NewTask(queue.TaskCartMerged, body)); err != nil {
		t.Fatalf("merged event should be accepted: %v", err)
	}
	if err := consumer.handleGuestCartCleanup(context.Background(), asynq.NewTask(queue.TaskGuestCartCleanup, nil)); err != nil {
		t.Fatalf("cleanup without cart service should be skipped: %v", err)
	}
}

type fakeCleanupEnqueuer struct {
	payloads  []queue.GuestCartCleanupPayload
	uniqueFor []time.Duration
	err       error
}

func (f *fakeCleanupEnqueuer) EnqueueGuestCartCleanup(payload queue.GuestCartCleanupPayload, uniqueFor time.Duration) error {
	f.payloads = append(f.payloads, payload)
	f.uniqueFor = append(f.uniqueFor, uniqueFor)
	return f.err
}

func TestCleanupSchedulerEnqueuesWithInterval(t *testing.T) {
	enqueuer := &fakeCleanupEnqueuer{}
	scheduler := newCleanupScheduler(config.CartConfig{CleanupIntervalMinutes: 15, CleanupBatchSize: 50}, enqueuer)
	if scheduler == nil {
		t.Fatalf("scheduler should be created")
	}
	scheduler.enqueue()
	if len(enqueuer.payloads) != 1 || enqueuer.payloads[0].BatchSize != 50 {
		t.Fatalf("unexpected payloads: %+v", enqueuer.payloads)
	}
	if enqueuer.uniqueFor[0] != 15*time.Minute {
		t.Fatalf("unique window want 15m got %s", enqueuer.uniqueFor[0])
	}

	enqueuer.err = errors.New("redis down")
	scheduler.enqueue()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scheduler.run(ctx)
	if len(enqueuer.payloads) != 3 {
		t.Fatalf("run should enqueue once before exiting, got %d", len(enqueuer.payloads))
	}

	var nilClient *queue.Client
	if newCleanupScheduler(config.CartConfig{}, nilClient) != nil {
		t.Fatalf("nil queue client should disable scheduler")
	}
	if got := newCleanupScheduler(config.CartConfig{}, enqueuer).interval; got != defaultCleanupInterval {
		t.Fatalf("default interval want %s got %s", defaultCleanupInterval, got)
	}
}
