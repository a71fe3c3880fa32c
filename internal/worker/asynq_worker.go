package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartMerged, c.handleCartMerged)
	mux.HandleFunc(queue.TaskCartCodeRejected, c.handleCartCodeRejected)
	mux.HandleFunc(queue.TaskGuestCartCleanup, c.handleGuestCartCleanup)
}

func (c *Consumer) handleCartMerged(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_merged_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartMergedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_merged_unmarshal_failed", "error", err)
		return err
	}
	if payload.GuestCartID == 0 || payload.UserCartID == 0 {
		logger.Debugw("worker_cart_merged_skip_invalid_payload", "guest_cart_id", payload.GuestCartID, "user_cart_id", payload.UserCartID)
		return nil
	}
	logger.Infow("cart_merged",
		"guest_cart_id", payload.GuestCartID,
		"user_cart_id", payload.UserCartID,
		"user_id", payload.UserID,
		"merged_lines", payload.MergedLines,
		"copied_lines", payload.CopiedLines,
		"total", payload.Total,
	)
	return nil
}

func (c *Consumer) handleCartCodeRejected(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_code_rejected_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartCodeRejectedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_code_rejected_unmarshal_failed", "error", err)
		return err
	}
	if payload.CartID == 0 {
		logger.Debugw("worker_code_rejected_skip_invalid_payload", "cart_id", payload.CartID)
		return nil
	}
	logger.Infow("cart_code_rejected",
		"cart_id", payload.CartID,
		"user_id", payload.UserID,
		"code", payload.Code,
		"reason", payload.Reason,
	)
	return nil
}

func (c *Consumer) handleGuestCartCleanup(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_guest_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GuestCartCleanupPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_guest_cleanup_unmarshal_failed", "error", err)
			return err
		}
	}
	if c.Container == nil || c.CartService == nil {
		logger.Warnw("worker_guest_cleanup_skip_cart_service_nil")
		return nil
	}
	ttlDays := 0
	batchSize := payload.BatchSize
	if c.Config != nil {
		ttlDays = c.Config.Cart.GuestCartTTLDays
		if batchSize <= 0 {
			batchSize = c.Config.Cart.CleanupBatchSize
		}
	}
	cutoff := service.GuestCartCutoff(c.now(), ttlDays)
	removed, err := c.CartService.CleanupStaleGuestCarts(cutoff, batchSize)
	if err != nil {
		logger.Warnw("worker_guest_cleanup_failed", "cutoff", cutoff, "removed", removed, "error", err)
		return err
	}
	logger.Debugw("worker_guest_cleanup_done", "cutoff", cutoff, "removed", removed)
	return nil
}
