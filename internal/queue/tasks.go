package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartMerged 游客购物车合并完成事件
	TaskCartMerged = constants.TaskCartMerged
	// TaskCartCodeRejected 优惠码被拒绝事件
	TaskCartCodeRejected = constants.TaskCartCodeRejected
	// TaskGuestCartCleanup 过期游客购物车清理任务
	TaskGuestCartCleanup = constants.TaskGuestCartCleanup
)

// CartMergedPayload 购物车合并事件载荷
type CartMergedPayload struct {
	GuestCartID uint   `json:"guest_cart_id"`
	UserCartID  uint   `json:"user_cart_id"`
	UserID      uint   `json:"user_id"`
	MergedLines int    `json:"merged_lines"`
	CopiedLines int    `json:"copied_lines"`
	Total       string `json:"total"`
}

// CartCodeRejectedPayload 优惠码拒绝事件载荷
type CartCodeRejectedPayload struct {
	CartID uint   `json:"cart_id"`
	UserID uint   `json:"user_id,omitempty"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// GuestCartCleanupPayload 游客购物车清理任务载荷
type GuestCartCleanupPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewCartMergedTask 创建购物车合并事件任务
func NewCartMergedTask(payload CartMergedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartMerged, body), nil
}

// NewCartCodeRejectedTask 创建优惠码拒绝事件任务
func NewCartCodeRejectedTask(payload CartCodeRejectedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartCodeRejected, body), nil
}

// NewGuestCartCleanupTask 创建游客购物车清理任务
func NewGuestCartCleanupTask(payload GuestCartCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGuestCartCleanup, body), nil
}
