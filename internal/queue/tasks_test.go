package queue

import (
	"encoding/json"
	"testing"

	"github.com/storefront-next/internal/config"
)

func TestNewCartMergedTaskPayload(t *testing.T) {
	task, err := NewCartMergedTask(CartMergedPayload{GuestCartID: 1, UserCartID: 2, UserID: 3, MergedLines: 1, Total: "300.00"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskCartMerged {
		t.Fatalf("task type want %s got %s", TaskCartMerged, task.Type())
	}
	var payload CartMergedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.UserCartID != 2 || payload.Total != "300.00" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueCartCodeRejected(CartCodeRejectedPayload{CartID: 1, Code: "x"}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.EnqueueGuestCartCleanup(GuestCartCleanupPayload{BatchSize: 10}, 0); err != nil {
		t.Fatalf("disabled cleanup enqueue should be noop: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("addr want 127.0.0.1:6379 got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("concurrency want 10 got %d", cfg.Concurrency)
	}
	if cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("default queue weight want 1 got %d", cfg.Queues[DefaultQueue])
	}
}
