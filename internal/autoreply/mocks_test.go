package autoreply_test

import (
	"context"
	"errors"
	"sync"

	"basegraph.app/courier/common/llm"
	"basegraph.app/courier/internal/queue"
)

type mockEnqueuer struct {
	mu        sync.Mutex
	enqueueFn func(ctx context.Context, task queue.AutoReplyTask) (bool, error)
	tasks     []queue.AutoReplyTask
}

func (m *mockEnqueuer) EnqueueAutoReply(ctx context.Context, task queue.AutoReplyTask) (bool, error) {
	if m.enqueueFn != nil {
		if ok, err := m.enqueueFn(ctx, task); err != nil {
			return ok, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return true, nil
}

func (m *mockEnqueuer) Tasks() []queue.AutoReplyTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queue.AutoReplyTask(nil), m.tasks...)
}

type mockLLMClient struct {
	chatFn    func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	callCount int
	lastReq   llm.Request
}

func (m *mockLLMClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.callCount++
	m.lastReq = req
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockLLMClient) Model() string {
	return "test-model"
}
