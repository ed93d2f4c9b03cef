package notify_test

import (
	"context"
	"encoding/json"
	"errors"

	"basegraph.app/courier/internal/notify"
	"github.com/hibiken/asynq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (m *mockEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	m.opts = append(m.opts, opts)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

var _ = Describe("AsynqNotifier", func() {
	It("enqueues a deliver task with the notification and options", func() {
		enq := &mockEnqueuer{}
		n := notify.NewAsynqNotifier(enq, notify.AsynqConfig{Queue: "notifications", MaxRetry: 3})

		err := n.QueueNotification(context.Background(), notify.Notification{
			UserID:   7,
			Category: notify.CategorySupport,
			Priority: notify.PriorityUrgent,
			Type:     "support_case_escalated",
			Title:    "Support case escalated",
		}, notify.Options{BypassQuietHours: true})
		Expect(err).NotTo(HaveOccurred())

		Expect(enq.tasks).To(HaveLen(1))
		Expect(enq.tasks[0].Type()).To(Equal(notify.TaskTypeDeliver))
		Expect(enq.opts[0]).To(HaveLen(2))

		var payload notify.DeliverPayload
		Expect(json.Unmarshal(enq.tasks[0].Payload(), &payload)).To(Succeed())
		Expect(payload.Notification.UserID).To(Equal(int64(7)))
		Expect(payload.Options.BypassQuietHours).To(BeTrue())
	})

	It("wraps enqueue failures", func() {
		n := notify.NewAsynqNotifier(&mockEnqueuer{err: errors.New("redis down")}, notify.AsynqConfig{})
		err := n.QueueNotification(context.Background(), notify.Notification{UserID: 1}, notify.Options{})
		Expect(err).To(MatchError(ContainSubstring("redis down")))
	})
})
