package queue_test

import (
	"basegraph.app/courier/internal/queue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("ParseMessage", func() {
	It("parses an auto-reply task", func() {
		msg, err := queue.ParseMessage(redis.XMessage{
			ID: "1-0",
			Values: map[string]any{
				"task_type":  "auto_reply",
				"thread_id":  "10",
				"message_id": "20",
				"sender_id":  "30",
				"attempt":    "2",
				"trace_id":   "abc",
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1-0"))
		Expect(msg.TaskType).To(Equal(queue.TaskTypeAutoReply))
		Expect(msg.ThreadID).To(Equal(int64(10)))
		Expect(msg.MessageID).To(Equal(int64(20)))
		Expect(msg.SenderID).To(Equal(int64(30)))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("abc"))
	})

	It("defaults attempt to one", func() {
		msg, err := queue.ParseMessage(redis.XMessage{Values: map[string]any{
			"task_type": "auto_reply", "thread_id": "1", "message_id": "2", "sender_id": "3",
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
	})

	DescribeTable("rejects malformed entries",
		func(values map[string]any, want string) {
			_, err := queue.ParseMessage(redis.XMessage{Values: values})
			Expect(err).To(MatchError(ContainSubstring(want)))
		},
		Entry("missing task type", map[string]any{"thread_id": "1"}, "missing task_type"),
		Entry("unknown task type", map[string]any{"task_type": "repo_sync"}, "unknown task_type"),
		Entry("missing thread", map[string]any{"task_type": "auto_reply", "message_id": "2", "sender_id": "3"}, "missing thread_id"),
		Entry("bad message id", map[string]any{"task_type": "auto_reply", "thread_id": "1", "message_id": "x", "sender_id": "3"}, "parsing message_id"),
	)
})

var _ = Describe("AutoReplyDedupeKey", func() {
	It("namespaces by message id", func() {
		Expect(queue.AutoReplyDedupeKey(42)).To(Equal("courier:autoreply:42"))
	})
})
