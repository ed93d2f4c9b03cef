package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/courier/internal/http/handler"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/service"
)

var _ = Describe("SupportHandler", func() {
	var (
		router *gin.Engine
		svc    *mockSupportService
		now    time.Time
	)

	supportCase := func(threadID int64, status model.CaseStatus, priority model.CasePriority) *model.SupportCase {
		return &model.SupportCase{
			ID:          90,
			ThreadID:    threadID,
			Status:      status,
			Priority:    priority,
			Reason:      "payment dispute",
			EscalatedBy: 10,
			EscalatedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	BeforeEach(func() {
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		router = newRouter()
		svc = &mockSupportService{}
		h := handler.NewSupportHandler(svc)
		router.GET("/threads/:threadId/support", h.Get)
		router.POST("/threads/:threadId/support/escalate", h.Escalate)
		router.POST("/threads/:threadId/support/assign", h.Assign)
		router.PUT("/threads/:threadId/support/status", h.UpdateStatus)
	})

	Describe("Escalate", func() {
		It("defaults the priority to medium", func() {
			var got service.EscalateInput
			svc.escalateFn = func(_ context.Context, threadID, _ int64, in service.EscalateInput) (*model.SupportCase, error) {
				got = in
				return supportCase(threadID, model.CaseStatusTriage, in.Priority), nil
			}

			w := perform(router, http.MethodPost, "/threads/7/support/escalate", `{"reason":"payment dispute"}`, "10")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Priority).To(Equal(model.CasePriorityMedium))
			resp := decode(w)
			Expect(resp["status"]).To(Equal("triage"))
			Expect(resp["thread_id"]).To(Equal("7"))
		})

		It("returns 400 without a reason", func() {
			w := perform(router, http.MethodPost, "/threads/7/support/escalate", `{"priority":"urgent"}`, "10")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Assign", func() {
		It("notifies the agent unless told otherwise", func() {
			var notified []bool
			svc.assignFn = func(_ context.Context, threadID, _, agentID int64, notifyAgent bool) (*model.SupportCase, error) {
				notified = append(notified, notifyAgent)
				sc := supportCase(threadID, model.CaseStatusInProgress, model.CasePriorityHigh)
				sc.AssignedTo = &agentID
				return sc, nil
			}

			w := perform(router, http.MethodPost, "/threads/7/support/assign", `{"agent_id":900}`, "10")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["assigned_to"]).To(Equal("900"))

			w = perform(router, http.MethodPost, "/threads/7/support/assign", `{"agent_id":900,"notify_agent":false}`, "10")
			Expect(w.Code).To(Equal(http.StatusOK))

			Expect(notified).To(Equal([]bool{true, false}))
		})

		It("returns 404 when the thread has no case", func() {
			svc.assignFn = func(_ context.Context, threadID, _, _ int64, _ bool) (*model.SupportCase, error) {
				return nil, &service.NotFoundError{Entity: "support case", ID: threadID}
			}

			w := perform(router, http.MethodPost, "/threads/7/support/assign", `{"agent_id":900}`, "10")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("UpdateStatus", func() {
		It("passes the resolution summary through", func() {
			var got service.UpdateStatusInput
			svc.updateStatusFn = func(_ context.Context, threadID, actorID int64, in service.UpdateStatusInput) (*model.SupportCase, error) {
				got = in
				sc := supportCase(threadID, in.Status, model.CasePriorityHigh)
				sc.ResolvedAt = &now
				sc.ResolvedBy = &actorID
				sc.ResolutionSummary = in.ResolutionSummary
				return sc, nil
			}

			w := perform(router, http.MethodPut, "/threads/7/support/status",
				`{"status":"resolved","resolution_summary":"refund issued"}`, "900")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Status).To(Equal(model.CaseStatusResolved))
			Expect(*got.ResolutionSummary).To(Equal("refund issued"))
			resp := decode(w)
			Expect(resp["resolved_by"]).To(Equal("900"))
			Expect(resp["resolution_summary"]).To(Equal("refund issued"))
		})

		It("returns 400 for a rejected transition", func() {
			svc.updateStatusFn = func(_ context.Context, _, _ int64, _ service.UpdateStatusInput) (*model.SupportCase, error) {
				return nil, &service.ValidationError{Field: "status", Msg: "case is closed"}
			}

			w := perform(router, http.MethodPut, "/threads/7/support/status", `{"status":"in_progress"}`, "900")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("returns the case", func() {
			svc.getCaseFn = func(_ context.Context, threadID, _ int64) (*model.SupportCase, error) {
				return supportCase(threadID, model.CaseStatusTriage, model.CasePriorityLow), nil
			}

			w := perform(router, http.MethodGet, "/threads/7/support", "", "10")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["priority"]).To(Equal("low"))
		})
	})
})
