package handler_test

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/courier/internal/http/handler"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/retention"
)

var _ = Describe("RetentionHandler", func() {
	var (
		router *gin.Engine
		runner *mockRetentionRunner
		audits *mockAuditReader
		now    time.Time
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		router = gin.New()
		runner = &mockRetentionRunner{
			status: retention.Status{Started: true, Schedule: "every 6h0m0s", TotalDeleted: "1,204"},
			report: &retention.CycleReport{RunID: "run-1", StartedAt: now, FinishedAt: now.Add(time.Second)},
		}
		audits = &mockAuditReader{audits: []model.RetentionAudit{
			{ID: 1, RunID: "run-1", ThreadID: 7, RetentionPolicy: "standard", RetentionDays: 365, DeletedCount: 12, CutoffAt: now, RetainedUntil: now, CreatedAt: now},
			{ID: 2, RunID: "run-1", ThreadID: 8, RetentionPolicy: "support_extended", RetentionDays: 1095, DeletedCount: 3, CutoffAt: now, RetainedUntil: now, CreatedAt: now},
		}}
		h := handler.NewRetentionHandler(runner, audits)
		router.GET("/status", h.Status)
		router.POST("/run", h.Run)
		router.GET("/threads/:threadId/audits", h.ThreadAudits)
		router.GET("/runs/:runId/audits", h.RunAudits)
	})

	It("reports scheduler status", func() {
		w := perform(router, http.MethodGet, "/status", "", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["started"]).To(BeTrue())
		Expect(resp["totalDeleted"]).To(Equal("1,204"))
	})

	It("runs a cycle on demand", func() {
		w := perform(router, http.MethodPost, "/run", "", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(runner.runs).To(Equal(1))
		Expect(decode(w)["runId"]).To(Equal("run-1"))
	})

	It("returns 409 while a cycle is in flight", func() {
		runner.busy = true

		w := perform(router, http.MethodPost, "/run", "", "")

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("lists audits for a thread", func() {
		w := perform(router, http.MethodGet, "/threads/8/audits", "", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		list := decode(w)["audits"].([]any)
		Expect(list).To(HaveLen(1))
		Expect(list[0].(map[string]any)["retention_policy"]).To(Equal("support_extended"))
	})

	It("lists audits for a run", func() {
		w := perform(router, http.MethodGet, "/runs/run-1/audits", "", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["audits"]).To(HaveLen(2))
	})

	It("returns 500 when the ledger cannot be read", func() {
		audits.err = errors.New("boom")

		w := perform(router, http.MethodGet, "/runs/run-1/audits", "", "")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
