package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/http/middleware"
	"basegraph.app/courier/internal/http/router"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store/storetest"
)

type memTx struct {
	mem *storetest.Memory
}

func (m memTx) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	return m.mem.WithTx(ctx, func(p *storetest.Provider) error {
		return fn(p)
	})
}

type idleRunner struct{}

func (idleRunner) Status() retention.Status { return retention.Status{Schedule: "every 6h0m0s"} }

func (idleRunner) RunNow(_ context.Context) (*retention.CycleReport, bool) {
	return &retention.CycleReport{RunID: "manual"}, true
}

var _ = Describe("Router", func() {
	var (
		engine *gin.Engine
		mem    *storetest.Memory
		clk    *clock.Fake
	)

	call := func(method, path, body, userID string, headers ...string) (int, map[string]any) {
		var reader io.Reader
		if body != "" {
			reader = bytes.NewBufferString(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.Header.Set(middleware.UserIDHeader, userID)
		}
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		var resp map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return w.Code, resp
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		mem = storetest.New()
		clk = clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

		var next atomic.Int64
		next.Store(1000)
		metrics := service.NewMetrics(nil)
		memCache := cache.NewMemoryCache()
		services := service.NewServices(service.Deps{
			Stores:   mem.Stores(),
			TxRunner: memTx{mem: mem},
			Cache:    memCache,
			CacheTTL: time.Minute,
			Fanout:   service.NewFanout(memCache, nil, nil, nil, metrics).WithSpawn(func(f func()) { f() }),
			Clock:    clk,
			NewID:    func() int64 { return next.Add(1) },
			Metrics:  metrics,
		})

		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RPS: 1000, Burst: 1000})
		DeferCleanup(limiter.Shutdown)

		engine = gin.New()
		router.SetupRoutes(engine, services, router.RouterConfig{
			AdminAPIKey: "secret",
			Limiter:     limiter,
			Gatherer:    prometheus.NewRegistry(),
			Retention:   idleRunner{},
			Audits:      mem.Stores().RetentionAudits(),
		})
	})

	It("serves health and metrics without identity", func() {
		code, resp := call(http.MethodGet, "/health", "", "")
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["status"]).To(Equal("ok"))

		code, _ = call(http.MethodGet, "/metrics", "", "")
		Expect(code).To(Equal(http.StatusOK))

		code, resp = call(http.MethodGet, "/api/v1/schemas/metadata", "", "")
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp).To(HaveKey("thread"))
	})

	It("runs a conversation end to end", func() {
		code, thread := call(http.MethodPost, "/api/v1/threads", `{"channel_type":"direct","participant_ids":[20]}`, "10")
		Expect(code).To(Equal(http.StatusCreated))
		threadPath := "/api/v1/threads/" + thread["id"].(string)

		clk.Advance(time.Minute)
		code, _ = call(http.MethodPost, threadPath+"/messages", `{"message_type":"text","body":"  is this still available?  "}`, "10")
		Expect(code).To(Equal(http.StatusCreated))

		code, inbox := call(http.MethodGet, "/api/v1/inbox", "", "20")
		Expect(code).To(Equal(http.StatusOK))
		entries := inbox["entries"].([]any)
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].(map[string]any)["unread_count"]).To(BeEquivalentTo(1))

		code, _ = call(http.MethodPost, threadPath+"/read", "", "20")
		Expect(code).To(Equal(http.StatusOK))

		code, detail := call(http.MethodGet, threadPath, "", "20")
		Expect(code).To(Equal(http.StatusOK))
		Expect(detail["unread_count"]).To(BeEquivalentTo(0))

		code, list := call(http.MethodGet, threadPath+"/messages", "", "20")
		Expect(code).To(Equal(http.StatusOK))
		messages := list["messages"].([]any)
		Expect(messages).To(HaveLen(1))
		Expect(messages[0].(map[string]any)["body"]).To(Equal("is this still available?"))
	})

	It("refuses outsiders and writes to locked threads", func() {
		_, thread := call(http.MethodPost, "/api/v1/threads", `{"channel_type":"group","participant_ids":[20]}`, "10")
		threadPath := "/api/v1/threads/" + thread["id"].(string)

		code, _ := call(http.MethodGet, threadPath, "", "99")
		Expect(code).To(Equal(http.StatusForbidden))

		code, _ = call(http.MethodPut, threadPath+"/state", `{"state":"locked"}`, "10")
		Expect(code).To(Equal(http.StatusOK))

		code, _ = call(http.MethodPost, threadPath+"/messages", `{"message_type":"text","body":"hello?"}`, "20")
		Expect(code).To(Equal(http.StatusForbidden))
	})

	It("drives the support case lifecycle", func() {
		_, thread := call(http.MethodPost, "/api/v1/threads", `{"channel_type":"contract","participant_ids":[20]}`, "10")
		threadPath := "/api/v1/threads/" + thread["id"].(string)

		code, _ := call(http.MethodGet, threadPath+"/support", "", "10")
		Expect(code).To(Equal(http.StatusNotFound))

		code, sc := call(http.MethodPost, threadPath+"/support/escalate", `{"reason":"work not delivered","priority":"high"}`, "10")
		Expect(code).To(Equal(http.StatusOK))
		Expect(sc["status"]).To(Equal("triage"))

		code, sc = call(http.MethodPost, threadPath+"/support/assign", `{"agent_id":900}`, "10")
		Expect(code).To(Equal(http.StatusOK))
		Expect(sc["status"]).To(Equal("in_progress"))

		code, sc = call(http.MethodPut, threadPath+"/support/status", `{"status":"resolved","resolution_summary":"refunded"}`, "900")
		Expect(code).To(Equal(http.StatusOK))
		Expect(sc["resolution_summary"]).To(Equal("refunded"))

		code, _ = call(http.MethodPut, threadPath+"/support/status", `{"status":"in_progress"}`, "900")
		Expect(code).To(Equal(http.StatusBadRequest))
	})

	It("guards the admin routes with the API key", func() {
		code, _ := call(http.MethodGet, "/api/v1/admin/retention/status", "", "")
		Expect(code).To(Equal(http.StatusUnauthorized))

		code, resp := call(http.MethodGet, "/api/v1/admin/retention/status", "", "", "X-Admin-API-Key", "secret")
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["schedule"]).To(Equal("every 6h0m0s"))

		code, resp = call(http.MethodPost, "/api/v1/admin/retention/run", "", "", "Authorization", "Bearer secret")
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["runId"]).To(Equal("manual"))
	})
})
