package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"basegraph.app/courier/internal/http/middleware"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/service"
)

type mockThreadService struct {
	createFn         func(ctx context.Context, in service.CreateThreadInput) (*model.Thread, error)
	getFn            func(ctx context.Context, threadID, userID int64) (*service.ThreadView, error)
	listInboxFn      func(ctx context.Context, userID int64, page model.Page) ([]model.InboxEntry, error)
	setStateFn       func(ctx context.Context, threadID, actorID int64, state model.ThreadState) (*model.Thread, error)
	addParticipantFn func(ctx context.Context, threadID, actorID, userID int64, role model.ParticipantRole) (*model.Participant, error)
}

func (m *mockThreadService) Create(ctx context.Context, in service.CreateThreadInput) (*model.Thread, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, nil
}

func (m *mockThreadService) Get(ctx context.Context, threadID, userID int64) (*service.ThreadView, error) {
	if m.getFn != nil {
		return m.getFn(ctx, threadID, userID)
	}
	return nil, nil
}

func (m *mockThreadService) ListInbox(ctx context.Context, userID int64, page model.Page) ([]model.InboxEntry, error) {
	if m.listInboxFn != nil {
		return m.listInboxFn(ctx, userID, page)
	}
	return nil, nil
}

func (m *mockThreadService) SetState(ctx context.Context, threadID, actorID int64, state model.ThreadState) (*model.Thread, error) {
	if m.setStateFn != nil {
		return m.setStateFn(ctx, threadID, actorID, state)
	}
	return nil, nil
}

func (m *mockThreadService) AddParticipant(ctx context.Context, threadID, actorID, userID int64, role model.ParticipantRole) (*model.Participant, error) {
	if m.addParticipantFn != nil {
		return m.addParticipantFn(ctx, threadID, actorID, userID, role)
	}
	return nil, nil
}

type mockMessageService struct {
	appendFn   func(ctx context.Context, threadID, senderID int64, in service.AppendInput) (*model.Message, error)
	listFn     func(ctx context.Context, threadID, userID int64, page model.Page) ([]model.Message, error)
	markReadFn func(ctx context.Context, threadID, userID int64, upTo *time.Time) (*model.Participant, error)
}

func (m *mockMessageService) Append(ctx context.Context, threadID, senderID int64, in service.AppendInput) (*model.Message, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, threadID, senderID, in)
	}
	return nil, nil
}

func (m *mockMessageService) List(ctx context.Context, threadID, userID int64, page model.Page) ([]model.Message, error) {
	if m.listFn != nil {
		return m.listFn(ctx, threadID, userID, page)
	}
	return nil, nil
}

func (m *mockMessageService) MarkRead(ctx context.Context, threadID, userID int64, upTo *time.Time) (*model.Participant, error) {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, threadID, userID, upTo)
	}
	return nil, nil
}

type mockSupportService struct {
	escalateFn     func(ctx context.Context, threadID, actorID int64, in service.EscalateInput) (*model.SupportCase, error)
	assignFn       func(ctx context.Context, threadID, actorID, agentID int64, notifyAgent bool) (*model.SupportCase, error)
	updateStatusFn func(ctx context.Context, threadID, actorID int64, in service.UpdateStatusInput) (*model.SupportCase, error)
	getCaseFn      func(ctx context.Context, threadID, userID int64) (*model.SupportCase, error)
}

func (m *mockSupportService) Escalate(ctx context.Context, threadID, actorID int64, in service.EscalateInput) (*model.SupportCase, error) {
	if m.escalateFn != nil {
		return m.escalateFn(ctx, threadID, actorID, in)
	}
	return nil, nil
}

func (m *mockSupportService) Assign(ctx context.Context, threadID, actorID, agentID int64, notifyAgent bool) (*model.SupportCase, error) {
	if m.assignFn != nil {
		return m.assignFn(ctx, threadID, actorID, agentID, notifyAgent)
	}
	return nil, nil
}

func (m *mockSupportService) UpdateStatus(ctx context.Context, threadID, actorID int64, in service.UpdateStatusInput) (*model.SupportCase, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, threadID, actorID, in)
	}
	return nil, nil
}

func (m *mockSupportService) GetCase(ctx context.Context, threadID, userID int64) (*model.SupportCase, error) {
	if m.getCaseFn != nil {
		return m.getCaseFn(ctx, threadID, userID)
	}
	return nil, nil
}

type mockRetentionRunner struct {
	status retention.Status
	report *retention.CycleReport
	busy   bool
	runs   int
}

func (m *mockRetentionRunner) Status() retention.Status {
	return m.status
}

func (m *mockRetentionRunner) RunNow(_ context.Context) (*retention.CycleReport, bool) {
	if m.busy {
		return nil, false
	}
	m.runs++
	return m.report, true
}

type mockAuditReader struct {
	audits []model.RetentionAudit
	err    error
}

func (m *mockAuditReader) ListByThread(_ context.Context, threadID int64, _ int) ([]model.RetentionAudit, error) {
	var out []model.RetentionAudit
	for _, a := range m.audits {
		if a.ThreadID == threadID {
			out = append(out, a)
		}
	}
	return out, m.err
}

func (m *mockAuditReader) ListByRun(_ context.Context, runID string) ([]model.RetentionAudit, error) {
	var out []model.RetentionAudit
	for _, a := range m.audits {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, m.err
}

// newRouter builds a router that identifies the caller the same way production does.
func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequireUser())
	return router
}

func perform(router *gin.Engine, method, path, body string, userID string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}
