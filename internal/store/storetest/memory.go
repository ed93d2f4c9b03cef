// Package storetest is an in-memory implementation of the store interfaces for
// service and retention tests. Transactions are serialized and roll back on error,
// which is enough to exercise the lock-then-mutate paths deterministically.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/store"
)

// ErrForeignKey mirrors the database refusing to delete a message that still has
// attachments or read receipts.
var ErrForeignKey = errors.New("violates foreign key constraint")

// ErrUniqueViolation mirrors a duplicate key on an insert.
var ErrUniqueViolation = errors.New("duplicate key value violates unique constraint")

type participantKey struct {
	threadID int64
	userID   int64
}

type receiptKey struct {
	messageID int64
	userID    int64
}

type state struct {
	threads      map[int64]model.Thread
	participants map[participantKey]model.Participant
	messages     map[int64]model.Message
	attachments  map[int64]model.Attachment
	receipts     map[receiptKey]model.ReadReceipt
	cases        map[int64]model.SupportCase          // keyed by thread ID
	audits       map[int64]model.RetentionAudit
}

func newState() state {
	return state{
		threads:      map[int64]model.Thread{},
		participants: map[participantKey]model.Participant{},
		messages:     map[int64]model.Message{},
		attachments:  map[int64]model.Attachment{},
		receipts:     map[receiptKey]model.ReadReceipt{},
		cases:        map[int64]model.SupportCase{},
		audits:       map[int64]model.RetentionAudit{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.threads {
		c.threads[k] = v
	}
	for k, v := range s.participants {
		c.participants[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	for k, v := range s.attachments {
		c.attachments[k] = v
	}
	for k, v := range s.receipts {
		c.receipts[k] = v
	}
	for k, v := range s.cases {
		c.cases[k] = v
	}
	for k, v := range s.audits {
		c.audits[k] = v
	}
	return c
}

// Memory holds the fake database.
type Memory struct {
	txMu   sync.Mutex // held for a whole transaction
	dataMu sync.Mutex // guards data and faults

	data   state
	faults map[string]error

	commits   int
	rollbacks int
}

func New() *Memory {
	return &Memory{data: newState(), faults: map[string]error{}}
}

// Provider exposes the typed stores, matching store.Stores.
type Provider struct {
	m *Memory
}

func (p *Provider) Threads() store.ThreadStore           { return &threadStore{m: p.m} }
func (p *Provider) Participants() store.ParticipantStore { return &participantStore{m: p.m} }
func (p *Provider) Messages() store.MessageStore         { return &messageStore{m: p.m} }
func (p *Provider) Attachments() store.AttachmentStore   { return &attachmentStore{m: p.m} }
func (p *Provider) SupportCases() store.SupportCaseStore { return &supportCaseStore{m: p.m} }
func (p *Provider) RetentionAudits() store.RetentionAuditStore {
	return &retentionAuditStore{m: p.m}
}

// Stores returns a non-transactional provider.
func (m *Memory) Stores() *Provider {
	return &Provider{m: m}
}

// WithTx runs fn with exclusive access. All writes made by fn are discarded when it
// returns an error.
func (m *Memory) WithTx(ctx context.Context, fn func(p *Provider) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.dataMu.Lock()
	snapshot := m.data.clone()
	m.dataMu.Unlock()

	if err := fn(&Provider{m: m}); err != nil {
		m.dataMu.Lock()
		m.data = snapshot
		m.rollbacks++
		m.dataMu.Unlock()
		return err
	}

	m.dataMu.Lock()
	m.commits++
	m.dataMu.Unlock()
	return nil
}

// InjectError makes every call to method fail with err until ClearErrors.
// Method names look like "Messages.Create" or "Threads.GetForUpdate".
func (m *Memory) InjectError(method string, err error) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.faults[method] = err
}

func (m *Memory) ClearErrors() {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.faults = map[string]error{}
}

// Commits and Rollbacks count finished transactions.
func (m *Memory) Commits() int {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	return m.commits
}

func (m *Memory) Rollbacks() int {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	return m.rollbacks
}

// lock acquires dataMu and returns the injected fault for method, if any.
// The caller must unlock.
func (m *Memory) lock(method string) error {
	m.dataMu.Lock()
	if err, ok := m.faults[method]; ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// --- Seeding and inspection ------------------------------------------------

func (m *Memory) SeedThread(t model.Thread) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	if t.State == "" {
		t.State = model.ThreadStateActive
	}
	m.data.threads[t.ID] = t
}

func (m *Memory) SeedParticipant(p model.Participant) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.data.participants[participantKey{p.ThreadID, p.UserID}] = p
}

// SeedMessage stores msg and its attachments.
func (m *Memory) SeedMessage(msg model.Message) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	for _, a := range msg.Attachments {
		a.MessageID = msg.ID
		m.data.attachments[a.ID] = a
	}
	msg.Attachments = nil
	m.data.messages[msg.ID] = msg
}

func (m *Memory) SeedReadReceipt(r model.ReadReceipt) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.data.receipts[receiptKey{r.MessageID, r.UserID}] = r
}

func (m *Memory) SeedSupportCase(sc model.SupportCase) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.data.cases[sc.ThreadID] = sc
}

func (m *Memory) SeedAudit(a model.RetentionAudit) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.data.audits[a.ID] = a
}

func (m *Memory) Thread(id int64) (model.Thread, bool) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	t, ok := m.data.threads[id]
	return t, ok
}

func (m *Memory) Participant(threadID, userID int64) (model.Participant, bool) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	p, ok := m.data.participants[participantKey{threadID, userID}]
	return p, ok
}

// Messages returns every stored message of the thread in creation order.
func (m *Memory) Messages(threadID int64) []model.Message {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	return m.data.threadMessages(threadID, true)
}

func (m *Memory) Attachments(messageID int64) []model.Attachment {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	var out []model.Attachment
	for _, a := range m.data.attachments {
		if a.MessageID == messageID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) AttachmentCount() int {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	return len(m.data.attachments)
}

func (m *Memory) ReadReceipts(messageID int64) []model.ReadReceipt {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	var out []model.ReadReceipt
	for _, r := range m.data.receipts {
		if r.MessageID == messageID {
			out = append(out, r)
		}
	}
	return out
}

func (m *Memory) SupportCase(threadID int64) (model.SupportCase, bool) {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	sc, ok := m.data.cases[threadID]
	return sc, ok
}

func (m *Memory) Audits() []model.RetentionAudit {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	out := make([]model.RetentionAudit, 0, len(m.data.audits))
	for _, a := range m.data.audits {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// threadMessages returns the thread's messages ordered by (created_at, id).
func (s state) threadMessages(threadID int64, includeDeleted bool) []model.Message {
	var out []model.Message
	for _, msg := range s.messages {
		if msg.ThreadID != threadID {
			continue
		}
		if !includeDeleted && msg.DeletedAt != nil {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s state) unreadCount(threadID, userID int64, since *time.Time) int64 {
	var n int64
	for _, msg := range s.threadMessages(threadID, false) {
		if since != nil && !msg.CreatedAt.After(*since) {
			continue
		}
		if msg.SentBy(userID) {
			continue
		}
		n++
	}
	return n
}

func pageOf[T any](items []T, page model.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
