package storetest

import (
	"context"
	"sort"
	"time"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/store"
)

type threadStore struct{ m *Memory }

func (s *threadStore) Create(_ context.Context, thread *model.Thread) error {
	err := s.m.lock("Threads.Create")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	if _, exists := s.m.data.threads[thread.ID]; exists {
		return ErrUniqueViolation
	}
	thread.UpdatedAt = thread.CreatedAt
	s.m.data.threads[thread.ID] = *thread
	return nil
}

func (s *threadStore) GetByID(_ context.Context, id int64) (*model.Thread, error) {
	err := s.m.lock("Threads.GetByID")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	t, ok := s.m.data.threads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *threadStore) GetForUpdate(_ context.Context, id int64) (*model.Thread, error) {
	err := s.m.lock("Threads.GetForUpdate")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	t, ok := s.m.data.threads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *threadStore) TouchLastMessage(_ context.Context, id int64, at time.Time, preview *string) (*model.Thread, error) {
	err := s.m.lock("Threads.TouchLastMessage")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	t, ok := s.m.data.threads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if t.LastMessageAt == nil || !at.Before(*t.LastMessageAt) {
		t.LastMessagePreview = preview
		ts := at
		t.LastMessageAt = &ts
	}
	t.UpdatedAt = at
	s.m.data.threads[id] = t
	return &t, nil
}

func (s *threadStore) SetState(_ context.Context, id int64, state model.ThreadState, at time.Time) (*model.Thread, error) {
	err := s.m.lock("Threads.SetState")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	t, ok := s.m.data.threads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t.State = state
	t.UpdatedAt = at
	s.m.data.threads[id] = t
	return &t, nil
}

func (s *threadStore) SetSummary(_ context.Context, id int64, lastMessageAt *time.Time, preview *string, at time.Time) error {
	err := s.m.lock("Threads.SetSummary")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	t, ok := s.m.data.threads[id]
	if !ok {
		return nil
	}
	if lastMessageAt != nil && (t.LastMessageAt == nil || lastMessageAt.After(*t.LastMessageAt)) {
		ts := *lastMessageAt
		t.LastMessageAt = &ts
	}
	t.LastMessagePreview = preview
	t.UpdatedAt = at
	s.m.data.threads[id] = t
	return nil
}

func (s *threadStore) ListForRetention(_ context.Context, limit int) ([]model.Thread, error) {
	err := s.m.lock("Threads.ListForRetention")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []model.Thread
	for _, t := range s.m.data.threads {
		if t.RetentionDays > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].RetentionCheckedAt, out[j].RetentionCheckedAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *threadStore) MarkRetentionChecked(_ context.Context, id int64, at time.Time) error {
	err := s.m.lock("Threads.MarkRetentionChecked")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	if t, ok := s.m.data.threads[id]; ok {
		ts := at
		t.RetentionCheckedAt = &ts
		s.m.data.threads[id] = t
	}
	return nil
}

func (s *threadStore) ListInbox(_ context.Context, userID int64, page model.Page) ([]model.InboxEntry, error) {
	err := s.m.lock("Threads.ListInbox")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []model.InboxEntry
	for key, p := range s.m.data.participants {
		if key.userID != userID {
			continue
		}
		t, ok := s.m.data.threads[key.threadID]
		if !ok {
			continue
		}
		out = append(out, model.InboxEntry{
			Thread:      t,
			Role:        p.Role,
			LastReadAt:  p.LastReadAt,
			UnreadCount: s.m.data.unreadCount(t.ID, userID, p.LastReadAt),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Thread.LastMessageAt, out[j].Thread.LastMessageAt
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		}
		return out[i].Thread.ID > out[j].Thread.ID
	})
	return pageOf(out, page), nil
}

type participantStore struct{ m *Memory }

func (s *participantStore) Add(_ context.Context, participant *model.Participant) error {
	err := s.m.lock("Participants.Add")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	key := participantKey{participant.ThreadID, participant.UserID}
	if existing, ok := s.m.data.participants[key]; ok {
		*participant = existing
		return nil
	}
	s.m.data.participants[key] = *participant
	return nil
}

func (s *participantStore) Get(_ context.Context, threadID, userID int64) (*model.Participant, error) {
	err := s.m.lock("Participants.Get")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	p, ok := s.m.data.participants[participantKey{threadID, userID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *participantStore) GetForUpdate(_ context.Context, threadID, userID int64) (*model.Participant, error) {
	err := s.m.lock("Participants.GetForUpdate")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	p, ok := s.m.data.participants[participantKey{threadID, userID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *participantStore) ListByThread(_ context.Context, threadID int64) ([]model.Participant, error) {
	err := s.m.lock("Participants.ListByThread")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []model.Participant
	for key, p := range s.m.data.participants {
		if key.threadID == threadID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *participantStore) CountByThread(_ context.Context, threadID int64) (int, error) {
	err := s.m.lock("Participants.CountByThread")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	n := 0
	for key := range s.m.data.participants {
		if key.threadID == threadID {
			n++
		}
	}
	return n, nil
}

func (s *participantStore) UpdateLastRead(_ context.Context, threadID, userID int64, at time.Time) error {
	err := s.m.lock("Participants.UpdateLastRead")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	key := participantKey{threadID, userID}
	p, ok := s.m.data.participants[key]
	if !ok {
		return nil
	}
	if p.LastReadAt == nil || at.After(*p.LastReadAt) {
		ts := at
		p.LastReadAt = &ts
	}
	s.m.data.participants[key] = p
	return nil
}

type messageStore struct{ m *Memory }

func (s *messageStore) Create(_ context.Context, msg *model.Message) error {
	err := s.m.lock("Messages.Create")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	if _, exists := s.m.data.messages[msg.ID]; exists {
		return ErrUniqueViolation
	}
	stored := *msg
	stored.Attachments = nil
	s.m.data.messages[msg.ID] = stored
	return nil
}

func (s *messageStore) ListByThread(_ context.Context, threadID int64, page model.Page) ([]model.Message, error) {
	err := s.m.lock("Messages.ListByThread")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	return pageOf(s.m.data.threadMessages(threadID, false), page), nil
}

func (s *messageStore) GetLatest(_ context.Context, threadID int64) (*model.Message, error) {
	err := s.m.lock("Messages.GetLatest")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	msgs := s.m.data.threadMessages(threadID, false)
	if len(msgs) == 0 {
		return nil, store.ErrNotFound
	}
	latest := msgs[len(msgs)-1]
	return &latest, nil
}

func (s *messageStore) GetByID(_ context.Context, id int64) (*model.Message, error) {
	err := s.m.lock("Messages.GetByID")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	msg, ok := s.m.data.messages[id]
	if !ok || msg.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return &msg, nil
}

func (s *messageStore) ListRecent(_ context.Context, threadID int64, limit int) ([]model.Message, error) {
	err := s.m.lock("Messages.ListRecent")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	msgs := s.m.data.threadMessages(threadID, false)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *messageStore) CountUnread(_ context.Context, threadID, userID int64, since *time.Time) (int64, error) {
	err := s.m.lock("Messages.CountUnread")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.m.data.unreadCount(threadID, userID, since), nil
}

func (s *messageStore) ListExpiredIDs(_ context.Context, threadID int64, cutoff time.Time, limit int) ([]int64, error) {
	err := s.m.lock("Messages.ListExpiredIDs")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, msg := range s.m.data.threadMessages(threadID, true) {
		if len(ids) == limit {
			break
		}
		if msg.CreatedAt.Before(cutoff) {
			ids = append(ids, msg.ID)
		}
	}
	return ids, nil
}

func (s *messageStore) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	err := s.m.lock("Messages.DeleteByIDs")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	doomed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	for _, a := range s.m.data.attachments {
		if _, ok := doomed[a.MessageID]; ok {
			return 0, ErrForeignKey
		}
	}
	for key := range s.m.data.receipts {
		if _, ok := doomed[key.messageID]; ok {
			return 0, ErrForeignKey
		}
	}
	var n int64
	for id := range doomed {
		if _, ok := s.m.data.messages[id]; ok {
			delete(s.m.data.messages, id)
			n++
		}
	}
	return n, nil
}

func (s *messageStore) InsertReadReceipts(_ context.Context, threadID, userID int64, at time.Time) error {
	err := s.m.lock("Messages.InsertReadReceipts")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	for _, msg := range s.m.data.threadMessages(threadID, true) {
		if msg.CreatedAt.After(at) || msg.SentBy(userID) {
			continue
		}
		key := receiptKey{msg.ID, userID}
		if _, exists := s.m.data.receipts[key]; !exists {
			s.m.data.receipts[key] = model.ReadReceipt{MessageID: msg.ID, UserID: userID, ReadAt: at}
		}
	}
	return nil
}

func (s *messageStore) DeleteReadReceipts(_ context.Context, messageIDs []int64) (int64, error) {
	err := s.m.lock("Messages.DeleteReadReceipts")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	doomed := make(map[int64]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		doomed[id] = struct{}{}
	}
	var n int64
	for key := range s.m.data.receipts {
		if _, ok := doomed[key.messageID]; ok {
			delete(s.m.data.receipts, key)
			n++
		}
	}
	return n, nil
}

type attachmentStore struct{ m *Memory }

func (s *attachmentStore) Create(_ context.Context, attachment *model.Attachment) error {
	err := s.m.lock("Attachments.Create")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := s.m.data.messages[attachment.MessageID]; !ok {
		return ErrForeignKey
	}
	s.m.data.attachments[attachment.ID] = *attachment
	return nil
}

func (s *attachmentStore) ListByMessages(_ context.Context, messageIDs []int64) (map[int64][]model.Attachment, error) {
	err := s.m.lock("Attachments.ListByMessages")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	wanted := make(map[int64]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64][]model.Attachment)
	for _, a := range s.m.data.attachments {
		if _, ok := wanted[a.MessageID]; ok {
			out[a.MessageID] = append(out[a.MessageID], a)
		}
	}
	for id := range out {
		list := out[id]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return out, nil
}

func (s *attachmentStore) DeleteByMessages(_ context.Context, messageIDs []int64) (int64, error) {
	err := s.m.lock("Attachments.DeleteByMessages")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	doomed := make(map[int64]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		doomed[id] = struct{}{}
	}
	var n int64
	for id, a := range s.m.data.attachments {
		if _, ok := doomed[a.MessageID]; ok {
			delete(s.m.data.attachments, id)
			n++
		}
	}
	return n, nil
}

type supportCaseStore struct{ m *Memory }

func (s *supportCaseStore) Create(_ context.Context, sc *model.SupportCase) error {
	err := s.m.lock("SupportCases.Create")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	if _, exists := s.m.data.cases[sc.ThreadID]; exists {
		return ErrUniqueViolation
	}
	sc.CreatedAt = sc.EscalatedAt
	sc.UpdatedAt = sc.EscalatedAt
	s.m.data.cases[sc.ThreadID] = *sc
	return nil
}

func (s *supportCaseStore) GetByThread(_ context.Context, threadID int64) (*model.SupportCase, error) {
	err := s.m.lock("SupportCases.GetByThread")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	sc, ok := s.m.data.cases[threadID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sc, nil
}

func (s *supportCaseStore) GetByThreadForUpdate(_ context.Context, threadID int64) (*model.SupportCase, error) {
	err := s.m.lock("SupportCases.GetByThreadForUpdate")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	sc, ok := s.m.data.cases[threadID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sc, nil
}

func (s *supportCaseStore) Update(_ context.Context, sc *model.SupportCase) error {
	err := s.m.lock("SupportCases.Update")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	existing, ok := s.m.data.cases[sc.ThreadID]
	if !ok || existing.ID != sc.ID {
		return store.ErrNotFound
	}
	sc.CreatedAt = existing.CreatedAt
	s.m.data.cases[sc.ThreadID] = *sc
	return nil
}

type retentionAuditStore struct{ m *Memory }

func (s *retentionAuditStore) Create(_ context.Context, audit *model.RetentionAudit) error {
	err := s.m.lock("RetentionAudits.Create")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return err
	}
	s.m.data.audits[audit.ID] = *audit
	return nil
}

func (s *retentionAuditStore) ArchiveExpired(_ context.Context, now time.Time) (int64, error) {
	err := s.m.lock("RetentionAudits.ArchiveExpired")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for id, a := range s.m.data.audits {
		if a.ArchivedAt == nil && a.RetainedUntil.Before(now) {
			ts := now
			a.ArchivedAt = &ts
			s.m.data.audits[id] = a
			n++
		}
	}
	return n, nil
}

func (s *retentionAuditStore) DeleteArchivedBefore(_ context.Context, before time.Time) (int64, error) {
	err := s.m.lock("RetentionAudits.DeleteArchivedBefore")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for id, a := range s.m.data.audits {
		if a.ArchivedAt != nil && a.ArchivedAt.Before(before) {
			delete(s.m.data.audits, id)
			n++
		}
	}
	return n, nil
}

func (s *retentionAuditStore) ListByThread(_ context.Context, threadID int64, limit int) ([]model.RetentionAudit, error) {
	err := s.m.lock("RetentionAudits.ListByThread")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []model.RetentionAudit
	for _, a := range s.m.data.audits {
		if a.ThreadID == threadID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *retentionAuditStore) ListByRun(_ context.Context, runID string) ([]model.RetentionAudit, error) {
	err := s.m.lock("RetentionAudits.ListByRun")
	defer s.m.dataMu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []model.RetentionAudit
	for _, a := range s.m.data.audits {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ThreadID < out[j].ThreadID })
	return out, nil
}
