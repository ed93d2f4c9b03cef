package store

import (
	"basegraph.app/courier/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Threads() ThreadStore {
	return newThreadStore(s.queries)
}

func (s *Stores) Participants() ParticipantStore {
	return newParticipantStore(s.queries)
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.queries)
}

func (s *Stores) Attachments() AttachmentStore {
	return newAttachmentStore(s.queries)
}

func (s *Stores) SupportCases() SupportCaseStore {
	return newSupportCaseStore(s.queries)
}

func (s *Stores) RetentionAudits() RetentionAuditStore {
	return newRetentionAuditStore(s.queries)
}
