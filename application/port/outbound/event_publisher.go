package outbound

import "github.com/ativus/ativus/domain"

// EventPublisher fans appended audit events out to live subscribers.
// Publishing is best effort and must never block or fail a command;
// the audit trail in storage is the source of truth, not the feed.
type EventPublisher interface {
	Publish(event *domain.AuditEvent)
}
