package entity

import (
	"time"
)

type ActionType string

const (
	ActionCreate    ActionType = "Create"
	ActionUpdate    ActionType = "Update"
	ActionDelete    ActionType = "Delete"
	ActionDuplicate ActionType = "Duplicate"
)

const AuditEntityTask = "monitoringTask"

// TaskAudit - запись журнала (companies/{code}/auditLogs/{id})
type TaskAudit struct {
	ID         string         `json:"id,omitempty"`
	UID        string         `json:"uid"`
	Action     ActionType     `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	OldValues  map[string]any `json:"oldValues,omitempty"`
	NewValues  map[string]any `json:"newValues,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	ChangedAt  time.Time      `json:"changedAt"`
}

type AuditMessage struct {
	CompanyCode string         `json:"companyCode"`
	UID         string         `json:"uid"`
	Action      ActionType     `json:"action"`
	EntityID    string         `json:"entityId"`
	OldValues   map[string]any `json:"oldValues,omitempty"`
	NewValues   map[string]any `json:"newValues,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

func (m AuditMessage) ToAudit() TaskAudit {
	return TaskAudit{
		UID:        m.UID,
		Action:     m.Action,
		EntityType: AuditEntityTask,
		EntityID:   m.EntityID,
		OldValues:  m.OldValues,
		NewValues:  m.NewValues,
		Changes:    m.Changes,
		ChangedAt:  m.Timestamp,
	}
}
