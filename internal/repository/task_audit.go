package repository

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// TaskAuditRepository - companies/{code}/auditLogs
type TaskAuditRepository struct {
	store IDocumentStore
}

func NewTaskAuditRepository(store IDocumentStore) *TaskAuditRepository {
	return &TaskAuditRepository{
		store: store,
	}
}

func (r *TaskAuditRepository) Create(ctx context.Context, companyCode string, audit *entity.TaskAudit) error {
	data := *audit
	data.ID = ""
	id, err := r.store.CreateDocument(ctx, CompanyCollection(companyCode, entity.CollectionAuditLogs), &data)
	if err != nil {
		return err
	}
	audit.ID = id
	return nil
}

func (r *TaskAuditRepository) List(ctx context.Context, companyCode string) ([]entity.TaskAudit, error) {
	docs, err := r.store.ListCollection(ctx, CompanyCollection(companyCode, entity.CollectionAuditLogs))
	if err != nil {
		return nil, err
	}

	audits := make([]entity.TaskAudit, 0, len(docs))
	for i := range docs {
		var a entity.TaskAudit
		if err := docs[i].Decode(&a); err != nil {
			return nil, fmt.Errorf("decode audit %s: %w", docs[i].ID, err)
		}
		a.ID = docs[i].ID
		audits = append(audits, a)
	}
	return audits, nil
}
