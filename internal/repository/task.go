package repository

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// MonitoringTaskRepository - companies/{code}/monitoringTasks
type MonitoringTaskRepository struct {
	store IDocumentStore
}

func NewMonitoringTaskRepository(store IDocumentStore) *MonitoringTaskRepository {
	return &MonitoringTaskRepository{
		store: store,
	}
}

func (r *MonitoringTaskRepository) List(ctx context.Context, companyCode string) ([]entity.MonitoringTask, error) {
	docs, err := r.store.ListCollection(ctx, CompanyCollection(companyCode, entity.CollectionMonitoringTasks))
	if err != nil {
		return nil, err
	}

	tasks := make([]entity.MonitoringTask, 0, len(docs))
	for i := range docs {
		var task entity.MonitoringTask
		if err := docs[i].Decode(&task); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", docs[i].ID, err)
		}
		task.ID = docs[i].ID
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *MonitoringTaskRepository) Get(ctx context.Context, companyCode, id string) (*entity.MonitoringTask, error) {
	doc, err := r.store.GetDocument(ctx, CompanyDoc(companyCode, entity.CollectionMonitoringTasks, id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var task entity.MonitoringTask
	if err := doc.Decode(&task); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	task.ID = doc.ID
	return &task, nil
}

// Create сохраняет новый документ и возвращает присвоенный id
func (r *MonitoringTaskRepository) Create(ctx context.Context, companyCode string, task *entity.MonitoringTask) (string, error) {
	data := *task
	data.ID = ""
	return r.store.CreateDocument(ctx, CompanyCollection(companyCode, entity.CollectionMonitoringTasks), &data)
}

// Replace - полная замена документа по id
func (r *MonitoringTaskRepository) Replace(ctx context.Context, companyCode string, task *entity.MonitoringTask) error {
	if task.ID == "" {
		return fmt.Errorf("%w: replace without id", entity.ErrInvalidTaskData)
	}
	data := *task
	data.ID = ""
	return r.store.SetDocument(ctx, CompanyDoc(companyCode, entity.CollectionMonitoringTasks, task.ID), &data)
}

// Update - частичное обновление без проверки остальных полей
func (r *MonitoringTaskRepository) Update(ctx context.Context, companyCode, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return entity.ErrNoFieldsToUpdate
	}
	return r.store.UpdateDocument(ctx, CompanyDoc(companyCode, entity.CollectionMonitoringTasks, id), updates)
}

func (r *MonitoringTaskRepository) Delete(ctx context.Context, companyCode, id string) error {
	return r.store.DeleteDocument(ctx, CompanyDoc(companyCode, entity.CollectionMonitoringTasks, id))
}
