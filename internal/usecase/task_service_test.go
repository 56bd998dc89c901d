package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/haccp-service/internal/composer"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskService(f *fixture) *TaskService {
	return NewTaskService(f.tasks, f.workspaces, f.publisher, f.log)
}

func TestListTasks_Filter(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	f.seedTask(t, "Cooler temp")
	f.seedTask(t, "Closing")
	s := newTaskService(f)
	ctx := context.Background()

	all, err := s.ListTasks(ctx, chef, entity.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := s.ListTasks(ctx, chef, entity.TaskFilter{Query: "COOLER"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cooler temp", got[0].Name)
}

func TestListTasks_NotProvisioned(t *testing.T) {
	f := newFixture(t)
	s := newTaskService(f)

	_, err := s.ListTasks(context.Background(), cook, entity.TaskFilter{})
	assert.ErrorIs(t, err, entity.ErrTenantNotProvisioned)
}

func TestGetTask_NotFound(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	s := newTaskService(f)

	_, err := s.GetTask(context.Background(), chef, "missing")
	assert.ErrorIs(t, err, entity.ErrTaskNotFound)
}

func TestDuplicateTask(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	src := f.seedTask(t, "Closing")
	s := newTaskService(f)
	ctx := context.Background()

	dup, err := s.DuplicateTask(ctx, chef, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Closing (Copy)", dup.Name)
	assert.Equal(t, src.Checklist, dup.Checklist)
	assert.Equal(t, src.Details, dup.Details)
	assert.Equal(t, chef.UID, dup.CreatedBy.UID)

	stored, err := f.tasks.Get(ctx, companyCode, dup.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Closing (Copy)", stored.Name)

	ws, err := f.workspaces.Get(ctx, chef)
	require.NoError(t, err)
	assert.Equal(t, dup.ID, ws.Tasks.All()[0].ID)

	msg := f.publisher.next(t)
	assert.Equal(t, entity.ActionDuplicate, msg.Action)
	assert.Equal(t, companyCode, msg.CompanyCode)
	assert.Equal(t, dup.ID, msg.EntityID)
	assert.Equal(t, src.ID, msg.Changes["sourceId"])
}

func TestDuplicateTask_CreatedInAnotherSession(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	s := newTaskService(f)
	ctx := context.Background()

	_, err := f.workspaces.Get(ctx, chef)
	require.NoError(t, err)
	late := f.seedTask(t, "Late")

	dup, err := s.DuplicateTask(ctx, chef, late.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late (Copy)", dup.Name)

	_, err = s.DuplicateTask(ctx, chef, "missing")
	assert.ErrorIs(t, err, entity.ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	task := f.seedTask(t, "Closing")
	s := newTaskService(f)
	ctx := context.Background()

	require.NoError(t, s.DeleteTask(ctx, chef, task.ID))

	stored, err := f.tasks.Get(ctx, companyCode, task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	ws, err := f.workspaces.Get(ctx, chef)
	require.NoError(t, err)
	assert.Equal(t, 0, ws.Tasks.Len())

	msg := f.publisher.next(t)
	assert.Equal(t, entity.ActionDelete, msg.Action)
	assert.Equal(t, "Closing", msg.OldValues["name"])

	assert.ErrorIs(t, s.DeleteTask(ctx, chef, task.ID), entity.ErrTaskNotFound)
}

func TestDeleteTask_RepositoryFailureKeepsList(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	task := f.seedTask(t, "Closing")

	repo := &MockMonitoringTaskRepository{
		IMonitoringTaskRepository: f.tasks,
		DeleteFunc: func(ctx context.Context, companyCode, id string) error {
			return errors.New("permission denied")
		},
	}
	workspaces := NewWorkspaceManager(f.resolver, repo, f.refs, time.Minute, f.log)
	s := NewTaskService(repo, workspaces, f.publisher, f.log)
	ctx := context.Background()

	err := s.DeleteTask(ctx, chef, task.ID)
	require.Error(t, err)

	ws, err := workspaces.Get(ctx, chef)
	require.NoError(t, err)
	_, ok := ws.Tasks.Get(task.ID)
	assert.True(t, ok)
}

func TestSetInUseAndStatus(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	task := f.seedTask(t, "Closing")
	s := newTaskService(f)
	ctx := context.Background()

	updated, err := s.SetInUse(ctx, chef, task.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.InUse)

	stored, err := f.tasks.Get(ctx, companyCode, task.ID)
	require.NoError(t, err)
	assert.False(t, stored.InUse)
	assert.Equal(t, task.Checklist, stored.Checklist)

	msg := f.publisher.next(t)
	assert.Equal(t, entity.ActionUpdate, msg.Action)
	assert.Contains(t, msg.Changes, "inUse")

	ws, err := f.workspaces.Get(ctx, chef)
	require.NoError(t, err)
	listed, ok := ws.Tasks.Get(task.ID)
	require.True(t, ok)
	assert.False(t, listed.InUse)

	archived, err := s.SetStatus(ctx, chef, task.ID, entity.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusArchived, archived.Status)

	_, err = s.SetStatus(ctx, chef, task.ID, "deleted")
	assert.True(t, entity.IsValidation(err))
}

func TestSetInUse_RepositoryFailureLeavesListUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	task := f.seedTask(t, "Closing")

	repo := &MockMonitoringTaskRepository{
		IMonitoringTaskRepository: f.tasks,
		UpdateFunc: func(ctx context.Context, companyCode, id string, updates map[string]any) error {
			return errors.New("offline")
		},
	}
	workspaces := NewWorkspaceManager(f.resolver, repo, f.refs, time.Minute, f.log)
	s := NewTaskService(repo, workspaces, f.publisher, f.log)
	ctx := context.Background()

	_, err := s.SetInUse(ctx, chef, task.ID, false)
	require.Error(t, err)

	ws, err := workspaces.Get(ctx, chef)
	require.NoError(t, err)
	listed, _ := ws.Tasks.Get(task.ID)
	assert.True(t, listed.InUse)
}

func TestDirectAuditPublisher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := NewDirectAuditPublisher(f.audits)

	task := &entity.MonitoringTask{ID: "t1", Name: "Closing"}
	require.NoError(t, p.PublishAuditMessage(ctx, &entity.AuditMessage{
		CompanyCode: companyCode,
		UID:         chef.UID,
		Action:      entity.ActionCreate,
		EntityID:    task.ID,
		NewValues:   taskValues(task),
	}))

	audits, err := f.audits.List(ctx, companyCode)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, entity.AuditEntityTask, audits[0].EntityType)
	assert.Equal(t, "Closing", audits[0].NewValues["name"])
}

var _ composer.TaskWriter = (*MockMonitoringTaskRepository)(nil)
