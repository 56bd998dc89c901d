package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/composer"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/metrics"
	"github.com/St1cky1/haccp-service/internal/repository"
	"go.uber.org/zap"
)

type TaskService struct {
	taskRepo   repository.IMonitoringTaskRepository
	workspaces *WorkspaceManager
	audit      *auditSender
	now        func() time.Time
	log        *zap.SugaredLogger
}

func NewTaskService(
	taskRepo repository.IMonitoringTaskRepository,
	workspaces *WorkspaceManager,
	publisher IAuditPublisher,
	log *zap.SugaredLogger,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		workspaces: workspaces,
		audit:      newAuditSender(publisher, log),
		now:        time.Now,
		log:        log,
	}
}

// ListTasks заново загружает всю коллекцию и фильтрует ее на стороне сервиса
func (s *TaskService) ListTasks(ctx context.Context, principal entity.Principal, filter entity.TaskFilter) ([]entity.MonitoringTask, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, ws.CompanyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var out []entity.MonitoringTask
	err = ws.Do(func(ws *Workspace) error {
		ws.Tasks.Reset(tasks)
		out = ws.Tasks.Filter(filter)
		return nil
	})
	return out, err
}

func (s *TaskService) GetTask(ctx context.Context, principal entity.Principal, taskID string) (*entity.MonitoringTask, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.Get(ctx, ws.CompanyCode, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	return task, nil
}

// DuplicateTask создает копию с суффиксом " (Copy)" и ставит ее в начало списка
func (s *TaskService) DuplicateTask(ctx context.Context, principal entity.Principal, taskID string) (*entity.MonitoringTask, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}

	var dup *entity.MonitoringTask
	err = ws.Do(func(ws *Workspace) error {
		// список мог устареть: задачу могли создать в другой сессии
		if _, ok := ws.Tasks.Get(taskID); !ok {
			tasks, err := s.taskRepo.List(ctx, ws.CompanyCode)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			ws.Tasks.Reset(tasks)
		}

		var err error
		dup, err = composer.DuplicateTask(ctx, s.taskRepo, ws.Tasks, ws.CompanyCode, taskID, principal.Actor(), s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksDuplicated.Inc()
	s.audit.send(ws.CompanyCode, principal.Actor(), entity.ActionDuplicate, nil, dup, map[string]any{"sourceId": taskID})
	return dup, nil
}

// DeleteTask удаляет задачу; из списка она убирается только после успешного удаления
func (s *TaskService) DeleteTask(ctx context.Context, principal entity.Principal, taskID string) error {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return err
	}

	// 1. Получаем задачу (для аудита)
	task, err := s.taskRepo.Get(ctx, ws.CompanyCode, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}

	// 2. Удаляем задачу
	if err := s.taskRepo.Delete(ctx, ws.CompanyCode, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	_ = ws.Do(func(ws *Workspace) error {
		ws.Tasks.RemoveByID(taskID)
		return nil
	})

	metrics.TasksDeleted.Inc()
	s.audit.send(ws.CompanyCode, principal.Actor(), entity.ActionDelete, task, nil, nil)
	return nil
}

// SetInUse - переключатель "используется" в списке задач
func (s *TaskService) SetInUse(ctx context.Context, principal entity.Principal, taskID string, inUse bool) (*entity.MonitoringTask, error) {
	return s.patch(ctx, principal, taskID, func(old *entity.MonitoringTask) (map[string]any, map[string]any, error) {
		if old.InUse == inUse {
			return nil, nil, nil
		}
		return map[string]any{"inUse": inUse}, map[string]any{"inUse": change(old.InUse, inUse)}, nil
	}, func(t *entity.MonitoringTask) { t.InUse = inUse })
}

// SetStatus переводит задачу в архив и обратно
func (s *TaskService) SetStatus(ctx context.Context, principal entity.Principal, taskID string, status entity.TaskStatus) (*entity.MonitoringTask, error) {
	if !status.Valid() {
		return nil, entity.NewValidationError("status", fmt.Errorf("%w: unknown status %q", entity.ErrInvalidTaskData, status))
	}
	return s.patch(ctx, principal, taskID, func(old *entity.MonitoringTask) (map[string]any, map[string]any, error) {
		if old.Status == status {
			return nil, nil, nil
		}
		return map[string]any{"status": status}, map[string]any{"status": change(old.Status, status)}, nil
	}, func(t *entity.MonitoringTask) { t.Status = status })
}

// patch - частичное обновление: merge в хранилище, затем правка записи в списке
func (s *TaskService) patch(
	ctx context.Context,
	principal entity.Principal,
	taskID string,
	diff func(old *entity.MonitoringTask) (updates, changes map[string]any, err error),
	apply func(t *entity.MonitoringTask),
) (*entity.MonitoringTask, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}

	old, err := s.taskRepo.Get(ctx, ws.CompanyCode, taskID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, entity.ErrTaskNotFound
	}

	updates, changes, err := diff(old)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return old, nil
	}

	now := s.now()
	updates["updatedAt"] = now
	if err := s.taskRepo.Update(ctx, ws.CompanyCode, taskID, updates); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	updated := *old
	apply(&updated)
	updated.UpdatedAt = now
	_ = ws.Do(func(ws *Workspace) error {
		ws.Tasks.Patch(taskID, func(t *entity.MonitoringTask) {
			apply(t)
			t.UpdatedAt = now
		})
		return nil
	})

	s.audit.send(ws.CompanyCode, principal.Actor(), entity.ActionUpdate, old, &updated, changes)
	return &updated, nil
}
