package composer

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
)

const CopySuffix = " (Copy)"

// Duplicate строит копию задачи без id: новое имя, новые даты, новый автор
func Duplicate(src entity.MonitoringTask, actor entity.Actor, now time.Time) (entity.MonitoringTask, error) {
	dup := src
	dup.ID = ""
	dup.Name = src.Name + CopySuffix
	dup.CreatedAt = now
	dup.UpdatedAt = now
	dup.CreatedBy = actor

	var err error
	if dup.Fields, err = cloneSlice(src.Fields); err != nil {
		return entity.MonitoringTask{}, err
	}
	if dup.Checklist, err = cloneSlice(src.Checklist); err != nil {
		return entity.MonitoringTask{}, err
	}
	if dup.InstructionSOPs, err = cloneSlice(src.InstructionSOPs); err != nil {
		return entity.MonitoringTask{}, err
	}
	if len(dup.Fields) == 0 {
		dup.Fields = nil
	}
	if len(dup.Checklist) == 0 {
		dup.Checklist = nil
	}
	return dup, nil
}

// DuplicateTask создает копию задачи из списка и добавляет ее в начало списка
func DuplicateTask(ctx context.Context, repo TaskWriter, list *TaskList, companyCode, taskID string, actor entity.Actor, now time.Time) (*entity.MonitoringTask, error) {
	src, ok := list.Get(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrTaskNotFound, taskID)
	}

	dup, err := Duplicate(src, actor, now)
	if err != nil {
		return nil, err
	}

	id, err := repo.Create(ctx, companyCode, &dup)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate task: %w", err)
	}
	dup.ID = id
	list.Prepend(dup)
	return &dup, nil
}
