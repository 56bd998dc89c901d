package composer

import (
	"strings"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// Assemble собирает документ задачи из черновика.
// Расписание формируется по частоте, полезная нагрузка только одна - по типу.
func Assemble(d Draft, actor entity.Actor, now time.Time) (entity.MonitoringTask, error) {
	task := entity.MonitoringTask{
		ID:             d.EditingID,
		Name:           strings.TrimSpace(d.Name),
		Responsibility: d.Responsibility,
		InUse:          d.InUse,
		Status:         d.Status,
		Type:           d.Type,
		Details:        shapeDetails(d.Details),
		UpdatedAt:      now,
	}
	if task.Status == "" {
		task.Status = entity.StatusActive
	}

	var err error
	switch d.Type {
	case entity.TaskTypeDetailed:
		if task.Fields, err = cloneSlice(d.Fields); err != nil {
			return entity.MonitoringTask{}, err
		}
	case entity.TaskTypeChecklist:
		if task.Checklist, err = cloneSlice(d.Checklist); err != nil {
			return entity.MonitoringTask{}, err
		}
	}

	task.InstructionSOPs = make([]entity.SOPRef, 0, len(d.SOPs))
	for _, s := range d.SOPs {
		task.InstructionSOPs = append(task.InstructionSOPs, entity.SOPRef{ID: s.ID, Title: s.Title, Version: s.Version})
	}

	if d.EditingID == "" {
		task.CreatedAt = now
		task.CreatedBy = actor
	} else {
		task.CreatedAt = d.CreatedAt
		task.CreatedBy = d.CreatedBy
	}
	return task, nil
}

func shapeDetails(d entity.Details) entity.Details {
	if d.IsOneTime() {
		return entity.Details{
			Frequency:   d.Frequency,
			OneTimeDate: strings.TrimSpace(d.OneTimeDate),
			OneTimeTime: strings.TrimSpace(d.OneTimeTime),
		}
	}
	return entity.Details{
		Frequency: d.Frequency,
		StartTime: strings.TrimSpace(d.StartTime),
	}
}
