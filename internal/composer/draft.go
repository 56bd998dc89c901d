package composer

import (
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/tiendc/go-deepcopy"
)

const (
	DefaultStartTime = "08:00"
)

// Draft - редактируемое состояние задачи внутри мастера.
// Fields и Checklist хранятся оба, в задачу попадает только тот, что соответствует Type.
type Draft struct {
	EditingID      string                 `json:"editingId,omitempty"`
	Type           entity.TaskType        `json:"type"`
	Name           string                 `json:"name"`
	Responsibility entity.Responsibility  `json:"responsibility"`
	InUse          bool                   `json:"inUse"`
	Status         entity.TaskStatus      `json:"status"`
	Details        entity.Details         `json:"details"`
	Fields         []entity.TaskField     `json:"fields"`
	Checklist      []entity.ChecklistItem `json:"checklist"`
	SOPs           []entity.SOPRef        `json:"instructionSOPs"`
	CreatedAt      time.Time              `json:"createdAt,omitempty"`
	CreatedBy      entity.Actor           `json:"createdBy,omitempty"`
}

// NewDraft - пустой черновик со значениями по умолчанию
func NewDraft() Draft {
	return Draft{
		Type:           entity.TaskTypeDetailed,
		Responsibility: entity.ResponsibilityProductionStaff,
		InUse:          true,
		Status:         entity.StatusActive,
		Details: entity.Details{
			Frequency: entity.FrequencyDaily,
			StartTime: DefaultStartTime,
		},
		Fields:    []entity.TaskField{},
		Checklist: []entity.ChecklistItem{},
		SOPs:      []entity.SOPRef{},
	}
}

// DraftFromTask загружает копию задачи для редактирования
func DraftFromTask(task entity.MonitoringTask) (Draft, error) {
	d := Draft{
		EditingID:      task.ID,
		Type:           task.Type,
		Name:           task.Name,
		Responsibility: task.Responsibility,
		InUse:          task.InUse,
		Status:         task.Status,
		Details:        task.Details,
		CreatedAt:      task.CreatedAt,
		CreatedBy:      task.CreatedBy,
	}
	if d.Status == "" {
		d.Status = entity.StatusActive
	}
	if d.Details.Frequency == "" {
		d.Details.Frequency = entity.FrequencyDaily
	}

	var err error
	if d.Fields, err = cloneSlice(task.Fields); err != nil {
		return Draft{}, err
	}
	if d.Checklist, err = cloneSlice(task.Checklist); err != nil {
		return Draft{}, err
	}
	if d.SOPs, err = cloneSlice(task.InstructionSOPs); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Clone - глубокая копия черновика
func (d Draft) Clone() (Draft, error) {
	out := d
	var err error
	if out.Fields, err = cloneSlice(d.Fields); err != nil {
		return Draft{}, err
	}
	if out.Checklist, err = cloneSlice(d.Checklist); err != nil {
		return Draft{}, err
	}
	if out.SOPs, err = cloneSlice(d.SOPs); err != nil {
		return Draft{}, err
	}
	return out, nil
}

func (d *Draft) field(id string) (int, *entity.TaskField) {
	for i := range d.Fields {
		if d.Fields[i].ID == id {
			return i, &d.Fields[i]
		}
	}
	return -1, nil
}

// cloneSlice возвращает непустой срез, даже если исходный nil
func cloneSlice[T any](src []T) ([]T, error) {
	out := make([]T, 0, len(src))
	if len(src) == 0 {
		return out, nil
	}
	if err := deepcopy.Copy(&out, &src); err != nil {
		return nil, fmt.Errorf("copy %T: %w", src, err)
	}
	return out, nil
}
