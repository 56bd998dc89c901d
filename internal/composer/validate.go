package composer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// Validate проверяет черновик перед сохранением. Ошибка всегда *entity.ValidationError.
func Validate(d Draft) error {
	if err := validateName(d.Name); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return entity.NewValidationError("type", fmt.Errorf("%w: unknown task type %q", entity.ErrInvalidTaskData, d.Type))
	}
	if !d.Responsibility.Valid() {
		return entity.NewValidationError("responsibility", fmt.Errorf("%w: unknown responsibility %q", entity.ErrInvalidTaskData, d.Responsibility))
	}

	switch d.Type {
	case entity.TaskTypeChecklist:
		if len(d.Checklist) == 0 {
			return entity.NewValidationError("checklist", entity.ErrChecklistRequired)
		}
		for i, item := range d.Checklist {
			if item.LocationType != "" && !item.LocationType.Valid() {
				return entity.NewValidationError(fmt.Sprintf("checklist[%d].locationType", i), entity.ErrInvalidTaskData)
			}
		}
	case entity.TaskTypeDetailed:
		if len(d.Fields) == 0 {
			return entity.NewValidationError("fields", entity.ErrFieldsRequired)
		}
		seen := make(map[string]struct{}, len(d.Fields))
		for _, f := range d.Fields {
			if _, dup := seen[f.ID]; dup {
				return entity.NewValidationError("fields", fmt.Errorf("%w: %s", entity.ErrDuplicateFieldID, f.ID))
			}
			seen[f.ID] = struct{}{}
			if err := f.Validate(); err != nil {
				return err
			}
		}
	}

	return validateSchedule(d.Details)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return entity.NewValidationError("name", entity.ErrNameRequired)
	}
	return nil
}

func validateSchedule(details entity.Details) error {
	if !details.Frequency.Valid() {
		return entity.NewValidationError("details.frequency", fmt.Errorf("%w: unknown frequency %q", entity.ErrInvalidTaskData, details.Frequency))
	}
	if details.IsOneTime() {
		if strings.TrimSpace(details.OneTimeDate) == "" || strings.TrimSpace(details.OneTimeTime) == "" {
			return entity.NewValidationError("details", entity.ErrOneTimeScheduleNeeded)
		}
		return nil
	}
	if strings.TrimSpace(details.StartTime) == "" {
		return entity.NewValidationError("details.startTime", entity.ErrStartTimeRequired)
	}
	return nil
}

var rejectionReasons = []struct {
	err    error
	reason string
}{
	{entity.ErrNameRequired, "name_required"},
	{entity.ErrChecklistRequired, "checklist_empty"},
	{entity.ErrFieldsRequired, "fields_empty"},
	{entity.ErrOneTimeScheduleNeeded, "one_time_schedule"},
	{entity.ErrStartTimeRequired, "start_time"},
	{entity.ErrDuplicateFieldID, "duplicate_field_id"},
	{entity.ErrInvalidFieldConfig, "field_config"},
}

// rejectionReason - метка для метрики отказов
func rejectionReason(err error) string {
	for _, r := range rejectionReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "invalid_data"
}
