package composer

import (
	"testing"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetailedDraft() Draft {
	d := NewDraft()
	d.Name = "Walk-in cooler"
	d.Fields = []entity.TaskField{
		{ID: "f1", Type: entity.FieldTemperature, Label: "Temp", Config: entity.TemperatureConfig{Min: 33, Max: 41, Unit: entity.UnitFahrenheit}},
	}
	return d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr error
	}{
		{name: "valid", mutate: func(d *Draft) {}},
		{name: "blank name", mutate: func(d *Draft) { d.Name = " \t" }, wantErr: entity.ErrNameRequired},
		{name: "unknown type", mutate: func(d *Draft) { d.Type = "survey" }, wantErr: entity.ErrInvalidTaskData},
		{name: "unknown responsibility", mutate: func(d *Draft) { d.Responsibility = "Chef" }, wantErr: entity.ErrInvalidTaskData},
		{name: "no fields", mutate: func(d *Draft) { d.Fields = nil }, wantErr: entity.ErrFieldsRequired},
		{
			name: "duplicate field id",
			mutate: func(d *Draft) {
				d.Fields = append(d.Fields, entity.TaskField{ID: "f1", Type: entity.FieldText, Config: entity.TextConfig{TextType: entity.TextSingle, MaxLength: 10}})
			},
			wantErr: entity.ErrDuplicateFieldID,
		},
		{
			name: "min above max",
			mutate: func(d *Draft) {
				d.Fields[0].Config = entity.TemperatureConfig{Min: 50, Max: 41, Unit: entity.UnitFahrenheit}
			},
			wantErr: entity.ErrInvalidFieldConfig,
		},
		{
			name:    "config of another type",
			mutate:  func(d *Draft) { d.Fields[0].Config = entity.MediaConfig{MaxPhotos: 2} },
			wantErr: entity.ErrInvalidFieldConfig,
		},
		{
			name: "checklist type ignores fields",
			mutate: func(d *Draft) {
				d.Type = entity.TaskTypeChecklist
				d.Checklist = []entity.ChecklistItem{{Title: "Clean"}}
			},
		},
		{name: "empty checklist", mutate: func(d *Draft) { d.Type = entity.TaskTypeChecklist }, wantErr: entity.ErrChecklistRequired},
		{
			name: "checklist with unknown location type",
			mutate: func(d *Draft) {
				d.Type = entity.TaskTypeChecklist
				d.Checklist = []entity.ChecklistItem{{Title: "Clean", LocationType: "building"}}
			},
			wantErr: entity.ErrInvalidTaskData,
		},
		{name: "unknown frequency", mutate: func(d *Draft) { d.Details.Frequency = "Hourly" }, wantErr: entity.ErrInvalidTaskData},
		{name: "no start time", mutate: func(d *Draft) { d.Details.StartTime = "" }, wantErr: entity.ErrStartTimeRequired},
		{
			name:    "one-time without date",
			mutate:  func(d *Draft) { d.Details = entity.Details{Frequency: entity.FrequencyOneTime, OneTimeTime: "09:00"} },
			wantErr: entity.ErrOneTimeScheduleNeeded,
		},
		{
			name: "one-time ignores start time",
			mutate: func(d *Draft) {
				d.Details = entity.Details{Frequency: entity.FrequencyOneTime, OneTimeDate: "2026-07-01", OneTimeTime: "09:00"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetailedDraft()
			tt.mutate(&d)

			err := Validate(d)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, entity.IsValidation(err))
		})
	}
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "name_required", rejectionReason(entity.NewValidationError("name", entity.ErrNameRequired)))
	assert.Equal(t, "checklist_empty", rejectionReason(entity.ErrChecklistRequired))
	assert.Equal(t, "invalid_data", rejectionReason(entity.ErrInvalidTaskData))
}

func TestAssemble_DropsUnusedPayloadAndSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := validDetailedDraft()
	d.Checklist = []entity.ChecklistItem{{Title: "left over"}}
	d.Details.OneTimeDate = "2026-04-01"
	d.SOPs = []entity.SOPRef{{ID: "s1", Title: "Cooling", Version: "2"}}

	task, err := Assemble(d, chef, now)
	require.NoError(t, err)
	assert.Nil(t, task.Checklist)
	assert.Len(t, task.Fields, 1)
	assert.Equal(t, entity.Details{Frequency: entity.FrequencyDaily, StartTime: "08:00"}, task.Details)
	assert.Equal(t, []entity.SOPRef{{ID: "s1", Title: "Cooling", Version: "2"}}, task.InstructionSOPs)
	assert.Equal(t, now, task.CreatedAt)

	d.Fields[0].Label = "changed"
	assert.Equal(t, "Temp", task.Fields[0].Label)
}

func TestAssemble_NoSOPsIsEmptyList(t *testing.T) {
	task, err := Assemble(validDetailedDraft(), chef, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, task.InstructionSOPs)
	assert.Empty(t, task.InstructionSOPs)
}
