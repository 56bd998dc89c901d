package entity

import (
	"strings"
	"time"
)

type TaskType string

const (
	TaskTypeDetailed  TaskType = "detailed"
	TaskTypeChecklist TaskType = "checklist"
)

func (t TaskType) Valid() bool {
	return t == TaskTypeDetailed || t == TaskTypeChecklist
}

type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
	FrequencyOneTime Frequency = "One-time task"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyOneTime:
		return true
	}
	return false
}

type Responsibility string

const (
	ResponsibilityProductionStaff  Responsibility = "Production Staff"
	ResponsibilityQualityAssurance Responsibility = "Quality Assurance"
	ResponsibilityManagement       Responsibility = "Management"
	ResponsibilityMaintenance      Responsibility = "Maintenance"
)

// Responsibilities - фиксированный список ролей, отображаемый в выпадающем списке
var Responsibilities = []Responsibility{
	ResponsibilityProductionStaff,
	ResponsibilityQualityAssurance,
	ResponsibilityManagement,
	ResponsibilityMaintenance,
}

func (r Responsibility) Valid() bool {
	for _, v := range Responsibilities {
		if v == r {
			return true
		}
	}
	return false
}

type TaskStatus string

const (
	StatusActive   TaskStatus = "active"
	StatusArchived TaskStatus = "archived"
)

func (s TaskStatus) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

// Details - расписание задачи. StartTime и OneTimeDate/OneTimeTime взаимоисключающие,
// выбор зависит от Frequency.
type Details struct {
	Frequency   Frequency `json:"frequency"`
	StartTime   string    `json:"startTime,omitempty"`
	OneTimeDate string    `json:"oneTimeDate,omitempty"`
	OneTimeTime string    `json:"oneTimeTime,omitempty"`
}

func (d Details) IsOneTime() bool {
	return d.Frequency == FrequencyOneTime
}

// SOPRef - снимок SOP на момент прикрепления, не живая ссылка
type SOPRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Actor - автор изменения
type Actor struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type ChecklistItem struct {
	Title        string       `json:"title"`
	AllowNotDone bool         `json:"allowNotDone"`
	LocationType LocationType `json:"locationType,omitempty"`
	LocationID   string       `json:"locationId,omitempty"`
	LocationName string       `json:"locationName,omitempty"`
}

// MonitoringTask - документ задачи мониторинга.
// Заполнено ровно одно из Fields / Checklist, в зависимости от Type.
type MonitoringTask struct {
	ID              string          `json:"id,omitempty"`
	Name            string          `json:"name"`
	Responsibility  Responsibility  `json:"responsibility"`
	InUse           bool            `json:"inUse"`
	Status          TaskStatus      `json:"status,omitempty"`
	Type            TaskType        `json:"type"`
	Details         Details         `json:"details"`
	Fields          []TaskField     `json:"fields,omitempty"`
	Checklist       []ChecklistItem `json:"checklist,omitempty"`
	InstructionSOPs []SOPRef        `json:"instructionSOPs"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	CreatedBy       Actor           `json:"createdBy"`
}

// TaskFilter - клиентская фильтрация уже загруженного списка
type TaskFilter struct {
	Query string
	Type  TaskType
	InUse *bool
}

func (f TaskFilter) Match(t MonitoringTask) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Query)) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.InUse != nil && t.InUse != *f.InUse {
		return false
	}
	return true
}
