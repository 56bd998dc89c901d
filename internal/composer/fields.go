package composer

import (
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/google/uuid"
)

func newFieldID() string {
	return uuid.NewString()
}

func fieldNotFound(id string) error {
	return fmt.Errorf("%w: %s", entity.ErrFieldNotFound, id)
}

// AddField добавляет поле в конец списка с конфигурацией по умолчанию
func (c *Composer) AddField(fieldType entity.FieldType, label string) (entity.TaskField, error) {
	if err := c.require(StepConfigure); err != nil {
		return entity.TaskField{}, err
	}
	f, err := entity.NewTaskField(c.newID(), fieldType, strings.TrimSpace(label))
	if err != nil {
		return entity.TaskField{}, err
	}
	c.draft.Fields = append(c.draft.Fields, f)
	return f, nil
}

func (c *Composer) RenameField(id, label string) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	_, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	f.Label = strings.TrimSpace(label)
	return nil
}

// ChangeFieldType сбрасывает конфигурацию к значениям нового типа
func (c *Composer) ChangeFieldType(id string, fieldType entity.FieldType) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	_, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	return f.SetType(fieldType)
}

// SetFieldConfig заменяет конфигурацию; значения вне диапазона прижимаются к границам
func (c *Composer) SetFieldConfig(id string, cfg entity.FieldConfig) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	_, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	return f.SetConfig(cfg)
}

func (c *Composer) RemoveField(id string) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	i, _ := c.draft.field(id)
	if i < 0 {
		return fieldNotFound(id)
	}
	c.draft.Fields = append(c.draft.Fields[:i:i], c.draft.Fields[i+1:]...)
	return nil
}

// MoveField переставляет поле на позицию index
func (c *Composer) MoveField(id string, index int) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	i, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	if index < 0 || index >= len(c.draft.Fields) {
		return entity.NewValidationError("index", fmt.Errorf("%w: position %d", entity.ErrInvalidTaskData, index))
	}
	moved := *f
	rest := append(c.draft.Fields[:i:i], c.draft.Fields[i+1:]...)
	fields := make([]entity.TaskField, 0, len(c.draft.Fields))
	fields = append(fields, rest[:index]...)
	fields = append(fields, moved)
	c.draft.Fields = append(fields, rest[index:]...)
	return nil
}

// AddFieldOption добавляет вариант в поле множественного выбора
func (c *Composer) AddFieldOption(id, option string) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	_, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	cfg, ok := f.Config.(entity.MultiConfig)
	if !ok {
		return entity.NewValidationError("config", fmt.Errorf("%w: %s field has no options", entity.ErrInvalidFieldConfig, f.Type))
	}
	return f.SetConfig(cfg.AddOption(option))
}

// RemoveFieldOption - последний вариант удалить нельзя
func (c *Composer) RemoveFieldOption(id string, index int) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	_, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	cfg, ok := f.Config.(entity.MultiConfig)
	if !ok {
		return entity.NewValidationError("config", fmt.Errorf("%w: %s field has no options", entity.ErrInvalidFieldConfig, f.Type))
	}
	next, err := cfg.RemoveOption(index)
	if err != nil {
		return entity.NewValidationError("config.options", err)
	}
	return f.SetConfig(next)
}

// SetFieldLocation записывает выбранную локацию вместе с именем на момент выбора.
// Нулевой выбор очищает привязку.
func (c *Composer) SetFieldLocation(id string, sel LocationSelection) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	_, f := c.draft.field(id)
	if f == nil {
		return fieldNotFound(id)
	}
	if f.Type != entity.FieldLocation {
		return entity.NewValidationError("config", fmt.Errorf("%w: %s field has no location", entity.ErrInvalidFieldConfig, f.Type))
	}
	return f.SetConfig(entity.LocationConfig{
		LocationType: sel.Type,
		LocationID:   sel.ID,
		LocationName: sel.Name,
	})
}

func (c *Composer) checklistItem(index int) (*entity.ChecklistItem, error) {
	if index < 0 || index >= len(c.draft.Checklist) {
		return nil, fmt.Errorf("%w: index %d", entity.ErrChecklistItemMissing, index)
	}
	return &c.draft.Checklist[index], nil
}

// AddChecklistItem возвращает индекс нового пункта
func (c *Composer) AddChecklistItem(title string, allowNotDone bool) (int, error) {
	if err := c.require(StepConfigure); err != nil {
		return -1, err
	}
	c.draft.Checklist = append(c.draft.Checklist, entity.ChecklistItem{
		Title:        strings.TrimSpace(title),
		AllowNotDone: allowNotDone,
	})
	return len(c.draft.Checklist) - 1, nil
}

func (c *Composer) UpdateChecklistItem(index int, title string, allowNotDone bool) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	item, err := c.checklistItem(index)
	if err != nil {
		return err
	}
	item.Title = strings.TrimSpace(title)
	item.AllowNotDone = allowNotDone
	return nil
}

func (c *Composer) RemoveChecklistItem(index int) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	if _, err := c.checklistItem(index); err != nil {
		return err
	}
	c.draft.Checklist = append(c.draft.Checklist[:index:index], c.draft.Checklist[index+1:]...)
	return nil
}

func (c *Composer) SetChecklistItemLocation(index int, sel LocationSelection) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	item, err := c.checklistItem(index)
	if err != nil {
		return err
	}
	item.LocationType = sel.Type
	item.LocationID = sel.ID
	item.LocationName = sel.Name
	return nil
}
