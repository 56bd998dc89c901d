package entity

import (
	"fmt"

	"github.com/goccy/go-json"
)

type FieldType string

const (
	FieldTemperature FieldType = "temperature"
	FieldAmount      FieldType = "amount"
	FieldText        FieldType = "text"
	FieldNumeric     FieldType = "numeric"
	FieldMulti       FieldType = "multi"
	FieldSingle      FieldType = "single"
	FieldProduct     FieldType = "product"
	FieldLocation    FieldType = "location"
	FieldMedia       FieldType = "media"
)

// FieldTypes - все типы полей в порядке отображения в конструкторе
var FieldTypes = []FieldType{
	FieldTemperature,
	FieldAmount,
	FieldText,
	FieldNumeric,
	FieldMulti,
	FieldSingle,
	FieldProduct,
	FieldLocation,
	FieldMedia,
}

// TaskField - поле детальной задачи. Порядок полей в задаче значим.
type TaskField struct {
	ID     string      `json:"id"`
	Type   FieldType   `json:"type"`
	Label  string      `json:"label"`
	Config FieldConfig `json:"config"`
}

// NewTaskField создает поле с конфигурацией по умолчанию для типа
func NewTaskField(id string, fieldType FieldType, label string) (TaskField, error) {
	cfg, err := NewFieldConfig(fieldType)
	if err != nil {
		return TaskField{}, err
	}
	return TaskField{ID: id, Type: fieldType, Label: label, Config: cfg}, nil
}

// SetType меняет тип поля. Прежняя конфигурация отбрасывается целиком.
func (f *TaskField) SetType(fieldType FieldType) error {
	cfg, err := NewFieldConfig(fieldType)
	if err != nil {
		return err
	}
	f.Type = fieldType
	f.Config = cfg
	return nil
}

// SetConfig заменяет конфигурацию; тип конфигурации должен совпадать с типом поля
func (f *TaskField) SetConfig(cfg FieldConfig) error {
	if cfg == nil {
		return NewValidationError("config", ErrInvalidFieldConfig)
	}
	if cfg.FieldType() != f.Type {
		return NewValidationError("config", fmt.Errorf("%w: %s config for %s field", ErrInvalidFieldConfig, cfg.FieldType(), f.Type))
	}
	f.Config = NormalizeFieldConfig(cfg)
	return nil
}

func (f TaskField) Validate() error {
	if f.ID == "" {
		return NewValidationError("fields.id", ErrInvalidFieldConfig)
	}
	if f.Config == nil || f.Config.FieldType() != f.Type {
		return NewValidationError("fields."+f.ID+".config", ErrInvalidFieldConfig)
	}
	if err := f.Config.validate(); err != nil {
		return NewValidationError("fields."+f.ID+".config", err)
	}
	return nil
}

type taskFieldJSON struct {
	ID     string          `json:"id"`
	Type   FieldType       `json:"type"`
	Label  string          `json:"label"`
	Config json.RawMessage `json:"config"`
}

func (f *TaskField) UnmarshalJSON(data []byte) error {
	var raw taskFieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, err := DecodeFieldConfig(raw.Type, raw.Config)
	if err != nil {
		return err
	}
	f.ID = raw.ID
	f.Type = raw.Type
	f.Label = raw.Label
	f.Config = cfg
	return nil
}

// DecodeFieldConfig разбирает config по тегу типа
func DecodeFieldConfig(fieldType FieldType, data []byte) (FieldConfig, error) {
	cfg, err := NewFieldConfig(fieldType)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return cfg, nil
	}

	switch fieldType {
	case FieldTemperature:
		c := cfg.(TemperatureConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldAmount:
		c := cfg.(AmountConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldText:
		c := cfg.(TextConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldNumeric:
		c := cfg.(NumericConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldMulti:
		c := cfg.(MultiConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldSingle:
		c := cfg.(SingleConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldProduct:
		c := cfg.(ProductConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldLocation:
		c := cfg.(LocationConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	case FieldMedia:
		c := cfg.(MediaConfig)
		err = json.Unmarshal(data, &c)
		cfg = c
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s config: %w", fieldType, err)
	}
	return NormalizeFieldConfig(cfg), nil
}
