package entity

import (
	"fmt"
	"strings"
)

// FieldConfig - конфигурация поля, вариант выбирается по FieldType.
// Реализации только в этом пакете.
type FieldConfig interface {
	FieldType() FieldType
	normalize() FieldConfig
	validate() error
}

// NewFieldConfig возвращает конфигурацию по умолчанию для типа поля
func NewFieldConfig(fieldType FieldType) (FieldConfig, error) {
	switch fieldType {
	case FieldTemperature:
		return TemperatureConfig{Unit: UnitFahrenheit}, nil
	case FieldAmount:
		return AmountConfig{Unit: UnitGram}, nil
	case FieldText:
		return TextConfig{TextType: TextSingle, MaxLength: DefaultTextMaxLength}, nil
	case FieldNumeric:
		return NumericConfig{}, nil
	case FieldMulti:
		return MultiConfig{Options: []string{""}}, nil
	case FieldSingle:
		return SingleConfig{}, nil
	case FieldProduct:
		return ProductConfig{}, nil
	case FieldLocation:
		return LocationConfig{}, nil
	case FieldMedia:
		return MediaConfig{MaxPhotos: MinPhotos}, nil
	}
	return nil, NewValidationError("type", fmt.Errorf("%w: %q", ErrUnknownFieldType, fieldType))
}

type TemperatureUnit string

const (
	UnitFahrenheit TemperatureUnit = "°F"
	UnitCelsius    TemperatureUnit = "°C"
)

type TemperatureConfig struct {
	Min  float64         `json:"min"`
	Max  float64         `json:"max"`
	Unit TemperatureUnit `json:"unit"`
}

func (TemperatureConfig) FieldType() FieldType     { return FieldTemperature }
func (c TemperatureConfig) normalize() FieldConfig { return c }

func (c TemperatureConfig) validate() error {
	if c.Unit != UnitFahrenheit && c.Unit != UnitCelsius {
		return fmt.Errorf("%w: unknown temperature unit %q", ErrInvalidFieldConfig, c.Unit)
	}
	return checkRange(c.Min, c.Max)
}

type AmountUnit string

const (
	UnitGram       AmountUnit = "gram"
	UnitKilogram   AmountUnit = "kilogram"
	UnitMilliliter AmountUnit = "milliliter"
	UnitLiter      AmountUnit = "liter"
	UnitPiece      AmountUnit = "piece"
	UnitOther      AmountUnit = "other"
)

var amountUnits = []AmountUnit{UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece, UnitOther}

type AmountConfig struct {
	Min  float64    `json:"min"`
	Max  float64    `json:"max"`
	Unit AmountUnit `json:"unit"`
}

func (AmountConfig) FieldType() FieldType     { return FieldAmount }
func (c AmountConfig) normalize() FieldConfig { return c }

func (c AmountConfig) validate() error {
	known := false
	for _, u := range amountUnits {
		if u == c.Unit {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown amount unit %q", ErrInvalidFieldConfig, c.Unit)
	}
	return checkRange(c.Min, c.Max)
}

type TextType string

const (
	TextSingle    TextType = "single"
	TextMultiline TextType = "multiline"

	DefaultTextMaxLength = 255
)

type TextConfig struct {
	TextType  TextType `json:"textType"`
	MaxLength int      `json:"maxLength"`
}

func (TextConfig) FieldType() FieldType { return FieldText }

func (c TextConfig) normalize() FieldConfig {
	if c.MaxLength < 1 {
		c.MaxLength = DefaultTextMaxLength
	}
	return c
}

func (c TextConfig) validate() error {
	if c.TextType != TextSingle && c.TextType != TextMultiline {
		return fmt.Errorf("%w: unknown text type %q", ErrInvalidFieldConfig, c.TextType)
	}
	return nil
}

const (
	MinDecimalPlaces = 0
	MaxDecimalPlaces = 4
)

type NumericConfig struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	DecimalPlaces int     `json:"decimalPlaces"`
}

func (NumericConfig) FieldType() FieldType { return FieldNumeric }

func (c NumericConfig) normalize() FieldConfig {
	c.DecimalPlaces = clamp(c.DecimalPlaces, MinDecimalPlaces, MaxDecimalPlaces)
	return c
}

func (c NumericConfig) validate() error {
	return checkRange(c.Min, c.Max)
}

const (
	MinPhotos = 1
	MaxPhotos = 5
)

type MediaConfig struct {
	MaxPhotos int `json:"maxPhotos"`
}

func (MediaConfig) FieldType() FieldType { return FieldMedia }

func (c MediaConfig) normalize() FieldConfig {
	c.MaxPhotos = clamp(c.MaxPhotos, MinPhotos, MaxPhotos)
	return c
}

func (c MediaConfig) validate() error { return nil }

type LocationConfig struct {
	LocationType LocationType `json:"locationType,omitempty"`
	LocationID   string       `json:"locationId,omitempty"`
	LocationName string       `json:"locationName,omitempty"`
}

func (LocationConfig) FieldType() FieldType     { return FieldLocation }
func (c LocationConfig) normalize() FieldConfig { return c }

func (c LocationConfig) validate() error {
	if c.LocationType != "" && !c.LocationType.Valid() {
		return fmt.Errorf("%w: unknown location type %q", ErrInvalidFieldConfig, c.LocationType)
	}
	if c.LocationID != "" && c.LocationType == "" {
		return fmt.Errorf("%w: location id without location type", ErrInvalidFieldConfig)
	}
	return nil
}

type SingleConfig struct {
	Option string `json:"option"`
}

func (SingleConfig) FieldType() FieldType     { return FieldSingle }
func (c SingleConfig) normalize() FieldConfig { return c }
func (c SingleConfig) validate() error        { return nil }

type MultiConfig struct {
	Options []string `json:"options"`
}

func (MultiConfig) FieldType() FieldType { return FieldMulti }

func (c MultiConfig) normalize() FieldConfig {
	if len(c.Options) == 0 {
		c.Options = []string{""}
	}
	return c
}

func (c MultiConfig) validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("%w: multi-choice field needs at least one option", ErrInvalidFieldConfig)
	}
	return nil
}

// AddOption добавляет пустой вариант в конец списка
func (c MultiConfig) AddOption(option string) MultiConfig {
	c.Options = append(append([]string(nil), c.Options...), strings.TrimSpace(option))
	return c
}

// RemoveOption удаляет вариант; последний вариант удалить нельзя
func (c MultiConfig) RemoveOption(index int) (MultiConfig, error) {
	if index < 0 || index >= len(c.Options) {
		return c, fmt.Errorf("%w: option index %d", ErrInvalidFieldConfig, index)
	}
	if len(c.Options) == 1 {
		return c, fmt.Errorf("%w: multi-choice field needs at least one option", ErrInvalidFieldConfig)
	}
	options := make([]string, 0, len(c.Options)-1)
	options = append(options, c.Options[:index]...)
	c.Options = append(options, c.Options[index+1:]...)
	return c, nil
}

type ProductConfig struct {
	AllowMultiple bool `json:"allowMultiple"`
}

func (ProductConfig) FieldType() FieldType     { return FieldProduct }
func (c ProductConfig) normalize() FieldConfig { return c }
func (c ProductConfig) validate() error        { return nil }

// NormalizeFieldConfig приводит значения к допустимым диапазонам
func NormalizeFieldConfig(cfg FieldConfig) FieldConfig {
	if cfg == nil {
		return nil
	}
	return cfg.normalize()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkRange(min, max float64) error {
	if min > max {
		return fmt.Errorf("%w: min %v is greater than max %v", ErrInvalidFieldConfig, min, max)
	}
	return nil
}
