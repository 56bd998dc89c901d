package composer

import (
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// LocationSelection - выбранная локация; имя снимается в момент выбора и больше не обновляется
type LocationSelection struct {
	Type entity.LocationType `json:"locationType,omitempty"`
	ID   string              `json:"locationId,omitempty"`
	Name string              `json:"locationName,omitempty"`
}

func (s LocationSelection) IsZero() bool {
	return s.Type == "" && s.ID == ""
}

// LocationOptions - локации компании по категориям, загружаются один раз
type LocationOptions map[entity.LocationType][]entity.Location

// Options - список категории; пустая категория это не ошибка
func (o LocationOptions) Options(locationType entity.LocationType) ([]entity.Location, error) {
	if !locationType.Valid() {
		return nil, entity.NewValidationError("locationType", fmt.Errorf("%w: unknown location type %q", entity.ErrInvalidTaskData, locationType))
	}
	list := o[locationType]
	out := make([]entity.Location, len(list))
	copy(out, list)
	return out, nil
}

// Select находит локацию и делает снимок ее имени.
// Пустой id очищает выбор.
func (o LocationOptions) Select(locationType entity.LocationType, id string) (LocationSelection, error) {
	if locationType == "" && id == "" {
		return LocationSelection{}, nil
	}
	list, err := o.Options(locationType)
	if err != nil {
		return LocationSelection{}, err
	}
	if id == "" {
		return LocationSelection{Type: locationType}, nil
	}
	for _, loc := range list {
		if loc.ID == id {
			return LocationSelection{Type: locationType, ID: loc.ID, Name: loc.Name}, nil
		}
	}
	return LocationSelection{}, fmt.Errorf("%w: %s %s", entity.ErrLocationNotFound, locationType, id)
}
