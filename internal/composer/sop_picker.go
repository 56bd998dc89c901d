package composer

import (
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// SOPPicker - выбор SOP для задачи. Изменения применяются только через Done.
type SOPPicker struct {
	sops     []entity.SOP
	selected map[string]struct{}
	prior    []entity.SOPRef
	open     bool
}

func NewSOPPicker(sops []entity.SOP) *SOPPicker {
	catalog := make([]entity.SOP, len(sops))
	copy(catalog, sops)
	return &SOPPicker{
		sops:     catalog,
		selected: make(map[string]struct{}),
	}
}

// Open отмечает уже прикрепленные SOP
func (p *SOPPicker) Open(current []entity.SOPRef) {
	p.selected = make(map[string]struct{}, len(current))
	p.prior = make([]entity.SOPRef, len(current))
	copy(p.prior, current)
	for _, ref := range current {
		p.selected[ref.ID] = struct{}{}
	}
	p.open = true
}

func (p *SOPPicker) IsOpen() bool {
	return p.open
}

// Filter - поиск без учета регистра по названию и описанию
func (p *SOPPicker) Filter(query string) []entity.SOP {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]entity.SOP, 0, len(p.sops))
	for _, s := range p.sops {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Description), q) {
			out = append(out, s)
		}
	}
	return out
}

// Toggle переключает выбор SOP
func (p *SOPPicker) Toggle(id string) error {
	if !p.open {
		return fmt.Errorf("%w: sop picker is closed", entity.ErrWrongStep)
	}
	if _, ok := p.selected[id]; ok {
		delete(p.selected, id)
		return nil
	}
	if !p.known(id) {
		return fmt.Errorf("%w: sop %s", entity.ErrReferenceNotFound, id)
	}
	p.selected[id] = struct{}{}
	return nil
}

// Select заменяет выбор целиком
func (p *SOPPicker) Select(ids []string) error {
	if !p.open {
		return fmt.Errorf("%w: sop picker is closed", entity.ErrWrongStep)
	}
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !p.known(id) && !p.attached(id) {
			return fmt.Errorf("%w: sop %s", entity.ErrReferenceNotFound, id)
		}
		selected[id] = struct{}{}
	}
	p.selected = selected
	return nil
}

func (p *SOPPicker) IsSelected(id string) bool {
	_, ok := p.selected[id]
	return ok
}

// Done возвращает снимки выбранных SOP и закрывает выбор.
// Прикрепленные SOP, удаленные из справочника, сохраняют прежний снимок.
func (p *SOPPicker) Done() ([]entity.SOPRef, error) {
	if !p.open {
		return nil, fmt.Errorf("%w: sop picker is closed", entity.ErrWrongStep)
	}
	refs := make([]entity.SOPRef, 0, len(p.selected))
	for _, s := range p.sops {
		if _, ok := p.selected[s.ID]; ok {
			refs = append(refs, s.Ref())
		}
	}
	for _, ref := range p.prior {
		if _, ok := p.selected[ref.ID]; ok && !p.known(ref.ID) {
			refs = append(refs, ref)
		}
	}
	p.Close()
	return refs, nil
}

// Close закрывает выбор без изменений
func (p *SOPPicker) Close() {
	p.open = false
	p.prior = nil
	p.selected = make(map[string]struct{})
}

func (p *SOPPicker) known(id string) bool {
	for _, s := range p.sops {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (p *SOPPicker) attached(id string) bool {
	for _, ref := range p.prior {
		if ref.ID == id {
			return true
		}
	}
	return false
}
