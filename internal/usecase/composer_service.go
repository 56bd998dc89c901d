package usecase

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/composer"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"go.uber.org/zap"
)

// ComposerService - мастер задачи в рабочем пространстве пользователя.
// Все операции выполняются под блокировкой пространства.
type ComposerService struct {
	workspaces *WorkspaceManager
	taskRepo   repository.IMonitoringTaskRepository
	audit      *auditSender
	log        *zap.SugaredLogger
}

func NewComposerService(
	workspaces *WorkspaceManager,
	taskRepo repository.IMonitoringTaskRepository,
	publisher IAuditPublisher,
	log *zap.SugaredLogger,
) *ComposerService {
	return &ComposerService{
		workspaces: workspaces,
		taskRepo:   taskRepo,
		audit:      newAuditSender(publisher, log),
		log:        log,
	}
}

// SOPOption - строка списка выбора SOP
type SOPOption struct {
	entity.SOP
	Selected bool `json:"selected"`
}

func (s *ComposerService) run(ctx context.Context, principal entity.Principal, fn func(w *Workspace) error) (composer.State, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return composer.State{}, err
	}

	var state composer.State
	err = ws.Do(func(w *Workspace) error {
		err := w.Composer.Atomic(func(*composer.Composer) error {
			return fn(w)
		})
		if err != nil {
			return err
		}
		st, err := w.Composer.State()
		if err != nil {
			return err
		}
		state = st
		return nil
	})
	return state, err
}

// Apply выполняет действие над мастером и возвращает его новое состояние
func (s *ComposerService) Apply(ctx context.Context, principal entity.Principal, fn func(c *composer.Composer) error) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		return fn(w.Composer)
	})
}

func (s *ComposerService) State(ctx context.Context, principal entity.Principal) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error { return nil })
}

// StartCreate открывает мастер с пустым черновиком, прежний черновик отбрасывается
func (s *ComposerService) StartCreate(ctx context.Context, principal entity.Principal) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		w.SOPs.Close()
		w.Composer.StartCreate()
		return nil
	})
}

// StartEdit загружает задачу в мастер; мастер начинает с выбора типа
func (s *ComposerService) StartEdit(ctx context.Context, principal entity.Principal, taskID string) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		task, ok := w.Tasks.Get(taskID)
		if !ok {
			stored, err := s.taskRepo.Get(ctx, w.CompanyCode, taskID)
			if err != nil {
				return err
			}
			if stored == nil {
				return fmt.Errorf("%w: %s", entity.ErrTaskNotFound, taskID)
			}
			task = *stored
		}
		w.SOPs.Close()
		return w.Composer.StartEdit(task)
	})
}

func (s *ComposerService) Cancel(ctx context.Context, principal entity.Principal) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		w.SOPs.Close()
		w.Composer.Cancel()
		return nil
	})
}

// Review - документ в том виде, в котором он будет сохранен.
// При ошибке проверки предпросмотр возвращается вместе с ошибкой.
func (s *ComposerService) Review(ctx context.Context, principal entity.Principal) (*entity.MonitoringTask, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}
	var task entity.MonitoringTask
	err = ws.Do(func(w *Workspace) error {
		var err error
		task, err = w.Composer.Review()
		return err
	})
	if err != nil && !entity.IsValidation(err) {
		return nil, err
	}
	return &task, err
}

// Save сохраняет черновик и отправляет аудит
func (s *ComposerService) Save(ctx context.Context, principal entity.Principal) (*entity.MonitoringTask, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}

	var (
		task    *entity.MonitoringTask
		old     *entity.MonitoringTask
		editing bool
	)
	err = ws.Do(func(w *Workspace) error {
		editing = w.Composer.Editing()
		if editing {
			if d, err := w.Composer.Draft(); err == nil {
				if prev, ok := w.Tasks.Get(d.EditingID); ok {
					old = &prev
				}
			}
		}
		var err error
		task, err = w.Composer.Save(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	action := entity.ActionCreate
	if editing {
		action = entity.ActionUpdate
	}
	s.audit.send(ws.CompanyCode, principal.Actor(), action, old, task, nil)
	return task, nil
}

// SOPOptions - справочник SOP с отметками уже прикрепленных
func (s *ComposerService) SOPOptions(ctx context.Context, principal entity.Principal, query string) ([]SOPOption, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}

	var out []SOPOption
	err = ws.Do(func(w *Workspace) error {
		var err error
		out, err = sopOptions(w, query)
		return err
	})
	return out, err
}

// sopOptions отмечает выбор открытого диалога, иначе прикрепленные к черновику SOP
func sopOptions(w *Workspace, query string) ([]SOPOption, error) {
	selected := w.SOPs.IsSelected
	if !w.SOPs.IsOpen() {
		d, err := w.Composer.Draft()
		if err != nil {
			return nil, err
		}
		attached := make(map[string]struct{}, len(d.SOPs))
		for _, ref := range d.SOPs {
			attached[ref.ID] = struct{}{}
		}
		selected = func(id string) bool {
			_, ok := attached[id]
			return ok
		}
	}

	out := []SOPOption{}
	for _, sop := range w.SOPs.Filter(query) {
		out = append(out, SOPOption{SOP: sop, Selected: selected(sop.ID)})
	}
	return out, nil
}

// SOPPickerState - диалог выбора SOP между запросами
type SOPPickerState struct {
	Open bool        `json:"open"`
	SOPs []SOPOption `json:"sops"`
}

func (s *ComposerService) picker(ctx context.Context, principal entity.Principal, fn func(w *Workspace) error) (SOPPickerState, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return SOPPickerState{}, err
	}
	var state SOPPickerState
	err = ws.Do(func(w *Workspace) error {
		if err := fn(w); err != nil {
			return err
		}
		options, err := sopOptions(w, "")
		if err != nil {
			return err
		}
		state = SOPPickerState{Open: w.SOPs.IsOpen(), SOPs: options}
		return nil
	})
	return state, err
}

// OpenSOPPicker открывает выбор с уже прикрепленными SOP. Только на шаге configure.
func (s *ComposerService) OpenSOPPicker(ctx context.Context, principal entity.Principal) (SOPPickerState, error) {
	return s.picker(ctx, principal, func(w *Workspace) error {
		if err := w.Composer.EnsureStep(composer.StepConfigure); err != nil {
			return err
		}
		d, err := w.Composer.Draft()
		if err != nil {
			return err
		}
		w.SOPs.Open(d.SOPs)
		return nil
	})
}

func (s *ComposerService) ToggleSOP(ctx context.Context, principal entity.Principal, id string) (SOPPickerState, error) {
	return s.picker(ctx, principal, func(w *Workspace) error {
		return w.SOPs.Toggle(id)
	})
}

// CloseSOPPicker закрывает выбор, черновик не меняется
func (s *ComposerService) CloseSOPPicker(ctx context.Context, principal entity.Principal) (SOPPickerState, error) {
	return s.picker(ctx, principal, func(w *Workspace) error {
		w.SOPs.Close()
		return nil
	})
}

// ConfirmSOPs прикрепляет выбор открытого диалога к черновику
func (s *ComposerService) ConfirmSOPs(ctx context.Context, principal entity.Principal) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		if err := w.Composer.EnsureStep(composer.StepConfigure); err != nil {
			return err
		}
		refs, err := w.SOPs.Done()
		if err != nil {
			return err
		}
		return w.Composer.AttachSOPs(refs)
	})
}

// SelectSOPs заменяет прикрепленные SOP снимками выбранных
func (s *ComposerService) SelectSOPs(ctx context.Context, principal entity.Principal, ids []string) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		if !w.Composer.Active() {
			return entity.ErrNoDraft
		}
		d, err := w.Composer.Draft()
		if err != nil {
			return err
		}
		w.SOPs.Open(d.SOPs)
		if err := w.SOPs.Select(ids); err != nil {
			w.SOPs.Close()
			return err
		}
		refs, err := w.SOPs.Done()
		if err != nil {
			return err
		}
		return w.Composer.AttachSOPs(refs)
	})
}

// Locations - локации категории из загруженного справочника
func (s *ComposerService) Locations(ctx context.Context, principal entity.Principal, locationType entity.LocationType) ([]entity.Location, error) {
	ws, err := s.workspaces.Get(ctx, principal)
	if err != nil {
		return nil, err
	}
	var out []entity.Location
	err = ws.Do(func(w *Workspace) error {
		var err error
		out, err = w.Locations.Options(locationType)
		return err
	})
	return out, err
}

// SetFieldLocation привязывает поле-локацию; пустые type и id очищают привязку
func (s *ComposerService) SetFieldLocation(ctx context.Context, principal entity.Principal, fieldID string, locationType entity.LocationType, locationID string) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		sel, err := w.Locations.Select(locationType, locationID)
		if err != nil {
			return err
		}
		return w.Composer.SetFieldLocation(fieldID, sel)
	})
}

func (s *ComposerService) SetChecklistItemLocation(ctx context.Context, principal entity.Principal, index int, locationType entity.LocationType, locationID string) (composer.State, error) {
	return s.run(ctx, principal, func(w *Workspace) error {
		sel, err := w.Locations.Select(locationType, locationID)
		if err != nil {
			return err
		}
		return w.Composer.SetChecklistItemLocation(index, sel)
	})
}
