package composer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/metrics"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

type Step string

const (
	StepChooseType Step = "choose_type"
	StepConfigure  Step = "configure"
	StepReview     Step = "review"

	EventNext = "next"
	EventBack = "back"
)

// TaskWriter - запись задач, которая нужна мастеру и дублированию
type TaskWriter interface {
	Create(ctx context.Context, companyCode string, task *entity.MonitoringTask) (string, error)
	Replace(ctx context.Context, companyCode string, task *entity.MonitoringTask) error
}

// Composer - мастер создания и редактирования задачи мониторинга:
// choose_type -> configure -> review. Между шагами ничего не сохраняется.
type Composer struct {
	fsm         *fsm.FSM
	draft       Draft
	active      bool
	repo        TaskWriter
	list        *TaskList
	companyCode string
	actor       entity.Actor
	now         func() time.Time
	newID       func() string
	log         *zap.SugaredLogger
}

// State - снимок мастера для отображения
type State struct {
	Active  bool   `json:"active"`
	Step    Step   `json:"step"`
	Editing bool   `json:"editing"`
	Draft   *Draft `json:"draft,omitempty"`
}

func New(repo TaskWriter, list *TaskList, companyCode string, actor entity.Actor, log *zap.SugaredLogger) *Composer {
	c := &Composer{
		draft:       NewDraft(),
		repo:        repo,
		list:        list,
		companyCode: companyCode,
		actor:       actor,
		now:         time.Now,
		newID:       newFieldID,
		log:         log,
	}

	c.fsm = fsm.NewFSM(
		string(StepChooseType),
		fsm.Events{
			{Name: EventNext, Src: []string{string(StepChooseType)}, Dst: string(StepConfigure)},
			{Name: EventNext, Src: []string{string(StepConfigure)}, Dst: string(StepReview)},
			{Name: EventBack, Src: []string{string(StepReview)}, Dst: string(StepConfigure)},
			{Name: EventBack, Src: []string{string(StepConfigure)}, Dst: string(StepChooseType)},
		},
		fsm.Callbacks{
			"before_" + EventNext: func(_ context.Context, e *fsm.Event) {
				if err := c.guardNext(Step(e.Src)); err != nil {
					e.Cancel(err)
				}
			},
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.log.Debugw("composer step changed", "from", e.Src, "to", e.Dst, "company", c.companyCode)
			},
		},
	)
	return c
}

// guardNext не обращается к хранилищу
func (c *Composer) guardNext(from Step) error {
	switch from {
	case StepChooseType:
		if !c.draft.Type.Valid() {
			return entity.NewValidationError("type", fmt.Errorf("%w: unknown task type %q", entity.ErrInvalidTaskData, c.draft.Type))
		}
	case StepConfigure:
		if err := validateName(c.draft.Name); err != nil {
			return err
		}
	}
	return nil
}

// StartCreate открывает мастер с пустым черновиком
func (c *Composer) StartCreate() {
	c.reset()
	c.active = true
}

// StartEdit открывает мастер с копией существующей задачи
func (c *Composer) StartEdit(task entity.MonitoringTask) error {
	if task.ID == "" {
		return fmt.Errorf("%w: task without id", entity.ErrInvalidTaskData)
	}
	d, err := DraftFromTask(task)
	if err != nil {
		return err
	}
	c.reset()
	c.draft = d
	c.active = true
	return nil
}

// Cancel отбрасывает черновик на любом шаге
func (c *Composer) Cancel() {
	c.reset()
}

func (c *Composer) reset() {
	c.draft = NewDraft()
	c.active = false
	c.fsm.SetState(string(StepChooseType))
}

func (c *Composer) Active() bool {
	return c.active
}

func (c *Composer) Step() Step {
	return Step(c.fsm.Current())
}

func (c *Composer) Editing() bool {
	return c.active && c.draft.EditingID != ""
}

// Draft возвращает копию черновика
func (c *Composer) Draft() (Draft, error) {
	return c.draft.Clone()
}

func (c *Composer) State() (State, error) {
	s := State{Active: c.active, Step: c.Step(), Editing: c.Editing()}
	if !c.active {
		return s, nil
	}
	d, err := c.draft.Clone()
	if err != nil {
		return State{}, err
	}
	s.Draft = &d
	return s, nil
}

// Atomic применяет fn целиком: при ошибке черновик и шаг возвращаются к прежним
func (c *Composer) Atomic(fn func(c *Composer) error) error {
	saved, err := c.draft.Clone()
	if err != nil {
		return err
	}
	active, step := c.active, c.Step()

	if err := fn(c); err != nil {
		c.draft = saved
		c.active = active
		c.fsm.SetState(string(step))
		return err
	}
	return nil
}

func (c *Composer) Next(ctx context.Context) error {
	return c.event(ctx, EventNext)
}

// Back сохраняет все введенные данные
func (c *Composer) Back(ctx context.Context) error {
	return c.event(ctx, EventBack)
}

func (c *Composer) event(ctx context.Context, name string) error {
	if !c.active {
		return entity.ErrNoDraft
	}
	err := c.fsm.Event(ctx, name)
	if err == nil {
		return nil
	}

	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		metrics.ComposerRejections.WithLabelValues(rejectionReason(canceled.Err)).Inc()
		return canceled.Err
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %s from %s", entity.ErrWrongStep, name, invalid.State)
	}
	return fmt.Errorf("composer %s: %w", name, err)
}

// EnsureStep - ErrNoDraft без черновика, ErrWrongStep на другом шаге
func (c *Composer) EnsureStep(step Step) error {
	return c.require(step)
}

func (c *Composer) require(step Step) error {
	if !c.active {
		return entity.ErrNoDraft
	}
	if current := c.Step(); current != step {
		return fmt.Errorf("%w: %s requires %s", entity.ErrWrongStep, current, step)
	}
	return nil
}

// SelectType - выбор типа задачи на первом шаге
func (c *Composer) SelectType(taskType entity.TaskType) error {
	if err := c.require(StepChooseType); err != nil {
		return err
	}
	if !taskType.Valid() {
		return entity.NewValidationError("type", fmt.Errorf("%w: unknown task type %q", entity.ErrInvalidTaskData, taskType))
	}
	c.draft.Type = taskType
	return nil
}

// BasicInfo - основные поля задачи; nil поля не меняются
type BasicInfo struct {
	Name           *string                `json:"name"`
	Responsibility *entity.Responsibility `json:"responsibility"`
	InUse          *bool                  `json:"inUse"`
}

func (c *Composer) SetBasicInfo(info BasicInfo) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	if info.Responsibility != nil && !info.Responsibility.Valid() {
		return entity.NewValidationError("responsibility", fmt.Errorf("%w: unknown responsibility %q", entity.ErrInvalidTaskData, *info.Responsibility))
	}
	if info.Name != nil {
		c.draft.Name = *info.Name
	}
	if info.Responsibility != nil {
		c.draft.Responsibility = *info.Responsibility
	}
	if info.InUse != nil {
		c.draft.InUse = *info.InUse
	}
	return nil
}

// SetSchedule хранит все значения; в документ попадут только нужные частоте
func (c *Composer) SetSchedule(details entity.Details) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	if !details.Frequency.Valid() {
		return entity.NewValidationError("details.frequency", fmt.Errorf("%w: unknown frequency %q", entity.ErrInvalidTaskData, details.Frequency))
	}
	c.draft.Details = details
	return nil
}

// AttachSOPs заменяет набор прикрепленных SOP целиком
func (c *Composer) AttachSOPs(refs []entity.SOPRef) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	sops, err := cloneSlice(refs)
	if err != nil {
		return err
	}
	c.draft.SOPs = sops
	return nil
}

func (c *Composer) DetachSOP(id string) error {
	if err := c.require(StepConfigure); err != nil {
		return err
	}
	for i, s := range c.draft.SOPs {
		if s.ID == id {
			c.draft.SOPs = append(c.draft.SOPs[:i:i], c.draft.SOPs[i+1:]...)
			return nil
		}
	}
	return entity.ErrReferenceNotFound
}

// Review - предпросмотр документа, который будет сохранен, и итоговая проверка.
// Предпросмотр возвращается и тогда, когда проверка не пройдена.
func (c *Composer) Review() (entity.MonitoringTask, error) {
	if err := c.require(StepReview); err != nil {
		return entity.MonitoringTask{}, err
	}
	task, err := Assemble(c.draft, c.actor, c.now())
	if err != nil {
		return entity.MonitoringTask{}, err
	}
	return task, Validate(c.draft)
}

// Save проверяет и сохраняет черновик. При успехе мастер сбрасывается,
// при ошибке состояние и список остаются прежними.
func (c *Composer) Save(ctx context.Context) (*entity.MonitoringTask, error) {
	if err := c.require(StepReview); err != nil {
		return nil, err
	}
	if err := Validate(c.draft); err != nil {
		metrics.ComposerRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	task, err := Assemble(c.draft, c.actor, c.now())
	if err != nil {
		return nil, err
	}

	if c.draft.EditingID != "" {
		if err := c.repo.Replace(ctx, c.companyCode, &task); err != nil {
			c.log.Errorw("failed to update monitoring task", "id", task.ID, "company", c.companyCode, "error", err)
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		c.list.ReplaceByID(task)
		metrics.TasksSaved.WithLabelValues(metrics.ModeEdit).Inc()
	} else {
		id, err := c.repo.Create(ctx, c.companyCode, &task)
		if err != nil {
			c.log.Errorw("failed to create monitoring task", "company", c.companyCode, "error", err)
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		task.ID = id
		c.list.Prepend(task)
		metrics.TasksSaved.WithLabelValues(metrics.ModeCreate).Inc()
	}

	c.log.Infow("monitoring task saved", "id", task.ID, "type", task.Type, "company", c.companyCode)
	c.reset()
	return &task, nil
}
