package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// IAuditPublisher - отправка аудита (RabbitMQ или напрямую в хранилище)
type IAuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

// DirectAuditPublisher пишет аудит сразу в журнал компании, когда очередь не настроена
type DirectAuditPublisher struct {
	auditRepo repository.ITaskAuditRepository
}

func NewDirectAuditPublisher(auditRepo repository.ITaskAuditRepository) *DirectAuditPublisher {
	return &DirectAuditPublisher{
		auditRepo: auditRepo,
	}
}

func (p *DirectAuditPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	audit := message.ToAudit()
	return p.auditRepo.Create(ctx, message.CompanyCode, &audit)
}

type auditSender struct {
	publisher IAuditPublisher
	log       *zap.SugaredLogger
	// sent вызывается после каждой попытки отправки, нужен тестам
	sent func(*entity.AuditMessage, error)
}

func newAuditSender(publisher IAuditPublisher, log *zap.SugaredLogger) *auditSender {
	return &auditSender{
		publisher: publisher,
		log:       log,
	}
}

// send отправляет аудит асинхронно; ошибка отправки не откатывает операцию
func (a *auditSender) send(
	companyCode string,
	actor entity.Actor,
	action entity.ActionType,
	oldTask *entity.MonitoringTask,
	newTask *entity.MonitoringTask,
	changes map[string]any,
) {
	if a == nil || a.publisher == nil {
		return
	}

	msg := &entity.AuditMessage{
		CompanyCode: companyCode,
		UID:         actor.UID,
		Action:      action,
		Changes:     changes,
		Timestamp:   time.Now(),
	}
	if oldTask != nil {
		msg.EntityID = oldTask.ID
		msg.OldValues = taskValues(oldTask)
	}
	if newTask != nil {
		msg.EntityID = newTask.ID
		msg.NewValues = taskValues(newTask)
	}

	go func() {
		err := a.publisher.PublishAuditMessage(context.Background(), msg)
		if err != nil {
			a.log.Errorw("failed to publish audit message", "action", action, "task", msg.EntityID, "error", err)
		} else {
			a.log.Debugw("audit message published", "action", action, "task", msg.EntityID)
		}
		if a.sent != nil {
			a.sent(msg, err)
		}
	}()
}

// taskValues - снимок задачи для журнала
func taskValues(task *entity.MonitoringTask) map[string]any {
	data, err := json.Marshal(task)
	if err != nil {
		return map[string]any{"id": task.ID, "name": task.Name}
	}
	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]any{"id": task.ID, "name": task.Name}
	}
	return values
}

func change(oldValue, newValue any) map[string]any {
	return map[string]any{"old": oldValue, "new": newValue}
}
