package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haccp",
		Name:      "monitoring_tasks_saved_total",
		Help:      "Monitoring tasks saved by the composer.",
	}, []string{"mode"})

	TasksDuplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "haccp",
		Name:      "monitoring_tasks_duplicated_total",
		Help:      "Monitoring tasks duplicated.",
	})

	TasksDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "haccp",
		Name:      "monitoring_tasks_deleted_total",
		Help:      "Monitoring tasks deleted.",
	})

	ComposerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haccp",
		Name:      "composer_rejections_total",
		Help:      "Composer saves or step changes rejected by validation.",
	}, []string{"reason"})

	TenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haccp",
		Name:      "tenant_resolutions_total",
		Help:      "Tenant resolutions by result.",
	}, []string{"result"})

	AuditMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haccp",
		Name:      "audit_messages_total",
		Help:      "Audit messages handled by the worker.",
	}, []string{"result"})
)

const (
	ModeCreate = "create"
	ModeEdit   = "edit"

	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)
