package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTaskAuditRepository struct {
	repository.ITaskAuditRepository
	CreateFunc func(ctx context.Context, companyCode string, audit *entity.TaskAudit) error
}

func (m *MockTaskAuditRepository) Create(ctx context.Context, companyCode string, audit *entity.TaskAudit) error {
	return m.CreateFunc(ctx, companyCode, audit)
}

func TestAuditWorker_HandleStoresAudit(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	audits := repository.NewTaskAuditRepository(store)
	w := NewAuditWorker("", "audit", audits, zap.NewNop().Sugar())

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	body, err := json.Marshal(entity.AuditMessage{
		CompanyCode: "ABC123",
		UID:         "u-chef",
		Action:      entity.ActionUpdate,
		EntityID:    "task-1",
		Changes:     map[string]any{"name": map[string]any{"old": "A", "new": "B"}},
		Timestamp:   at,
	})
	require.NoError(t, err)

	result, err := w.handle(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, outcomeAck, result)

	stored, err := audits.List(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, entity.AuditEntityTask, stored[0].EntityType)
	assert.Equal(t, "task-1", stored[0].EntityID)
	assert.Equal(t, entity.ActionUpdate, stored[0].Action)
	assert.True(t, at.Equal(stored[0].ChangedAt))
}

func TestAuditWorker_HandleOutcomes(t *testing.T) {
	storeErr := errors.New("db down")

	tests := []struct {
		name   string
		body   string
		repo   error
		expect outcome
	}{
		{"malformed json", `{"companyCode":`, nil, outcomeDrop},
		{"no company", `{"entityId":"t1","action":"Create"}`, nil, outcomeDrop},
		{"no entity", `{"companyCode":"ABC123","action":"Create"}`, nil, outcomeDrop},
		{"store failure", `{"companyCode":"ABC123","entityId":"t1","action":"Delete"}`, storeErr, outcomeRequeue},
		{"missing timestamp", `{"companyCode":"ABC123","entityId":"t1","action":"Create"}`, nil, outcomeAck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *entity.TaskAudit
			repo := &MockTaskAuditRepository{
				CreateFunc: func(ctx context.Context, companyCode string, audit *entity.TaskAudit) error {
					got = audit
					return tt.repo
				},
			}
			w := NewAuditWorker("", "audit", repo, zap.NewNop().Sugar())

			result, err := w.handle(context.Background(), []byte(tt.body))
			assert.Equal(t, tt.expect, result)
			if tt.expect == outcomeAck {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.False(t, got.ChangedAt.IsZero())
				return
			}
			assert.Error(t, err)
			if tt.repo != nil {
				assert.ErrorIs(t, err, storeErr)
			}
		})
	}
}
