package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// ProfileWarmer はプロフィールキャッシュを事前に読み込みます。
type ProfileWarmer interface {
	Warm(ctx context.Context, id string) error
}

// Manager はジョブの投入とワーカーの管理を担います。
type Manager struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	profiles ProfileWarmer
	logger   *slog.Logger
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, profiles ProfileWarmer, logger *slog.Logger) (*Manager, error) {
	if profiles == nil {
		return nil, errors.New("profiles is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queueUsers: 1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client:   client,
		server:   server,
		mux:      mux,
		profiles: profiles,
		logger:   logger,
	}
	mux.HandleFunc(TaskTypeUserCreated, manager.handleUserCreated)
	return manager, nil
}

// Enqueue は user:created タスクをキューに投入し、タスクIDを返します。
func (m *Manager) Enqueue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID is required")
	}

	body, err := json.Marshal(&TaskPayload{UserID: userID})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(TaskTypeUserCreated, body, asynq.Queue(queueUsers))
	info, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// UserCreated はサインアップ完了の通知を受けてタスクを投入します。
func (m *Manager) UserCreated(ctx context.Context, userID string) error {
	taskID, err := m.Enqueue(ctx, userID)
	if err != nil {
		return err
	}
	m.logger.DebugContext(ctx, "enqueued task", "type", TaskTypeUserCreated, "taskId", taskID, "userId", userID)
	return nil
}

func (m *Manager) handleUserCreated(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == "" {
		return fmt.Errorf("missing userId in payload: %w", asynq.SkipRetry)
	}

	if err := m.profiles.Warm(ctx, payload.UserID); err != nil {
		return fmt.Errorf("failed to warm profile %s: %w", payload.UserID, err)
	}
	return nil
}
