package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

const (
	TaskTypeResumeExtract = "resume:extract"

	// QueueName is the asynq queue extraction jobs are enqueued on.
	QueueName = "resumes"

	statusKeyPrefix = "task_status:"
)

type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	SaveStatus(ctx context.Context, status *TaskStatus) error
}

// Task is the payload of a resume:extract job. The document bytes are
// staged in blob storage under ObjectKey.
type Task struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	ObjectKey string    `json:"objectKey"`
	FileName  string    `json:"fileName"`
	MediaType string    `json:"mediaType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type TaskStatus struct {
	TaskID      string    `json:"taskId"`
	Status      string    `json:"status"`
	Progress    float64   `json:"progress"`
	Error       string    `json:"error,omitempty"`
	PortfolioID int64     `json:"portfolioId,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt,omitzero"`
}

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MaxRetry      int
	Timeout       time.Duration
	StatusTTL     time.Duration
}

// RedisOpt is the asynq connection option shared by the client and the
// worker server.
func (c Config) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
	config    Config
}

// NewAsynqQueue enqueues through asynq and keeps job status in rdb.
func NewAsynqQueue(rdb *redis.Client, cfg Config) *AsynqQueue {
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = 24 * time.Hour
	}
	return &AsynqQueue{
		client:    asynq.NewClient(cfg.RedisOpt()),
		inspector: asynq.NewInspector(cfg.RedisOpt()),
		redis:     rdb,
		config:    cfg,
	}
}

// NewTask encodes task as an asynq task carrying the queue options.
func (q *AsynqQueue) NewTask(task *Task) (*asynq.Task, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(QueueName),
		asynq.TaskID(task.ID),
		asynq.MaxRetry(q.config.MaxRetry),
	}
	if q.config.Timeout > 0 {
		opts = append(opts, asynq.Timeout(q.config.Timeout))
	}
	return asynq.NewTask(TaskTypeResumeExtract, payload, opts...), nil
}

func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	t, err := q.NewTask(task)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	task.ID = info.ID
	return nil
}

// GetTaskStatus prefers the status saved by the service and the worker and
// falls back to asking asynq for tasks that have none yet.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	data, err := q.redis.Get(ctx, statusKeyPrefix+taskID).Bytes()
	switch {
	case err == nil:
		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status: %w", err)
		}
		return &status, nil
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	if q.inspector == nil {
		return nil, models.ErrTaskNotFound
	}
	info, err := q.inspector.GetTaskInfo(QueueName, taskID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to inspect task: %w", err)
	}
	return convertAsynqStatus(info), nil
}

func (q *AsynqQueue) SaveStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKeyPrefix+status.TaskID, data, q.config.StatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	return errors.Join(q.client.Close(), q.inspector.Close())
}

// DecodeTask reads the payload written by NewTask.
func DecodeTask(t *asynq.Task) (*Task, error) {
	var task Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if task.ID == "" || task.ObjectKey == "" || task.MediaType == "" {
		return nil, fmt.Errorf("invalid task data: missing required fields")
	}
	return &task, nil
}

func convertAsynqStatus(info *asynq.TaskInfo) *TaskStatus {
	status := &TaskStatus{
		TaskID:    info.ID,
		Status:    string(models.StatusPending),
		StartedAt: info.NextProcessAt,
	}

	switch info.State {
	case asynq.TaskStateActive:
		status.Status = string(models.StatusRunning)
		status.Progress = 0.5
	case asynq.TaskStateCompleted:
		status.Status = string(models.StatusCompleted)
		status.Progress = 1.0
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateArchived:
		status.Status = string(models.StatusFailed)
		status.Error = info.LastErr
	case asynq.TaskStateRetry:
		status.Error = info.LastErr
	}
	return status
}
