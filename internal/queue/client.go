package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
)

// ErrDuplicateJob is returned when a job with the same process id was already enqueued.
var ErrDuplicateJob = errors.New("job already enqueued")

type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	timeout   time.Duration
	retention time.Duration
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(redisCfg config.RedisConfig, workerCfg config.WorkerConfig) *Client {
	opt := RedisOpt(redisCfg)
	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		timeout:   workerCfg.JobTimeout,
		retention: workerCfg.Retention,
	}
}

func (c *Client) Close() error {
	return errors.Join(c.client.Close(), c.inspector.Close())
}

// EnqueueAudioProcess schedules a job. Jobs are not retried: a failed
// transcription is reported, not repeated.
func (c *Client) EnqueueAudioProcess(ctx context.Context, payload AudioProcessPayload) error {
	return c.enqueue(ctx, TypeAudioProcess, payload, taskOptions(payload.ProcessID, c.timeout, c.retention)...)
}

func taskOptions(id string, timeout, retention time.Duration) []asynq.Option {
	opts := []asynq.Option{
		asynq.TaskID(id),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(0),
	}
	if timeout > 0 {
		opts = append(opts, asynq.Timeout(timeout))
	}
	if retention > 0 {
		opts = append(opts, asynq.Retention(retention))
	}
	return opts
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return ErrDuplicateJob
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

// Status reports the queue-side state of a job. Jobs unknown to the queue
// (never enqueued, or past retention) report StatusUnknown.
func (c *Client) Status(processID string) (JobStatus, string, error) {
	info, err := c.inspector.GetTaskInfo(QueueDefault, processID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return StatusUnknown, "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("inspect task %s: %w", processID, err)
	}
	return statusFromState(info.State), info.LastErr, nil
}

func statusFromState(s asynq.TaskState) JobStatus {
	switch s {
	case asynq.TaskStatePending, asynq.TaskStateScheduled, asynq.TaskStateRetry, asynq.TaskStateAggregating:
		return StatusQueued
	case asynq.TaskStateActive:
		return StatusRunning
	case asynq.TaskStateCompleted:
		return StatusCompleted
	case asynq.TaskStateArchived:
		return StatusFailed
	default:
		return StatusUnknown
	}
}
