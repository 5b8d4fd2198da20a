package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
	"github.com/nikhilbhutani/podcastsummarizer/internal/queue"
	"github.com/nikhilbhutani/podcastsummarizer/internal/storage"
	"github.com/nikhilbhutani/podcastsummarizer/internal/webhook"
)

// Processor runs one job through the pipeline.
type Processor interface {
	Process(ctx context.Context, job pipeline.Job) (*pipeline.Result, error)
}

// AudioWorker runs queued uploads through the pipeline. The stored record is
// the job's output; clients read it from the summary endpoint.
type AudioWorker struct {
	processor Processor
	storage   storage.Storage
	maxBytes  int64
	notifier  Notifier
}

// Notifier is told about every finished job.
type Notifier interface {
	Notify(ctx context.Context, ev webhook.Event) error
}

func NewAudioWorker(p Processor, store storage.Storage, maxBytes int64) *AudioWorker {
	return &AudioWorker{processor: p, storage: store, maxBytes: maxBytes}
}

// WithNotifier reports job outcomes to n.
func (w *AudioWorker) WithNotifier(n Notifier) *AudioWorker {
	w.notifier = n
	return w
}

func (w *AudioWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AudioProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log := slog.With("process_id", payload.ProcessID)
	log.Info("processing audio job", "filename", payload.Filename)

	data, err := w.download(ctx, payload.StorageKey)
	if err != nil {
		w.notify(ctx, payload.ProcessID, err)
		return err
	}
	defer func() {
		if err := w.storage.Delete(context.WithoutCancel(ctx), payload.StorageKey); err != nil {
			log.Warn("failed to delete uploaded audio", "key", payload.StorageKey, "error", err)
		}
	}()

	res, err := w.processor.Process(ctx, pipeline.Job{
		ID:       payload.ProcessID,
		Filename: payload.Filename,
		Data:     data,
		Options: pipeline.Options{
			Language:  payload.Language,
			Enhance:   payload.Enhance,
			Summarize: payload.Summarize,
		},
	})
	if err != nil {
		w.notify(ctx, payload.ProcessID, err)
		return fmt.Errorf("process %s: %w", payload.ProcessID, err)
	}

	log.Info("audio job completed", "duration", res.Duration, "summarized", res.Summary != nil)
	w.notify(ctx, payload.ProcessID, nil)
	return nil
}

// notify delivers the outcome; delivery failures never fail the job.
func (w *AudioWorker) notify(ctx context.Context, processID string, jobErr error) {
	if w.notifier == nil {
		return
	}
	ev := webhook.Event{Type: webhook.EventJobCompleted, ProcessID: processID, Status: string(queue.StatusCompleted)}
	if jobErr != nil {
		ev.Type = webhook.EventJobFailed
		ev.Status = string(queue.StatusFailed)
		ev.ErrorKind = string(pipeline.KindOf(jobErr))
	}
	if err := w.notifier.Notify(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("job webhook failed", "process_id", processID, "event", ev.Type, "error", err)
	}
}

func (w *AudioWorker) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := w.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if w.maxBytes > 0 {
		r = io.LimitReader(rc, w.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
