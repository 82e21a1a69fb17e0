package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	asynqTaskPrefix = "event:"

	// DefaultQueue is the asynq queue events are enqueued on.
	DefaultQueue = "events"
)

func TaskType(eventName string) string {
	return asynqTaskPrefix + eventName
}

// NewTask wraps an event in an asynq task.
func NewTask(e Event) (*asynq.Task, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskType(e.Name), body), nil
}

// AsynqPublisher enqueues each event as a task on a Redis-backed queue.
type AsynqPublisher struct {
	client *asynq.Client
	queue  string
}

func NewAsynqPublisher(opt asynq.RedisClientOpt, queue string) *AsynqPublisher {
	if queue == "" {
		queue = "default"
	}
	return &AsynqPublisher{client: asynq.NewClient(opt), queue: queue}
}

func (p *AsynqPublisher) Publish(ctx context.Context, e Event) error {
	task, err := NewTask(e)
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue), asynq.MaxRetry(5), asynq.TaskID(e.ID))
	return err
}

func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}

// NewAsynqMux routes every event task type to h.
func NewAsynqMux(h Handler, log *zap.Logger) *asynq.ServeMux {
	if log == nil {
		log = zap.NewNop()
	}
	mux := asynq.NewServeMux()
	for _, name := range All {
		mux.HandleFunc(TaskType(name), asynqHandler(h, log))
	}
	return mux
}

func asynqHandler(h Handler, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var e Event
		if err := json.Unmarshal(task.Payload(), &e); err != nil {
			log.Warn("drop malformed event task", zap.String("type", task.Type()), zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		if want := strings.TrimPrefix(task.Type(), asynqTaskPrefix); e.Name != want {
			return fmt.Errorf("%w: task %s carries event %s", asynq.SkipRetry, task.Type(), e.Name)
		}
		return h(ctx, e)
	}
}

func NewAsynqServer(opt asynq.RedisClientOpt, queue string, concurrency int) *asynq.Server {
	if queue == "" {
		queue = "default"
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	})
}
