package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/metrics"
	"github.com/hibiken/asynq"
	"github.com/panjf2000/ants/v2"
)

// Notifier 异步发送通知，调用方不等待投递结果
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	Close() error
}

// New 配置了 redis 时走 asynq 队列，否则用进程内协程池直接发送
func New(cfg *config.Config, mailer Mailer) (Notifier, error) {
	if cfg.Redis.Addr != "" {
		return NewQueueNotifier(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), nil
	}
	return NewPoolNotifier(mailer, 4)
}

// QueueNotifier 投递到 asynq，由 worker 进程发送
type QueueNotifier struct {
	client *asynq.Client
}

func NewQueueNotifier(opt asynq.RedisClientOpt) *QueueNotifier {
	return &QueueNotifier{client: asynq.NewClient(opt)}
}

func (q *QueueNotifier) Notify(ctx context.Context, msg Message) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(msg.Kind, "enqueue_failed").Inc()
		return fmt.Errorf("enqueue %s: %w", msg.Kind, err)
	}
	logger.Debug("Enqueued %s mail task %s", msg.Kind, info.ID)
	return nil
}

func (q *QueueNotifier) Close() error {
	return q.client.Close()
}

// PoolNotifier 协程池内直接调用 Mailer，池满时丢弃而不阻塞调用方
type PoolNotifier struct {
	pool   *ants.Pool
	mailer Mailer
}

func NewPoolNotifier(mailer Mailer, size int) (*PoolNotifier, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification pool: %w", err)
	}
	return &PoolNotifier{pool: pool, mailer: mailer}, nil
}

func (p *PoolNotifier) Notify(ctx context.Context, msg Message) error {
	// 请求结束后仍需发送，不继承请求的取消
	sendCtx := context.WithoutCancel(ctx)
	err := p.pool.Submit(func() {
		_ = deliver(sendCtx, p.mailer, msg)
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		metrics.NotificationsSent.WithLabelValues(msg.Kind, "dropped").Inc()
		logger.Warn("Notification pool is full, dropped %s mail to %s", msg.Kind, msg.To)
	}
	if err != nil {
		return fmt.Errorf("submit %s: %w", msg.Kind, err)
	}
	return nil
}

func (p *PoolNotifier) Close() error {
	p.pool.Release()
	return nil
}

func deliver(ctx context.Context, mailer Mailer, msg Message) error {
	if err := mailer.Send(ctx, msg); err != nil {
		metrics.NotificationsSent.WithLabelValues(msg.Kind, "failed").Inc()
		logger.Error("Failed to send %s mail to %s: %v", msg.Kind, msg.To, err)
		return err
	}
	metrics.NotificationsSent.WithLabelValues(msg.Kind, "sent").Inc()
	return nil
}
