package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/hibiken/asynq"
)

// 任务类型常量
const TypeEmailDelivery = "email:deliver"

// NewEmailTask 创建邮件发送任务，最多重试 5 次
func NewEmailTask(msg Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailDelivery, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// EmailHandler 消费邮件任务
type EmailHandler struct {
	mailer Mailer
}

func NewEmailHandler(mailer Mailer) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

func (h *EmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		// 解析失败重试也没用
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return deliver(ctx, h.mailer, msg)
}

// Worker 封装 asynq Server
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(opt asynq.RedisClientOpt, concurrency int, mailer Mailer) *Worker {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Logger:      logger.NewAsynqLogger(),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeEmailDelivery, NewEmailHandler(mailer))

	return &Worker{server: srv, mux: mux}
}

// Run 阻塞运行直到收到退出信号
func (w *Worker) Run() error {
	logger.Info("Mail worker starting...")
	return w.server.Run(w.mux)
}
