package jobs

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// Queue 把生成任务以 JSON 形式发布到 RabbitMQ 的某个持久化队列
type Queue struct {
	ch      *amqp.Channel
	name    string
	timeout time.Duration
}

// DeclareQueue 声明队列并返回对应的发布者，api 和 worker 两端使用相同的参数
func DeclareQueue(ch *amqp.Channel, name string, timeout time.Duration) (*Queue, error) {
	if _, err := ch.QueueDeclare(
		name,  // 队列名称
		true,  // 持久化
		false, // 不自动删除
		false, // 不独占
		false, // 等待 RabbitMQ 确认
		nil,
	); err != nil {
		return nil, err
	}

	return &Queue{ch: ch, name: name, timeout: timeout}, nil
}

func (q *Queue) Name() string { return q.name }

func (q *Queue) Publish(ctx context.Context, job *domain.GenerationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	return q.ch.PublishWithContext(
		ctx,
		"",     // 使用默认交换机
		q.name, // 路由键即队列名称
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}
