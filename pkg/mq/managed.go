package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// HandlerFunc 消息处理函数
// 返回nil表示处理成功(消息确认删除),返回error表示处理失败
type HandlerFunc func(ctx context.Context, body []byte) error

// ManagedConsumer 托管消费者:队列→处理函数的声明式映射
// 设计说明:
// 1. 每种消息类型一个队列、一个处理函数,Start后由本包统一负责投递和确认
// 2. 每个队列独占一个channel并设置Qos预取1:单队列内严格串行,队列之间互不阻塞
// 3. 处理成功自动Ack;处理失败Nack(requeue=true)重新入队,交给broker的重试策略
// 4. 连接生命周期托管给调用方:连接意外断开时Start返回错误,不在本层重连
//    (需要自愈重连语义的订阅请使用ResilientConsumer)
type ManagedConsumer struct {
	url      string
	handlers map[string]HandlerFunc
	order    []string // 保持注册顺序,启动日志可预期
	logger   *zap.Logger
}

// NewManagedConsumer 创建托管消费者
func NewManagedConsumer(url string, logger *zap.Logger) *ManagedConsumer {
	return &ManagedConsumer{
		url:      url,
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Handle 注册队列的处理函数,必须在Start之前调用
func (c *ManagedConsumer) Handle(queue string, h HandlerFunc) {
	if _, dup := c.handlers[queue]; dup {
		c.logger.Warn("重复注册队列处理函数,后注册的生效", zap.String("queue", queue))
	} else {
		c.order = append(c.order, queue)
	}
	c.handlers[queue] = h
}

// Start 连接broker并开始消费所有已注册队列,阻塞直到ctx取消或连接断开
// ctx取消时优雅关闭并返回nil;连接意外断开返回错误
func (c *ManagedConsumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("没有注册任何队列处理函数")
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("连接RabbitMQ失败: %w", err)
	}
	defer conn.Close()

	var wg sync.WaitGroup
	for _, queue := range c.order {
		handler := c.handlers[queue]

		channel, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("创建Channel失败: %w", err)
		}

		// 幂等声明队列(Durable,与发布侧一致)
		if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("声明队列%s失败: %w", queue, err)
		}

		// 预取1:同一时刻最多一条在途消息,处理完才取下一条
		if err := channel.Qos(1, 0, false); err != nil {
			return fmt.Errorf("设置Qos失败: %w", err)
		}

		deliveries, err := channel.Consume(
			queue, // Queue名称
			"",    // Consumer标签(自动生成)
			false, // AutoAck:手动确认
			false, // Exclusive
			false, // NoLocal
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return fmt.Errorf("开始消费%s失败: %w", queue, err)
		}

		c.logger.Info("队列消费已启动", zap.String("queue", queue))

		wg.Add(1)
		go func(queue string) {
			defer wg.Done()
			c.consumeLoop(ctx, queue, handler, deliveries)
		}(queue)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	var runErr error
	select {
	case <-ctx.Done():
		c.logger.Info("收到退出信号,托管消费者停止")
	case amqpErr := <-closed:
		runErr = fmt.Errorf("RabbitMQ连接断开: %v", amqpErr)
	}

	// 关闭连接会让所有deliveries通道收尾,消费goroutine随之退出
	conn.Close()
	wg.Wait()
	return runErr
}

// consumeLoop 单个队列的消费循环
func (c *ManagedConsumer) consumeLoop(ctx context.Context, queue string, handler HandlerFunc, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		if err := handler(ctx, d.Body); err != nil {
			// 处理失败:重新入队,由broker重试(对本层而言重试策略是不透明的)
			c.logger.Error("消息处理失败,重新入队",
				zap.String("queue", queue),
				zap.Error(err))
			metrics.MessagesConsumedTotal.WithLabelValues(queue, "requeued").Inc()
			if nackErr := d.Nack(false, true); nackErr != nil {
				c.logger.Error("Nack失败", zap.String("queue", queue), zap.Error(nackErr))
			}
			continue
		}

		metrics.MessagesConsumedTotal.WithLabelValues(queue, "ok").Inc()
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("Ack失败", zap.String("queue", queue), zap.Error(ackErr))
		}
	}
}
