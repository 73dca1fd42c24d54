package mq

import (
	"context"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// State 自愈消费者的连接状态
// 状态机: Disconnected → Connecting → Bound → Consuming → (断线)Disconnected
//
//	任意状态 → (外部取消)Stopping → Disconnected
type State int32

const (
	// StateDisconnected 未连接(初始态,也是每次断线后的落点)
	StateDisconnected State = iota

	// StateConnecting 正在建立连接,每次进入该状态重连计数+1
	StateConnecting

	// StateBound 连接/channel就绪,拓扑(队列、绑定、死信队列)已幂等声明
	StateBound

	// StateConsuming 已注册消费,逐条处理消息
	StateConsuming

	// StateStopping 收到外部取消,正在优雅关闭
	StateStopping
)

// String 状态转字符串(便于日志)
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateBound:
		return "BOUND"
	case StateConsuming:
		return "CONSUMING"
	case StateStopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// ResilientConsumer 自己管理连接生命周期的订阅者
// 与ManagedConsumer的区别:
// 1. 自己重连:断线按 min(1+2^n,30)s+抖动 退避重试,永不放弃;重连计数在
//    外层循环存续期间只增不清零
// 2. 自己声明拓扑:Exchange绑定的主队列 + 固定命名的死信队列 <queue>.errors
// 3. 自己决定消息去向:处理失败的消息携带failedAt/error元数据转入死信队列,
//    然后Nack(requeue=false)从主队列永久移除——每条消息恰好一个终点,
//    要么确认要么死信,绝不悬挂也绝不悄悄丢弃
type ResilientConsumer struct {
	url        string
	exchange   string
	queue      string
	routingKey string
	errorQueue string
	handler    HandlerFunc
	logger     *zap.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
	state   atomic.Int32
	attempt int
}

// NewResilientConsumer 创建自愈消费者
// 死信队列名由主队列名按固定约定推导(<queue>.errors)
func NewResilientConsumer(url, exchange, queue, routingKey string, handler HandlerFunc, logger *zap.Logger) *ResilientConsumer {
	return &ResilientConsumer{
		url:        url,
		exchange:   exchange,
		queue:      queue,
		routingKey: routingKey,
		errorQueue: ErrorQueueName(queue),
		handler:    handler,
		logger:     logger.With(zap.String("queue", queue)),
	}
}

// State 返回当前状态(跨goroutine观测用)
func (c *ResilientConsumer) State() State {
	return State(c.state.Load())
}

func (c *ResilientConsumer) setState(s State) {
	c.state.Store(int32(s))
}

// Run 消费主循环,阻塞直到ctx取消
// 连接级故障(broker不可达、连接断开)视为瞬时错误,退避后无限重试,
// 不向任何调用方抛出——没有调用方在等待一条消息的结果
func (c *ResilientConsumer) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		c.attempt++
		c.setState(StateConnecting)
		metrics.ConsumerReconnectsTotal.WithLabelValues(c.queue).Inc()
		c.logger.Info("尝试连接RabbitMQ", zap.Int("attempt", c.attempt))

		deliveries, closed, err := c.bind()
		if err != nil {
			// 声明失败与连接失败同样按瞬时错误处理,整轮重来
			c.logger.Error("连接或声明拓扑失败", zap.Int("attempt", c.attempt), zap.Error(err))
		} else {
			c.setState(StateConsuming)
			c.logger.Info("消费已启动", zap.String("errorQueue", c.errorQueue))
			c.consume(ctx, deliveries, closed)
		}

		c.teardown()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			break
		}

		delay := ReconnectDelay(c.attempt)
		c.logger.Info("等待重连", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}

	// 优雅关闭:先channel后connection,关闭错误尽力而为地忽略
	c.setState(StateStopping)
	c.teardown()
	c.setState(StateDisconnected)
	c.logger.Info("自愈消费者已退出")
	return nil
}

// bind 建立连接并声明全部拓扑,成功后状态进入Bound
// 返回投递通道和连接断开通知通道
func (c *ResilientConsumer) bind() (<-chan amqp.Delivery, chan *amqp.Error, error) {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	// 拓扑声明全部幂等:重复声明已有对象是no-op
	if err := channel.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}
	if _, err := channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}
	if err := channel.QueueBind(c.queue, c.routingKey, c.exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}
	// 死信队列只声明不绑定:失败消息直接按队列名发布进去
	if _, err := channel.QueueDeclare(c.errorQueue, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}

	c.conn = conn
	c.channel = channel
	c.setState(StateBound)

	// 预取1:同一channel同一时刻最多一条在途消息,单队列严格串行
	if err := channel.Qos(1, 0, false); err != nil {
		return nil, nil, err
	}

	deliveries, err := channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	return deliveries, closed, nil
}

// consume 逐条处理,直到ctx取消或连接断开
func (c *ResilientConsumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery, closed chan *amqp.Error) {
	for {
		select {
		case <-ctx.Done():
			return
		case amqpErr := <-closed:
			// broker主动关闭或网络故障,瞬时错误,外层循环负责重连
			c.logger.Warn("RabbitMQ连接中断", zap.Any("reason", amqpErr))
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery 单条消息处理,保证恰好一个终点(Ack或死信+Nack)
func (c *ResilientConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	// 防御性解包后交给处理函数;反序列化失败、内容为空、处理函数报错
	// 一律视为消息级永久错误:死信并从主队列移除,不区分瞬时/永久
	payload := Unwrap(d.Body)

	if err := c.handler(ctx, payload); err != nil {
		c.logger.Warn("消息处理失败,转入死信队列",
			zap.Uint64("deliveryTag", d.DeliveryTag),
			zap.Error(err))
		c.deadLetter(ctx, d, err)
		metrics.MessagesDeadLetteredTotal.WithLabelValues(c.queue).Inc()
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Nack失败", zap.Uint64("deliveryTag", d.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	metrics.MessagesConsumedTotal.WithLabelValues(c.queue, "ok").Inc()
	if err := d.Ack(false); err != nil {
		c.logger.Error("Ack失败", zap.Uint64("deliveryTag", d.DeliveryTag), zap.Error(err))
	}
}

// deadLetter 把原始消息体连同失败元数据发布到死信队列
// 发布原始d.Body而不是解包后的载荷,离线重放时信息不丢失
func (c *ResilientConsumer) deadLetter(ctx context.Context, d amqp.Delivery, cause error) {
	if c.channel == nil {
		return
	}

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers["failedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
	headers["error"] = cause.Error()

	err := c.channel.PublishWithContext(
		ctx,
		"",           // 默认Exchange
		c.errorQueue, // 按死信队列名直接路由
		false,
		false,
		amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			DeliveryMode: amqp.Persistent,
			Headers:      headers,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		// 死信发布尽力而为:失败只记日志,原始消息仍会从主队列移除
		c.logger.Error("发布死信失败", zap.Error(err))
	}
}

// teardown 释放连接资源,可重复调用
func (c *ResilientConsumer) teardown() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
