// Package metrics 定义全局Prometheus指标
//
// 教学要点(Prometheus):
// 1. Counter只增不减,适合请求数、消息数这类累计量
// 2. Histogram按bucket统计分布,适合耗时
// 3. Gauge可增可减,适合状态类指标(如熔断器当前状态)
// 4. promauto在声明处完成注册,import本包即生效,不需要Init函数
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal HTTP请求总数,按方法/路径/状态码区分
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmarket_http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时分布
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookmarket_http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// MessagesPublishedTotal 发布到broker的消息总数,按routing key区分
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmarket_messages_published_total",
			Help: "发布的消息总数",
		},
		[]string{"routing_key"},
	)

	// MessagesConsumedTotal 消费的消息总数
	// result取值: ok(处理成功) / requeued(失败重新入队)
	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmarket_messages_consumed_total",
			Help: "消费的消息总数",
		},
		[]string{"queue", "result"},
	)

	// MessagesDeadLetteredTotal 转入死信队列的消息总数
	MessagesDeadLetteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmarket_messages_dead_lettered_total",
			Help: "转入死信队列的消息总数",
		},
		[]string{"queue"},
	)

	// ConsumerReconnectsTotal 自愈消费者的连接尝试总数(含首次连接)
	ConsumerReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmarket_consumer_reconnects_total",
			Help: "消费者连接尝试总数",
		},
		[]string{"queue"},
	)

	// CircuitBreakerState 熔断器当前状态: 0=关闭 1=半开 2=打开
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookmarket_circuit_breaker_state",
			Help: "熔断器状态(0=closed 1=half-open 2=open)",
		},
		[]string{"name"},
	)

	// CacheOpsTotal 缓存操作总数
	// result取值: hit / miss / error
	CacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmarket_cache_ops_total",
			Help: "缓存读取操作总数",
		},
		[]string{"cache", "result"},
	)
)
