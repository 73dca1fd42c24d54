package mq

import (
	"math/rand"
	"time"
)

// 重连退避参数
// 公式: min(1 + 2^attempt, 30)秒 + [0, 500ms)随机抖动
// 抖动避免多个消费者同时掉线后整齐划一地冲击broker
const (
	backoffCapSeconds = 30
	jitterMillis      = 500
)

// ReconnectDelay 计算第attempt次重连前的等待时间
// attempt从1开始计数,每次进入Connecting状态递增,成功消费期间不清零
func ReconnectDelay(attempt int) time.Duration {
	secs := backoffCapSeconds
	// 2^5+1=33已超过上限,更大的指数直接取上限(同时避免移位溢出)
	if attempt < 5 {
		if attempt < 0 {
			attempt = 0
		}
		secs = 1 + (1 << uint(attempt))
	}

	jitter := time.Duration(rand.Intn(jitterMillis)) * time.Millisecond
	return time.Duration(secs)*time.Second + jitter
}
