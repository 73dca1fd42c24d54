package mq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		base    time.Duration
	}{
		{"第1次", 1, 3 * time.Second},
		{"第2次", 2, 5 * time.Second},
		{"第3次", 3, 9 * time.Second},
		{"第4次", 4, 17 * time.Second},
		{"第5次封顶", 5, 30 * time.Second},
		{"第100次仍封顶", 100, 30 * time.Second},
	}

	jitterCap := time.Duration(jitterMillis) * time.Millisecond
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 抖动是随机的,多采样几次验证区间 [base, base+500ms)
			for i := 0; i < 50; i++ {
				d := ReconnectDelay(tt.attempt)
				assert.GreaterOrEqual(t, d, tt.base)
				assert.Less(t, d, tt.base+jitterCap)
			}
		})
	}
}

func TestReconnectDelayNegativeAttempt(t *testing.T) {
	// 非法入参不panic,按最小退避处理
	d := ReconnectDelay(-3)
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.Less(t, d, 3*time.Second)
}
