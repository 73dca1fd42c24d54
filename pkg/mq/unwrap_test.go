package mq

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPlainJSON(t *testing.T) {
	// 正常JSON对象原样透传
	body := []byte(`{"ISBN":"9780134190440","Title":"The Go Programming Language"}`)
	assert.Equal(t, body, Unwrap(body))
}

func TestUnwrapStringLiteral(t *testing.T) {
	// 整个消息体是被转义的JSON字符串字面量
	inner := `{"ISBN":"9780134190440"}`
	wrapped, err := json.Marshal(inner)
	require.NoError(t, err)

	assert.Equal(t, []byte(inner), Unwrap(wrapped))
}

func TestUnwrapPayloadField(t *testing.T) {
	// 载荷藏在payload字段里
	body := []byte(`{"payload":"{\"ISBN\":\"9780134190440\"}","timestamp":"2024-01-01T00:00:00Z"}`)
	assert.JSONEq(t, `{"ISBN":"9780134190440"}`, string(Unwrap(body)))
}

func TestUnwrapDoubleEnvelope(t *testing.T) {
	// 两种信封叠加:字符串字面量里是带payload字段的对象
	inner := `{"ISBN":"9780134190440","Title":"Go"}`
	envelope, err := json.Marshal(map[string]string{"payload": inner})
	require.NoError(t, err)
	wrapped, err := json.Marshal(string(envelope))
	require.NoError(t, err)

	assert.Equal(t, []byte(inner), Unwrap(wrapped))
}

func TestUnwrapLeavesUnrecognizedAlone(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"空消息体", ""},
		{"非JSON文本", "not json at all"},
		{"JSON数组", `[1,2,3]`},
		{"payload字段不是字符串", `{"payload":{"ISBN":"x"}}`},
		{"payload字段为空", `{"payload":""}`},
		{"残缺的字符串字面量", `"unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 解不开的形态原样返回,交给后续反序列化去失败
			assert.Equal(t, []byte(tt.body), Unwrap([]byte(tt.body)))
		})
	}
}

func TestErrorQueueName(t *testing.T) {
	assert.Equal(t, "books.modify.errors", ErrorQueueName("books.modify"))
}
