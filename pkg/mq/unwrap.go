package mq

import (
	"bytes"
	"encoding/json"
)

// 防御性载荷解包
//
// 不同上游序列化器会产生"信封套信封"的消息形态:
// 1. 整个消息体是一个JSON字符串字面量,真正的文档被转义在里面
// 2. 消息体是JSON对象,真正的载荷藏在字符串类型的payload字段里
// 两种形态可能叠加出现(字符串字面量里是带payload字段的对象)
//
// 解包逻辑表达为有序的候选策略列表,每个策略都是纯函数 bytes -> (bytes, ok),
// 按顺序逐个应用,便于单独测试

// unwrapStrategy 单个解包策略:命中返回内层载荷和true,未命中返回false
type unwrapStrategy func(body []byte) ([]byte, bool)

// unwrapStrategies 策略应用顺序固定:先拆字符串字面量,再拆payload信封
var unwrapStrategies = []unwrapStrategy{
	unwrapStringLiteral,
	unwrapPayloadField,
}

// Unwrap 依次应用所有解包策略,返回最终载荷
// 任何策略未命中时保留当前载荷原样,绝不报错(解不开就交给后续反序列化去失败)
func Unwrap(body []byte) []byte {
	payload := body
	for _, strategy := range unwrapStrategies {
		if inner, ok := strategy(payload); ok {
			payload = inner
		}
	}
	return payload
}

// unwrapStringLiteral 整个消息体是JSON字符串字面量时,解析一次取出内层文档
func unwrapStringLiteral(body []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) < 2 || trimmed[0] != '"' || trimmed[len(trimmed)-1] != '"' {
		return nil, false
	}

	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return nil, false
	}
	return []byte(inner), true
}

// unwrapPayloadField 消息体是JSON对象且含字符串类型payload字段时,取该字段为真正载荷
func unwrapPayloadField(body []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var envelope struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, false
	}
	if envelope.Payload == "" {
		return nil, false
	}
	return []byte(envelope.Payload), true
}
