// Package saga 实现本地Saga事务编排
//
// 订单创建要依次写数据库、写缓存、发消息,三步跨越不同的存储,
// 没有跨存储的原子事务可用。Saga把长事务拆成有补偿的短步骤:
// 某步失败时按逆序执行已完成步骤的补偿,达成最终一致
package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step Saga中的一个步骤
// Action是正向操作,Compensate是对应的补偿;两者都要求幂等(允许重试)
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次事务编排
type Saga struct {
	steps    []Step
	executed []Step // 已执行的步骤,补偿时逆序回放
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSaga 创建Saga事务
//
// 示例:
//
//	sg := saga.NewSaga(30*time.Second, logger)
//	sg.AddStep("持久化订单", persistOrder, removeOrder)
//	sg.AddStep("写入缓存", cacheOrder, evictOrder)
//	sg.AddStep("发布事件", publishOrderCreated, nil)
//	err := sg.Execute(ctx)
func NewSaga(timeout time.Duration, logger *zap.Logger) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
		logger:  logger,
	}
}

// AddStep 添加步骤,按添加顺序执行、逆序补偿
// Compensate可以为nil(最后一步通常无需补偿)
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行事务:按顺序执行每个步骤,某步失败则逆序补偿已完成的步骤
// Saga保证的是最终一致性,补偿期间数据可能处于中间状态
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			// 补偿用新Context,避免补偿本身也被超时砍掉
			s.compensate(context.Background())
			return fmt.Errorf("saga超时: %w", ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.Background())
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行补偿;单个补偿失败只记日志,继续执行后续补偿
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			// 补偿失败需要人工介入,这里只能留下线索
			s.logger.Error("saga补偿失败",
				zap.String("step", step.Name),
				zap.Error(err))
		}
	}
	s.executed = nil
}
