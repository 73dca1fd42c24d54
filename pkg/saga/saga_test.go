package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// TestSaga_Execute_Success 所有步骤成功时按顺序执行、不触发补偿
func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	sg := NewSaga(5*time.Second, zap.NewNop())
	sg.AddStep("持久化订单",
		func(ctx context.Context) error {
			executed = append(executed, "持久化订单")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除订单")
			return nil
		},
	)
	sg.AddStep("写入缓存",
		func(ctx context.Context) error {
			executed = append(executed, "写入缓存")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "清除缓存")
			return nil
		},
	)

	if err := sg.Execute(context.Background()); err != nil {
		t.Fatalf("Saga执行失败: %v", err)
	}

	if len(executed) != 2 || executed[0] != "持久化订单" || executed[1] != "写入缓存" {
		t.Errorf("执行顺序错误: %v", executed)
	}
}

// TestSaga_Execute_FailureAndCompensate 某步失败时逆序补偿已完成步骤
func TestSaga_Execute_FailureAndCompensate(t *testing.T) {
	executed := make([]string, 0)

	sg := NewSaga(5*time.Second, zap.NewNop())
	sg.AddStep("持久化订单",
		func(ctx context.Context) error {
			executed = append(executed, "持久化订单")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除订单")
			return nil
		},
	)
	sg.AddStep("写入缓存",
		func(ctx context.Context) error {
			executed = append(executed, "写入缓存")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "清除缓存")
			return nil
		},
	)
	sg.AddStep("发布事件",
		func(ctx context.Context) error {
			executed = append(executed, "发布事件")
			return errors.New("broker不可达")
		},
		nil,
	)

	if err := sg.Execute(context.Background()); err == nil {
		t.Fatal("Saga应该失败但返回成功")
	}

	// 正向3步 + 逆序补偿2步
	expected := []string{"持久化订单", "写入缓存", "发布事件", "清除缓存", "删除订单"}
	if len(executed) != len(expected) {
		t.Fatalf("期望执行%d个步骤，实际%d个: %v", len(expected), len(executed), executed)
	}
	for i, step := range expected {
		if executed[i] != step {
			t.Errorf("步骤%d期望'%s'，实际'%s'", i, step, executed[i])
		}
	}
}

// TestSaga_Execute_Timeout 超时触发补偿
func TestSaga_Execute_Timeout(t *testing.T) {
	executed := make([]string, 0)

	sg := NewSaga(100*time.Millisecond, zap.NewNop())
	sg.AddStep("快速步骤",
		func(ctx context.Context) error {
			executed = append(executed, "快速步骤")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "快速步骤补偿")
			return nil
		},
	)
	sg.AddStep("慢速步骤",
		func(ctx context.Context) error {
			select {
			case <-time.After(200 * time.Millisecond):
				executed = append(executed, "慢速步骤")
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		func(ctx context.Context) error {
			executed = append(executed, "慢速步骤补偿")
			return nil
		},
	)

	if err := sg.Execute(context.Background()); err == nil {
		t.Fatal("Saga应该超时但返回成功")
	}

	if len(executed) < 2 || executed[len(executed)-1] != "快速步骤补偿" {
		t.Errorf("超时后应该补偿已完成步骤，实际执行: %v", executed)
	}
}

// TestSaga_CompensateContinuesOnFailure 单个补偿失败不阻断后续补偿
func TestSaga_CompensateContinuesOnFailure(t *testing.T) {
	executed := make([]string, 0)

	sg := NewSaga(5*time.Second, zap.NewNop())
	sg.AddStep("步骤1",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			executed = append(executed, "补偿1")
			return nil
		},
	)
	sg.AddStep("步骤2",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			executed = append(executed, "补偿2")
			return errors.New("补偿失败")
		},
	)
	sg.AddStep("步骤3",
		func(ctx context.Context) error { return errors.New("触发补偿") },
		nil,
	)

	if err := sg.Execute(context.Background()); err == nil {
		t.Fatal("Saga应该失败但返回成功")
	}

	// 补偿2失败后仍然执行补偿1
	expected := []string{"补偿2", "补偿1"}
	if len(executed) != len(expected) {
		t.Fatalf("期望补偿%d步，实际%d步: %v", len(expected), len(executed), executed)
	}
	for i, step := range expected {
		if executed[i] != step {
			t.Errorf("补偿顺序错误: %v", executed)
		}
	}
}
