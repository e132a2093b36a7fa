package saga

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestSaga_Execute_Success 测试所有步骤成功的场景
func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	s := NewSaga(5 * time.Second)

	s.AddStep("扣减库存",
		func(ctx context.Context) error {
			executed = append(executed, "扣减库存")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "回补库存")
			return nil
		},
	)

	s.AddStep("创建订单",
		func(ctx context.Context) error {
			executed = append(executed, "创建订单")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除订单")
			return nil
		},
	)

	err := s.Execute(context.Background())
	if err != nil {
		t.Fatalf("Saga执行失败: %v", err)
	}

	if len(executed) != 2 {
		t.Errorf("期望执行2个步骤，实际执行%d个", len(executed))
	}

	if executed[0] != "扣减库存" || executed[1] != "创建订单" {
		t.Errorf("执行顺序错误: %v", executed)
	}
}

// TestSaga_Execute_FailureAndCompensate 测试步骤失败触发补偿
func TestSaga_Execute_FailureAndCompensate(t *testing.T) {
	executed := make([]string, 0)

	s := NewSaga(5 * time.Second)

	s.AddStep("扣减库存",
		func(ctx context.Context) error {
			executed = append(executed, "扣减库存")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "回补库存")
			return nil
		},
	)

	s.AddStep("创建订单",
		func(ctx context.Context) error {
			executed = append(executed, "创建订单")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除订单")
			return nil
		},
	)

	s.AddStep("创建支付单",
		func(ctx context.Context) error {
			executed = append(executed, "创建支付单")
			return errors.New("数据库写入失败") // 模拟失败
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除支付单")
			return nil
		},
	)

	err := s.Execute(context.Background())
	if err == nil {
		t.Fatal("Saga应该失败但返回成功")
	}

	// 正向3步 + 补偿2步（逆序）
	expected := []string{"扣减库存", "创建订单", "创建支付单", "删除订单", "回补库存"}

	if len(executed) != len(expected) {
		t.Fatalf("期望执行%d个步骤，实际执行%d个: %v", len(expected), len(executed), executed)
	}

	for i, step := range expected {
		if executed[i] != step {
			t.Errorf("步骤%d期望'%s'，实际'%s'", i, step, executed[i])
		}
	}
}

// TestSaga_Execute_CompensateFailureContinues 补偿失败不中断后续补偿
func TestSaga_Execute_CompensateFailureContinues(t *testing.T) {
	executed := make([]string, 0)

	s := NewSaga(5 * time.Second)

	s.AddStep("步骤A",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			executed = append(executed, "补偿A")
			return nil
		},
	)

	s.AddStep("步骤B",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			executed = append(executed, "补偿B")
			return errors.New("补偿B失败")
		},
	)

	s.AddStep("步骤C",
		func(ctx context.Context) error { return errors.New("C失败") },
		nil,
	)

	err := s.Execute(context.Background())
	if err == nil {
		t.Fatal("Saga应该失败但返回成功")
	}

	// 补偿B失败后仍应执行补偿A
	expected := []string{"补偿B", "补偿A"}
	if len(executed) != len(expected) {
		t.Fatalf("期望补偿%d步，实际%d步: %v", len(expected), len(executed), executed)
	}
	for i, step := range expected {
		if executed[i] != step {
			t.Errorf("补偿%d期望'%s'，实际'%s'", i, step, executed[i])
		}
	}
}

// TestSaga_Execute_Timeout 测试超时触发补偿
func TestSaga_Execute_Timeout(t *testing.T) {
	compensated := false

	s := NewSaga(50 * time.Millisecond)

	s.AddStep("慢步骤",
		func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
		func(ctx context.Context) error {
			compensated = true
			return nil
		},
	)

	s.AddStep("不会执行的步骤",
		func(ctx context.Context) error {
			t.Error("超时后不应执行后续步骤")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())
	if err == nil {
		t.Fatal("Saga应该超时但返回成功")
	}

	if !compensated {
		t.Error("超时后应执行已完成步骤的补偿")
	}
}
