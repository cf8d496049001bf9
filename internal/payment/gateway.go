package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logger"
)

// Gateway 支付网关端口
// 真正的资金划转发生在边界之外，这里只负责提交并拿回交易参考号。
type Gateway interface {
	// Transfer 向收款方划转指定金额，返回网关交易参考号
	Transfer(ctx context.Context, beneficiary string, amount int64, memo string) (string, error)
}

// Init 按配置创建支付网关
func Init(cfg config.PaymentConfig) (Gateway, error) {
	switch cfg.Provider {
	case "", "sandbox":
		return NewSandboxGateway(), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", cfg.Provider)
	}
}

// SandboxGateway 沙箱网关，直接签发参考号，不做真实划转
type SandboxGateway struct{}

// NewSandboxGateway 创建沙箱网关
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

// Transfer 实现 Gateway
func (g *SandboxGateway) Transfer(ctx context.Context, beneficiary string, amount int64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if beneficiary == "" {
		return "", fmt.Errorf("beneficiary is required")
	}
	if amount <= 0 {
		return "", fmt.Errorf("invalid transfer amount: %d", amount)
	}

	reference := "sbx_" + uuid.NewString()
	logger.Debug("Sandbox transfer %s: %d to %s (%s)", reference, amount, beneficiary, memo)
	return reference, nil
}
