package config

import (
	"fmt"
	"net"
)

// DiagnosticsConfig 诊断服务配置
type DiagnosticsConfig struct {
	// EnableIntrospect 是否启用诊断 HTTP 服务
	EnableIntrospect bool `json:"enable_introspect"`

	// IntrospectAddr 诊断服务监听地址
	IntrospectAddr string `json:"introspect_addr,omitempty"`

	// EnableMetrics 是否收集 Prometheus 指标
	EnableMetrics bool `json:"enable_metrics"`
}

// DefaultDiagnosticsConfig 返回默认诊断配置
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		EnableIntrospect: false,
		IntrospectAddr:   "127.0.0.1:6060",
		EnableMetrics:    true,
	}
}

// Validate 验证诊断配置
func (c DiagnosticsConfig) Validate() error {
	if !c.EnableIntrospect {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.IntrospectAddr); err != nil {
		return fmt.Errorf("invalid introspect address %q: %w", c.IntrospectAddr, err)
	}
	return nil
}
