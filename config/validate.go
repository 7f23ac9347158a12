package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 清扫间隔大于 TTL -> 缩短为 TTL
//   - 未知响应格式 -> 使用 json
//   - 接收缓冲区不足 -> 扩大到标识符上限的两倍
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Matcher.RequestTTL > 0 && c.Matcher.SweepInterval > c.Matcher.RequestTTL {
		c.Matcher.SweepInterval = c.Matcher.RequestTTL
	}

	if c.Listen.ResponseFormat == "" {
		c.Listen.ResponseFormat = FormatJSON
	}

	if c.Listen.MaxIdentifierLen > 0 && c.Listen.ReadBufferSize <= c.Listen.MaxIdentifierLen {
		c.Listen.ReadBufferSize = 2 * c.Listen.MaxIdentifierLen
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}

	return c, nil
}
