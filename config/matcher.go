package config

import (
	"errors"
	"time"
)

// MatcherConfig 匹配引擎配置
type MatcherConfig struct {
	// RequestTTL 待配对请求的存活时间，从最近一次刷新起算
	RequestTTL Duration `json:"request_ttl"`

	// SweepInterval 过期清扫间隔
	SweepInterval Duration `json:"sweep_interval"`

	// MaxPending 待配对请求上限，满时淘汰最久未刷新的请求
	MaxPending int `json:"max_pending"`
}

// DefaultMatcherConfig 返回默认匹配引擎配置
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		RequestTTL:    Duration(120 * time.Second),
		SweepInterval: Duration(15 * time.Second),
		MaxPending:    65536,
	}
}

// Validate 验证匹配引擎配置
func (c MatcherConfig) Validate() error {
	if c.RequestTTL <= 0 {
		return errors.New("request TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	if c.MaxPending <= 0 {
		return errors.New("max pending must be positive")
	}
	return nil
}
