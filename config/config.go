// Package config 提供 rendezvous 服务的统一配置管理
//
// 本包沿用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，各自提供 Default 与 Validate
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Matcher.RequestTTL = config.Duration(2 * time.Minute)
//
//	// 从文件加载
//	cfg, err := config.LoadFile("rendezvous.json")
package config

// Config 是 rendezvous 服务的完整配置结构
//
// 配置按照功能模块组织：
//   - Listen: UDP 监听与响应端点、线路格式
//   - Matcher: 匹配引擎（TTL、清扫间隔、容量）
//   - STUN: STUN Binding 应答
//   - Diagnostics: 诊断 HTTP 服务
type Config struct {
	// Listen 监听配置
	Listen ListenConfig `json:"listen"`

	// Matcher 匹配引擎配置
	Matcher MatcherConfig `json:"matcher"`

	// STUN STUN 应答配置
	STUN STUNConfig `json:"stun"`

	// Diagnostics 诊断服务配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Listen:      DefaultListenConfig(),
		Matcher:     DefaultMatcherConfig(),
		STUN:        DefaultSTUNConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回遇到的第一个错误。
func (c *Config) Validate() error {
	if err := c.Listen.Validate(); err != nil {
		return err
	}
	if err := c.Matcher.Validate(); err != nil {
		return err
	}
	if err := c.STUN.Validate(); err != nil {
		return err
	}
	if err := c.Diagnostics.Validate(); err != nil {
		return err
	}
	return nil
}
