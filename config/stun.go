package config

// STUNConfig STUN Binding 应答配置
//
// 启用后监听端口同时应答 STUN Binding Request，
// 客户端无需额外的 STUN 服务器即可获知自身的映射地址。
type STUNConfig struct {
	// Enable 是否应答 STUN Binding Request
	Enable bool `json:"enable"`

	// Software SOFTWARE 属性（为空则不携带）
	Software string `json:"software,omitempty"`
}

// DefaultSTUNConfig 返回默认 STUN 配置
func DefaultSTUNConfig() STUNConfig {
	return STUNConfig{
		Enable:   true,
		Software: "go-rendezvous",
	}
}

// Validate 验证 STUN 配置
func (c STUNConfig) Validate() error {
	return nil
}
