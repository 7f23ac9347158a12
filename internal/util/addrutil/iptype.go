// Package addrutil 提供端点分类工具
package addrutil

import "net/netip"

// 端点类型
const (
	TypeLoopback    = "loopback"
	TypePrivate     = "private"
	TypePublic      = "public"
	TypeUnspecified = "unspecified"
	TypeUnknown     = "unknown"
)

// ============================================================================
//                              IP 类型判断工具
// ============================================================================

// IsLoopback 判断是否是回环地址
func IsLoopback(addr netip.Addr) bool {
	return addr.Unmap().IsLoopback()
}

// IsPrivate 判断是否是私网地址
//
// 私网地址范围：
//   - 10.0.0.0/8
//   - 172.16.0.0/12
//   - 192.168.0.0/16
//   - fc00::/7 (IPv6 ULA)
//   - fe80::/10 (IPv6 链路本地)
func IsPrivate(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLinkLocalUnicast()
}

// IsPublic 判断是否是公网地址
//
// 公网地址：非回环、非私网、非链路本地的有效单播地址
func IsPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() && !addr.IsPrivate() && !addr.IsLoopback()
}

// AddrType 返回地址类型描述
//
// 返回值：
//   - "loopback" - 回环地址
//   - "private" - 私网地址
//   - "public" - 公网地址
//   - "unspecified" - 通配地址（0.0.0.0 / ::）
//   - "unknown" - 无效或其他类型
func AddrType(addr netip.Addr) string {
	if !addr.IsValid() {
		return TypeUnknown
	}
	switch {
	case addr.Unmap().IsUnspecified():
		return TypeUnspecified
	case IsLoopback(addr):
		return TypeLoopback
	case IsPrivate(addr):
		return TypePrivate
	case IsPublic(addr):
		return TypePublic
	default:
		return TypeUnknown
	}
}

// SameHost 判断两个端点是否来自同一公网地址（同一 NAT 之后）
//
// 这类配对需要 NAT 支持回环（hairpinning）才能直连。
func SameHost(a, b netip.AddrPort) bool {
	return a.Addr().Unmap() == b.Addr().Unmap()
}
