package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dep2p/go-rendezvous/config"
)

// 环境变量（均使用 RENDEZVOUS_ 前缀）
const (
	envPrefix       = "RENDEZVOUS_"
	envListen       = "LISTEN"
	envResponseAddr = "RESPONSE_ADDR"
	envTTL          = "TTL"
	envSweep        = "SWEEP"
	envMaxPending   = "MAX_PENDING"
	envFormat       = "FORMAT"
	envSTUN         = "STUN"
	envDiag         = "DIAG"
)

// cliFlags 命令行参数
type cliFlags struct {
	configFile   string
	listen       string
	responseAddr string
	ttl          time.Duration
	sweep        time.Duration
	maxPending   int
	format       string
	stun         bool
	diag         string
	noMetrics    bool
	statsEvery   time.Duration
	logFile      string
	verbose      bool
	showVersion  bool

	set map[string]bool
}

// parseFlags 解析命令行参数
func parseFlags(args []string) (*cliFlags, error) {
	def := config.NewConfig()
	f := &cliFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("rendezvous-server", flag.ContinueOnError)
	fs.StringVar(&f.configFile, "config", "", "配置文件路径（JSON）")
	fs.StringVar(&f.listen, "listen", def.Listen.Addr, "UDP 监听端点")
	fs.StringVar(&f.responseAddr, "response-addr", "", "独立的响应发送端点（默认复用监听套接字）")
	fs.DurationVar(&f.ttl, "ttl", def.Matcher.RequestTTL.Duration(), "待配对请求存活时间")
	fs.DurationVar(&f.sweep, "sweep", def.Matcher.SweepInterval.Duration(), "过期清扫间隔")
	fs.IntVar(&f.maxPending, "max-pending", def.Matcher.MaxPending, "待配对请求上限")
	fs.StringVar(&f.format, "format", def.Listen.ResponseFormat, "响应编码 (json/proto)")
	fs.BoolVar(&f.stun, "stun", def.STUN.Enable, "应答 STUN Binding Request")
	fs.StringVar(&f.diag, "diag", "", "诊断 HTTP 服务地址（为空则不启用）")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "不收集 Prometheus 指标")
	fs.DurationVar(&f.statsEvery, "stats", 30*time.Second, "统计输出间隔（0 = 不输出）")
	fs.StringVar(&f.logFile, "log", "", "日志文件路径")
	fs.BoolVar(&f.verbose, "verbose", false, "输出调试日志与 Fx 依赖注入日志")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f, nil
}

// isSet 检查参数是否显式设置
func (f *cliFlags) isSet(name string) bool {
	return f.set[name]
}

// buildConfig 构建服务配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（RENDEZVOUS_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildConfig(f *cliFlags, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg, getenv); err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, f)

	fixed, err := config.ValidateAndFix(cfg)
	if err != nil {
		return nil, err
	}
	return fixed, nil
}

// applyEnvOverrides 应用环境变量覆盖
func applyEnvOverrides(cfg *config.Config, getenv func(string) string) error {
	env := func(name string) string {
		return strings.TrimSpace(getenv(envPrefix + name))
	}

	if v := env(envListen); v != "" {
		cfg.Listen.Addr = v
	}
	if v := env(envResponseAddr); v != "" {
		cfg.Listen.ResponseAddr = v
	}
	if v := env(envFormat); v != "" {
		cfg.Listen.ResponseFormat = v
	}
	if v := env(envTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, envTTL, err)
		}
		cfg.Matcher.RequestTTL = config.Duration(d)
	}
	if v := env(envSweep); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, envSweep, err)
		}
		cfg.Matcher.SweepInterval = config.Duration(d)
	}
	if v := env(envMaxPending); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, envMaxPending, err)
		}
		cfg.Matcher.MaxPending = n
	}
	if v := env(envSTUN); v != "" {
		cfg.STUN.Enable = parseBool(v)
	}
	if v := env(envDiag); v != "" {
		cfg.Diagnostics.EnableIntrospect = true
		cfg.Diagnostics.IntrospectAddr = v
	}
	return nil
}

// applyFlagOverrides 应用显式设置的命令行参数
func applyFlagOverrides(cfg *config.Config, f *cliFlags) {
	if f.isSet("listen") {
		cfg.Listen.Addr = f.listen
	}
	if f.isSet("response-addr") {
		cfg.Listen.ResponseAddr = f.responseAddr
	}
	if f.isSet("format") {
		cfg.Listen.ResponseFormat = f.format
	}
	if f.isSet("ttl") {
		cfg.Matcher.RequestTTL = config.Duration(f.ttl)
	}
	if f.isSet("sweep") {
		cfg.Matcher.SweepInterval = config.Duration(f.sweep)
	}
	if f.isSet("max-pending") {
		cfg.Matcher.MaxPending = f.maxPending
	}
	if f.isSet("stun") {
		cfg.STUN.Enable = f.stun
	}
	if f.isSet("diag") {
		cfg.Diagnostics.EnableIntrospect = f.diag != ""
		if f.diag != "" {
			cfg.Diagnostics.IntrospectAddr = f.diag
		}
	}
	if f.noMetrics {
		cfg.Diagnostics.EnableMetrics = false
	}
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
