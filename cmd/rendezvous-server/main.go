// Package main 提供独立的 rendezvous 服务器
//
// 服务器监听一个 UDP 端点，把发送相同标识符的两个客户端配对，
// 并把彼此的公网端点告知对方，之后双方可直接打洞通信。
//
// 使用方法:
//
//	go run ./cmd/rendezvous-server -listen 0.0.0.0:6114
//
// 客户端可用 rendezvous-probe 验证：
//
//	go run ./cmd/rendezvous-probe -server 203.0.113.1:6114 -id room-42
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/go-rendezvous"
	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/util/addrutil"
	"github.com/dep2p/go-rendezvous/internal/util/logger"
)

var log = logger.Logger("cmd/server")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	if f.showVersion {
		fmt.Println(rendezvous.VersionInfo())
		return nil
	}

	if f.verbose {
		logger.SetGlobalLevel(slog.LevelDebug)
	}
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // 用户指定的日志路径
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		defer func() { _ = file.Close() }()
		logger.SetOutput(file)
	}

	cfg, err := buildConfig(f, os.Getenv)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	printBanner()

	srv, err := rendezvous.New(cfg, rendezvous.WithVerboseFx(f.verbose))
	if err != nil {
		return fmt.Errorf("创建服务失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("启动服务失败: %w", err)
	}
	log.Info("server running", "version", rendezvous.Version, "commit", rendezvous.GitCommit)

	printServerInfo(srv, cfg)

	if f.statsEvery > 0 {
		go reportStats(ctx, srv, f.statsEvery)
	}

	// 捕获中断信号
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalCh
	fmt.Printf("\n收到信号 %v，正在关闭...\n", sig)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("停止服务失败: %w", err)
	}

	fmt.Println("再见!")
	return nil
}

// printBanner 打印启动横幅
func printBanner() {
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║            Rendezvous Server                         ║")
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println()
}

// printServerInfo 打印服务器信息
func printServerInfo(srv *rendezvous.Server, cfg *config.Config) {
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║                    服务器信息                         ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Printf("║ 版本: %s\n", rendezvous.VersionInfo())
	listenType := addrutil.AddrType(srv.LocalAddr().Addr())
	fmt.Printf("║ 监听端点: %s (%s)\n", srv.LocalAddr(), listenType)
	if srv.ResponseAddr() != srv.LocalAddr() {
		fmt.Printf("║ 响应端点: %s\n", srv.ResponseAddr())
	}
	fmt.Printf("║ 响应编码: %s\n", cfg.Listen.ResponseFormat)
	fmt.Printf("║ 请求 TTL: %s（每 %s 清扫）\n", cfg.Matcher.RequestTTL, cfg.Matcher.SweepInterval)
	fmt.Printf("║ 最大待配对数: %d\n", cfg.Matcher.MaxPending)
	fmt.Printf("║ STUN: %v\n", cfg.STUN.Enable)
	if addr := srv.DiagnosticsAddr(); addr != "" {
		fmt.Printf("║ 诊断服务: http://%s/debug/rendezvous\n", addr)
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println()
	if listenType == addrutil.TypeLoopback || listenType == addrutil.TypePrivate {
		fmt.Println("注意: 监听地址不是公网地址，位于其他 NAT 之后的客户端无法到达")
		fmt.Println()
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("等待客户端请求，按 Ctrl+C 停止服务器")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// reportStats 定期报告统计信息
func reportStats(ctx context.Context, srv *rendezvous.Server, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			snap, err := srv.Snapshot(snapCtx)
			cancel()
			if err != nil {
				log.Warn("snapshot failed", "err", err)
				continue
			}
			fmt.Printf("[Stats] 待配对: %d  登记: %d  刷新: %d  配对: %d  过期: %d  挤出: %d  积压: %d\n",
				snap.Pending, snap.Registered, snap.Refreshed, snap.Paired,
				snap.EvictedTTL, snap.EvictedCapacity, srv.Backlog())
		}
	}
}
