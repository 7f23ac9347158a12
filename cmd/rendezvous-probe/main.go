// Package main 提供 rendezvous 探测客户端
//
// 向服务器发送标识符并等待配对响应，打印对端端点。
// 在两台机器上用相同的 -id 各运行一次即可验证配对。
//
// 使用方法:
//
//	go run ./cmd/rendezvous-probe -server 203.0.113.1:6114 -id room-42
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "127.0.0.1:6114", "rendezvous 服务器端点")
	id := flag.String("id", "", "配对标识符")
	timeout := flag.Duration("timeout", 2*time.Minute, "等待配对的最长时间")
	retry := flag.Duration("retry", 5*time.Second, "重发间隔")
	format := flag.String("format", "json", "响应编码 (json/proto)")
	useSTUN := flag.Bool("stun", false, "先通过 STUN 查询本端公网地址")
	flag.Parse()

	if *id == "" {
		return fmt.Errorf("必须指定 -id")
	}

	codec, err := udp.CodecFor(*format)
	if err != nil {
		return err
	}

	raddr, err := net.ResolveUDPAddr("udp", *server)
	if err != nil {
		return fmt.Errorf("解析服务器地址失败: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}
	defer func() { _ = conn.Close() }()

	fmt.Printf("本地端点: %s\n", conn.LocalAddr())

	if *useSTUN {
		addr, err := reflexiveAddr(conn, 3*time.Second)
		if err != nil {
			fmt.Printf("STUN 查询失败: %v\n", err)
		} else {
			fmt.Printf("公网映射: %s\n", addr)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("发送标识符 %q 到 %s，等待对端...\n", *id, raddr)
	resp, err := probe(ctx, conn, *id, *retry, codec)
	if err != nil {
		return err
	}

	fmt.Println("配对成功")
	fmt.Printf("  标识符: %s\n", resp.Identifier)
	fmt.Printf("  对端:   %s\n", resp.Peer)
	if resp.Session != "" {
		fmt.Printf("  会话:   %s\n", resp.Session)
	}
	return nil
}
