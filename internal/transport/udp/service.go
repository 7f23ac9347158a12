package udp

import (
	"fmt"
	"net"
	"net/netip"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/coordinator"
)

// Config UDP 适配器配置
type Config struct {
	// ListenAddr 请求监听端点
	ListenAddr string

	// ResponseAddr 响应发送端点（为空则复用监听套接字）
	ResponseAddr string

	// MaxIdentifierLen 标识符最大字节数
	MaxIdentifierLen int

	// ReadBufferSize 接收缓冲区大小
	ReadBufferSize int

	// Format 响应编码
	Format string

	// EnableSTUN 是否应答 STUN Binding Request
	EnableSTUN bool

	// STUNSoftware STUN SOFTWARE 属性
	STUNSoftware string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建适配器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		ListenAddr:       cfg.Listen.Addr,
		ResponseAddr:     cfg.Listen.ResponseAddr,
		MaxIdentifierLen: cfg.Listen.MaxIdentifierLen,
		ReadBufferSize:   cfg.Listen.ReadBufferSize,
		Format:           cfg.Listen.ResponseFormat,
		EnableSTUN:       cfg.STUN.Enable,
		STUNSoftware:     cfg.STUN.Software,
	}
}

// Service UDP 适配器
//
// 构造时即绑定套接字，使 Sender 在事件循环启动前可用；
// Start 之后才开始读取请求。
type Service struct {
	cfg      Config
	conn     *net.UDPConn
	respConn *net.UDPConn
	sender   *Sender
	recorder Recorder

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// NewService 绑定套接字并创建适配器
func NewService(cfg Config, recorder Recorder) (*Service, error) {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	codec, err := CodecFor(cfg.Format)
	if err != nil {
		return nil, err
	}

	conn, err := listenUDP(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	respConn := conn
	if cfg.ResponseAddr != "" {
		respConn, err = listenUDP(cfg.ResponseAddr)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("listen response %s: %w", cfg.ResponseAddr, err)
		}
	}

	log.Info("udp sockets bound",
		"listen", conn.LocalAddr().String(),
		"response", respConn.LocalAddr().String(),
		"format", codec.Name(),
		"stun", cfg.EnableSTUN)

	return &Service{
		cfg:      cfg,
		conn:     conn,
		respConn: respConn,
		sender:   NewSender(respConn, codec, recorder),
		recorder: recorder,
	}, nil
}

// listenUDP 绑定 UDP 套接字
func listenUDP(addr string) (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", laddr)
}

// Sender 返回出站适配器
func (s *Service) Sender() *Sender {
	return s.sender
}

// LocalAddr 返回请求监听端点
func (s *Service) LocalAddr() netip.AddrPort {
	return localAddrPort(s.conn)
}

// ResponseAddr 返回响应发送端点
func (s *Service) ResponseAddr() netip.AddrPort {
	return localAddrPort(s.respConn)
}

func localAddrPort(conn *net.UDPConn) netip.AddrPort {
	ap := conn.LocalAddr().(*net.UDPAddr).AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// Start 开始读取请求并投递给 poster
func (s *Service) Start(poster coordinator.Poster) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	l := &Listener{
		conn:       s.conn,
		poster:     poster,
		recorder:   s.recorder,
		maxIDLen:   s.cfg.MaxIdentifierLen,
		bufferSize: s.cfg.ReadBufferSize,
	}
	if l.bufferSize <= s.cfg.MaxIdentifierLen {
		l.bufferSize = s.cfg.MaxIdentifierLen + 1
	}
	if s.cfg.EnableSTUN {
		// STUN 应答必须从请求到达的套接字发出
		l.stun = newSTUNResponder(s.conn, s.cfg.STUNSoftware)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := l.Serve(); err != nil {
			log.Error("listener stopped", "err", err)
		}
	}()

	log.Info("udp listener started", "addr", s.LocalAddr().String())
	return nil
}

// Close 关闭套接字并等待读取协程退出
func (s *Service) Close() error {
	err := s.conn.Close()
	if s.respConn != s.conn {
		err = multierr.Append(err, s.respConn.Close())
	}
	s.wg.Wait()
	return err
}
