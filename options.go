package rendezvous

import (
	"errors"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
)

// Option 服务配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// clock 事件循环时钟（测试中替换为 clock.Mock）
	clock clock.Clock

	// verboseFx 输出 Fx 依赖注入日志
	verboseFx bool

	// userFxOptions 额外的 Fx 选项
	userFxOptions []fx.Option
}

func defaultOptions() *options {
	return &options{
		clock: clock.New(),
	}
}

// WithClock 替换事件循环使用的时钟
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		if clk == nil {
			return errors.New("clock must not be nil")
		}
		o.clock = clk
		return nil
	}
}

// WithVerboseFx 输出 Fx 依赖注入日志
func WithVerboseFx(verbose bool) Option {
	return func(o *options) error {
		o.verboseFx = verbose
		return nil
	}
}

// WithFxOptions 追加 Fx 选项，用于注入自定义组件
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
