package bootstrap

import (
	"browser-agent/internal/browser"
	"browser-agent/internal/config"
	"browser-agent/internal/console"
	"browser-agent/internal/executor"
	"browser-agent/internal/frames"
	"browser-agent/internal/ports"
	"browser-agent/internal/resolver"
	"browser-agent/internal/retry"
	"browser-agent/internal/security"
	"browser-agent/internal/server"
	"browser-agent/internal/usecase"
	"browser-agent/internal/usecase/adapters"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// ServerOverrides carries command-line values that take precedence over the
// environment. Zero values keep the configured setting.
type ServerOverrides struct {
	Transport string
	Port      int
}

func NewConsoleApp() *fx.App {
	return fx.New(
		core(),

		fx.Provide(
			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(2*time.Minute),
	)
}

func NewMCPApp(overrides ServerOverrides) *fx.App {
	return fx.New(
		core(),

		fx.Decorate(func(conf *config.Config) *config.Config {
			return applyServerOverrides(conf, overrides)
		}),

		fx.Provide(
			server.NewServer,
		),

		fx.Invoke(
			runMCP,
		),

		fx.StartTimeout(2*time.Minute),
	)
}

// core provides everything shared by the console and MCP front ends.
func core() fx.Option {
	return fx.Options(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),

		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			browser.NewManager,
			func(m *browser.Manager) ports.BrowserManager { return m },
			func(m *browser.Manager) adapters.BrowserService { return m },

			fx.Annotate(frames.NewRegistry, fx.As(new(adapters.FrameRegistry))),
			fx.Annotate(security.NewGate, fx.As(new(adapters.SecurityGate))),
			fx.Annotate(resolver.NewResolver, fx.As(new(adapters.ElementResolver))),
			fx.Annotate(executor.NewExecutor, fx.As(new(adapters.ActionExecutor))),
			fx.Annotate(retry.NewRunner, fx.As(new(adapters.RetryRunner))),

			console.NewTerminal,
			fx.Annotate(console.NewConfirmer, fx.As(new(ports.Confirmer))),

			usecase.NewUsecase,
		),

		fx.Invoke(func(*sdktrace.TracerProvider) {}),
	)
}

// applyServerOverrides also switches confirmation to deny mode on stdio,
// where stdin belongs to the protocol.
func applyServerOverrides(conf *config.Config, overrides ServerOverrides) *config.Config {
	if overrides.Transport != "" {
		conf.ServerConfig.Transport = overrides.Transport
	}

	if overrides.Port != 0 {
		conf.ServerConfig.Port = overrides.Port
	}

	if conf.ServerConfig.Transport == server.TransportStdio {
		conf.SecurityConfig.ConfirmMode = config.ConfirmModeDeny
	}

	return conf
}
