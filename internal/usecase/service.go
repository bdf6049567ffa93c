package usecase

import (
	"browser-agent/internal/config"
	"browser-agent/internal/ports"
	"browser-agent/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Interaction ports.InteractionService
	Browser     adapters.BrowserService
}

type Params struct {
	fx.In

	Logger    *zap.Logger
	Config    *config.Config
	Browser   adapters.BrowserService
	Registry  adapters.FrameRegistry
	Gate      adapters.SecurityGate
	Resolver  adapters.ElementResolver
	Executor  adapters.ActionExecutor
	Runner    adapters.RetryRunner
	Confirmer ports.Confirmer
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Interaction: factory.CreateInteractionService(),
		Browser:     factory.CreateBrowserService(),
	}
}
