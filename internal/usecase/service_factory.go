package usecase

import (
	"browser-agent/internal/ports"
	"browser-agent/internal/usecase/adapters"
)

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreateInteractionService() ports.InteractionService {
	return NewInteractionService(InteractionServiceParams{
		Config:    f.deps.Config,
		Logger:    f.deps.Logger,
		Browser:   f.deps.Browser,
		Registry:  f.deps.Registry,
		Gate:      f.deps.Gate,
		Resolver:  f.deps.Resolver,
		Executor:  f.deps.Executor,
		Runner:    f.deps.Runner,
		Confirmer: f.deps.Confirmer,
	})
}

func (f *serviceFactory) CreateBrowserService() adapters.BrowserService {
	return f.deps.Browser
}
