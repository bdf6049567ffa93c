package adapters

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/frames"
	"browser-agent/internal/ports"
	"browser-agent/internal/resolver"
	"browser-agent/internal/retry"
	"context"
	"time"
)

type FrameRegistry interface {
	Enumerate(ctx context.Context, page ports.Page, includeInaccessible bool) (*frames.Snapshot, error)
	WaitForDynamicFrames(ctx context.Context, page ports.Page, expectedMin *int, timeout, poll time.Duration) (*frames.Snapshot, error)
	FrameContent(ctx context.Context, page ports.Page, identifier string, kind entity.FrameContentKind, maxLength int) (*entity.FrameContent, error)
}

type SecurityGate interface {
	Check(ctx context.Context, description string, elementContext, pageContext map[string]string) entity.SecurityCheck
	CheckPage(pageContext map[string]string) []entity.SecurityCheck
}

type ElementResolver interface {
	Resolve(ctx context.Context, frame ports.Frame, description, role string) (*resolver.Resolution, error)
	Candidates(ctx context.Context, frame ports.Frame, query string, includeHidden bool) ([]entity.ElementInfo, error)
}

type ActionExecutor interface {
	Perform(ctx context.Context, el ports.Element, req entity.InteractionRequest) error
	PerformAtCoordinates(ctx context.Context, page ports.Page, el ports.Element, req entity.InteractionRequest) error
}

type RetryRunner interface {
	Run(ctx context.Context, chain *retry.Chain, fn retry.AttemptFunc) (*entity.InteractionAttempt, error)
}

type BrowserService interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	History(ctx context.Context, action entity.HistoryAction) error
	Page(ctx context.Context) (ports.Page, error)
	IsReady() bool
}
