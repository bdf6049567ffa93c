package console

import (
	"browser-agent/internal/config"
	"browser-agent/internal/entity"
	"browser-agent/pkg/logg"
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const confirmerName = "Confirmer"

// Confirmer asks the operator on the terminal. In deny mode it declines
// every request without reading input.
type Confirmer struct {
	term   *Terminal
	logger *zap.Logger
	deny   bool
}

type ConfirmerParams struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Terminal *Terminal
}

func NewConfirmer(params ConfirmerParams) *Confirmer {
	return &Confirmer{
		term:   params.Terminal,
		logger: params.Logger.With(zap.String(logg.Layer, confirmerName)),
		deny:   params.Config.SecurityConfig.ConfirmMode == config.ConfirmModeDeny,
	}
}

func (c *Confirmer) Confirm(ctx context.Context, req entity.ConfirmationRequest) (entity.ConfirmationResult, error) {
	const op = "Confirm"
	logger := c.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Description, req.ActionDescription),
		zap.String("action_type", string(req.Check.ActionType)),
	)

	if c.deny {
		logger.Info("Confirmation denied by configuration")
		return entity.ConfirmationDenied, nil
	}

	if err := ctx.Err(); err != nil {
		return entity.ConfirmationCancelled, nil
	}

	c.term.Println(renderConfirmation(req))
	c.term.Printf("Proceed? [y/N]: ")

	answer, err := c.term.ReadLine()
	if err != nil {
		c.term.Println()
		logger.Info("Confirmation cancelled", zap.Error(err))

		return entity.ConfirmationCancelled, nil
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		logger.Info("Action confirmed")
		return entity.ConfirmationConfirmed, nil
	default:
		logger.Info("Action denied")
		return entity.ConfirmationDenied, nil
	}
}
