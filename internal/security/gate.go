package security

import (
	"browser-agent/internal/config"
	"browser-agent/internal/entity"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	gateName   = "SecurityGate"
	gateTracer = "security.gate"

	singleWordWeight = 0.6
	phraseWeight     = 0.8
	pageSignalWeight = 0.5
)

// Element context keys read by the gate.
const (
	ContextType         = "type"
	ContextRole         = "role"
	ContextText         = "text"
	ContextName         = "name"
	ContextLabel        = "aria-label"
	ContextAutocomplete = "autocomplete"
	ContextFieldName    = "field-name"

	PageURL   = "url"
	PageTitle = "title"
)

var prompts = map[entity.ActionType]string{
	entity.ActionTypeDelete:  "This will DELETE data. Continue? (yes/no)",
	entity.ActionTypeSend:    "This will SEND or PUBLISH content. Continue? (yes/no)",
	entity.ActionTypePayment: "This is a PAYMENT action. Confirm purchase? (yes/no)",
}

type blockNotice struct {
	reason     string
	suggestion string
}

var blocks = map[entity.ActionType]blockNotice{
	entity.ActionTypePassword: {
		reason:     "password and login automation is blocked",
		suggestion: "Enter the password yourself in the browser window, then continue the task.",
	},
	entity.ActionTypeMfa: {
		reason:     "multi-factor authentication automation is blocked",
		suggestion: "Enter the verification code yourself in the browser window, then continue the task.",
	},
}

type Gate struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	threshold float64

	categories  []category
	paymentPage []indicator
	loginPage   []indicator
}

type Params struct {
	fx.In

	Logger *zap.Logger
	Config *config.Config
}

func NewGate(params Params) (*Gate, error) {
	set, err := LoadPatterns(params.Config.SecurityConfig.PatternsFile)
	if err != nil {
		return nil, err
	}

	return New(params.Logger, set, params.Config.SecurityConfig.ConfidenceThreshold)
}

func New(logger *zap.Logger, set *PatternSet, threshold float64) (*Gate, error) {
	categories, err := compileCategories(set)
	if err != nil {
		return nil, err
	}

	paymentPage, err := compileIndicators(set.PageIndicators[indicatorPayment])
	if err != nil {
		return nil, err
	}

	loginPage, err := compileIndicators(set.PageIndicators[indicatorLogin])
	if err != nil {
		return nil, err
	}

	return &Gate{
		logger:      logger.With(zap.String(logg.Layer, gateName)),
		tracer:      otel.Tracer(gateTracer),
		threshold:   threshold,
		categories:  categories,
		paymentPage: paymentPage,
		loginPage:   loginPage,
	}, nil
}

// ElementContext describes a resolved element with the keys Check reads.
// The element's own type, role and autocomplete hint override the caller's;
// textual keys keep both.
func ElementContext(info entity.ElementInfo, base map[string]string) map[string]string {
	ec := make(map[string]string, len(base)+7)
	for k, v := range base {
		ec[k] = v
	}

	for k, v := range map[string]string{
		ContextType:         info.InputType,
		ContextRole:         info.Role,
		ContextAutocomplete: info.Autocomplete,
	} {
		if v != "" {
			ec[k] = v
		}
	}

	for k, v := range map[string]string{
		ContextText:      info.Text,
		ContextName:      info.Name,
		ContextLabel:     strings.TrimSpace(info.Label + " " + info.Placeholder),
		ContextFieldName: info.FieldName,
	} {
		if v != "" && v != ec[k] {
			ec[k] = strings.TrimSpace(ec[k] + " " + v)
		}
	}

	return ec
}

// Check classifies an intended action. It has no side effects besides
// logging; the caller decides how to act on the result.
func (g *Gate) Check(ctx context.Context, description string, elementContext, pageContext map[string]string) entity.SecurityCheck {
	const op = "Check"
	logger := g.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Description, description),
	)

	_, step := tracing.StartSpan(ctx, g.tracer, logger, op)

	check := g.classify(description, elementContext, pageContext)

	step.SetAttributes(
		attribute.String("security.action_type", string(check.ActionType)),
		attribute.Bool("security.blocked", check.IsBlocked),
		attribute.Bool("security.requires_confirmation", check.RequiresConfirmation),
		attribute.Float64("security.confidence", check.Confidence),
	)
	step.End(nil)

	if check.ActionType != entity.ActionTypeSafe && check.Confidence < g.threshold {
		logger.Warn("Low-confidence security classification",
			zap.String("action_type", string(check.ActionType)),
			zap.Float64("confidence", check.Confidence),
			zap.Float64("threshold", g.threshold),
		)
	}

	if check.IsBlocked || check.RequiresConfirmation {
		logger.Info("Sensitive action detected",
			zap.String("action_type", string(check.ActionType)),
			zap.Bool("blocked", check.IsBlocked),
			zap.Strings("matched", check.MatchedPatterns),
		)
	}

	return check
}

func (g *Gate) classify(description string, elementContext, pageContext map[string]string) entity.SecurityCheck {
	elementType := strings.ToLower(elementContext[ContextType])
	elementRole := strings.ToLower(elementContext[ContextRole])

	if elementType == "password" || strings.Contains(elementRole, "password") {
		return blocked(entity.ActionTypePassword, 1, []string{"password field"})
	}

	if strings.EqualFold(elementContext[ContextAutocomplete], "one-time-code") {
		return blocked(entity.ActionTypeMfa, 1, []string{"one-time-code field"})
	}

	haystack := strings.Join(strings.Fields(strings.ToLower(strings.Join([]string{
		description,
		elementContext[ContextText],
		elementContext[ContextName],
		elementContext[ContextLabel],
		elementContext[ContextFieldName],
	}, " "))), " ")

	for _, cat := range g.categories {
		matched, weights := cat.match(haystack)
		if len(matched) == 0 {
			continue
		}

		if cat.action == entity.ActionTypePayment && g.isPaymentPage(pageContext) != "" {
			weights = append(weights, pageSignalWeight)
		}

		confidence := noisyOr(weights)

		switch cat.action {
		case entity.ActionTypePassword, entity.ActionTypeMfa:
			return blocked(cat.action, confidence, matched)
		default:
			return entity.SecurityCheck{
				ActionType:           cat.action,
				RequiresConfirmation: true,
				Confidence:           confidence,
				MatchedPatterns:      matched,
				ConfirmationPrompt:   prompts[cat.action],
			}
		}
	}

	return entity.SecurityCheck{
		ActionType: entity.ActionTypeSafe,
		Confidence: 1,
	}
}

// CheckPage reports warnings about the page itself: payment pages and
// login pages. Login pages are reported as blocked.
func (g *Gate) CheckPage(pageContext map[string]string) []entity.SecurityCheck {
	var warnings []entity.SecurityCheck

	if hit := g.isPaymentPage(pageContext); hit != "" {
		warnings = append(warnings, entity.SecurityCheck{
			ActionType:      entity.ActionTypePayment,
			Confidence:      pageSignalWeight,
			MatchedPatterns: []string{hit},
			Reason:          fmt.Sprintf("currently on a payment page (%s)", hit),
		})
	}

	url := strings.ToLower(pageContext[PageURL])
	for _, ind := range g.loginPage {
		if ind.g.Match(url) {
			check := blocked(entity.ActionTypePassword, pageSignalWeight, []string{ind.text})
			check.Reason = "login page detected, manual authentication required"
			warnings = append(warnings, check)

			break
		}
	}

	return warnings
}

func (g *Gate) isPaymentPage(pageContext map[string]string) string {
	url := strings.ToLower(pageContext[PageURL])
	title := strings.ToLower(pageContext[PageTitle])

	for _, ind := range g.paymentPage {
		if ind.g.Match(url) || ind.g.Match(title) {
			return ind.text
		}
	}

	return ""
}

func (c category) match(haystack string) ([]string, []float64) {
	var (
		matched []string
		weights []float64
	)

	for _, p := range c.patterns {
		if p.match(haystack) {
			matched = append(matched, p.text)
			weights = append(weights, p.weight)
		}
	}

	return matched, weights
}

func blocked(action entity.ActionType, confidence float64, matched []string) entity.SecurityCheck {
	notice := blocks[action]

	return entity.SecurityCheck{
		ActionType:      action,
		IsBlocked:       true,
		Confidence:      confidence,
		MatchedPatterns: matched,
		Reason:          notice.reason,
		Suggestion:      notice.suggestion,
	}
}

// noisyOr combines independent signal weights into one score in [0,1].
func noisyOr(weights []float64) float64 {
	miss := 1.0
	for _, w := range weights {
		miss *= 1 - w
	}

	return 1 - miss
}
