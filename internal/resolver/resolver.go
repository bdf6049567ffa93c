package resolver

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"errors"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	resolverName   = "ElementResolver"
	resolverTracer = "resolver"

	minReverseLabel = 3
)

type Tier int

const (
	TierExactName Tier = iota + 1
	TierExactLabel
	TierSubstring
	TierAllWords
	TierFuzzy
)

var tiers = []Tier{TierExactName, TierExactLabel, TierSubstring, TierAllWords, TierFuzzy}

func (t Tier) String() string {
	switch t {
	case TierExactName:
		return "exact_name"
	case TierExactLabel:
		return "exact_label"
	case TierSubstring:
		return "substring"
	case TierAllWords:
		return "all_words"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// Words that describe the kind of element rather than which one.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "on": {}, "in": {}, "of": {}, "to": {},
	"button": {}, "link": {}, "field": {}, "input": {}, "box": {}, "icon": {},
}

type Resolution struct {
	Element ports.Element
	Info    entity.ElementInfo
	Tier    Tier
}

type Resolver struct {
	logger *zap.Logger
	tracer trace.Tracer
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewResolver(params Params) *Resolver {
	return &Resolver{
		logger: params.Logger.With(zap.String(logg.Layer, resolverName)),
		tracer: otel.Tracer(resolverTracer),
	}
}

// Resolve locates one element in frame matching description. When role is
// set, candidates with that role are searched first. The first visible and
// enabled element in document order wins within the strongest matching tier.
// A nil Resolution with a nil error means nothing matched; errors are
// reserved for frames that cannot be read.
func (r *Resolver) Resolve(ctx context.Context, frame ports.Frame, description, role string) (res *Resolution, err error) {
	const op = "Resolve"
	logger := r.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Description, description),
	)

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.String("element.description", description),
		attribute.String("element.role", role),
	)
	defer func() {
		step.End(err)
	}()

	query := normalize(description)
	if query == "" {
		return nil, apperr.InvalidReqError(op, "description", errors.New("element description is empty"))
	}

	candidates, err := frame.CollectElements(ctx)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeFrameInaccessible, err, map[string]any{
			apperr.MetaReason: "collect_elements_failed",
			apperr.MetaStage:  apperr.StageResolve,
		})
	}

	pools := make([][]entity.ElementInfo, 0, 2)
	if role != "" {
		if restricted := withRole(candidates, role); len(restricted) > 0 {
			pools = append(pools, restricted)
		}
	}
	pools = append(pools, candidates)

	for _, pool := range pools {
		for _, tier := range tiers {
			info, ok := firstInteractable(pool, query, tier)
			if !ok {
				continue
			}

			step.AddEvent("element resolved",
				attribute.String("resolver.tier", tier.String()),
				attribute.String("element.ref", info.Ref),
			)
			logger.Debug("Element resolved",
				zap.String("tier", tier.String()),
				zap.String("ref", info.Ref),
				zap.String("tag", info.Tag),
			)

			return &Resolution{
				Element: frame.Element(info.Ref),
				Info:    info,
				Tier:    tier,
			}, nil
		}
	}

	logger.Debug("No matching element", zap.Int("candidates", len(candidates)))

	return nil, nil
}

// Candidates lists the frame's elements matching query by name, label or
// substring, in document order. An empty query matches everything. Hidden
// and disabled elements are dropped unless includeHidden is set.
func (r *Resolver) Candidates(ctx context.Context, frame ports.Frame, query string, includeHidden bool) (found []entity.ElementInfo, err error) {
	const op = "Candidates"
	logger := r.logger.With(zap.String(logg.Operation, op), zap.String(logg.Description, query))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.String("element.query", query),
		attribute.Bool("element.include_hidden", includeHidden),
	)
	defer func() {
		step.End(err)
	}()

	candidates, err := frame.CollectElements(ctx)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeFrameInaccessible, err, map[string]any{
			apperr.MetaReason: "collect_elements_failed",
			apperr.MetaStage:  apperr.StageResolve,
		})
	}

	q := normalize(query)

	for _, c := range candidates {
		if !includeHidden && !c.Interactable() {
			continue
		}

		if q == "" || matchesAny(c, q) {
			found = append(found, c)
		}
	}

	step.SetAttributes(attribute.Int("element.found", len(found)))

	return found, nil
}

func matchesAny(c entity.ElementInfo, query string) bool {
	for _, tier := range tiers {
		if tier != TierFuzzy && matches(c, query, tier) {
			return true
		}
	}

	return false
}

func withRole(candidates []entity.ElementInfo, role string) []entity.ElementInfo {
	var out []entity.ElementInfo

	for _, c := range candidates {
		if strings.EqualFold(c.Role, role) {
			out = append(out, c)
		}
	}

	return out
}

func firstInteractable(pool []entity.ElementInfo, query string, tier Tier) (entity.ElementInfo, bool) {
	if tier == TierFuzzy {
		return fuzzyMatch(pool, query)
	}

	for _, c := range pool {
		if c.Interactable() && matches(c, query, tier) {
			return c, true
		}
	}

	return entity.ElementInfo{}, false
}

func matches(c entity.ElementInfo, query string, tier Tier) bool {
	switch tier {
	case TierExactName:
		return c.Name != "" && normalize(c.Name) == query
	case TierExactLabel:
		for _, l := range c.Labels() {
			if normalize(l) == query {
				return true
			}
		}
	case TierSubstring:
		for _, l := range c.Labels() {
			label := normalize(l)

			if strings.Contains(label, query) {
				return true
			}

			if len(label) >= minReverseLabel && containsPhrase(query, label) {
				return true
			}
		}
	case TierAllWords:
		words := significantWords(query)
		if len(words) == 0 {
			return false
		}

		for _, l := range c.Labels() {
			if containsAll(normalize(l), words) {
				return true
			}
		}
	}

	return false
}

// fuzzyMatch scores subsequence matches of the query against every label and
// returns the best interactable candidate; equal scores keep document order.
func fuzzyMatch(pool []entity.ElementInfo, query string) (entity.ElementInfo, bool) {
	var (
		labels []string
		owner  []int
	)

	for i, c := range pool {
		if !c.Interactable() {
			continue
		}

		for _, l := range c.Labels() {
			labels = append(labels, normalize(l))
			owner = append(owner, i)
		}
	}

	found := fuzzy.FindNoSort(query, labels)
	if len(found) == 0 {
		return entity.ElementInfo{}, false
	}

	best := found[0]
	for _, m := range found[1:] {
		if m.Score > best.Score {
			best = m
		}
	}

	return pool[owner[best.Index]], true
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`"`, " ", "'", " ").Replace(s)

	return strings.Join(strings.Fields(s), " ")
}

func significantWords(query string) []string {
	var out []string

	for _, w := range strings.Fields(query) {
		if _, skip := stopWords[w]; skip {
			continue
		}

		out = append(out, w)
	}

	return out
}

func containsAll(label string, words []string) bool {
	labelWords := make(map[string]struct{})
	for _, w := range strings.Fields(label) {
		labelWords[w] = struct{}{}
	}

	for _, w := range words {
		if _, ok := labelWords[w]; !ok {
			return false
		}
	}

	return true
}

// containsPhrase reports whether phrase occurs in s on word boundaries.
func containsPhrase(s, phrase string) bool {
	return strings.Contains(" "+s+" ", " "+phrase+" ")
}
