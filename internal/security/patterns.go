package security

import (
	"browser-agent/internal/entity"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// PatternSet is the externally tunable data behind the gate.
type PatternSet struct {
	Categories     map[string][]string `yaml:"categories"`
	PageIndicators map[string][]string `yaml:"page_indicators"`
}

const (
	indicatorPayment = "payment"
	indicatorLogin   = "login"
)

// precedence lists categories from most to least restrictive.
var precedence = []entity.ActionType{
	entity.ActionTypePassword,
	entity.ActionTypeMfa,
	entity.ActionTypePayment,
	entity.ActionTypeDelete,
	entity.ActionTypeSend,
}

// LoadPatterns parses the embedded pattern lists and, when path is set,
// replaces every category the file defines.
func LoadPatterns(path string) (*PatternSet, error) {
	set, err := ParsePatterns(defaultPatterns)
	if err != nil {
		return nil, fmt.Errorf("parse embedded patterns: %w", err)
	}

	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}

	override, err := ParsePatterns(data)
	if err != nil {
		return nil, fmt.Errorf("parse patterns file %s: %w", path, err)
	}

	set.merge(override)

	return set, nil
}

func ParsePatterns(data []byte) (*PatternSet, error) {
	var set PatternSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}

	for name := range set.Categories {
		if !knownCategory(name) {
			return nil, fmt.Errorf("unknown category %q", name)
		}
	}

	return &set, nil
}

func (s *PatternSet) merge(other *PatternSet) {
	if s.Categories == nil {
		s.Categories = make(map[string][]string)
	}

	if s.PageIndicators == nil {
		s.PageIndicators = make(map[string][]string)
	}

	for name, patterns := range other.Categories {
		s.Categories[name] = patterns
	}

	for name, indicators := range other.PageIndicators {
		s.PageIndicators[name] = indicators
	}
}

func knownCategory(name string) bool {
	for _, action := range precedence {
		if string(action) == name {
			return true
		}
	}

	return false
}

type pattern struct {
	text   string
	weight float64
}

type category struct {
	action   entity.ActionType
	patterns []pattern
}

type indicator struct {
	text string
	g    glob.Glob
}

// compilePattern lower-cases the keyword and collapses inner whitespace.
// Matching is a plain substring test, so "newpassword" hits "password".
func compilePattern(text string) (pattern, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return pattern{}, fmt.Errorf("empty pattern")
	}

	weight := singleWordWeight
	if len(words) > 1 {
		weight = phraseWeight
	}

	return pattern{text: strings.Join(words, " "), weight: weight}, nil
}

func (p pattern) match(haystack string) bool {
	return strings.Contains(haystack, p.text)
}

func compileCategories(set *PatternSet) ([]category, error) {
	out := make([]category, 0, len(precedence))

	for _, action := range precedence {
		cat := category{action: action}

		for _, text := range set.Categories[string(action)] {
			if strings.TrimSpace(text) == "" {
				continue
			}

			p, err := compilePattern(text)
			if err != nil {
				return nil, fmt.Errorf("compile %s pattern %q: %w", action, text, err)
			}

			cat.patterns = append(cat.patterns, p)
		}

		out = append(out, cat)
	}

	return out, nil
}

func compileIndicators(globs []string) ([]indicator, error) {
	out := make([]indicator, 0, len(globs))

	for _, text := range globs {
		g, err := glob.Compile(strings.ToLower(text))
		if err != nil {
			return nil, fmt.Errorf("compile indicator %q: %w", text, err)
		}

		out = append(out, indicator{text: strings.Trim(text, "*"), g: g})
	}

	return out, nil
}
