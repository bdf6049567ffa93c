package resolver

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/fakebrowser"
	"browser-agent/pkg/apperr"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver() *Resolver {
	return NewResolver(Params{Logger: zap.NewNop()})
}

func visible(info entity.ElementInfo) entity.ElementInfo {
	info.Visible = true
	info.Enabled = true

	return info
}

func TestResolve_Tiers(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(visible(entity.ElementInfo{Tag: "a", Role: "link", Name: "Search tips"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Role: "button", Name: "Search"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "input", Role: "textbox", Placeholder: "Email address"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Role: "button", Text: "Add to wishlist now"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Role: "button", Name: "Settings"}))

	tests := []struct {
		description string
		role        string
		wantRef     string
		wantTier    Tier
	}{
		{description: "Search", wantRef: "e2", wantTier: TierExactName},
		{description: "email address", wantRef: "e3", wantTier: TierExactLabel},
		{description: "wishlist", wantRef: "e4", wantTier: TierSubstring},
		{description: "the Settings button", wantRef: "e5", wantTier: TierSubstring},
		{description: "now add wishlist", wantRef: "e4", wantTier: TierAllWords},
		{description: "sttngs", wantRef: "e5", wantTier: TierFuzzy},
	}

	r := newTestResolver()

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), main, tt.description, tt.role)
			require.NoError(t, err)
			require.NotNil(t, res)

			assert.Equal(t, tt.wantRef, res.Info.Ref)
			assert.Equal(t, tt.wantTier, res.Tier)
			assert.NotNil(t, res.Element)
		})
	}
}

func TestResolve_RolePreferred(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(visible(entity.ElementInfo{Tag: "a", Role: "link", Name: "Login"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Role: "button", Name: "Login"}))

	r := newTestResolver()

	res, err := r.Resolve(context.Background(), main, "login", "button")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "e2", res.Info.Ref)

	res, err = r.Resolve(context.Background(), main, "login", "")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "e1", res.Info.Ref, "document order without a role hint")
}

func TestResolve_RoleFallsBackToAllCandidates(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(visible(entity.ElementInfo{Tag: "div", Role: "generic", Text: "Continue"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Role: "button", Name: "Cancel"}))

	res, err := newTestResolver().Resolve(context.Background(), main, "Continue", "button")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "e1", res.Info.Ref)
}

func TestResolve_SkipsHiddenAndDisabled(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(entity.ElementInfo{Tag: "button", Name: "Submit", Visible: false, Enabled: true})
	main.AddElement(entity.ElementInfo{Tag: "button", Name: "Submit", Visible: true, Enabled: false})
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Name: "Submit"}))

	res, err := newTestResolver().Resolve(context.Background(), main, "Submit", "")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "e3", res.Info.Ref)
}

func TestResolve_OnlyHiddenIsNotFound(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(entity.ElementInfo{Tag: "button", Name: "Submit", Visible: false, Enabled: true})

	res, err := newTestResolver().Resolve(context.Background(), main, "Submit", "")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolve_FuzzyOnlyWithoutSubstring(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Name: "Search catalog"}))
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Name: "srch"}))

	r := newTestResolver()

	res, err := r.Resolve(context.Background(), main, "srch", "")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "e2", res.Info.Ref)
	assert.Equal(t, TierExactName, res.Tier)

	res, err = r.Resolve(context.Background(), main, "scat", "")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "e1", res.Info.Ref)
	assert.Equal(t, TierFuzzy, res.Tier)
}

func TestResolve_NotFound(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Name: "Home"}))

	res, err := newTestResolver().Resolve(context.Background(), main, "checkout xyz", "")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolve_Errors(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	foreign := page.AddFrame(page.Main(), "pay", "https://pay.other.com").CrossOrigin()

	r := newTestResolver()

	_, err := r.Resolve(context.Background(), page.Main(), "   ", "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))

	_, err = r.Resolve(context.Background(), foreign, "Pay", "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeFrameInaccessible, apperr.CodeOf(err))
}

func TestCandidates(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	main := page.Main()
	main.AddElement(visible(entity.ElementInfo{Tag: "button", Role: "button", Name: "Add to cart"}))
	main.AddElement(entity.ElementInfo{Tag: "button", Role: "button", Name: "Add to wishlist"})
	main.AddElement(visible(entity.ElementInfo{Tag: "a", Role: "link", Name: "Cart"}))

	tests := []struct {
		name          string
		query         string
		includeHidden bool
		wantRefs      []string
	}{
		{name: "everything visible", query: "", wantRefs: []string{"e1", "e3"}},
		{name: "everything", query: "", includeHidden: true, wantRefs: []string{"e1", "e2", "e3"}},
		{name: "substring", query: "cart", wantRefs: []string{"e1", "e3"}},
		{name: "hidden match", query: "wishlist", includeHidden: true, wantRefs: []string{"e2"}},
		{name: "no fuzzy hits", query: "crt", wantRefs: nil},
	}

	r := newTestResolver()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := r.Candidates(context.Background(), main, tt.query, tt.includeHidden)
			require.NoError(t, err)

			var refs []string
			for _, c := range found {
				refs = append(refs, c.Ref)
			}

			assert.Equal(t, tt.wantRefs, refs)
		})
	}
}

func TestCandidates_CrossOrigin(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	ads := page.AddFrame(page.Main(), "ads", "https://ads.example.net").CrossOrigin()

	_, err := newTestResolver().Candidates(context.Background(), ads, "", false)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeFrameInaccessible, apperr.CodeOf(err))
}
