package resolver

import (
	"testing"

	"github.com/pevans/coverfetch/scraper"
	"github.com/stretchr/testify/assert"
)

// TestUpgradeResolution verifies parameters are rewritten or appended
func TestUpgradeResolution(t *testing.T) {
	target := scraper.DefaultUpgrade()

	tests := []struct {
		name      string
		candidate string
		expected  string
	}{
		{
			name:      "appends missing parameters",
			candidate: "https://images.unsplash.com/photo-1",
			expected:  "https://images.unsplash.com/photo-1?auto=format&fit=crop&q=80&w=1600",
		},
		{
			name:      "replaces existing width and keeps others",
			candidate: "https://images.unsplash.com/photo-1?ixlib=rb-4.0.3&w=400&q=60",
			expected:  "https://images.unsplash.com/photo-1?auto=format&fit=crop&ixlib=rb-4.0.3&q=80&w=1600",
		},
		{
			name:      "rewrites long-form keys in place",
			candidate: "https://cdn.example.com/img.jpg?width=300&quality=50",
			expected:  "https://cdn.example.com/img.jpg?auto=format&fit=crop&quality=80&width=1600",
		},
		{
			name:      "short form wins over long form",
			candidate: "https://cdn.example.com/img.jpg?w=300&width=300",
			expected:  "https://cdn.example.com/img.jpg?auto=format&fit=crop&q=80&w=1600&width=300",
		},
		{
			name:      "relative URL unchanged",
			candidate: "/photo-1?w=400",
			expected:  "/photo-1?w=400",
		},
		{
			name:      "unparseable URL unchanged",
			candidate: "http://[::1",
			expected:  "http://[::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UpgradeResolution(tt.candidate, target))
		})
	}
}

// TestUpgradeResolution_Idempotent verifies a second upgrade changes nothing
func TestUpgradeResolution_Idempotent(t *testing.T) {
	target := scraper.DefaultUpgrade()
	candidates := []string{
		"https://images.unsplash.com/photo-1?ixlib=rb-4.0.3&w=400",
		"https://cdn.example.com/img.jpg?width=300",
		"https://images.unsplash.com/photo-2",
	}

	for _, candidate := range candidates {
		once := UpgradeResolution(candidate, target)
		assert.Equal(t, once, UpgradeResolution(once, target), candidate)
	}
}

// TestUpgradeResolution_ZeroTarget verifies unset target fields are left
// alone
func TestUpgradeResolution_ZeroTarget(t *testing.T) {
	got := UpgradeResolution("https://images.unsplash.com/photo-1?w=400", scraper.UpgradeConfig{Quality: 90})
	assert.Equal(t, "https://images.unsplash.com/photo-1?q=90&w=400", got)
}

// TestResolverUpgrade verifies the resolver applies its configured target
func TestResolverUpgrade(t *testing.T) {
	cfg := scraper.NewConfig()
	cfg.Upgrade.Width = 2400
	r := New(&fakeSource{}, cfg)

	assert.Equal(t, "https://images.unsplash.com/photo-1?auto=format&fit=crop&q=80&w=2400",
		r.Upgrade("https://images.unsplash.com/photo-1"))
}
