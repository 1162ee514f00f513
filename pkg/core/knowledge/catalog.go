// Package knowledge tracks what the production backends can actually do.
// The Producer feeds a rendered summary of this catalog into its planning
// prompt so pilot tiers line up with real provider capabilities.
package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"agentic_studio/pkg/models"
)

// ProviderProfile describes one generation backend.
type ProviderProfile struct {
	Name           string                  `json:"name"`
	Tiers          []models.ProductionTier `json:"tiers"`
	MaxClipSeconds float64                 `json:"max_clip_seconds"`
	SupportsChain  bool                    `json:"supports_chain"`
	Strengths      []string                `json:"strengths,omitempty"`
	Limitations    []string                `json:"limitations,omitempty"`
}

// Catalog is an in-memory provider registry. Safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	profiles map[string]*ProviderProfile
}

func NewCatalog() *Catalog {
	return &Catalog{profiles: make(map[string]*ProviderProfile)}
}

// Register adds or replaces a provider profile.
func (c *Catalog) Register(p *ProviderProfile) error {
	if p.Name == "" {
		return fmt.Errorf("provider profile needs a name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[p.Name] = p
	return nil
}

// Get retrieves a profile by name.
func (c *Catalog) Get(name string) (*ProviderProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[name]
	return p, ok
}

// ForTier lists providers that can serve a tier, sorted by name.
func (c *Catalog) ForTier(tier models.ProductionTier) []*ProviderProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*ProviderProfile
	for _, p := range c.profiles {
		for _, t := range p.Tiers {
			if t == tier {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summary renders the catalog as prompt-ready text, one provider per block.
func (c *Catalog) Summary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		p := c.profiles[name]
		tiers := make([]string, len(p.Tiers))
		for i, t := range p.Tiers {
			tiers[i] = string(t)
		}
		fmt.Fprintf(&b, "- %s: tiers %s, clips up to %.0fs", p.Name, strings.Join(tiers, "/"), p.MaxClipSeconds)
		if p.SupportsChain {
			b.WriteString(", supports scene chaining")
		}
		if len(p.Strengths) > 0 {
			fmt.Fprintf(&b, "; strong at %s", strings.Join(p.Strengths, ", "))
		}
		if len(p.Limitations) > 0 {
			fmt.Fprintf(&b, "; limits: %s", strings.Join(p.Limitations, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DefaultCatalog describes the backends named in the tier pricing table.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	profiles := []*ProviderProfile{
		{
			Name:           "dalle",
			Tiers:          []models.ProductionTier{models.TierStaticImages},
			MaxClipSeconds: 0,
			Strengths:      []string{"stills", "diagrams"},
			Limitations:    []string{"no motion, pair with ken burns"},
		},
		{
			Name:           "kenburns",
			Tiers:          []models.ProductionTier{models.TierStaticImages},
			MaxClipSeconds: 30,
			Strengths:      []string{"pan and zoom over stills"},
		},
		{
			Name:           "luma",
			Tiers:          []models.ProductionTier{models.TierMotionGraphics, models.TierAnimated},
			MaxClipSeconds: 10,
			SupportsChain:  true,
			Strengths:      []string{"abstract motion", "stylized animation"},
			Limitations:    []string{"short clips"},
		},
		{
			Name:           "runway",
			Tiers:          []models.ProductionTier{models.TierAnimated, models.TierPhotorealistic},
			MaxClipSeconds: 16,
			SupportsChain:  true,
			Strengths:      []string{"realistic footage", "camera moves"},
		},
	}
	for _, p := range profiles {
		_ = c.Register(p)
	}
	return c
}
