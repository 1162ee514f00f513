package knowledge

import (
	"strings"
	"testing"

	"agentic_studio/pkg/models"
)

func TestCatalog_ForTier(t *testing.T) {
	c := DefaultCatalog()

	animated := c.ForTier(models.TierAnimated)
	if len(animated) != 2 {
		t.Fatalf("animated providers = %d, want luma and runway", len(animated))
	}
	if animated[0].Name != "luma" || animated[1].Name != "runway" {
		t.Errorf("animated providers = %s, %s", animated[0].Name, animated[1].Name)
	}

	photo := c.ForTier(models.TierPhotorealistic)
	if len(photo) != 1 || photo[0].Name != "runway" {
		t.Errorf("photorealistic providers = %+v", photo)
	}
}

func TestCatalog_SummaryIsPromptReady(t *testing.T) {
	c := DefaultCatalog()
	s := c.Summary()

	for _, want := range []string{"- luma:", "- runway:", "supports scene chaining", "motion_graphics/animated"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
	// Deterministic ordering keeps planner prompts cache-friendly.
	if s != c.Summary() {
		t.Error("summary not deterministic")
	}
}

func TestCatalog_RegisterValidation(t *testing.T) {
	c := NewCatalog()
	if err := c.Register(&ProviderProfile{}); err == nil {
		t.Fatal("unnamed profile must be rejected")
	}
	if err := c.Register(&ProviderProfile{Name: "pika", Tiers: []models.ProductionTier{models.TierAnimated}}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := c.Get("pika"); !ok {
		t.Error("registered profile not retrievable")
	}
}
