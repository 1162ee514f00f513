package roles

import (
	"context"
	"math"
	"strings"
	"testing"

	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/models"
)

func audioScene() models.Scene {
	return models.Scene{
		SceneID:         "scene_3",
		VoiceoverText:   "the deploy finishes and the dashboard turns green",
		MusicTransition: "Upbeat Rise",
		SFXCues:         []string{"keyboard clack", "success chime"},
	}
}

func TestAudioGenerator_TierGates(t *testing.T) {
	gen := NewAudioGenerator(&providers.MockAudioProvider{}, "nova", nil)
	scene := audioScene()

	cases := []struct {
		tier          models.AudioTier
		wantMusic     bool
		wantVoiceover bool
		wantTimings   bool
		wantSFX       int
	}{
		{models.AudioNone, false, false, false, 0},
		{models.AudioMusicOnly, true, false, false, 0},
		{models.AudioSimpleOverlay, true, true, false, 0},
		{models.AudioTimeSynced, true, true, true, 0},
		{models.AudioFullProduction, true, true, true, 2},
	}
	for _, tc := range cases {
		t.Run(string(tc.tier), func(t *testing.T) {
			audio, err := gen.GenerateSceneAudio(context.Background(), scene, tc.tier)
			if err != nil {
				t.Fatalf("GenerateSceneAudio: %v", err)
			}
			if (audio.MusicURL != "") != tc.wantMusic {
				t.Errorf("music url = %q", audio.MusicURL)
			}
			if (audio.VoiceoverURL != "") != tc.wantVoiceover {
				t.Errorf("voiceover url = %q", audio.VoiceoverURL)
			}
			if (len(audio.VoiceoverMap) > 0) != tc.wantTimings {
				t.Errorf("timings = %d entries", len(audio.VoiceoverMap))
			}
			if len(audio.SFXURLs) != tc.wantSFX {
				t.Errorf("sfx = %d, want %d", len(audio.SFXURLs), tc.wantSFX)
			}
		})
	}
}

func TestAudioGenerator_MusicSlug(t *testing.T) {
	gen := NewAudioGenerator(&providers.MockAudioProvider{}, "nova", nil)
	audio, err := gen.GenerateSceneAudio(context.Background(), audioScene(), models.AudioMusicOnly)
	if err != nil {
		t.Fatalf("GenerateSceneAudio: %v", err)
	}
	if audio.MusicURL != "library://music/upbeat_rise" {
		t.Errorf("music url = %q", audio.MusicURL)
	}
}

func TestUniformWordTimings(t *testing.T) {
	timings := uniformWordTimings("one two three four", 8)
	if len(timings) != 4 {
		t.Fatalf("timings = %d, want 4", len(timings))
	}
	for i, wt := range timings {
		if math.Abs(wt.StartSec-float64(i)*2) > 1e-9 || math.Abs(wt.EndSec-float64(i+1)*2) > 1e-9 {
			t.Errorf("word %d spans [%v, %v]", i, wt.StartSec, wt.EndSec)
		}
	}
	if timings[3].EndSec != 8 {
		t.Errorf("last word ends at %v, want 8", timings[3].EndSec)
	}
	if got := uniformWordTimings("", 5); got != nil {
		t.Errorf("empty text timings = %v", got)
	}
	if !strings.HasPrefix(timings[0].Word, "one") {
		t.Errorf("word order lost: %v", timings[0].Word)
	}
}
