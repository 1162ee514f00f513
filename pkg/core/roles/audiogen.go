package roles

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/models"
)

// AudioGenerator produces the audio bundle for a scene according to its
// audio tier.
type AudioGenerator struct {
	provider providers.AudioProvider
	voiceID  string
	log      *zap.Logger
}

func NewAudioGenerator(provider providers.AudioProvider, voiceID string, log *zap.Logger) *AudioGenerator {
	return &AudioGenerator{provider: provider, voiceID: voiceID, log: ensureLogger(log)}
}

// GenerateSceneAudio applies the tier gates: NONE yields an empty bundle,
// MUSIC_ONLY picks a stock track, SIMPLE_OVERLAY adds voiceover,
// TIME_SYNCED adds the per-word timing map, FULL_PRODUCTION adds SFX.
func (a *AudioGenerator) GenerateSceneAudio(ctx context.Context, scene models.Scene, tier models.AudioTier) (*models.SceneAudio, error) {
	audio := &models.SceneAudio{SceneID: scene.SceneID, Tier: tier}
	if tier == models.AudioNone {
		return audio, nil
	}

	audio.MusicURL = musicTrack(scene)

	if tier == models.AudioMusicOnly {
		return audio, nil
	}

	if scene.VoiceoverText != "" {
		speech, err := a.provider.GenerateSpeech(ctx, scene.VoiceoverText, a.voiceID)
		if err != nil {
			return nil, err
		}
		audio.VoiceoverURL = fmt.Sprintf("audio://voiceover/%s.%s", scene.SceneID, speech.Format)
		audio.DurationSec = speech.DurationSec
		audio.Cost = speech.Cost
	}

	if tier == models.AudioTimeSynced || tier == models.AudioFullProduction {
		audio.VoiceoverMap = uniformWordTimings(scene.VoiceoverText, audio.DurationSec)
	}
	if tier == models.AudioFullProduction {
		for i, cue := range scene.SFXCues {
			audio.SFXURLs = append(audio.SFXURLs, fmt.Sprintf("audio://sfx/%s_%d_%s", scene.SceneID, i, slug(cue)))
		}
	}
	return audio, nil
}

// uniformWordTimings spreads the words evenly across the estimated duration.
func uniformWordTimings(text string, duration float64) []models.WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 || duration <= 0 {
		return nil
	}
	per := duration / float64(len(words))
	timings := make([]models.WordTiming, len(words))
	for i, w := range words {
		timings[i] = models.WordTiming{
			Word:     w,
			StartSec: float64(i) * per,
			EndSec:   float64(i+1) * per,
		}
	}
	return timings
}

// musicTrack picks a stock library track keyed by the scene's music
// transition hint.
func musicTrack(scene models.Scene) string {
	mood := scene.MusicTransition
	if mood == "" {
		mood = "ambient"
	}
	return fmt.Sprintf("library://music/%s", slug(mood))
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
