package providers

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"agentic_studio/pkg/models"
)

// SpeechResult is one synthesized voiceover clip.
type SpeechResult struct {
	Audio       []byte            `json:"-"`
	Format      string            `json:"format"`
	DurationSec float64           `json:"duration_sec,omitempty"`
	SampleRate  int               `json:"sample_rate,omitempty"`
	Cost        float64           `json:"cost"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// AudioProvider synthesizes speech from narration text.
type AudioProvider interface {
	Name() string
	GenerateSpeech(ctx context.Context, text, voiceID string) (*SpeechResult, error)
}

// OpenAI TTS pricing per character.
const ttsCostPerChar = 0.000015

// speechWordsPerMinute approximates TTS pacing for duration estimates.
const speechWordsPerMinute = 150.0

// OpenAITTSProvider synthesizes speech through the OpenAI audio API.
type OpenAITTSProvider struct {
	client *openai.Client
}

var _ AudioProvider = (*OpenAITTSProvider)(nil)

func NewOpenAITTSProvider(apiKey string) (*OpenAITTSProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	return &OpenAITTSProvider{client: openai.NewClient(apiKey)}, nil
}

func (p *OpenAITTSProvider) Name() string { return "openai_tts" }

func (p *OpenAITTSProvider) GenerateSpeech(ctx context.Context, text, voiceID string) (*SpeechResult, error) {
	voice := openai.VoiceAlloy
	if voiceID != "" {
		voice = openai.SpeechVoice(voiceID)
	}

	res, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Retryable: true, Err: err}
	}
	defer res.Close()

	audio, err := io.ReadAll(res)
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Err: fmt.Errorf("failed to read speech stream: %w", err)}
	}
	return &SpeechResult{
		Audio:       audio,
		Format:      "mp3",
		DurationSec: EstimateSpeechDuration(text),
		Cost:        float64(len(text)) * ttsCostPerChar,
		Metadata:    map[string]string{"voice": string(voice)},
	}, nil
}

// EstimateSpeechDuration approximates narration length from word count.
func EstimateSpeechDuration(text string) float64 {
	return float64(len(strings.Fields(text))) / speechWordsPerMinute * 60
}

// MockAudioProvider fabricates deterministic speech results for dry runs.
type MockAudioProvider struct{}

var _ AudioProvider = (*MockAudioProvider)(nil)

func (p *MockAudioProvider) Name() string { return "mock_tts" }

func (p *MockAudioProvider) GenerateSpeech(ctx context.Context, text, voiceID string) (*SpeechResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SpeechResult{
		Audio:       []byte("mock-audio"),
		Format:      "mp3",
		DurationSec: EstimateSpeechDuration(text),
		Cost:        0,
		Metadata:    map[string]string{"voice": voiceID},
	}, nil
}
