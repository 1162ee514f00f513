package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"agentic_studio/pkg/models"
)

// FrameExtractor pulls representative frames out of a video for visual QA.
// Frames are returned base64-encoded.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoURL string, n int) ([]string, error)
}

// FFmpegFrameExtractor shells out to ffprobe/ffmpeg. Only used in live mode.
type FFmpegFrameExtractor struct {
	FFmpegPath  string
	FFprobePath string
}

var _ FrameExtractor = (*FFmpegFrameExtractor)(nil)

func NewFFmpegFrameExtractor() *FFmpegFrameExtractor {
	return &FFmpegFrameExtractor{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}
}

func (e *FFmpegFrameExtractor) ExtractFrames(ctx context.Context, videoURL string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", n)
	}

	duration, err := e.probeDuration(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "qa-frames-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	var frames []string
	for i := 0; i < n; i++ {
		// Sample mid-interval so frame 0 is not the fade-in.
		ts := duration * (float64(i) + 0.5) / float64(n)
		out := filepath.Join(tmpDir, fmt.Sprintf("frame_%02d.jpg", i))

		cmd := exec.CommandContext(ctx, e.FFmpegPath,
			"-ss", fmt.Sprintf("%.3f", ts),
			"-i", videoURL,
			"-frames:v", "1",
			"-q:v", "2",
			"-y", out,
		)
		if output, err := cmd.CombinedOutput(); err != nil {
			return nil, &models.ProviderError{
				Provider: "ffmpeg",
				Err:      fmt.Errorf("frame extraction at %.2fs failed: %v: %s", ts, err, output),
			}
		}

		data, err := os.ReadFile(out)
		if err != nil {
			return nil, err
		}
		frames = append(frames, base64.StdEncoding.EncodeToString(data))
	}
	return frames, nil
}

func (e *FFmpegFrameExtractor) probeDuration(ctx context.Context, videoURL string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoURL,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, &models.ProviderError{Provider: "ffprobe", Err: fmt.Errorf("duration probe failed: %w", err)}
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || duration <= 0 {
		return 0, &models.ProviderError{Provider: "ffprobe", Err: fmt.Errorf("bad duration %q", strings.TrimSpace(string(out)))}
	}
	return duration, nil
}

// MockFrameExtractor returns placeholder frames for hermetic runs.
type MockFrameExtractor struct{}

var _ FrameExtractor = (*MockFrameExtractor)(nil)

func (MockFrameExtractor) ExtractFrames(ctx context.Context, videoURL string, n int) ([]string, error) {
	frames := make([]string, n)
	for i := range frames {
		frames[i] = base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("frame-%d-%s", i, videoURL)))
	}
	return frames, nil
}
