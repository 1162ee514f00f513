package roles

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/core/utils"
	"agentic_studio/pkg/models"
)

func parseQA(raw string, resp *qaResponse) error { return utils.ParseInto(raw, resp) }

// qaFrameCount is how many frames the verifier samples in live mode.
const qaFrameCount = 3

// QAVerifier scores generated videos against the creative intent. With a
// vision provider and frame extractor it reviews actual frames; otherwise
// it scores from the scene description alone.
type QAVerifier struct {
	provider llm.TextProvider
	vision   llm.VisionProvider
	frames   providers.FrameExtractor
	prompts  *prompt.Registry
	log      *zap.Logger
}

func NewQAVerifier(provider llm.TextProvider, prompts *prompt.Registry, log *zap.Logger) *QAVerifier {
	return &QAVerifier{provider: provider, prompts: prompts, log: ensureLogger(log)}
}

// WithVision enables frame-based review.
func (q *QAVerifier) WithVision(vision llm.VisionProvider, frames providers.FrameExtractor) *QAVerifier {
	q.vision = vision
	q.frames = frames
	return q
}

type qaResponse struct {
	VisualAccuracy   float64  `json:"visual_accuracy"`
	StyleConsistency float64  `json:"style_consistency"`
	TechnicalQuality float64  `json:"technical_quality"`
	NarrativeFit     float64  `json:"narrative_fit"`
	Issues           []string `json:"issues"`
	Suggestions      []string `json:"suggestions"`
	VisualAnalysis   string   `json:"visual_analysis"`
}

// VerifyVideo scores one variation. Passed is derived from the tier
// threshold, never from the model's own verdict.
func (q *QAVerifier) VerifyVideo(ctx context.Context, scene models.Scene, video models.GeneratedVideo, originalRequest string, tier models.ProductionTier) (*models.QAResult, error) {
	userPrompt, err := q.prompts.RenderUser(prompt.IDQAVerify, map[string]interface{}{
		"SceneDescription": scene.Description,
		"Request":          originalRequest,
		"Tier":             string(tier),
	})
	if err != nil {
		return nil, err
	}
	systemPrompt, _ := q.prompts.SystemPrompt(prompt.IDQAVerify)

	var resp qaResponse
	if q.vision != nil && q.frames != nil {
		resp, err = q.verifyWithFrames(ctx, video.VideoURL, userPrompt, systemPrompt)
	} else {
		err = queryJSON(ctx, q.provider, q.prompts, prompt.IDQAVerify, "qa_verifier", userPrompt, systemPrompt, &resp)
	}
	if err != nil {
		return nil, err
	}

	result := &models.QAResult{
		SceneID:          scene.SceneID,
		VideoURL:         video.VideoURL,
		VisualAccuracy:   resp.VisualAccuracy,
		StyleConsistency: resp.StyleConsistency,
		TechnicalQuality: resp.TechnicalQuality,
		NarrativeFit:     resp.NarrativeFit,
		Issues:           resp.Issues,
		Suggestions:      resp.Suggestions,
		VisualAnalysis:   resp.VisualAnalysis,
	}
	result.ComputeOverall(tier)
	return result, nil
}

func (q *QAVerifier) verifyWithFrames(ctx context.Context, videoURL, userPrompt, systemPrompt string) (qaResponse, error) {
	var resp qaResponse
	frames, err := q.frames.ExtractFrames(ctx, videoURL, qaFrameCount)
	if err != nil || len(frames) == 0 {
		q.log.Warn("frame extraction failed, falling back to text review",
			zap.String("video_url", videoURL), zap.Error(err))
		err = queryJSON(ctx, q.provider, q.prompts, prompt.IDQAVerify, "qa_verifier", userPrompt, systemPrompt, &resp)
		return resp, err
	}

	// The middle frame is the most representative single sample.
	image, err := base64.StdEncoding.DecodeString(frames[len(frames)/2])
	if err != nil {
		return resp, fmt.Errorf("bad frame payload: %w", err)
	}
	raw, err := q.vision.QueryWithImage(ctx, userPrompt, image, "image/jpeg", systemPrompt)
	if err != nil {
		return resp, err
	}
	if parseErr := parseQA(raw, &resp); parseErr != nil {
		retry := q.prompts.RetryPrompt(prompt.IDQAVerify, userPrompt)
		raw, err = q.vision.QueryWithImage(ctx, retry, image, "image/jpeg", systemPrompt)
		if err != nil {
			return resp, err
		}
		if parseErr := parseQA(raw, &resp); parseErr != nil {
			return resp, &models.InvalidAgentResponseError{Role: "qa_verifier", Raw: raw, Err: parseErr}
		}
	}
	return resp, nil
}

// VerifyBatch scores all variations concurrently, preserving input order.
// A failed verification fails the whole batch.
func (q *QAVerifier) VerifyBatch(ctx context.Context, scene models.Scene, videos []models.GeneratedVideo, originalRequest string, tier models.ProductionTier) ([]models.QAResult, error) {
	results := make([]models.QAResult, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	for i := range videos {
		i := i
		g.Go(func() error {
			r, err := q.VerifyVideo(gctx, scene, videos[i], originalRequest, tier)
			if err != nil {
				return err
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ShouldRegenerate is the regeneration predicate over a QA verdict and the
// remaining budget: the better the result, the more spare budget it takes
// to justify another attempt.
func ShouldRegenerate(qa *models.QAResult, budgetRemaining, sceneCost float64) bool {
	switch {
	case qa.OverallScore < 50:
		return budgetRemaining >= sceneCost
	case qa.OverallScore < qa.Threshold:
		return budgetRemaining >= 1.5*sceneCost
	case qa.OverallScore < 90:
		return budgetRemaining >= 2.5*sceneCost
	default:
		return false
	}
}
