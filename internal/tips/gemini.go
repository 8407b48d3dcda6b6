package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
)

const (
	DefaultGeminiApiUrl = "https://generativelanguage.googleapis.com/v1beta"

	// a slow model call must never hold a request hostage
	geminiCallTimeout = 5 * time.Second

	oneHour         = 60 * 60
	tipsCacheExpire = oneHour * 1
)

// GeminiClient calls the Gemini generateContent REST endpoint and turns the
// response into tip lines. Responses are cached per profile.
type GeminiClient struct {
	apiUrl     string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *freecache.Cache
}

func NewGeminiClient(apiUrl, apiKey, model string, httpClient *http.Client) *GeminiClient {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &GeminiClient{
		apiUrl:     apiUrl,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		cache:      freecache.NewCache(cacheSize),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

func (c *GeminiClient) GenerateTips(ctx context.Context, profile Profile) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gemini.generateTips")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	if cachedBytes, err := c.cache.Get(cacheKey); err == nil {
		var tips []string
		if err := json.Unmarshal(cachedBytes, &tips); err == nil {
			log.Tracef("found tips for profile in cache")
			return tips, nil
		}
		log.Errorf("failed to unmarshal cached tips: %s", err)
	}

	ctx, cancel := context.WithTimeout(ctx, geminiCallTimeout)
	defer cancel()

	reqBytes, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: profileToPrompt(profile)}}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiUrl, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBytes)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBytes, &geminiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var text string
	if len(geminiResp.Candidates) > 0 {
		var parts []string
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			parts = append(parts, part.Text)
		}
		text = strings.Join(parts, "\n")
	}

	tips := textToTips(text)
	if len(tips) == 0 {
		return nil, fmt.Errorf("no usable tip lines in model response")
	}

	if tipsBytes, err := json.Marshal(tips); err == nil {
		if err := c.cache.Set(cacheKey, tipsBytes, tipsCacheExpire); err != nil {
			log.Errorf("failed to write tips cache: %s", err)
		}
	}

	return tips, nil
}

func profileToPrompt(profile Profile) string {
	goals := strings.Join(profile.Goals, ", ")
	if goals == "" {
		goals = "unspecified goals"
	}
	equipment := strings.Join(profile.Equipment, ", ")
	if equipment == "" {
		equipment = "no equipment"
	}
	schedule := profile.Schedule
	if schedule == "" {
		schedule = "unspecified schedule"
	}
	experience := profile.ExperienceLevel
	if experience == "" {
		experience = "unspecified experience"
	}

	return fmt.Sprintf(
		"User profile:\n"+
			"- Goals: %s\n"+
			"- Schedule: %s\n"+
			"- Equipment: %s\n"+
			"- Experience: %s\n\n"+
			"Provide 5 concise, actionable training tips tailored to the user."+
			" Focus on exercise selection, progression, recovery, and adherence."+
			" Use bullet points, 1 sentence each.",
		goals, schedule, equipment, experience,
	)
}

// textToTips splits the model output into lines, strips bullet markers and
// whitespace, drops empty lines and keeps at most 5.
func textToTips(text string) []string {
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•* ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tips = append(tips, line)
		if len(tips) == maxTips {
			break
		}
	}
	return tips
}
