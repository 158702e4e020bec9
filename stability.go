package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tidwall/gjson"
)

// StabilityProvider talks to the hosted Stability text-to-image API
type StabilityProvider struct {
	cfg       AIServiceConfig
	transport Transport
	log       *slog.Logger
}

type stabilityTextPrompt struct {
	Text string `json:"text"`
}

type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	CFGScale    float64               `json:"cfg_scale"`
	Steps       int                   `json:"steps"`
	Height      int                   `json:"height"`
	Width       int                   `json:"width"`
}

// Name returns the provider name used in logs
func (p *StabilityProvider) Name() string { return ProviderStability.String() }

func (p *StabilityProvider) endpoint() string {
	return ensureTrailingSlash(p.cfg.Host) + "v1/generation/" + p.cfg.EngineID + "/text-to-image"
}

// Generate requests one image and converts the first successful artifact
func (p *StabilityProvider) Generate(ctx context.Context, req GenerationRequest) Generation {
	if p.cfg.APIKey == "" || p.cfg.Host == "" || p.cfg.EngineID == "" {
		p.log.InfoContext(ctx, "Stability configuration incomplete, using placeholder")
		return placeholderResult(req)
	}

	p.log.InfoContext(ctx, "Stability request started", "character", req.Template.Name)

	payload, err := json.Marshal(stabilityRequest{
		TextPrompts: []stabilityTextPrompt{{Text: composePrompt(req.Template, req.Prompt)}},
		CFGScale:    guidanceScale,
		Steps:       sampleSteps,
		Height:      imageSize,
		Width:       imageSize,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "failed to encode Stability request", "error", err)
		return placeholderResult(req)
	}

	headers := []Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Accept", Value: "application/json"},
		{Name: "Authorization", Value: "Bearer " + p.cfg.APIKey},
	}

	resp, err := p.transport.Post(ctx, p.endpoint(), payload, headers)
	if err != nil {
		p.log.ErrorContext(ctx, "Stability call failed", "error", err)
		return p.finish(ctx, placeholderResult(req))
	}
	logStatus(ctx, p.log, p.Name(), resp.Status)

	if !gjson.ValidBytes(resp.Body) {
		p.log.WarnContext(ctx, "Stability response is not valid JSON, using placeholder", "bytes", len(resp.Body))
		return p.finish(ctx, placeholderResult(req))
	}

	ascii, image, ok := p.firstArtifact(ctx, gjson.ParseBytes(resp.Body))
	if !ok {
		p.log.WarnContext(ctx, "no usable image in Stability response, using placeholder")
		return p.finish(ctx, placeholderResult(req))
	}

	storeImage(ctx, p.log, req.ImagePath, image)
	return p.finish(ctx, Generation{ASCII: ascii})
}

// firstArtifact walks "artifacts" and returns the first entry that both
// finished with SUCCESS and rasterizes to non-empty text
func (p *StabilityProvider) firstArtifact(ctx context.Context, root gjson.Result) (string, []byte, bool) {
	artifacts := root.Get("artifacts")
	if !artifacts.IsArray() {
		return "", nil, false
	}

	for i, artifact := range artifacts.Array() {
		encoded := artifact.Get("base64")
		if !encoded.Exists() {
			continue
		}
		if reason := artifact.Get("finishReason"); reason.Exists() && reason.String() != "SUCCESS" {
			p.log.InfoContext(ctx, "skipping Stability artifact", "index", i, "finishReason", reason.String())
			continue
		}

		decoded := decodeBase64(encoded.String())
		ascii, err := imageToASCII(decoded)
		if err != nil {
			p.log.WarnContext(ctx, "failed to convert Stability artifact", "index", i, "error", err)
			continue
		}
		return ascii, decoded, true
	}

	return "", nil, false
}

func (p *StabilityProvider) finish(ctx context.Context, gen Generation) Generation {
	if gen.UsedPlaceholder {
		p.log.InfoContext(ctx, "Stability result kept the placeholder")
	} else {
		p.log.InfoContext(ctx, "Stability result converted to ASCII art")
	}
	return gen
}
