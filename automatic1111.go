package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/tidwall/gjson"
)

// Automatic1111Provider talks to a self-hosted stable-diffusion-webui API
type Automatic1111Provider struct {
	cfg       AIServiceConfig
	transport Transport
	log       *slog.Logger
}

type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	CFGScale       float64 `json:"cfg_scale"`
	Steps          int     `json:"steps"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// resolvedImage is a candidate that decoded and rasterized successfully
type resolvedImage struct {
	ascii string
	data  []byte
}

// Name returns the provider name used in logs
func (p *Automatic1111Provider) Name() string { return ProviderAutomatic1111.String() }

func (p *Automatic1111Provider) endpoint() string {
	return ensureTrailingSlash(p.cfg.Host) + "sdapi/v1/txt2img"
}

func (p *Automatic1111Provider) headers() []Header {
	headers := []Header{{Name: "Content-Type", Value: "application/json"}}
	if p.cfg.BasicAuth != "" {
		headers = append(headers, Header{Name: "Authorization", Value: "Basic " + encodeBase64([]byte(p.cfg.BasicAuth))})
	}
	if p.cfg.APIKeyHeader != "" && p.cfg.APIKeyValue != "" {
		headers = append(headers, Header{Name: p.cfg.APIKeyHeader, Value: p.cfg.APIKeyValue})
	}
	return headers
}

// Generate requests one image. The response shape differs between webui
// versions and extensions, so images are searched for rather than read
// from a fixed field.
func (p *Automatic1111Provider) Generate(ctx context.Context, req GenerationRequest) Generation {
	if p.cfg.Host == "" {
		p.log.InfoContext(ctx, "Automatic1111 host is empty, using placeholder")
		return placeholderResult(req)
	}

	p.log.InfoContext(ctx, "Automatic1111 request started", "character", req.Template.Name)

	payload, err := json.Marshal(txt2imgRequest{
		Prompt:         composePrompt(req.Template, req.Prompt),
		NegativePrompt: p.cfg.NegativePrompt,
		CFGScale:       guidanceScale,
		Steps:          sampleSteps,
		Width:          imageSize,
		Height:         imageSize,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "failed to encode Automatic1111 request", "error", err)
		return placeholderResult(req)
	}

	resp, err := p.transport.Post(ctx, p.endpoint(), payload, p.headers())
	if err != nil {
		p.log.ErrorContext(ctx, "Automatic1111 call failed", "error", err)
		return p.finish(ctx, placeholderResult(req))
	}
	logStatus(ctx, p.log, p.Name(), resp.Status)

	if !gjson.ValidBytes(resp.Body) {
		p.log.WarnContext(ctx, "Automatic1111 response is not valid JSON, using placeholder", "bytes", len(resp.Body))
		return p.finish(ctx, placeholderResult(req))
	}

	resolved, ok := p.locate(ctx, gjson.ParseBytes(resp.Body))
	if !ok {
		p.log.WarnContext(ctx, "no usable image in Automatic1111 response, using placeholder")
		return p.finish(ctx, placeholderResult(req))
	}

	storeImage(ctx, p.log, req.ImagePath, resolved.data)
	return p.finish(ctx, Generation{ASCII: resolved.ascii})
}

// locate tries "images" entries first, then "images" as a whole, then the
// entire response
func (p *Automatic1111Provider) locate(ctx context.Context, root gjson.Result) (resolvedImage, bool) {
	images := objectField(root, "images")
	if images.IsArray() {
		for _, entry := range images.Array() {
			if img, ok := p.resolve(ctx, entry, "images array"); ok {
				return img, true
			}
		}
	} else if images.Exists() {
		if img, ok := p.resolve(ctx, images, "images field"); ok {
			return img, true
		}
	}

	return p.resolve(ctx, root, "top-level response")
}

// resolve turns one candidate node into art: an embedded base64 payload
// wins, otherwise a referenced image file is read from local disk
func (p *Automatic1111Provider) resolve(ctx context.Context, node gjson.Result, source string) (resolvedImage, bool) {
	if encoded, ok := findBase64Image(node); ok {
		decoded := decodeBase64(encoded)
		if len(decoded) == 0 {
			p.log.WarnContext(ctx, "Automatic1111 base64 decoding failed", "source", source)
		} else if ascii, err := imageToASCII(decoded); err != nil {
			p.log.WarnContext(ctx, "failed to convert Automatic1111 image", "source", source, "error", err)
		} else {
			p.log.InfoContext(ctx, "extracted base64 image from Automatic1111 response", "source", source)
			return resolvedImage{ascii: ascii, data: decoded}, true
		}
	}

	path, ok := findImagePath(node)
	if !ok {
		return resolvedImage{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.log.WarnContext(ctx, "failed to read Automatic1111 output file", "source", source, "path", path, "error", err)
		return resolvedImage{}, false
	}
	ascii, err := imageToASCII(data)
	if err != nil {
		p.log.WarnContext(ctx, "failed to convert Automatic1111 output file", "source", source, "path", path, "error", err)
		return resolvedImage{}, false
	}

	p.log.InfoContext(ctx, "loaded image file referenced by Automatic1111 response", "source", source, "path", path)
	return resolvedImage{ascii: ascii, data: data}, true
}

func (p *Automatic1111Provider) finish(ctx context.Context, gen Generation) Generation {
	if gen.UsedPlaceholder {
		p.log.InfoContext(ctx, "Automatic1111 result kept the placeholder")
	} else {
		p.log.InfoContext(ctx, "Automatic1111 result converted to ASCII art")
	}
	return gen
}
