package controllers

import (
	"context"
	"fmt"

	"atelier/atelier/services/llm"
	"atelier/atelier/services/prompt"
	"atelier/atelier/types"
	"atelier/atelier/utils/jsonutils"
	"atelier/atelier/utils/logging"

	"go.uber.org/zap"
)

type GenerateController struct {
	llm llm.Client
}

func NewGenerateController(client llm.Client) *GenerateController {
	return &GenerateController{llm: client}
}

// Generate runs one blocking round trip: assemble the prompt, call the
// model, parse the reply into a code pair. Nothing is retried; a reply
// that does not decode into exactly {tsx, css} is a malformed response.
func (c *GenerateController) Generate(ctx context.Context, req types.GenerateRequest) (types.GeneratedCode, error) {
	defer logging.LogDuration(ctx, "generate")()

	p, err := prompt.Build(req.ChatHistory, req.CurrentCode)
	if err != nil {
		return types.GeneratedCode{}, err
	}

	raw, err := c.llm.Run(ctx, p)
	if err != nil {
		logging.ErrorLogger.Error("ai generation error", zap.Error(err))
		return types.GeneratedCode{}, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	return c.ParseCompletion(raw)
}

// Stream starts a streaming generation and hands back the raw chunk
// channel. The caller accumulates and finishes with ParseCompletion.
func (c *GenerateController) Stream(ctx context.Context, req types.GenerateRequest) (<-chan string, error) {
	p, err := prompt.Build(req.ChatHistory, req.CurrentCode)
	if err != nil {
		return nil, err
	}
	ch, err := c.llm.RunStream(ctx, p)
	if err != nil {
		logging.ErrorLogger.Error("ai stream error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	return ch, nil
}

// ParseCompletion strips fences and strictly decodes the model output.
// The model is instructed, not forced, to return {"tsx":..,"css":..};
// anything else maps to ErrMalformedResponse.
func (c *GenerateController) ParseCompletion(raw string) (types.GeneratedCode, error) {
	cleaned := jsonutils.ExtractJSON(raw)

	var out struct {
		TSX *string `json:"tsx"`
		CSS *string `json:"css"`
	}
	if err := jsonutils.DecodeStrict(cleaned, &out); err != nil {
		logging.ErrorLogger.Error("malformed ai response", zap.Error(err))
		return types.GeneratedCode{}, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}
	if out.TSX == nil || out.CSS == nil {
		return types.GeneratedCode{}, fmt.Errorf("%w: tsx and css are required", types.ErrMalformedResponse)
	}

	return types.GeneratedCode{TSX: *out.TSX, CSS: *out.CSS}, nil
}
