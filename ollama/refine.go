package ollama

import (
	"context"

	"github.com/promptlab/promptlab/am"
)

// Refine expands a one-line objective into a detailed system prompt by
// running the refinement meta-prompt through the model. targetModel
// overrides the configured default when non-empty.
func (c *Client) Refine(ctx context.Context, objective, targetModel string) (string, error) {
	model := targetModel
	if model == "" {
		model = c.model
	}

	cfg := c.metaPrompts.Current()
	params := cfg.Parameters

	req := generateRequest{
		Model:   model,
		Prompt:  cfg.Format(objective),
		Stream:  false,
		Options: refinementOptions(params),
	}

	c.logger.Debugw("Refining prompt",
		"model", model,
		"temperature", params.Temperature,
		"objective_length", len(objective),
	)

	refined, err := c.generate(ctx, req, c.timeout)
	if err != nil {
		return "", err
	}

	c.logger.Debugw("Prompt refined", "model", model, "response_length", len(refined))
	return refined, nil
}

// refinementOptions carries all four tuning knobs from the meta-prompt
// configuration into the generate call.
func refinementOptions(params am.MetaPromptParameters) generateOptions {
	topK := params.TopK
	repeatPenalty := params.RepeatPenalty
	return generateOptions{
		Temperature:   params.Temperature,
		TopP:          params.TopP,
		TopK:          &topK,
		RepeatPenalty: &repeatPenalty,
	}
}
