package nluoracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"convflow/internal/domain"
	"convflow/internal/flow"
)

// EinoOracle classifies free text against a closed Domain by running a
// single eino chain: a ChatTemplate feeding a ChatModel. It implements
// controller.NLUOracle.
type EinoOracle struct {
	cfg      Config
	template prompt.ChatTemplate
	chain    compose.Runnable[map[string]any, *schema.Message]
	intents  string
	entities string
}

// NewEinoOracle builds the chain once at startup. d's intents and
// entities are rendered into the prompt as the closed lists the model
// must choose from.
func NewEinoOracle(ctx context.Context, cfg Config, d *domain.Domain) (*EinoOracle, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	model, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("nluoracle: creating chat model: %w", err)
	}

	template := buildTemplate(cfg)
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(model).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("nluoracle: compiling chain: %w", err)
	}

	return &EinoOracle{
		cfg:      cfg,
		template: template,
		chain:    chain,
		intents:  strings.Join(d.Intents(), ", "),
		entities: strings.Join(d.Entities(), ", "),
	}, nil
}

// Classify runs the chain on utterance and parses its tuple-delimited
// reply into an Intent ranking and the Entities mentioned.
func (o *EinoOracle) Classify(ctx context.Context, utterance string) (flow.Intent, []flow.Entity, error) {
	if utterance == "" {
		return flow.Intent{}, nil, fmt.Errorf("nluoracle: utterance must not be empty")
	}

	out, err := o.chain.Invoke(ctx, map[string]any{
		"input_text": utterance,
		"intents":    o.intents,
		"entities":   o.entities,
	})
	if err != nil {
		return flow.Intent{}, nil, fmt.Errorf("nluoracle: chat model invocation failed: %w", err)
	}

	intent, entities := parseResponse(out.Content, o.cfg)
	if intent.Name == "" {
		return flow.Intent{}, nil, fmt.Errorf("nluoracle: model response carried no parseable intent")
	}
	return intent, entities, nil
}
