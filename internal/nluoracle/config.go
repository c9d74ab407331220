// Package nluoracle implements the eino-backed classifier that turns free
// text into the intent/entity pair the controller drives on.
package nluoracle

// Config configures the chat model and the tuple-delimited wire format the
// prompt asks the model to produce.
type Config struct {
	Model               string  `yaml:"model" envconfig:"NLU_MODEL" default:"gpt-4o-mini"`
	BaseURL             string  `yaml:"base_url" envconfig:"NLU_BASE_URL"`
	APIKey              string  `yaml:"api_key" envconfig:"NLU_API_KEY"`
	MaxTokens           int     `yaml:"max_tokens" envconfig:"NLU_MAX_TOKENS" default:"800"`
	Temperature         float32 `yaml:"temperature" envconfig:"NLU_TEMPERATURE" default:"0.1"`
	TupleDelimiter      string  `yaml:"tuple_delimiter" envconfig:"NLU_TUPLE_DELIMITER" default:"<||>"`
	RecordDelimiter     string  `yaml:"record_delimiter" envconfig:"NLU_RECORD_DELIMITER" default:"##"`
	CompletionDelimiter string  `yaml:"completion_delimiter" envconfig:"NLU_COMPLETION_DELIMITER" default:"<|COMPLETE|>"`
}
