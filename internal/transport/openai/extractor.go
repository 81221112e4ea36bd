package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
	"github.com/stephen-mccullough/fashion-search/internal/metrics"
)

const extractorSystemPrompt = "You are a helpful assistant that extracts search filters from a " +
	"user's prompt. These filters are used when querying a database which contains data about " +
	"fashion items in an e-commerce store. The ratings are rated from 0-5. Only include a filter " +
	"when the prompt clearly asks for it."

// Extractor turns a free-text query into facet constraints plus a flag
// telling whether the query is about fashion at all.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor creates a chat-backed filter extractor.
func NewExtractor(cfg *Config) *Extractor {
	return &Extractor{client: newClient(cfg), model: cfg.Model}
}

// extractedFilter is the structured-output wire shape: the predicate fields
// plus the domain-relevance flag, which is stripped before the predicate
// reaches the rest of the pipeline.
type extractedFilter struct {
	filter.Predicate
	IsRelatedToFashion bool `json:"is_related_to_fashion"`
}

var filterSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"main_category":         {Type: jsonschema.String, Description: "Product category, e.g. Shoes"},
		"brand":                 {Type: jsonschema.String},
		"store":                 {Type: jsonschema.String},
		"min_price":             {Type: jsonschema.Number},
		"max_price":             {Type: jsonschema.Number},
		"min_average_rating":    {Type: jsonschema.Number, Description: "Lower rating bound on a 0-5 scale"},
		"max_average_rating":    {Type: jsonschema.Number, Description: "Upper rating bound on a 0-5 scale"},
		"is_related_to_fashion": {Type: jsonschema.Boolean, Description: "Whether the prompt is about fashion items"},
	},
	Required:             []string{"is_related_to_fashion"},
	AdditionalProperties: false,
}

// ExtractFilter implements search.FilterExtractor.
func (e *Extractor) ExtractFilter(ctx context.Context, prompt string) (filter.Predicate, bool, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        "search_filters",
				Description: "Facet constraints extracted from a fashion search prompt",
				Schema:      &filterSchema,
			},
		},
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("extract_filter", e.model, "error").Inc()
		return filter.Predicate{}, false, parseAPIError("filter extraction", domain.ErrFilterExtraction, err)
	}

	metrics.ChatRequestsTotal.WithLabelValues("extract_filter", e.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues("extract_filter", e.model).Observe(duration.Seconds())
	recordChatTokens("extract_filter", e.model, resp.Usage)

	pred, inDomain, err := parseExtractedFilter(chatContent(resp))
	if err != nil {
		return filter.Predicate{}, false, fmt.Errorf("%w: %w", domain.ErrFilterExtraction, err)
	}
	return pred, inDomain, nil
}

// parseExtractedFilter decodes the structured output and validates the
// predicate before it is trusted by retrieval.
func parseExtractedFilter(content string) (filter.Predicate, bool, error) {
	if content == "" {
		return filter.Predicate{}, false, fmt.Errorf("empty completion response")
	}

	var out extractedFilter
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return filter.Predicate{}, false, fmt.Errorf("decode filter output: %w", err)
	}
	if err := out.Predicate.Validate(); err != nil {
		return filter.Predicate{}, false, fmt.Errorf("invalid extracted filter: %w", err)
	}

	return out.Predicate, out.IsRelatedToFashion, nil
}

func chatContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

func recordChatTokens(op, model string, usage openai.Usage) {
	if usage.TotalTokens == 0 {
		return
	}
	metrics.ChatTokensTotal.WithLabelValues(op, model, "prompt").Add(float64(usage.PromptTokens))
	metrics.ChatTokensTotal.WithLabelValues(op, model, "completion").Add(float64(usage.CompletionTokens))
	metrics.ChatTokensTotal.WithLabelValues(op, model, "total").Add(float64(usage.TotalTokens))
}
