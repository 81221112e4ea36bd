package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/metrics"
)

// Recommender writes a short natural-language recommendation over the ranked
// result titles.
type Recommender struct {
	client *openai.Client
	model  string
}

// NewRecommender creates a chat-backed recommender.
func NewRecommender(cfg *Config) *Recommender {
	return &Recommender{client: newClient(cfg), model: cfg.Model}
}

var recommendationSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"response": {Type: jsonschema.String, Description: "The recommendation text"},
	},
	Required:             []string{"response"},
	AdditionalProperties: false,
}

// Recommend implements search.Recommender.
func (r *Recommender) Recommend(ctx context.Context, prompt string, titles []string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recommenderSystemPrompt(titles)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        "recommendation",
				Description: "A short recommendation for the user's search",
				Schema:      &recommendationSchema,
			},
		},
	}

	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("recommend", r.model, "error").Inc()
		return "", parseAPIError("recommendation", domain.ErrRecommendation, err)
	}

	metrics.ChatRequestsTotal.WithLabelValues("recommend", r.model, "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues("recommend", r.model).Observe(duration.Seconds())
	recordChatTokens("recommend", r.model, resp.Usage)

	text, err := parseRecommendation(chatContent(resp))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRecommendation, err)
	}
	return text, nil
}

func recommenderSystemPrompt(titles []string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that provides recommendations to a user based on " +
		"their query. Use the provided original user query and the titles of the recommended items " +
		"to provide a recommendation. This recommendation should be no more than 2 sentences. " +
		"If the query is not related to fashion, tell the user that the site is for searching for " +
		"fashion items. The titles of the recommended items are: ")
	b.WriteString(formatTitles(titles))
	return b.String()
}

func formatTitles(titles []string) string {
	if len(titles) == 0 {
		return "(no items matched the search)"
	}
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func parseRecommendation(content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty completion response")
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return "", fmt.Errorf("decode recommendation output: %w", err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("recommendation output has no text")
	}
	return out.Response, nil
}
