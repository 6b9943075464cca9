package categorizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// GeminiClient implements AIClient against the Google Gemini API. The
// underlying client is created on first use.
type GeminiClient struct {
	apiKey    string
	modelName string
	logger    logging.Logger

	once   sync.Once
	client *genai.Client
	model  *genai.GenerativeModel
	err    error
}

// NewGeminiClient creates a GeminiClient for the given key and model.
func NewGeminiClient(apiKey, modelName string, logger logging.Logger) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, modelName: modelName, logger: logger}
}

func (c *GeminiClient) ensureModel(ctx context.Context) error {
	c.once.Do(func() {
		if c.apiKey == "" {
			c.err = fmt.Errorf("GEMINI_API_KEY not set")
			return
		}
		client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
		if err != nil {
			c.err = fmt.Errorf("failed to create Gemini client: %w", err)
			return
		}
		c.client = client
		c.model = client.GenerativeModel(c.modelName)
		c.model.SetTemperature(0)
	})
	return c.err
}

// SuggestCategory sends a prompt constrained to the allowed names and
// returns the first line of the answer.
func (c *GeminiClient) SuggestCategory(ctx context.Context, tx Transaction, allowed []string) (string, error) {
	if err := c.ensureModel(ctx); err != nil {
		return "", err
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(tx, allowed)))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	answer := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	answer = strings.TrimSpace(strings.SplitN(answer, "\n", 2)[0])
	answer = strings.TrimPrefix(answer, "Category:")
	c.logger.Debug("Gemini suggested category",
		logging.F(logging.FieldMerchant, tx.Merchant),
		logging.F(logging.FieldCategory, answer))
	return strings.TrimSpace(answer), nil
}

// Close releases the underlying client, if one was created.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func buildPrompt(tx Transaction, allowed []string) string {
	return fmt.Sprintf(`Categorize this Indian bank transaction.
Merchant: %s
Direction: %s
Amount: %s INR
Message: %s

Answer with exactly one of: %s
Reply with the category name only.`,
		tx.Merchant,
		tx.Direction,
		models.FormatMinorUnits(tx.AmountMinor),
		tx.Raw,
		strings.Join(allowed, ", "))
}
