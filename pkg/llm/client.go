package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/config"
	"github.com/carebridge-health/dme-orders/pkg/common/httpclient"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/google/uuid"
)

// ErrNoCredential is returned when extraction is attempted without an
// API key configured.
var ErrNoCredential = errors.New("llm credential not configured")

// Client extracts a complete structured order from a note in one
// chat-completions call.
type Client struct {
	apiKey    string
	baseURL   string
	modelName string
	http      *http.Client
	now       func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:    cfg.LLMAPIKey,
		baseURL:   cfg.LLMBaseURL,
		modelName: cfg.LLMModelName,
		http:      httpclient.New(cfg.LLMTimeout),
		now:       time.Now,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Name identifies the client to the strategy selector.
func (c *Client) Name() string {
	return "llm"
}

// Extract asks the model for the full order in the wire contract shape.
// Any failure (credential, transport, malformed response) is an error;
// the caller decides whether to fall back.
func (c *Client) Extract(ctx context.Context, rawText string) (*models.DeviceOrder, error) {
	if !c.Enabled() {
		return nil, ErrNoCredential
	}

	content, err := c.complete(ctx, buildPrompt(rawText))
	if err != nil {
		return nil, err
	}

	payload, err := decodeOrderPayload(content)
	if err != nil {
		return nil, err
	}

	return c.toOrder(payload), nil
}

func buildPrompt(rawText string) string {
	return fmt.Sprintf(`Extract a structured durable medical equipment order from the following physician note:

%s

Return only a JSON object with these fields (omit fields that do not apply):
"device", "ordering_provider", "patient_name", "dob", "diagnosis",
"mask_type", "pressure", "add_ons", "qualifier", "liters",
"delivery_method", "usage", "medication", "frequency", "type",
"category", "mattress".
"device" must be one of: CPAP, BiPAP, Oxygen, Nebulizer, Wheelchair, Walker, Hospital Bed.`, rawText)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": c.modelName,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no response from llm")
	}

	return result.Choices[0].Message.Content, nil
}

// decodeOrderPayload parses the model output against the wire contract.
// Code fences are tolerated; anything that is not the contract is a
// parse failure.
func decodeOrderPayload(content string) (*models.OrderPayload, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload models.OrderPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("malformed llm response: %w", err)
	}
	if payload.Device == "" {
		return nil, errors.New("llm response missing device")
	}
	return &payload, nil
}

func (c *Client) toOrder(payload *models.OrderPayload) *models.DeviceOrder {
	specs := map[string]interface{}{}
	setSpec := func(key, value string) {
		if value != "" {
			specs[key] = value
		}
	}
	setSpec(models.SpecMaskType, payload.MaskType)
	setSpec(models.SpecPressure, payload.Pressure)
	setSpec(models.SpecQualifier, payload.Qualifier)
	setSpec(models.SpecLiters, payload.Liters)
	setSpec(models.SpecDeliveryMethod, payload.DeliveryMethod)
	setSpec(models.SpecUsage, payload.Usage)
	setSpec(models.SpecMedication, payload.Medication)
	setSpec(models.SpecFrequency, payload.Frequency)
	setSpec(models.SpecType, payload.Type)
	setSpec(models.SpecCategory, payload.Category)
	if len(payload.AddOns) > 0 {
		specs[models.SpecAddOns] = payload.AddOns
	}
	if payload.Mattress != nil {
		specs[models.SpecMattress] = *payload.Mattress
	}

	provider := payload.OrderingProvider
	if provider == "" {
		provider = "Dr. Unknown"
	}

	return &models.DeviceOrder{
		DeviceType:       payload.Device,
		OrderingProvider: provider,
		PatientName:      emptyToUnknown(payload.PatientName),
		PatientID:        uuid.New().String(),
		DOB:              emptyToUnknown(payload.DOB),
		Diagnosis:        emptyToUnknown(payload.Diagnosis),
		Specifications:   specs,
		OrderedAt:        c.now().UTC(),
	}
}

func emptyToUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
