package config

import (
	"encoding/json"
	"strings"
)

// FullConfig is the application config stored in the database (options table,
// key="configs"). It can be patched at runtime through the configs module.
type FullConfig struct {
	URL        URLConfig         `json:"url"`
	AI         AIConfig          `json:"ai"`
	Generation GenerationOptions `json:"generation"`
	Autosave   AutosaveOptions   `json:"autosave"`
	S3Options  S3Options         `json:"s3_options"`
	Webhook    WebhookOptions    `json:"webhook"`
}

type URLConfig struct {
	WebURL    string `json:"web_url"`
	ServerURL string `json:"server_url"`
}

// AIConfig lists the configured gateway providers and which one each
// generation stage should use.
type AIConfig struct {
	Providers       []AIProvider       `json:"providers"`
	GenerationModel *AIModelAssignment `json:"generation_model,omitempty"`
	QualityModel    *AIModelAssignment `json:"quality_model,omitempty"`
}

type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

type AIProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint,omitempty"`
	DefaultModel string `json:"default_model"`
	Enabled      bool   `json:"enabled"`
}

// GenerationOptions are the wizard defaults applied when a request omits them.
type GenerationOptions struct {
	ContentFramework string  `json:"content_framework"`
	FaqFramework     string  `json:"faq_framework"`
	TargetWordCount  int     `json:"target_word_count"`
	KeywordDensity   float64 `json:"keyword_density"`
	KeywordsPerType  int     `json:"keywords_per_type"`
	FaqCount         int     `json:"faq_count"`
	MinWordsPerFaq   int     `json:"min_words_per_faq"`
}

// AutosaveOptions control the server-side draft autosave session.
type AutosaveOptions struct {
	QuietMS int `json:"quiet_ms"`
}

type S3Options struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	CustomDomain    string `json:"custom_domain"`
	PathStyleAccess bool   `json:"path_style_access"`
}

// WebhookOptions control the outbound notifications sent to a user's
// configured webhook URL when posts are saved or published.
type WebhookOptions struct {
	Enable          bool `json:"enable"`
	TimeoutSeconds  int  `json:"timeout_seconds"`
	ThrottleSeconds int  `json:"throttle_seconds"`
}

func (a *AIModelAssignment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProviderID      string `json:"provider_id"`
		ProviderIDCamel string `json:"providerId"`
		Model           string `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ProviderID = strings.TrimSpace(raw.ProviderID)
	if a.ProviderID == "" {
		a.ProviderID = strings.TrimSpace(raw.ProviderIDCamel)
	}
	a.Model = strings.TrimSpace(raw.Model)
	return nil
}

func (a *AIConfig) UnmarshalJSON(data []byte) error {
	next := *a
	var raw struct {
		Providers       []AIProvider    `json:"providers"`
		GenerationModel json.RawMessage `json:"generation_model"`
		QualityModel    json.RawMessage `json:"quality_model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Providers != nil {
		next.Providers = raw.Providers
	}

	var err error
	if len(raw.GenerationModel) > 0 {
		next.GenerationModel, err = parseAIModelAssignment(raw.GenerationModel, next.GenerationModel)
		if err != nil {
			return err
		}
	}
	if len(raw.QualityModel) > 0 {
		next.QualityModel, err = parseAIModelAssignment(raw.QualityModel, next.QualityModel)
		if err != nil {
			return err
		}
	}

	*a = next
	return nil
}

// parseAIModelAssignment accepts both the structured form and a bare model
// string from older config payloads.
func parseAIModelAssignment(raw json.RawMessage, fallback *AIModelAssignment) (*AIModelAssignment, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return fallback, nil
	}
	if trimmed == "null" {
		return nil, nil
	}

	var legacyModel string
	if err := json.Unmarshal(raw, &legacyModel); err == nil {
		legacyModel = strings.TrimSpace(legacyModel)
		if legacyModel == "" {
			return nil, nil
		}
		next := &AIModelAssignment{}
		if fallback != nil {
			*next = *fallback
		}
		next.Model = legacyModel
		return next, nil
	}

	next := &AIModelAssignment{}
	if fallback != nil {
		*next = *fallback
	}
	if err := json.Unmarshal(raw, next); err != nil {
		return nil, err
	}
	if strings.TrimSpace(next.ProviderID) == "" && strings.TrimSpace(next.Model) == "" {
		return nil, nil
	}
	return next, nil
}

// DefaultFullConfig returns the defaults applied before any stored overrides.
func DefaultFullConfig() FullConfig {
	return FullConfig{
		URL: URLConfig{
			ServerURL: "http://localhost:2333",
			WebURL:    "http://localhost:2323",
		},
		AI: AIConfig{
			Providers: []AIProvider{},
		},
		Generation: GenerationOptions{
			ContentFramework: "SAGE",
			FaqFramework:     "AEO_LLMO",
			TargetWordCount:  1500,
			KeywordDensity:   1.5,
			KeywordsPerType:  8,
			FaqCount:         6,
			MinWordsPerFaq:   50,
		},
		Autosave: AutosaveOptions{
			QuietMS: 2000,
		},
		S3Options: S3Options{
			Region: "auto",
		},
		Webhook: WebhookOptions{
			Enable:          true,
			TimeoutSeconds:  10,
			ThrottleSeconds: 30,
		},
	}
}
