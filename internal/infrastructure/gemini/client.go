package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"instareply/internal/utils/apperrors"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config wires the Gemini client.
type Config struct {
	APIKey          string
	GenerationModel string
	EmbeddingModel  string
	// EmbeddingDimensions truncates embedContent output when non-zero.
	EmbeddingDimensions int
	// BaseURL overrides the provider host in tests.
	BaseURL string
}

// Client calls the Gemini REST API for text generation and embeddings.
type Client struct {
	http *resty.Client
	cfg  Config
	log  zerolog.Logger
}

// NewClient builds a Gemini client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetHeader("Content-Type", "application/json").
			SetTimeout(60 * time.Second),
		cfg: cfg,
		log: log.With().Str("component", "gemini").Logger(),
	}
}

type apiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	apiError
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// GenerateReply produces the model's text completion for the prompt.
func (c *Client) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", apperrors.New(apperrors.ErrTypeGeneration, "missing Gemini API key")
	}

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.cfg.APIKey).
		SetBody(generateRequest{
			Contents: []content{{Parts: []part{{Text: prompt}}}},
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/models/%s:generateContent", c.cfg.GenerationModel))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrTypeGeneration, "generation request failed", err)
	}
	if resp.IsError() {
		msg := "generation rejected"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", apperrors.Newf(apperrors.ErrTypeGeneration, "provider error (%d): %s", resp.StatusCode(), msg)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.New(apperrors.ErrTypeGeneration, "provider returned no candidates")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

type embedRequest struct {
	Model                string  `json:"model"`
	Content              content `json:"content"`
	OutputDimensionality int     `json:"outputDimensionality,omitempty"`
}

type embedResponse struct {
	apiError
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.ErrTypeEmbedding, "missing Gemini API key")
	}

	var result embedResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.cfg.APIKey).
		SetBody(embedRequest{
			Model:                "models/" + c.cfg.EmbeddingModel,
			Content:              content{Parts: []part{{Text: text}}},
			OutputDimensionality: c.cfg.EmbeddingDimensions,
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/models/%s:embedContent", c.cfg.EmbeddingModel))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeEmbedding, "embedding request failed", err)
	}
	if resp.IsError() {
		msg := "embedding rejected"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return nil, apperrors.Newf(apperrors.ErrTypeEmbedding, "provider error (%d): %s", resp.StatusCode(), msg)
	}
	if len(result.Embedding.Values) == 0 {
		return nil, apperrors.New(apperrors.ErrTypeEmbedding, "provider returned an empty embedding")
	}

	return result.Embedding.Values, nil
}
