// Package gemini wraps the Gemini generative API for the two calls the
// pipeline needs: plain text generation and audio transcription.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	DefaultModel             = "gemini-2.5-flash"
	DefaultPollInterval      = 10 * time.Second
	DefaultMaxProcessingWait = 300 * time.Second

	// QuotaBackoff is how long callers hold off after a quota error.
	QuotaBackoff = time.Minute
)

// DefaultFallbackModels are tried in order when the primary model fails.
var DefaultFallbackModels = []string{"gemini-2.0-flash"}

var (
	ErrMissingAPIKey     = errors.New("gemini API key is not set")
	ErrEmptyResponse     = errors.New("model returned no text")
	ErrProcessingFailed  = errors.New("uploaded file processing failed")
	ErrProcessingTimeout = errors.New("uploaded file still processing")
	ErrUnsupportedAudio  = errors.New("unsupported audio format")
)

// IsQuota reports whether err is the API refusing a call for quota or
// rate limit reasons.
func IsQuota(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}

// Config for a Client.
type Config struct {
	APIKey         string
	Model          string
	FallbackModels []string

	// PollInterval is the gap between upload state checks.
	PollInterval time.Duration

	// MaxProcessingWait bounds how long an upload may stay PROCESSING.
	MaxProcessingWait time.Duration
}

func (c *Config) setDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.FallbackModels == nil {
		c.FallbackModels = DefaultFallbackModels
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxProcessingWait <= 0 {
		c.MaxProcessingWait = DefaultMaxProcessingWait
	}
}

// backend is the slice of the SDK the client uses.
type backend interface {
	upload(ctx context.Context, path, mimeType string) (*genai.File, error)
	getFile(ctx context.Context, name string) (*genai.File, error)
	deleteFile(ctx context.Context, name string) error
	generate(ctx context.Context, model string, parts ...genai.Part) (string, error)
	close() error
}

// Client talks to Gemini. It is safe for sequential use.
type Client struct {
	api backend
	cfg Config
}

// New connects to the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.setDefaults()

	sdk, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newClient(&sdkBackend{client: sdk}, cfg), nil
}

func newClient(api backend, cfg Config) *Client {
	cfg.setDefaults()
	return &Client{api: api, cfg: cfg}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.api.close()
}

// Generate sends a text prompt to the configured model, then to each
// fallback model in turn, and returns the first non-empty answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt))
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	models := append([]string{c.cfg.Model}, c.cfg.FallbackModels...)

	var lastErr error
	for i, model := range models {
		text, err := c.api.generate(ctx, model, parts...)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		lastErr = fmt.Errorf("generate with %s: %w", model, err)
		if ctx.Err() != nil {
			break
		}
		if i < len(models)-1 {
			log.Printf("Gemini: %v, falling back to %s", lastErr, models[i+1])
		}
	}
	return "", lastErr
}

// Transcribe uploads an audio file, waits for it to become ACTIVE and asks
// the model for a speaker-tagged transcript. The upload is always deleted.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	mimeType, ok := audioMIMEType(audioPath)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAudio, filepath.Ext(audioPath))
	}

	file, err := c.api.upload(ctx, audioPath, mimeType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(audioPath), err)
	}
	uploaded := file.Name
	log.Printf("Gemini: uploaded %s as %s", filepath.Base(audioPath), uploaded)

	defer func() {
		// The caller's context may already be cancelled.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := c.api.deleteFile(cleanupCtx, uploaded); err != nil {
			log.Printf("Gemini: failed to delete upload %s: %v", uploaded, err)
		}
	}()

	file, err = c.waitActive(ctx, file)
	if err != nil {
		return "", err
	}

	text, err := c.generate(ctx, genai.FileData{MIMEType: file.MIMEType, URI: file.URI}, genai.Text(TranscriptionPrompt))
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}
	return text, nil
}

func (c *Client) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	var waited time.Duration
	for file.State == genai.FileStateProcessing {
		if waited >= c.cfg.MaxProcessingWait {
			return nil, fmt.Errorf("%w after %s: %s", ErrProcessingTimeout, waited, file.Name)
		}
		log.Printf("Gemini: %s processing (%s)", file.Name, waited)

		timer := time.NewTimer(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		waited += c.cfg.PollInterval

		next, err := c.api.getFile(ctx, file.Name)
		if err != nil {
			return nil, fmt.Errorf("get file %s: %w", file.Name, err)
		}
		file = next
	}

	switch file.State {
	case genai.FileStateFailed:
		return nil, fmt.Errorf("%w: %s", ErrProcessingFailed, file.Name)
	case genai.FileStateActive:
	default:
		log.Printf("Gemini: %s in unexpected state %v, trying anyway", file.Name, file.State)
	}
	return file, nil
}

var audioTypes = map[string]string{
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
	".wav": "audio/wav",
	".aac": "audio/aac",
}

func audioMIMEType(path string) (string, bool) {
	t, ok := audioTypes[strings.ToLower(filepath.Ext(path))]
	return t, ok
}

// IsAudioFile reports whether path has an extension Transcribe accepts.
func IsAudioFile(path string) bool {
	_, ok := audioMIMEType(path)
	return ok
}

type sdkBackend struct {
	client *genai.Client
}

func (b *sdkBackend) upload(ctx context.Context, path, mimeType string) (*genai.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return b.client.UploadFile(ctx, "", f, &genai.UploadFileOptions{
		DisplayName: filepath.Base(path),
		MIMEType:    mimeType,
	})
}

func (b *sdkBackend) getFile(ctx context.Context, name string) (*genai.File, error) {
	return b.client.GetFile(ctx, name)
}

func (b *sdkBackend) deleteFile(ctx context.Context, name string) error {
	return b.client.DeleteFile(ctx, name)
}

func (b *sdkBackend) generate(ctx context.Context, model string, parts ...genai.Part) (string, error) {
	resp, err := b.client.GenerativeModel(model).GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (b *sdkBackend) close() error {
	return b.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		// Only the first candidate with content is used.
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
