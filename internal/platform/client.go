package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	interactiveTimeout = 10 * time.Second
	uploadTimeout      = 30 * time.Second
)

var (
	// ErrUpstream indicates a failed platform API call. Calls are not safely
	// idempotent at the platform layer, so nothing here retries.
	ErrUpstream = errors.New("platform: api call failed")

	errMissingBaseURL = errors.New("platform: base url is required")
	errMissingToken   = errors.New("platform: bot token is required")
)

// Client is the outbound surface the bot needs from the platform.
type Client interface {
	PublishHome(ctx context.Context, userID string, view HomeView) error
	OpenModal(ctx context.Context, triggerID string, view Modal) error
	UpdateModal(ctx context.Context, viewID string, view Modal) error
	PostMessage(ctx context.Context, channelID, text string) error
	UploadFile(ctx context.Context, channelID, filename string, content []byte) error
	GroupMembers(ctx context.Context, groupID string) ([]string, error)
}

// HTTPClientConfig configures the REST client.
type HTTPClientConfig struct {
	BaseURL  string
	BotToken string
	Logger   *zap.Logger
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// HTTPClient talks to the platform's REST API. Interactive calls are bounded
// at 10 seconds, uploads at 30.
type HTTPClient struct {
	baseURL    string
	botToken   string
	logger     *zap.Logger
	httpClient *http.Client
}

// NewHTTPClient constructs the REST client.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errMissingToken
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{
		baseURL:    baseURL,
		botToken:   cfg.BotToken,
		logger:     logger,
		httpClient: httpClient,
	}, nil
}

type apiResponse struct {
	OK    bool     `json:"ok"`
	Error string   `json:"error"`
	Users []string `json:"users"`
}

// PublishHome replaces the user's home surface.
func (c *HTTPClient) PublishHome(ctx context.Context, userID string, view HomeView) error {
	payload := map[string]interface{}{"user_id": userID, "view": view}
	return c.postJSON(ctx, "/views.publish", payload, interactiveTimeout)
}

// OpenModal opens a modal in response to an interaction.
func (c *HTTPClient) OpenModal(ctx context.Context, triggerID string, view Modal) error {
	payload := map[string]interface{}{"trigger_id": triggerID, "view": view}
	return c.postJSON(ctx, "/views.open", payload, interactiveTimeout)
}

// UpdateModal replaces the content of an open modal.
func (c *HTTPClient) UpdateModal(ctx context.Context, viewID string, view Modal) error {
	payload := map[string]interface{}{"view_id": viewID, "view": view}
	return c.postJSON(ctx, "/views.update", payload, interactiveTimeout)
}

// PostMessage sends a plain message to a channel or user.
func (c *HTTPClient) PostMessage(ctx context.Context, channelID, text string) error {
	payload := map[string]interface{}{"channel": channelID, "text": text}
	return c.postJSON(ctx, "/chat.postMessage", payload, interactiveTimeout)
}

// GroupMembers lists the member ids of a user group.
func (c *HTTPClient) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	payload := map[string]interface{}{"usergroup": groupID}
	parsed, err := c.call(ctx, "/usergroups.users.list", payload, interactiveTimeout)
	if err != nil {
		return nil, err
	}
	return parsed.Users, nil
}

// UploadFile uploads a file to a channel with the longer transfer timeout.
func (c *HTTPClient) UploadFile(ctx context.Context, channelID, filename string, content []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("channels", channelID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/files.upload", &body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+c.botToken)
	_, err = c.send(request, "/files.upload")
	return err
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload interface{}, timeout time.Duration) error {
	_, err := c.call(ctx, path, payload, timeout)
	return err
}

func (c *HTTPClient) call(ctx context.Context, path string, payload interface{}, timeout time.Duration) (apiResponse, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return apiResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return apiResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.botToken)
	return c.send(request, path)
}

func (c *HTTPClient) send(request *http.Request, path string) (apiResponse, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Error("platform call failed",
			zap.String("path", path),
			zap.Error(err))
		return apiResponse{}, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return apiResponse{}, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	if response.StatusCode != http.StatusOK {
		c.logger.Error("platform call rejected",
			zap.String("path", path),
			zap.Int("status", response.StatusCode))
		return apiResponse{}, fmt.Errorf("%w: %s: status %d", ErrUpstream, path, response.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apiResponse{}, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	if !parsed.OK {
		c.logger.Error("platform call returned error",
			zap.String("path", path),
			zap.String("api_error", parsed.Error))
		return parsed, fmt.Errorf("%w: %s: %s", ErrUpstream, path, parsed.Error)
	}
	return parsed, nil
}
