package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
)

var (
	ErrProviderRejected = errors.New("provider rejected message")
)

// SendRequest is the provider's send payload. A single request carries
// one rendered message for one recipient.
type SendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Content string `json:"content"`
}

// SendResponse carries the provider-assigned message id used later to
// correlate delivery and reply webhooks.
type SendResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type Config struct {
	URL             string
	APIKey          string
	Timeout         time.Duration
	MaxConns        int
	ReadBufferSize  int
	WriteBufferSize int
}

type Client struct {
	config *Config
	client *fasthttp.Client
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.URL == "" {
		return nil, errors.New("provider url is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := &fasthttp.Client{
		MaxConnsPerHost:     config.MaxConns,
		ReadTimeout:         config.Timeout,
		WriteTimeout:        config.Timeout,
		MaxIdleConnDuration: 60 * time.Second,
		ReadBufferSize:      config.ReadBufferSize,
		WriteBufferSize:     config.WriteBufferSize,
	}

	logger.Info("SMS provider client initialized", "url", config.URL, "timeout", config.Timeout)

	return &Client{
		config: config,
		client: httpClient,
	}, nil
}

// SendSMS submits one message to the provider. There are no retries: a
// failed submission is recorded as failed and the number moves on.
func (c *Client) SendSMS(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	startTime := time.Now()
	response, err := c.doRequest(ctx, "POST", "/api/v1/sms/send", reqBody)
	latency := time.Since(startTime).Milliseconds()

	if err != nil {
		logger.Warn("Provider send failed", "to", req.To, "error", err, "latency_ms", latency)
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	logger.Info("SMS accepted by provider", "provider_message_id", resp.ID, "to", req.To, "latency_ms", latency)

	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	url := c.config.URL + path
	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(resp.Body(), &apiErr)
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Error
		}
		if detail == "" {
			detail = string(resp.Body())
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderRejected, statusCode, detail)
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}
