// Package generator asks an OpenAI-compatible chat completions API for
// candidate domain names.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const DefaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Options configures a Client
type Options struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the chat completions endpoint
type Client struct {
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// New creates a generator client
func New(opts Options, log *zap.Logger) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generator",
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		breaker: breaker,
		log:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate returns candidate domain names for req. A reply that cannot be
// parsed yields an empty slice and a *ParseError; a failed request yields a
// *TransportError.
func (c *Client) Generate(ctx context.Context, req Request) ([]string, error) {
	prompt := BuildPrompt(req)
	c.log.Debug("requesting domain names",
		zap.Int("count", req.Count),
		zap.Int("max_length", req.MaxLength),
		zap.Int("avoid", len(req.Avoid)))

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, &TransportError{Err: err}
	}

	content := out.(string)
	names, err := ParseDomainNames(content)
	if err != nil {
		c.log.Warn("could not parse generator reply", zap.Error(err))
		c.log.Debug("unparsed generator reply", zap.String("content", content))
		return names, err
	}
	c.log.Debug("generated domain names", zap.Strings("names", names))
	return names, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", &TransportError{Err: errors.Wrap(err, "encode request")}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Err: errors.Wrap(err, "build request")}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: errors.Wrap(err, "read response")}
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", &TransportError{StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
	if decodeErr != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: errors.Wrap(decodeErr, "decode response")}
	}
	if len(decoded.Choices) == 0 {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: errors.New("response has no choices")}
	}
	return decoded.Choices[0].Message.Content, nil
}
