package wecom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/gobeaver/filekit-wxwork/config"
)

// Global instance management
var (
	defaultClient *Client
	defaultOnce   sync.Once
	defaultErr    error
)

// Builder provides a way to create clients with custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global client using the builder's prefix
func (b *Builder) Init() error {
	cfg, err := GetConfig(config.LoadOptions{Prefix: b.prefix})
	if err != nil {
		return err
	}
	return Init(*cfg)
}

// New creates a new client using the builder's prefix
func (b *Builder) New(opts ...Option) (*Client, error) {
	cfg, err := GetConfig(config.LoadOptions{Prefix: b.prefix})
	if err != nil {
		return nil, err
	}
	return New(*cfg, opts...)
}

// Client talks to the platform's temporary media endpoints.
type Client struct {
	baseURL string
	http    *resty.Client
	tokens  TokenSource
	limiter RateLimiter
	logger  zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource overrides Config.AccessToken.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRateLimiter replaces the limiter built from Config.
func WithRateLimiter(l RateLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithHTTPClient makes requests through hc, e.g. to plug a custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		timeout := c.http.GetClient().Timeout
		c.http = resty.NewWithClient(hc).SetTimeout(timeout)
	}
}

// Init initializes the global client with optional config
func Init(configs ...Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = &configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultClient, defaultErr = New(*cfg)
	})

	return defaultErr
}

// Default returns the global client, initializing it from the environment if needed.
func Default() *Client {
	if defaultClient == nil {
		_ = Init()
	}
	return defaultClient
}

// Reset clears the global instance and registered profiles (for testing)
func Reset() {
	defaultClient = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
	resetProfiles()
}

// New creates a client with given config
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    resty.New().SetTimeout(cfg.Timeout),
		logger:  newLogger(cfg),
		limiter: noopLimiter{},
	}
	if cfg.RateLimit > 0 {
		c.limiter = NewTokenBucketLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.AccessToken != "" {
		c.tokens = StaticToken(cfg.AccessToken)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		return nil, fmt.Errorf("invalid config: %w: access token or token source required", ErrInvalidConfig)
	}

	c.http.SetLogger(restyLogger{c.logger}).SetDebug(cfg.Debug)
	return c, nil
}

// validateConfig checks configuration validity
func validateConfig(cfg Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base URL %q is not absolute", ErrInvalidConfig, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		return fmt.Errorf("%w: rate limit cannot be negative", ErrInvalidConfig)
	}
	return nil
}

func newLogger(cfg Config) zerolog.Logger {
	if !cfg.EnableLogging && !cfg.Debug {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("component", "wecom").Logger()
}

func (c *Client) prepare(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoToken, err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// UploadMedia uploads r as a temporary media of the given type and returns its media_id.
// An empty mediaType means "file".
func (c *Client) UploadMedia(ctx context.Context, mediaType, filename string, r io.Reader) (*UploadResult, error) {
	if mediaType == "" {
		mediaType = MediaTypeFile
	}
	token, err := c.prepare(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("type", mediaType).Str("filename", filename).Msg("uploading media")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": token,
			"type":         mediaType,
		}).
		SetFileReader("media", filename, r).
		Post(c.baseURL + uploadPath)
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", ErrUploadRejected, filename, err)
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response (HTTP %d)", ErrUploadRejected, resp.StatusCode())
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: undecodable response (HTTP %d): %v", ErrUploadRejected, resp.StatusCode(), err)
	}
	if out.ErrCode != 0 {
		c.logger.Warn().Int("errcode", out.ErrCode).Str("errmsg", out.ErrMsg).Str("filename", filename).Msg("upload rejected")
		return nil, fmt.Errorf("%w: %w", ErrUploadRejected, &APIError{Code: out.ErrCode, Message: out.ErrMsg})
	}
	if out.MediaID == "" {
		return nil, fmt.Errorf("%w: response carries no media_id", ErrUploadRejected)
	}

	result := &UploadResult{Type: out.Type, MediaID: out.MediaID}
	if sec, err := strconv.ParseInt(out.CreatedAt, 10, 64); err == nil {
		result.CreatedAt = time.Unix(sec, 0)
	}
	return result, nil
}

// GetMedia downloads a temporary media. On success the caller owns Body;
// on every error the response body is already closed.
func (c *Client) GetMedia(ctx context.Context, mediaID string) (*Media, error) {
	token, err := c.prepare(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("media_id", mediaID).Msg("fetching media")

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetQueryParams(map[string]string{
			"access_token": token,
			"media_id":     mediaID,
		}).
		Get(c.baseURL + getPath)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrMediaNotFound, mediaID, err)
	}

	body := resp.RawBody()
	fail := func(cause error) (*Media, error) {
		if body != nil {
			io.Copy(io.Discard, io.LimitReader(body, 4096))
			body.Close()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrMediaNotFound, mediaID, cause)
	}

	h := resp.Header()
	if code := h.Get("Error-Code"); code != "" && code != "0" {
		n, _ := strconv.Atoi(code)
		return fail(&APIError{Code: n, Message: h.Get("Error-Msg")})
	}
	if resp.StatusCode() != http.StatusOK {
		return fail(fmt.Errorf("HTTP %d", resp.StatusCode()))
	}
	if body == nil {
		return fail(errors.New("empty response"))
	}

	m := &Media{
		Body:          body,
		ContentType:   h.Get("Content-Type"),
		ContentLength: -1,
	}
	if resp.RawResponse.ContentLength >= 0 {
		m.ContentLength = resp.RawResponse.ContentLength
	} else if n, err := strconv.ParseInt(h.Get("Content-Length"), 10, 64); err == nil {
		m.ContentLength = n
	}
	if d, err := http.ParseTime(h.Get("Date")); err == nil {
		m.Date = d
	}
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil {
		m.Filename = params["filename"]
	}
	return m, nil
}

// restyLogger routes resty's own messages through zerolog.
type restyLogger struct {
	l zerolog.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
