package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

// TokenSource provides the bearer token for REST requests
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token implements TokenSource
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// RESTConfig holds REST client configuration
type RESTConfig struct {
	BaseURL string // DSH resource management API, e.g. "https://api.dsh-dev.dsh.np.aws.kpn.com/resources/v0"
	Tenant  string
	Token   TokenSource
	Timeout time.Duration
	TLS     *tls.Config
}

// RESTClient implements API against the DSH REST API
type RESTClient struct {
	baseURL    string
	tenant     string
	token      TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRESTClient creates a new REST client
func NewRESTClient(cfg RESTConfig, logger *zap.Logger) *RESTClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport
	if cfg.TLS != nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = cfg.TLS
		transport = t
	}
	return &RESTClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tenant:  cfg.Tenant,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

func (c *RESTClient) configurationPath(kind model.ProcessorKind, name string) (string, error) {
	tenant, name := url.PathEscape(c.tenant), url.PathEscape(name)
	switch kind {
	case model.KindService:
		return fmt.Sprintf("/allocation/%s/application/%s/configuration", tenant, name), nil
	case model.KindApp:
		return fmt.Sprintf("/appcatalog/%s/appcatalogapp/%s/configuration", tenant, name), nil
	}
	return "", Unexpected(fmt.Sprintf("unsupported processor kind '%s'", kind))
}

func (c *RESTClient) statusPath(kind model.ProcessorKind, name string) (string, error) {
	tenant, name := url.PathEscape(c.tenant), url.PathEscape(name)
	switch kind {
	case model.KindService:
		return fmt.Sprintf("/allocation/%s/application/%s/status", tenant, name), nil
	case model.KindApp:
		return fmt.Sprintf("/allocation/%s/appcatalogapp/%s/status", tenant, name), nil
	}
	return "", Unexpected(fmt.Sprintf("unsupported processor kind '%s'", kind))
}

// Create implements API
func (c *RESTClient) Create(ctx context.Context, name string, d descriptor.Descriptor) error {
	path, err := c.configurationPath(d.Kind(), name)
	if err != nil {
		return err
	}
	body, err := json.Marshal(d)
	if err != nil {
		return Unexpected(fmt.Sprintf("marshal descriptor: %v", err))
	}
	resp, err := c.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Delete implements API
func (c *RESTClient) Delete(ctx context.Context, kind model.ProcessorKind, name string) error {
	path, err := c.configurationPath(kind, name)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// AllocationStatus implements API
func (c *RESTClient) AllocationStatus(ctx context.Context, kind model.ProcessorKind, name string) (*AllocationStatus, error) {
	path, err := c.statusPath(kind, name)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status AllocationStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, Unexpected(fmt.Sprintf("decode response: %v", err))
	}
	return &status, nil
}

// do sends a request and maps non 2xx responses to APIErrors. The caller
// closes the body of the returned response.
func (c *RESTClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, Unexpected(fmt.Sprintf("create request: %v", err))
	}
	if err := c.setHeaders(ctx, req, body != nil); err != nil {
		return nil, err
	}

	c.logger.Debug("platform request", zap.String("method", method), zap.String("path", path))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Unexpected(fmt.Sprintf("send request: %v", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	c.logger.Debug("platform response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, NotFound(path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NotAuthorized(strings.TrimSpace(string(msg)))
	}
	return nil, Unexpected(fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
}

func (c *RESTClient) setHeaders(ctx context.Context, req *http.Request, hasBody bool) error {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token == nil {
		return nil
	}
	token, err := c.token.Token(ctx)
	if err != nil {
		return NotAuthorized(fmt.Sprintf("token: %v", err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}
