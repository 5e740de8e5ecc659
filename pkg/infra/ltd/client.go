package ltd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// DefaultBaseURL is the production LTD Keeper API endpoint
const DefaultBaseURL = "https://keeper.lsst.codes"

type client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// Option configures the LTD client
type Option func(*client)

// WithBaseURL overrides the Keeper API endpoint
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// NewClient creates an LSST the Docs (Keeper) API client
func NewClient(username, password string, opts ...Option) interfaces.LTDClient {
	c := &client{
		baseURL:    DefaultBaseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// token fetches an auth token. The token is used as the username of a basic
// auth pair with no password.
func (c *client) token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token", nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token request")
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get LTD token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status from LTD token endpoint",
			goerr.V("status", resp.StatusCode))
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", goerr.Wrap(err, "failed to decode LTD token response")
	}
	return body.Token, nil
}

// RegisterProduct registers a new product and fetches the created resource
func (c *client) RegisterProduct(ctx context.Context, prodReq *model.LTDProductRequest) (*model.LTDProduct, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	mainMode := prodReq.MainMode
	if mainMode == "" {
		mainMode = model.LTDModeGitRefs
	}

	payload := map[string]string{
		"title":              prodReq.Title,
		"slug":               prodReq.Slug,
		"doc_repo":           prodReq.GitHubRepo,
		"main_mode":          mainMode,
		"bucket_name":        "lsst-the-docs",
		"root_domain":        "lsst.io",
		"root_fastly_domain": "n.global-ssl.fastly.net",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal product payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/", bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build product request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(token, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to register LTD product", goerr.V("slug", prodReq.Slug))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return nil, goerr.New("unexpected status from LTD product registration",
			goerr.V("status", resp.StatusCode),
			goerr.V("slug", prodReq.Slug))
	}

	productURL := resp.Header.Get("Location")
	if productURL == "" {
		return nil, goerr.New("LTD product registration returned no Location header",
			goerr.V("slug", prodReq.Slug))
	}

	return c.getProduct(ctx, token, productURL)
}

// getProduct fetches the product resource created by RegisterProduct
func (c *client) getProduct(ctx context.Context, token, productURL string) (*model.LTDProduct, error) {
	if _, err := url.Parse(productURL); err != nil {
		return nil, goerr.Wrap(err, "invalid product URL", goerr.V("url", productURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build product fetch request")
	}
	req.SetBasicAuth(token, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch LTD product", goerr.V("url", productURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status fetching LTD product",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", productURL))
	}

	var body struct {
		Slug         string `json:"slug"`
		PublishedURL string `json:"published_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode LTD product response")
	}

	return &model.LTDProduct{
		Slug:         body.Slug,
		PublishedURL: body.PublishedURL,
	}, nil
}
