package travis

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/utils/backoff"
)

// API hosts. Repositories in the legacy organizations still live on the
// .org endpoint; everything else uses .com.
const (
	hostCom = "https://api.travis-ci.com"
	hostOrg = "https://api.travis-ci.org"
)

// legacyOrgs are GitHub organizations served by the travis-ci.org endpoint
var legacyOrgs = map[string]struct{}{
	"lsst":      {},
	"lsst-sims": {},
}

type client struct {
	tokenCom   string
	tokenOrg   string
	httpClient *http.Client
	syncPolicy backoff.Policy
}

// Option configures the Travis client
type Option func(*client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithSyncPolicy overrides the sync poll bound
func WithSyncPolicy(p backoff.Policy) Option {
	return func(c *client) { c.syncPolicy = p }
}

// NewClient creates a Travis CI API client holding tokens for both the .com
// and .org endpoints.
func NewClient(tokenCom, tokenOrg string, opts ...Option) interfaces.CIClient {
	c := &client{
		tokenCom:   tokenCom,
		tokenOrg:   tokenOrg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		syncPolicy: backoff.Policy{Interval: 10 * time.Second, MaxAttempts: 30},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) endpoint(slug string) (host, token string) {
	org := strings.SplitN(slug, "/", 2)[0]
	if _, ok := legacyOrgs[org]; ok {
		return hostOrg, c.tokenOrg
	}
	return hostCom, c.tokenCom
}

func (c *client) do(ctx context.Context, method, slug, path string, out interface{}) error {
	host, token := c.endpoint(slug)

	req, err := http.NewRequestWithContext(ctx, method, host+path, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build Travis request", goerr.V("path", path))
	}
	req.Header.Set("Travis-API-Version", "3")
	req.Header.Set("User-Agent", "templatebot-aide")
	req.Header.Set("Authorization", "token "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "Travis request failed", goerr.V("path", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return goerr.New("unexpected status from Travis",
			goerr.V("status", resp.StatusCode),
			goerr.V("path", path))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return goerr.Wrap(err, "failed to decode Travis response", goerr.V("path", path))
		}
	}
	return nil
}

// Activate enables CI builds for a repository
func (c *client) Activate(ctx context.Context, slug string) error {
	path := "/repo/" + url.PathEscape(slug) + "/activate"
	if err := c.do(ctx, http.MethodPost, slug, path, nil); err != nil {
		return goerr.Wrap(err, "failed to activate Travis for repository", goerr.V("slug", slug))
	}
	return nil
}

type travisUser struct {
	ID        int64 `json:"id"`
	IsSyncing bool  `json:"is_syncing"`
}

func (c *client) currentUser(ctx context.Context, slug string) (*travisUser, error) {
	var user travisUser
	if err := c.do(ctx, http.MethodGet, slug, "/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SyncAccount triggers an account sync so a freshly created repository
// becomes visible to Travis, and waits for the sync to settle. Each wait is
// bounded; a sync that never completes surfaces as an error instead of
// hanging the workflow.
func (c *client) SyncAccount(ctx context.Context, slug string) error {
	logger := ctxlog.From(ctx)

	// A sync may already be running from a previous request
	var user *travisUser
	err := c.syncPolicy.Wait(ctx, func(ctx context.Context) (bool, error) {
		u, err := c.currentUser(ctx, slug)
		if err != nil {
			return false, err
		}
		user = u
		return !u.IsSyncing, nil
	})
	if err != nil {
		return goerr.Wrap(err, "timed out waiting for a previous Travis sync", goerr.V("slug", slug))
	}

	path := "/user/" + strconv.FormatInt(user.ID, 10) + "/sync"
	if err := c.do(ctx, http.MethodPost, slug, path, nil); err != nil {
		return goerr.Wrap(err, "failed to trigger Travis sync", goerr.V("slug", slug))
	}
	logger.Debug("Triggered Travis CI sync", "slug", slug, "user_id", user.ID)

	if err := backoff.Sleep(ctx, c.syncPolicy.Interval); err != nil {
		return err
	}
	err = c.syncPolicy.Wait(ctx, func(ctx context.Context) (bool, error) {
		u, err := c.currentUser(ctx, slug)
		if err != nil {
			return false, err
		}
		return !u.IsSyncing, nil
	})
	if err != nil {
		return goerr.Wrap(err, "timed out waiting for Travis sync to complete", goerr.V("slug", slug))
	}

	// Empirical headroom: repositories are not queryable the instant the
	// sync flag clears.
	return backoff.Sleep(ctx, c.syncPolicy.Interval)
}

// RepoPublicKey fetches the repository's generated RSA public key
func (c *client) RepoPublicKey(ctx context.Context, slug string) (*rsa.PublicKey, error) {
	var body struct {
		PublicKey string `json:"public_key"`
	}
	path := "/repo/" + url.PathEscape(slug) + "/key_pair/generated"
	if err := c.do(ctx, http.MethodGet, slug, path, &body); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch Travis key pair", goerr.V("slug", slug))
	}

	return ParsePublicKey([]byte(body.PublicKey))
}

// ParsePublicKey parses a PEM encoded RSA public key in either PKIX or
// PKCS#1 form.
func ParsePublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, goerr.New("no PEM block in Travis public key")
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, goerr.New("Travis public key is not RSA")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse Travis public key")
	}
	return rsaKey, nil
}
