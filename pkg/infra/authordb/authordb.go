// Package authordb reads the author registry published in the
// lsst/lsst-texmf repository (etc/authordb.yaml).
package authordb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// DefaultURL is the canonical location of the author registry
const DefaultURL = "https://raw.githubusercontent.com/lsst/lsst-texmf/main/etc/authordb.yaml"

// dbFile mirrors the authordb.yaml document
type dbFile struct {
	// Affiliations map IDs to "name, address" strings
	Affiliations map[string]string `yaml:"affiliations"`
	Authors      map[string]author `yaml:"authors"`
}

type author struct {
	Name     string   `yaml:"name"`     // family name
	Initials string   `yaml:"initials"` // given name
	Affil    []string `yaml:"affil"`
	ORCID    string   `yaml:"orcid"`
}

// DB is a parsed snapshot of the author registry
type DB struct {
	data dbFile
}

// Parse builds a DB from raw authordb.yaml content
func Parse(raw []byte) (*DB, error) {
	var data dbFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, goerr.Wrap(err, "failed to parse authordb.yaml")
	}
	return &DB{data: data}, nil
}

// GetAuthor resolves an author ID to consolidated author information.
// LaTeX markup in text fields is flattened to plain text and the first
// affiliation is split into its name and address parts.
func (db *DB) GetAuthor(authorID string) (*model.AuthorInfo, error) {
	entry, ok := db.data.Authors[authorID]
	if !ok {
		return nil, goerr.Wrap(model.ErrAuthorNotFound, "unknown author ID",
			goerr.V("author_id", authorID))
	}

	orcid := entry.ORCID
	if orcid != "" && !strings.HasPrefix(orcid, "http") {
		orcid = "https://orcid.org/" + orcid
	}

	info := &model.AuthorInfo{
		AuthorID:   authorID,
		GivenName:  latexToText(entry.Initials),
		FamilyName: latexToText(entry.Name),
		ORCID:      orcid,
	}

	if len(entry.Affil) > 0 {
		affilID := entry.Affil[0]
		affil, ok := db.data.Affiliations[affilID]
		if !ok {
			return nil, goerr.Wrap(model.ErrAuthorNotFound, "unknown affiliation ID",
				goerr.V("author_id", authorID),
				goerr.V("affiliation_id", affilID))
		}

		name, address, found := strings.Cut(affil, ",")
		info.AffiliationID = affilID
		info.AffiliationName = latexToText(name)
		if found {
			info.AffiliationAddress = latexToText(strings.TrimSpace(address))
		}
	}

	return info, nil
}

// store fetches the registry per lookup. Volume is low enough that a local
// cache is not worth the staleness risk.
type store struct {
	url        string
	httpClient *http.Client
}

// Option configures the author store
type Option func(*store)

// WithURL overrides the registry location
func WithURL(u string) Option {
	return func(s *store) { s.url = u }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(s *store) { s.httpClient = hc }
}

// NewStore creates an AuthorStore backed by the remote authordb.yaml
func NewStore(opts ...Option) interfaces.AuthorStore {
	s := &store{
		url:        DefaultURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAuthor downloads the registry and resolves the author ID
func (s *store) GetAuthor(ctx context.Context, authorID string) (*model.AuthorInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build authordb request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download authordb.yaml", goerr.V("url", s.url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status downloading authordb.yaml",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", s.url))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read authordb.yaml")
	}

	db, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return db.GetAuthor(authorID)
}

// IsNotFound reports whether an error means the author ID is absent
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrAuthorNotFound)
}
