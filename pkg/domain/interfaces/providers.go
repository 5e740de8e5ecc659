package interfaces

import (
	"context"
	"crypto/rsa"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// GitHubClient defines the source-hosting operations used by the workflows
type GitHubClient interface {
	// CreateRepo creates an empty repository in an organization
	CreateRepo(ctx context.Context, org, name string, opts *model.RepoOptions) (*model.Repository, error)

	// ListOrgRepoNames iterates every repository in an organization and
	// returns their names.
	ListOrgRepoNames(ctx context.Context, org string) ([]string, error)

	// AuthenticatedUser returns the bot account behind the API token
	AuthenticatedUser(ctx context.Context) (*model.GitHubUser, error)

	// CreatePullRequest opens a pull request
	CreatePullRequest(ctx context.Context, owner, repo string, spec *model.PullRequestSpec) (*model.PullRequest, error)
}

// SlackClient defines the chat operations used for user notification
type SlackClient interface {
	// PostThreadMessage posts a markdown message, threaded when threadTS is
	// non-empty.
	PostThreadMessage(ctx context.Context, channel, threadTS, text string) error

	// UserRealName resolves a Slack user ID to the user's display name
	UserRealName(ctx context.Context, userID string) (string, error)
}

// LTDClient registers documentation products on LSST the Docs
type LTDClient interface {
	RegisterProduct(ctx context.Context, req *model.LTDProductRequest) (*model.LTDProduct, error)
}

// CIClient defines the CI-activation operations for rendered repositories
type CIClient interface {
	// Activate enables CI for a repository slug (owner/name)
	Activate(ctx context.Context, slug string) error

	// SyncAccount triggers an account sync and waits, within a bound, for
	// it to complete.
	SyncAccount(ctx context.Context, slug string) error

	// RepoPublicKey fetches the repository's generated RSA public key,
	// used to encrypt secure environment variables.
	RepoPublicKey(ctx context.Context, slug string) (*rsa.PublicKey, error)
}

// AuthorStore resolves author IDs against the external author registry
type AuthorStore interface {
	GetAuthor(ctx context.Context, authorID string) (*model.AuthorInfo, error)
}

// RepoConfigurer clones a rendered repository and pushes a configuration
// branch with the requested submodule and files.
type RepoConfigurer interface {
	PushConfigBranch(ctx context.Context, req *model.ConfigBranchRequest) (*model.ConfigBranchResult, error)
}
