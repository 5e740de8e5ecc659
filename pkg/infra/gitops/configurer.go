// Package gitops builds and pushes configuration branches on rendered
// repositories: clone, branch, submodule gitlink, extra files, commit as
// the bot identity, push.
package gitops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

type configurer struct {
	username string
	token    string
}

// NewConfigurer creates a RepoConfigurer pushing over HTTPS with the bot's
// credentials.
func NewConfigurer(username, token string) interfaces.RepoConfigurer {
	return &configurer{username: username, token: token}
}

// PushConfigBranch clones the repository into an ephemeral workspace,
// creates the branch, applies the requested submodule and files, commits
// and pushes.
func (c *configurer) PushConfigBranch(ctx context.Context, req *model.ConfigBranchRequest) (*model.ConfigBranchResult, error) {
	logger := ctxlog.From(ctx)

	workDir, err := os.MkdirTemp("", "templatebot-aide-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create workspace")
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Warn("Failed to clean up workspace", "dir", workDir, "error", rmErr)
		}
	}()

	auth := &githttp.BasicAuth{Username: c.username, Password: c.token}

	repo, err := git.PlainCloneContext(ctx, workDir, false, &git.CloneOptions{
		URL:  req.RepoURL,
		Auth: auth,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to clone repository", goerr.V("url", req.RepoURL))
	}

	head, err := repo.Head()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve HEAD", goerr.V("url", req.RepoURL))
	}
	baseBranch := head.Name().Short()

	wt, err := repo.Worktree()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open worktree")
	}

	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(req.BranchName),
		Create: true,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to create branch", goerr.V("branch", req.BranchName))
	}

	for path, content := range req.ExtraFiles {
		if err := writeWorktreeFile(workDir, path, content); err != nil {
			return nil, err
		}
		if _, err := wt.Add(path); err != nil {
			return nil, goerr.Wrap(err, "failed to stage file", goerr.V("path", path))
		}
	}

	if req.Submodule != nil {
		if err := c.addSubmodule(ctx, repo, wt, workDir, req.Submodule); err != nil {
			return nil, err
		}
	}

	sig := &object.Signature{
		Name:  req.AuthorName,
		Email: req.AuthorEmail,
		When:  timeNow(),
	}
	if _, err := wt.Commit(req.CommitMessage, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to commit", goerr.V("branch", req.BranchName))
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", req.BranchName, req.BranchName))
	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to push branch",
			goerr.V("branch", req.BranchName),
			goerr.V("url", req.RepoURL))
	}

	logger.Debug("Pushed configuration branch", "branch", req.BranchName, "base", baseBranch)

	return &model.ConfigBranchResult{
		Branch:     req.BranchName,
		BaseBranch: baseBranch,
	}, nil
}

// addSubmodule records a submodule without a nested clone: .gitmodules plus
// a gitlink index entry pinned to the submodule branch's current tip.
func (c *configurer) addSubmodule(ctx context.Context, repo *git.Repository, wt *git.Worktree, workDir string, sub *model.SubmoduleSpec) error {
	tip, err := remoteBranchTip(ctx, sub.URL, sub.Branch)
	if err != nil {
		return err
	}

	gitmodules := fmt.Sprintf(
		"[submodule %q]\n\tpath = %s\n\turl = %s\n\tbranch = %s\n",
		sub.Name, sub.Path, sub.URL, sub.Branch,
	)
	if err := writeWorktreeFile(workDir, ".gitmodules", gitmodules); err != nil {
		return err
	}
	if _, err := wt.Add(".gitmodules"); err != nil {
		return goerr.Wrap(err, "failed to stage .gitmodules")
	}

	if err := os.MkdirAll(filepath.Join(workDir, sub.Path), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create submodule path", goerr.V("path", sub.Path))
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return goerr.Wrap(err, "failed to read index")
	}
	idx.Entries = append(idx.Entries, &index.Entry{
		Name: sub.Path,
		Hash: tip,
		Mode: filemode.Submodule,
	})
	if err := repo.Storer.SetIndex(idx); err != nil {
		return goerr.Wrap(err, "failed to write index")
	}

	return nil
}

// remoteBranchTip resolves the current commit of a branch on a remote
// without cloning it.
func remoteBranchTip(ctx context.Context, url, branch string) (plumbing.Hash, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return plumbing.ZeroHash, goerr.Wrap(err, "failed to list remote refs", goerr.V("url", url))
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, goerr.New("branch not found on remote",
		goerr.V("url", url),
		goerr.V("branch", branch))
}

func writeWorktreeFile(workDir, path, content string) error {
	full := filepath.Join(workDir, path)
	if !strings.HasPrefix(full, filepath.Clean(workDir)+string(os.PathSeparator)) {
		return goerr.New("file path escapes workspace", goerr.V("path", path))
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", path))
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write file", goerr.V("path", path))
	}
	return nil
}
