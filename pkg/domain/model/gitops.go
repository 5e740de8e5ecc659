package model

// SubmoduleSpec describes a git submodule to add to a repository
type SubmoduleSpec struct {
	Name   string
	Path   string
	URL    string
	Branch string
}

// ConfigBranchRequest describes a configuration branch to build and push:
// an optional submodule plus extra files, committed as the bot identity.
type ConfigBranchRequest struct {
	RepoURL       string
	BranchName    string
	CommitMessage string
	AuthorName    string
	AuthorEmail   string
	Submodule     *SubmoduleSpec
	ExtraFiles    map[string]string // path -> content
}

// ConfigBranchResult reports the pushed branch and the repository's default
// branch, used as the pull request base.
type ConfigBranchResult struct {
	Branch     string
	BaseBranch string
}
