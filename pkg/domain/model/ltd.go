package model

// LTD edition tracking modes. See
// https://ltd-keeper.lsst.io/editions.html#tracking-modes
const (
	LTDModeGitRefs = "git_refs"
	LTDModeLsstDoc = "lsst_doc"
)

// LTDProductRequest registers a new product on LSST the Docs
type LTDProductRequest struct {
	Slug       string
	Title      string
	GitHubRepo string
	MainMode   string // defaults to git_refs when empty
}

// LTDProduct is the registered product resource
type LTDProduct struct {
	Slug         string
	PublishedURL string
}
