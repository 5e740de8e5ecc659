package model

// AuthorInfo is a consolidated author record resolved from the lsst-texmf
// authordb.yaml file. Text fields are plain text; LaTeX markup from the
// source document is already flattened.
type AuthorInfo struct {
	AuthorID           string
	GivenName          string
	FamilyName         string
	ORCID              string // full https://orcid.org/... URL, or empty
	AffiliationName    string
	AffiliationID      string
	AffiliationAddress string
}
