package model

// TemplateClass groups template names into the families that the event
// router dispatches on.
type TemplateClass string

const (
	// ClassTechnote covers templates whose repository name is assigned from
	// a per-series sequence number (e.g. sqr-042).
	ClassTechnote TemplateClass = "technote"

	// ClassDocument covers DocuShare-managed documents whose handle is
	// pre-assigned outside this service.
	ClassDocument TemplateClass = "document"

	// ClassGeneric is the fallback for every other template
	ClassGeneric TemplateClass = "generic"
)

// technoteTemplates are the templates in lsst/templates that correspond to
// technical notes.
var technoteTemplates = map[string]struct{}{
	"technote_rst":      {},
	"technote_md":       {},
	"technote_latex":    {},
	"technote_aastex":   {},
	"technote_adasstex": {},
	"technote_spietex":  {},
}

// documentTemplates are the DocuShare-class document templates
var documentTemplates = map[string]struct{}{
	"latex_lsstdoc": {},
	"test_report":   {},
}

// latexTemplates are the templates that get a lsst-texmf submodule pull
// request in the postrender phase.
var latexTemplates = map[string]struct{}{
	"technote_latex":    {},
	"technote_aastex":   {},
	"technote_adasstex": {},
	"technote_spietex":  {},
	"test_report":       {},
}

// KnownTechnoteHandles are series prefixes that belong to technotes. A
// document request whose series lands in this set picked the wrong template
// family.
var KnownTechnoteHandles = map[string]struct{}{
	"DMTN":     {},
	"ITTN":     {},
	"RTN":      {},
	"PSTN":     {},
	"SITCOMTN": {},
	"SMTN":     {},
	"SQR":      {},
	"TSTN":     {},
}

// Classify maps a template name to its class. Unknown names classify as
// generic; only the prerender topic acts on that fallback.
func Classify(templateName string) TemplateClass {
	if _, ok := technoteTemplates[templateName]; ok {
		return ClassTechnote
	}
	if _, ok := documentTemplates[templateName]; ok {
		return ClassDocument
	}
	return ClassGeneric
}

// IsLaTeXTemplate reports whether the template gets the lsst-texmf
// submodule PR after rendering.
func IsLaTeXTemplate(templateName string) bool {
	_, ok := latexTemplates[templateName]
	return ok
}

// IsTechnoteHandle reports whether a series prefix is a known technote series
func IsTechnoteHandle(series string) bool {
	_, ok := KnownTechnoteHandles[series]
	return ok
}
