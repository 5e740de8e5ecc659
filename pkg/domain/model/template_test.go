package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		template string
		expect   model.TemplateClass
	}{
		{"technote_rst", model.ClassTechnote},
		{"technote_md", model.ClassTechnote},
		{"technote_latex", model.ClassTechnote},
		{"latex_lsstdoc", model.ClassDocument},
		{"test_report", model.ClassDocument},
		{"stack_package", model.ClassGeneric},
		{"nonexistent_template", model.ClassGeneric},
		{"", model.ClassGeneric},
	}

	for _, tc := range cases {
		gt.Equal(t, model.Classify(tc.template), tc.expect)
	}
}

func TestIsLaTeXTemplate(t *testing.T) {
	gt.True(t, model.IsLaTeXTemplate("technote_latex"))
	gt.True(t, model.IsLaTeXTemplate("test_report"))
	gt.True(t, !model.IsLaTeXTemplate("technote_rst"))
	gt.True(t, !model.IsLaTeXTemplate("stack_package"))
}

func TestIsTechnoteHandle(t *testing.T) {
	gt.True(t, model.IsTechnoteHandle("SQR"))
	gt.True(t, model.IsTechnoteHandle("DMTN"))
	gt.True(t, !model.IsTechnoteHandle("LDM"))
	gt.True(t, !model.IsTechnoteHandle("sqr"))
}
