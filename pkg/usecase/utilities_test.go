package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/usecase"
)

func TestCleanStringWhitespace(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"already clean", "A title", "A title"},
		{"leading and trailing", "  A title ", "A title"},
		{"internal newlines", "A\ntitle\nacross lines", "A title across lines"},
		{"tabs and runs", "A\t\ttitle   here", "A title here"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, usecase.CleanStringWhitespace(tc.input), tc.expect)
		})
	}
}
