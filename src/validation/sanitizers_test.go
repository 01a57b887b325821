package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFreeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeFreeText("  hello world \x00 "))
	assert.Equal(t, "line1\nline2", SanitizeFreeText("line1\nline2"))
	assert.Equal(t, "", SanitizeFreeText("\x00\x1b"))
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "123 Main St", want: "123 Main St"},
		{name: "equals prefixed", input: "=SUM(A1:A9)", want: "'=SUM(A1:A9)"},
		{name: "plus prefixed", input: "+1234", want: "'+1234"},
		{name: "minus prefixed", input: "-cmd", want: "'-cmd"},
		{name: "at prefixed", input: "@import", want: "'@import"},
		{name: "leading spaces before formula char", input: "  =1+1", want: "'  =1+1"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeForFormulaInjection(tt.input))
		})
	}
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "abc", StripUnprintable("a\x00b\x07c"))
	assert.Equal(t, "tab\there", StripUnprintable("tab\there"))
	assert.Equal(t, "multi\nline\r", StripUnprintable("multi\nline\r"))
}
