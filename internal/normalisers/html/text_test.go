package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Pump stops on occlusion  ", "Pump stops on occlusion"},
		{"empty", "", ""},
		{
			"paragraphs",
			"<div>Severity: 4 - Critical</div><div>Probability: 2 - Low</div>",
			"Severity: 4 - Critical\nProbability: 2 - Low",
		},
		{"line breaks", "first<br>second<br/>third", "first\nsecond\nthird"},
		{"entities", "<p>dose &gt; limit &amp; alarm&nbsp;off</p>", "dose > limit & alarm off"},
		{"inline tags", "<p>The <b>bolus</b> <i>limit</i></p>", "The bolus limit"},
		{"script dropped", "<p>ok</p><script>alert(1)</script>", "ok"},
		{"style dropped", "<style>p{color:red}</style><p>ok</p>", "ok"},
		{"comment dropped", "<!-- hidden --><p>shown</p>", "shown"},
		{"list", "<ul><li>one</li><li>two</li></ul>", "one\ntwo"},
		{"table cells", "<table><tr><td>a</td><td>b</td></tr></table>", "a b"},
		{"blank lines removed", "<p></p><p>  </p><p>x</p>", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToText(tt.in))
		})
	}
}
