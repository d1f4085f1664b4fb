package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "crlf line endings",
			in:   "one\r\ntwo\r\nthree",
			want: "one\ntwo\nthree",
		},
		{
			name: "bare cr line endings",
			in:   "one\rtwo",
			want: "one\ntwo",
		},
		{
			name: "excess blank lines collapsed",
			in:   "one\n\n\n\n\n\ntwo",
			want: "one\n\ntwo",
		},
		{
			name: "single blank line preserved",
			in:   "one\n\ntwo",
			want: "one\n\ntwo",
		},
		{
			name: "edges trimmed",
			in:   "\n\n  body text  \n\n",
			want: "body text",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
