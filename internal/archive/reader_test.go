package archive

import (
	"bytes"
	"testing"
)

func TestStripWrapper(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "ytd assignment",
			in:   "window.YTD.tweets.part0 = [\n  { \"tweet\": {} }\n]",
			want: "[\n  { \"tweet\": {} }\n]",
		},
		{
			name: "account assignment with object wrapper",
			in:   "window.YTD.account.part0 = [ { \"account\": {} } ]",
			want: "[ { \"account\": {} } ]",
		},
		{
			name: "bare json passes through",
			in:   "[{\"tweet\": {}}]",
			want: "[{\"tweet\": {}}]",
		},
		{
			name: "empty file",
			in:   "",
			want: "[]",
		},
		{
			name: "single line without content",
			in:   "window.YTD.like.part0 =",
			want: "[]",
		},
		{
			name: "no assignment at all",
			in:   "window.YTD.like.part0",
			want: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripWrapper([]byte(tt.in))
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("stripWrapper() = %q, want %q", got, tt.want)
			}
		})
	}
}
