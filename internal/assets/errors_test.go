package assets

import (
	"fmt"
	"io/fs"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("open img/a.png: %w", fs.ErrNotExist), true},
		{&StatusError{URL: "http://x/a.png", StatusCode: 404}, true},
		{fmt.Errorf("wrap: %w", &StatusError{StatusCode: 410}), true},
		{&StatusError{StatusCode: 500}, false},
		{ErrIsDir, false},
		{nil, false},
	}
	for _, c := range cases {
		if got := IsNotFound(c.err); got != c.want {
			t.Fatalf("IsNotFound(%v) 期望 %v，实际 %v", c.err, c.want, got)
		}
	}
}
