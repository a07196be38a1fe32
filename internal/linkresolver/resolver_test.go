package linkresolver

import (
	"net/url"
	"testing"
)

func TestDirectURL(t *testing.T) {
	t.Parallel()

	r := Default()
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://github.com/org/repo/blob/master/notebooks/analysis.ipynb",
			"https://raw.githubusercontent.com/org/repo/master/notebooks/analysis.ipynb",
		},
		{
			"https://nbviewer.jupyter.org/github/org/repo/blob/main/fig.ipynb",
			"https://raw.githubusercontent.com/org/repo/main/fig.ipynb",
		},
		{
			"http://nbviewer.ipython.org/url/example.org/files/demo.ipynb",
			"http://example.org/files/demo.ipynb",
		},
		{
			"https://nbviewer.jupyter.org/urls/example.org/demo.ipynb",
			"https://example.org/demo.ipynb",
		},
		{
			"https://gist.github.com/someone/abc123",
			"https://gist.githubusercontent.com/someone/abc123/raw",
		},
		{
			"https://raw.githubusercontent.com/org/repo/master/a.ipynb",
			"https://raw.githubusercontent.com/org/repo/master/a.ipynb",
		},
		{"relative/path.ipynb", "relative/path.ipynb"},
		{"  https://example.org/x.ipynb ", "https://example.org/x.ipynb"},
	}

	for _, tc := range cases {
		if got := r.DirectURL(tc.in); got != tc.want {
			t.Fatalf("DirectURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type fixedStrategy struct{ name, target string }

func (f fixedStrategy) Name() string            { return f.name }
func (f fixedStrategy) Match(*url.URL) bool     { return true }
func (f fixedStrategy) Resolve(*url.URL) string { return f.target }

func TestRegisterReplacesByName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(fixedStrategy{name: "any", target: "first"})
	r.Register(fixedStrategy{name: "any", target: "second"})

	if got := r.DirectURL("https://example.org/a.ipynb"); got != "second" {
		t.Fatalf("expected replaced strategy, got %q", got)
	}
}
