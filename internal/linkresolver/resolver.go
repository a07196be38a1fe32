// Package linkresolver maps notebook links found in papers to URLs that serve
// the raw notebook JSON.
package linkresolver

import (
	"net/url"
	"strings"

	"NotebookValidator/internal/ports"
)

// Strategy rewrites links for one hosting service (GitHub, nbviewer, etc.).
type Strategy interface {
	Name() string
	Match(u *url.URL) bool
	Resolve(u *url.URL) string
}

// Registry tries strategies in registration order; unmatched links are returned unchanged.
type Registry struct {
	strategies []Strategy
}

var _ ports.LinkResolver = (*Registry)(nil)

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default returns a registry with every built-in strategy.
func Default() *Registry {
	r := NewRegistry()
	r.Register(NbviewerStrategy{})
	r.Register(GitHubBlobStrategy{})
	r.Register(GistStrategy{})
	return r
}

// Register adds or replaces a strategy by name.
func (r *Registry) Register(strategy Strategy) {
	for i, existing := range r.strategies {
		if existing.Name() == strategy.Name() {
			r.strategies[i] = strategy
			return
		}
	}
	r.strategies = append(r.strategies, strategy)
}

// DirectURL returns the raw download URL for originalURL.
func (r *Registry) DirectURL(originalURL string) string {
	trimmed := strings.TrimSpace(originalURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return trimmed
	}
	for _, strategy := range r.strategies {
		if strategy.Match(u) {
			return strategy.Resolve(u)
		}
	}
	return trimmed
}

// GitHubBlobStrategy turns github.com/<owner>/<repo>/blob/<ref>/<path> into
// its raw.githubusercontent.com counterpart.
type GitHubBlobStrategy struct{}

func (GitHubBlobStrategy) Name() string { return "github" }

func (GitHubBlobStrategy) Match(u *url.URL) bool {
	host := strings.ToLower(u.Host)
	if host != "github.com" && host != "www.github.com" {
		return false
	}
	parts := splitPath(u.Path)
	return len(parts) >= 5 && (parts[2] == "blob" || parts[2] == "raw")
}

func (GitHubBlobStrategy) Resolve(u *url.URL) string {
	parts := splitPath(u.Path)
	rest := append([]string{parts[0], parts[1]}, parts[3:]...)
	return "https://raw.githubusercontent.com/" + strings.Join(rest, "/")
}

// NbviewerStrategy unwraps nbviewer.jupyter.org (and the older
// nbviewer.ipython.org) renderings of GitHub files and plain URLs.
type NbviewerStrategy struct{}

func (NbviewerStrategy) Name() string { return "nbviewer" }

func (NbviewerStrategy) Match(u *url.URL) bool {
	host := strings.ToLower(u.Host)
	return strings.HasPrefix(host, "nbviewer.")
}

func (NbviewerStrategy) Resolve(u *url.URL) string {
	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return u.String()
	}
	switch parts[0] {
	case "github":
		// /github/<owner>/<repo>/blob/<ref>/<path>
		inner := &url.URL{Scheme: "https", Host: "github.com", Path: "/" + strings.Join(parts[1:], "/")}
		if (GitHubBlobStrategy{}).Match(inner) {
			return GitHubBlobStrategy{}.Resolve(inner)
		}
		return inner.String()
	case "url":
		return "http://" + strings.Join(parts[1:], "/")
	case "urls":
		return "https://" + strings.Join(parts[1:], "/")
	case "gist":
		inner := &url.URL{Scheme: "https", Host: "gist.github.com", Path: "/" + strings.Join(parts[1:], "/")}
		return GistStrategy{}.Resolve(inner)
	}
	return u.String()
}

// GistStrategy points gist.github.com/<owner>/<id> at its raw content.
type GistStrategy struct{}

func (GistStrategy) Name() string { return "gist" }

func (GistStrategy) Match(u *url.URL) bool {
	return strings.ToLower(u.Host) == "gist.github.com" && len(splitPath(u.Path)) >= 2
}

func (GistStrategy) Resolve(u *url.URL) string {
	parts := splitPath(u.Path)
	if len(parts) >= 3 && parts[len(parts)-2] == "raw" {
		return "https://gist.githubusercontent.com/" + strings.Join(parts, "/")
	}
	return "https://gist.githubusercontent.com/" + parts[0] + "/" + parts[1] + "/raw"
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
