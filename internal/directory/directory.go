// Package directory lists the people and rooms whose feeds get mirrored
// into calendars of their own in directory mode.
package directory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes one directory member.
type Entry struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Timezone string `yaml:"timezone" json:"timezone"`
	FeedURL  string `yaml:"feed_url" json:"feed_url"`
}

// CalendarName returns the calendar the entry's feed lands in. Entries
// without a display name fall back to their ID.
func (e Entry) CalendarName(prefix string) string {
	name := e.Name
	if name == "" {
		name = e.ID
	}
	return prefix + name
}

// Provider lists directory entries.
type Provider interface {
	List(ctx context.Context) ([]Entry, error)
}

// Options configures how a provider reaches its source.
type Options struct {
	// Username and Password are sent as basic auth on HTTP sources.
	Username string
	Password string

	// Proxy is an optional proxy URL for HTTP sources.
	Proxy string
}

// NewProvider returns a file provider for a local path and an HTTP
// provider for an http(s) URL.
func NewProvider(source string, opts Options) Provider {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return &HTTPProvider{URL: source, Options: opts}
	}
	return &FileProvider{Path: source}
}

// FileProvider reads entries from a YAML document of the form:
//
//	entries:
//	  - id: jdoe
//	    name: Jane Doe
//	    timezone: Europe/Amsterdam
//	    feed_url: https://feeds.example.org/jdoe.ics
type FileProvider struct {
	Path string
}

type fileDocument struct {
	Entries []Entry `yaml:"entries"`
}

// List implements Provider.
func (p *FileProvider) List(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}
	return doc.Entries, nil
}

// Filter returns the entries whose name or ID matches the pattern. An
// exact ID match wins; otherwise the pattern is a case-insensitive
// substring of the name. An empty pattern keeps everything.
func Filter(entries []Entry, pattern string) []Entry {
	if pattern == "" {
		return entries
	}

	var matched []Entry
	needle := strings.ToLower(pattern)
	for _, e := range entries {
		if e.ID == pattern || strings.Contains(strings.ToLower(e.Name), needle) {
			matched = append(matched, e)
		}
	}
	return matched
}
