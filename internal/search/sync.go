// Package search mirrors a search box into the listing URL's "search" query
// parameter, debounced so the listing re-queries only once typing pauses.
package search

import (
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"
)

// ParamName is the query parameter the listing filters on.
const ParamName = "search"

// DefaultWait is the quiescence window between the last keystroke and the
// URL replace.
const DefaultWait = 500 * time.Millisecond

// Navigator replaces the current location without adding a history entry.
type Navigator interface {
	Replace(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Replace(url string) { f(url) }

type Sync struct {
	mu        sync.Mutex
	current   *url.URL
	navigator Navigator
	debouncer *Debouncer
}

// NewSync starts from rawURL, the location the search box is rendered on.
func NewSync(rawURL string, navigator Navigator, wait time.Duration) (*Sync, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse current url: %w", err)
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Sync{
		current:   current,
		navigator: navigator,
		debouncer: NewDebouncer(wait),
	}, nil
}

// OnInputChange records a keystroke. Only the last text of a burst reaches
// the navigator.
func (s *Sync) OnInputChange(text string) {
	s.debouncer.Call(func() { s.apply(text) })
}

func (s *Sync) apply(text string) {
	s.mu.Lock()
	params := s.current.Query()
	if text != "" {
		params.Set(ParamName, text)
	} else {
		params.Del(ParamName)
	}
	s.current.RawQuery = params.Encode()
	target := fmt.Sprintf("%s?%s", s.current.Path, s.current.RawQuery)
	s.mu.Unlock()

	log.Printf("[SEARCH] Searching... %s", text)
	s.navigator.Replace(target)
}

// URL is the location after the most recent replace.
func (s *Sync) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.String()
}

// Term is the current value of the search parameter.
func (s *Sync) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Query().Get(ParamName)
}

// Flush applies the pending keystroke immediately and waits for the
// navigator to return.
func (s *Sync) Flush() {
	s.debouncer.Flush()
}

// Close drops any pending replace and waits for a running one to finish.
// The Sync is unusable afterwards.
func (s *Sync) Close() {
	s.debouncer.Close()
}
