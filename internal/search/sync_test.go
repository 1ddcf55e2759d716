package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu   sync.Mutex
	urls []string
}

func (n *recordingNavigator) Replace(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
}

func (n *recordingNavigator) replaced() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

func TestSync_OnInputChange(t *testing.T) {
	const wait = 30 * time.Millisecond

	t.Run("burst of keystrokes replaces once with the last text", func(t *testing.T) {
		nav := &recordingNavigator{}
		s, err := NewSync("/dashboard/invoices?page=2", nav, wait)
		require.NoError(t, err)
		defer s.Close()

		for _, text := range []string{"d", "de", "del", "delb"} {
			s.OnInputChange(text)
		}

		require.Eventually(t, func() bool { return len(nav.replaced()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "/dashboard/invoices?page=2&search=delb", nav.replaced()[0])
		assert.Equal(t, "delb", s.Term())
	})

	t.Run("empty text removes the parameter", func(t *testing.T) {
		nav := &recordingNavigator{}
		s, err := NewSync("/dashboard/invoices?search=old", nav, wait)
		require.NoError(t, err)
		defer s.Close()

		s.OnInputChange("")

		require.Eventually(t, func() bool { return len(nav.replaced()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "/dashboard/invoices?", nav.replaced()[0])
		assert.Empty(t, s.Term())
	})

	t.Run("text is query escaped", func(t *testing.T) {
		nav := &recordingNavigator{}
		s, err := NewSync("/dashboard/invoices", nav, wait)
		require.NoError(t, err)
		defer s.Close()

		s.OnInputChange("lee & co")

		require.Eventually(t, func() bool { return len(nav.replaced()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "/dashboard/invoices?search=lee+%26+co", nav.replaced()[0])
	})

	t.Run("separate pauses each replace", func(t *testing.T) {
		nav := &recordingNavigator{}
		s, err := NewSync("/dashboard/invoices", nav, wait)
		require.NoError(t, err)
		defer s.Close()

		s.OnInputChange("a")
		require.Eventually(t, func() bool { return len(nav.replaced()) == 1 }, time.Second, 5*time.Millisecond)
		s.OnInputChange("ab")
		require.Eventually(t, func() bool { return len(nav.replaced()) == 2 }, time.Second, 5*time.Millisecond)

		assert.Equal(t, []string{"/dashboard/invoices?search=a", "/dashboard/invoices?search=ab"}, nav.replaced())
		assert.Equal(t, "/dashboard/invoices?search=ab", s.URL())
	})

	t.Run("close cancels the pending replace", func(t *testing.T) {
		nav := &recordingNavigator{}
		s, err := NewSync("/dashboard/invoices", nav, wait)
		require.NoError(t, err)

		s.OnInputChange("never")
		s.Close()

		assert.Never(t, func() bool { return len(nav.replaced()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	})
}

func TestNewSync_RejectsBadURL(t *testing.T) {
	_, err := NewSync("%zz", NavigatorFunc(func(string) {}), 0)
	assert.Error(t, err)
}

func TestSync_Flush(t *testing.T) {
	nav := &recordingNavigator{}
	s, err := NewSync("/dashboard/invoices", nav, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	s.OnInputChange("paid")
	s.Flush()

	assert.Equal(t, []string{"/dashboard/invoices?search=paid"}, nav.replaced())
}
