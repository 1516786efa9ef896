package discovery

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSingleSession(t *testing.T) {
	h := newHarness(t, batches([]string{"freebrew.com", "takencup.com"}), Options{})

	err := h.finder.Run(context.Background(), strings.NewReader("Coffee Shop\nn\nquit\n"))
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "Welcome to the Domain Name Finder!")
	assert.Contains(t, out, "Available domains:\n1. freebrew.com\n")
	assert.Contains(t, out, "Number of unavailable domains: 1")
	assert.Contains(t, out, "Total available domains found for this idea: 1")
	assert.Contains(t, out, "Goodbye!")

	record := h.store.Load("coffee shop")
	assert.Equal(t, []string{"freebrew.com"}, record.AvailableDomains)
	assert.Equal(t, []string{"takencup.com"}, record.UnavailableDomains)
}

func TestRunContinueReloadsBaseline(t *testing.T) {
	h := newHarness(t, batches(
		[]string{"freebrew.com", "takencup.com"},
		[]string{"freebrew.com", "freemug.com"},
	), Options{})

	err := h.finder.Run(context.Background(), strings.NewReader("coffee\ny\nNO\nQUIT\n"))
	require.NoError(t, err)

	require.Len(t, h.gen.requests, 2)
	assert.ElementsMatch(t, []string{"freebrew.com", "takencup.com"}, h.gen.requests[1].Avoid)
	assert.Equal(t, 12, h.gen.requests[1].MaxLength)
	assert.Equal(t, []string{"freebrew.com", "takencup.com", "freemug.com"}, h.checker.checked)
	assert.Contains(t, h.out.String(), "Total available domains found for this idea: 2")
}

func TestRunQuitIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, batches([]string{"freebrew.com"}), Options{})

	require.NoError(t, h.finder.Run(context.Background(), strings.NewReader("\n  QuIt \n")))
	assert.Empty(t, h.gen.requests)
}

func TestRunEndsOnEOF(t *testing.T) {
	h := newHarness(t, batches([]string{"freebrew.com"}), Options{})

	require.NoError(t, h.finder.Run(context.Background(), strings.NewReader("coffee\n")))
	assert.Len(t, h.gen.requests, 1)
	assert.Contains(t, h.out.String(), "Goodbye!")
}

func TestRunCanceled(t *testing.T) {
	h := newHarness(t, batches([]string{"freebrew.com"}), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.finder.Run(ctx, strings.NewReader("coffee\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.gen.requests)
}

func TestLineReaderSurfacesReadErrors(t *testing.T) {
	boom := errors.New("boom")
	lr := NewLineReader(io.MultiReader(strings.NewReader("one\n"), iotest.ErrReader(boom)))
	defer lr.Close()

	line, err := lr.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	_, err = lr.ReadLine(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = lr.ReadLine(context.Background())
	assert.Equal(t, io.EOF, err)
}
