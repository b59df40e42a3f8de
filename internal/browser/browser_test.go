package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/matsen/jrec/internal/browser"
	"github.com/matsen/jrec/internal/browser/browsertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAux_ClosesOnEveryPath(t *testing.T) {
	ctx := context.Background()
	site := browsertest.NewSite()
	site.Pages["https://a/"] = "<p>a</p>"
	site.Pages["https://b/"] = "<p id='b'>b</p>"
	primary := site.Session()
	require.NoError(t, primary.Load(ctx, "https://a/"))

	err := browser.WithAux(ctx, primary, func(s browser.Session) error {
		return s.Load(ctx, "https://b/")
	})
	require.NoError(t, err)
	assert.Equal(t, 0, site.OpenAux())

	boom := errors.New("boom")
	err = browser.WithAux(ctx, primary, func(s browser.Session) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, site.OpenAux())
	assert.Equal(t, 2, site.AuxOpened())

	// The primary session is untouched by auxiliary navigation.
	assert.Equal(t, "https://a/", primary.Current())
}

func TestWithAux_OpenFailure(t *testing.T) {
	site := browsertest.NewSite()
	site.FailAux = true

	called := false
	err := browser.WithAux(context.Background(), site.Session(), func(browser.Session) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, browser.ErrNoAuxContext)
	assert.False(t, called)
}

func TestFake_WaitForTimesOut(t *testing.T) {
	ctx := context.Background()
	site := browsertest.NewSite()
	site.Pages["https://a/"] = "<p id='x'>x</p>"
	s := site.Session()
	require.NoError(t, s.Load(ctx, "https://a/"))

	assert.NoError(t, s.WaitFor(ctx, "#x"))
	assert.ErrorIs(t, s.WaitFor(ctx, "#missing"), browser.ErrTimeout)

	text, ok := s.Text(ctx, "#x")
	assert.True(t, ok)
	assert.Equal(t, "x", text)
}
