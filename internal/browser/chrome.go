package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/matsen/jrec/internal/extract"
	"github.com/matsen/jrec/internal/logger"
)

// Default timeouts.
const (
	DefaultWaitTimeout = 10 * time.Second
	DefaultLoadTimeout = 30 * time.Second
)

// Options configures the Chrome process.
type Options struct {
	Headless    bool
	UserAgent   string
	ExecPath    string        // empty = look up Chrome on PATH
	WaitTimeout time.Duration // bound for WaitFor, Click and Fill
	LoadTimeout time.Duration // bound for Load
}

// Chrome is a Session backed by a chromedp-controlled browser tab.
type Chrome struct {
	ctx         context.Context // tab context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc // nil on auxiliary tabs
	aux         bool
	opts        Options
}

// NewChrome starts a browser and opens its primary tab.
func NewChrome(opts Options, log logger.Logger) (*Chrome, error) {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug("chromedp", logger.String("detail", fmt.Sprintf(format, args...)))
		}),
	)

	// An empty Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Chrome{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel, opts: opts}, nil
}

// Shutdown closes the browser. Only meaningful on the primary session.
func (c *Chrome) Shutdown() error {
	if c.aux {
		return c.Close()
	}
	err := chromedp.Cancel(c.ctx)
	c.cancel()
	c.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	runCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

func (c *Chrome) Load(ctx context.Context, url string) error {
	if err := c.run(ctx, c.opts.LoadTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("loading %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) Snapshot(ctx context.Context) (*extract.Page, error) {
	var html, location string
	err := c.run(ctx, c.opts.WaitTimeout,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("capturing page: %w", err)
	}
	return extract.NewPage(location, html)
}

// innerTextJS reports the innerText of the first match, or found=false.
const innerTextJS = `(() => {
	const n = document.querySelector(%s);
	return n ? {found: true, text: n.innerText} : {found: false, text: ""};
})()`

func (c *Chrome) Text(ctx context.Context, selector string) (string, bool) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return "", false
	}
	var res struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	if err := c.run(ctx, c.opts.WaitTimeout, chromedp.Evaluate(fmt.Sprintf(innerTextJS, quoted), &res)); err != nil {
		return "", false
	}
	return res.Text, res.Found
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	if err := c.run(ctx, c.opts.WaitTimeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	err := c.run(ctx, c.opts.WaitTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("filling %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) Submit(ctx context.Context, selector string) error {
	err := c.run(ctx, c.opts.LoadTimeout,
		chromedp.Submit(selector, chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("submitting %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) WaitFor(ctx context.Context, selector string) error {
	if err := c.run(ctx, c.opts.WaitTimeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) OpenAux(ctx context.Context) (Session, error) {
	if c.aux {
		return nil, fmt.Errorf("%w: auxiliary contexts do not nest", ErrNoAuxContext)
	}
	tabCtx, cancel := chromedp.NewContext(c.ctx)
	if err := c.runIn(ctx, tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrNoAuxContext, err)
	}
	return &Chrome{ctx: tabCtx, cancel: cancel, aux: true, opts: c.opts}, nil
}

// runIn opens the tab behind tabCtx, giving up when ctx is done.
func (c *Chrome) runIn(ctx context.Context, tabCtx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(tabCtx) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Chrome) Close() error {
	if !c.aux {
		return nil
	}
	c.cancel()
	return nil
}
