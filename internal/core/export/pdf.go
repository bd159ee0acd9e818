package export

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/logger"
)

// ErrRendererUnavailable is returned when no PDF renderer can be started.
// Wrapped errors carry the reason after a colon.
var ErrRendererUnavailable = errors.New("PDF renderer is not available")

// Renderer converts a complete HTML document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeOptions controls how the headless browser is launched.
type ChromeOptions struct {
	// ChromePath overrides the Chrome/Chromium executable. When empty the
	// usual executable names are searched on PATH.
	ChromePath string
	// Timeout bounds a single render; <= 0 uses core.DefaultRenderTimeout.
	Timeout time.Duration
	Logger  logger.Logger
}

// ChromeRenderer prints HTML to PDF through headless Chrome using the
// DevTools protocol. A browser process is started per render.
type ChromeRenderer struct {
	opts ChromeOptions
	// lookPath is swapped in tests.
	lookPath func(string) (string, error)
}

func NewChromeRenderer(opts ChromeOptions) *ChromeRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = core.DefaultRenderTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &ChromeRenderer{opts: opts, lookPath: exec.LookPath}
}

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// ExecPath resolves the browser executable, or returns an error wrapping
// ErrRendererUnavailable.
func (r *ChromeRenderer) ExecPath() (string, error) {
	if p := strings.TrimSpace(r.opts.ChromePath); p != "" {
		path, err := r.lookPath(p)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
		}
		return path, nil
	}
	for _, name := range chromeCandidates {
		if path, err := r.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no Chrome or Chromium executable found on PATH", ErrRendererUnavailable)
}

// RenderPDF loads html into a blank tab and prints it with backgrounds.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	execPath, err := r.ExecPath()
	if err != nil {
		return nil, err
	}

	allocatorOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocatorOpts = append(allocatorOpts,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.ExecPath(execPath),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Running with no actions only launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.opts.Timeout)
	defer cancelRun()

	start := time.Now()
	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	r.opts.Logger.Debug("pdf rendered",
		logger.Int("bytes", len(pdf)),
		logger.Duration("duration", time.Since(start)))
	return pdf, nil
}
