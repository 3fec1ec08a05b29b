package services

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"bygg_flow_app_go/config"
	"bygg_flow_app_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// snapshotProbe reports whether the preview-snapshot path can run at all.
// Package variable so tests can force the fallback path.
var snapshotProbe = detectChrome

// detectChrome feature-probes for a usable Chrome binary instead of
// trusting environment names.
func detectChrome(cfg *config.Config) bool {
	if cfg.DisableSnapshot {
		return false
	}
	if cfg.ChromePath != "" {
		if _, err := exec.LookPath(cfg.ChromePath); err == nil {
			return true
		}
		return false
	}
	for _, candidate := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return true
		}
	}
	return false
}

// previewSnapshotStrategy prints the HTML renderer's output through headless
// Chrome, so the PDF matches the on-screen preview exactly. Browser-only;
// the structured engine covers headless test contexts.
type previewSnapshotStrategy struct {
	cfg *config.Config
}

func (previewSnapshotStrategy) Name() string { return "preview-snapshot" }

func (p previewSnapshotStrategy) TryRender(ctx context.Context, doc *models.Document, request *models.Request) ([]byte, error) {
	if !snapshotProbe(p.cfg) {
		return nil, fmt.Errorf("no usable Chrome binary for the snapshot path")
	}

	htmlContent := RenderToHTML(doc, request)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if p.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// A stalled frame must not hang generation; cap the whole print run.
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer timeoutCancel()

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		// Let fonts and layout settle before printing.
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.7).
				WithMarginBottom(0.7).
				WithMarginLeft(0.7).
				WithMarginRight(0.7).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot print failed: %w", err)
	}
	if len(pdfBuf) == 0 {
		return nil, fmt.Errorf("snapshot print produced no content")
	}

	return pdfBuf, nil
}
