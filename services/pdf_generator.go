package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// pdfTimeout bounds one render including browser start-up
const pdfTimeout = 45 * time.Second

// ErrPDFBusy is returned when every render slot stays taken until the
// request gives up
var ErrPDFBusy = errors.New("pdf renderer is busy")

// A4 in inches, margins 19 mm
const (
	a4Width  = 8.27
	a4Height = 11.69
	a4Margin = 0.75
)

// PDFRenderer prints HTML documents with headless Chrome. Each render starts
// its own browser; slots caps how many run at once.
type PDFRenderer struct {
	chromePath string
	slots      chan struct{}
}

// NewPDFRenderer creates a renderer; an empty chromePath uses the browser
// found on PATH
func NewPDFRenderer(chromePath string, maxConcurrent int) *PDFRenderer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PDFRenderer{chromePath: chromePath, slots: make(chan struct{}, maxConcurrent)}
}

// footerTemplate prints the footer label and page numbers on every page
func footerTemplate(label string) string {
	return `<div style="font-size:8px;width:100%;padding:0 12mm;display:flex;justify-content:space-between;">` +
		`<span>` + html.EscapeString(label) + `</span>` +
		`<span>Sayfa <span class="pageNumber"></span> / <span class="totalPages"></span></span></div>`
}

// Render prints a complete HTML document to an A4 portrait PDF. footer is
// shown at the bottom of each page.
func (r *PDFRenderer) Render(parent context.Context, htmlContent, footer string) ([]byte, error) {
	select {
	case r.slots <- struct{}{}:
		defer func() { <-r.slots }()
	case <-parent.Done():
		return nil, fmt.Errorf("%w: %v", ErrPDFBusy, parent.Err())
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(parent, pdfTimeout)
	defer timeoutCancel()
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, opts...)
	defer allocCancel()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(a4Margin).
				WithMarginBottom(a4Margin).
				WithMarginLeft(a4Margin).
				WithMarginRight(a4Margin).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(footer != "").
				WithHeaderTemplate("<span></span>").
				WithFooterTemplate(footerTemplate(footer)).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdf, nil
}
