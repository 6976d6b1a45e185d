package web2pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ControlChannel is the remote-control session between the converter and
// the rendering engine. The wire protocol is opaque to the orchestrator;
// it only needs these four operations. A zero deadline means the call is
// unbounded.
type ControlChannel interface {
	Navigate(locator string, deadline time.Duration) error
	EvaluateScript(expression string) (string, error)
	PrintToPDF(settings *PageSettings, deadline time.Duration) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ ControlChannel = (*rodChannel)(nil)

// rodChannel implements ControlChannel over the DevTools protocol using
// go-rod, bound to the websocket endpoint the supervisor extracted from
// the engine's startup announcement.
type rodChannel struct {
	log     *zap.SugaredLogger
	browser *rod.Browser
	page    *rod.Page
}

// dialChannel connects to the engine's DevTools endpoint. Non-empty
// credentials answer the proxy's authentication challenge.
func dialChannel(endpoint string, logger *zap.Logger, authUser, authPassword string) (*rodChannel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	browser := rod.New().ControlURL(endpoint)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChannelConnect, err)
	}
	if authUser != "" {
		wait := browser.HandleAuth(authUser, authPassword)
		go func() { _ = wait() }()
	}
	return &rodChannel{
		log:     logger.Sugar().Named("channel"),
		browser: browser,
	}, nil
}

// Navigate loads the locator in the session's page, creating the page on
// first use, and waits for the load event.
func (c *rodChannel) Navigate(locator string, deadline time.Duration) error {
	if c.page == nil {
		page, err := c.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPageCreate, err)
		}
		c.page = page
	}

	page := c.page
	if deadline > 0 {
		page = page.Timeout(deadline)
	}

	if err := page.Navigate(locator); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	c.log.Debugw("navigated", "locator", locator)
	return nil
}

// EvaluateScript evaluates a JavaScript expression in the page and
// returns its result as a string.
func (c *rodChannel) EvaluateScript(expression string) (string, error) {
	if c.page == nil {
		return "", fmt.Errorf("%w: no page to evaluate in", ErrPageLoad)
	}
	obj, err := c.page.Eval(expression)
	if err != nil {
		return "", fmt.Errorf("evaluating script: %w", err)
	}
	return obj.Value.Str(), nil
}

// PrintToPDF renders the current page to PDF bytes.
func (c *rodChannel) PrintToPDF(settings *PageSettings, deadline time.Duration) ([]byte, error) {
	if c.page == nil {
		return nil, fmt.Errorf("%w: no page to print", ErrPDFGeneration)
	}

	page := c.page
	if deadline > 0 {
		page = page.Timeout(deadline)
	}

	reader, err := page.PDF(buildPrintOptions(settings))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdf, nil
}

// Close releases the page and the DevTools connection. It does not stop
// the engine process; that is the supervisor's job.
func (c *rodChannel) Close() error {
	if c.page != nil {
		_ = c.page.Close()
		c.page = nil
	}
	if c.browser != nil {
		err := c.browser.Close()
		c.browser = nil
		return err
	}
	return nil
}

// buildPrintOptions maps PageSettings onto the print command.
func buildPrintOptions(settings *PageSettings) *proto.PagePrintToPDF {
	if settings == nil {
		settings = DefaultPageSettings()
	}

	width, height := settings.paperDimensions()

	opts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(settings.Margin),
		MarginBottom:    floatPtr(settings.Margin),
		MarginLeft:      floatPtr(settings.Margin),
		MarginRight:     floatPtr(settings.Margin),
		PrintBackground: settings.PrintBackground,
	}

	if settings.Scale > 0 {
		opts.Scale = floatPtr(settings.Scale)
	}

	return opts
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
