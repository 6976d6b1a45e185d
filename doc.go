// Package web2pdf converts web resources (remote URLs or local files) to
// PDF by driving an externally launched headless Chrome process over the
// DevTools protocol.
//
// # Quick Start
//
// Create a converter, convert a URL, and close when done:
//
//	conv := web2pdf.NewConverter()
//	defer conv.Close()
//
//	var buf bytes.Buffer
//	err := conv.Convert(ctx, web2pdf.Request{URL: "https://example.com"}, &buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", buf.Bytes(), 0644)
//
// The first conversion launches the Chrome process and establishes the
// DevTools control channel; subsequent conversions on the same converter
// reuse the live process. Close releases the channel and kills the
// process group.
//
// # Conversion Phases
//
// Each conversion runs these phases in order:
//
//  1. Pre-processing (wrap plain-text/markdown inputs as HTML, or
//     validate/resize image inputs)
//  2. Engine start (launch Chrome, wait for the DevTools announcement)
//  3. Navigation to the effective input
//  4. Optional wait for a page-global status value (window.status)
//  5. Print to PDF
//  6. Cleanup of temporary pre-processing artifacts
//
// An overall timeout, when configured on the Request, is checked
// cooperatively between phases. The wait-for-signal phase is exempted
// from that budget: the countdown pauses while polling and resumes
// afterward, and a wait timeout is never fatal.
//
// # Configuration
//
// Converter-level setters (proxy, user agent, window size, run-as
// identity) are valid only before the engine process starts; afterward
// they fail with ErrSessionStarted:
//
//	conv := web2pdf.NewConverter(
//	    web2pdf.WithLogger(logger),
//	    web2pdf.WithChromePath("/usr/bin/chromium"),
//	)
//	conv.SetUserAgent("web2pdf/1.0")
//	conv.SetWindowPreset(web2pdf.PresetFullHD)
//
// # Concurrency
//
// A Converter serves one conversion at a time; concurrent Convert calls
// on one instance are not supported and must be serialized by the
// caller. Use ConverterPool to run conversions in parallel, one Chrome
// process per pooled converter.
package web2pdf
