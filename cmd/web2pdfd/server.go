package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	web2pdf "github.com/mbrunel/go-web2pdf"
)

// Server is the single-endpoint conversion service: it accepts a URL and
// returns PDF bytes. Any conversion failure maps to a generic server
// error; the specific error kinds stay in the logs.
type Server struct {
	log         *zap.SugaredLogger
	pool        *web2pdf.ConverterPool
	timeout     time.Duration
	waitTimeout time.Duration

	// convert is stubbed in tests; the default runs a pooled converter.
	convert func(ctx context.Context, req web2pdf.Request, w io.Writer) error
}

// NewServer wires the HTTP surface to a converter pool.
func NewServer(logger *zap.Logger, pool *web2pdf.ConverterPool, timeout, waitTimeout time.Duration) *Server {
	s := &Server{
		log:         logger.Sugar().Named("server"),
		pool:        pool,
		timeout:     timeout,
		waitTimeout: waitTimeout,
	}
	s.convert = s.pooledConvert
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/convert", s.handleConvert)
	router.POST("/convert", s.handleConvert)
	router.GET("/healthz", s.handleHealth)
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleConvert serves GET/POST /convert?url=...&waitCondition=...
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	target := query.Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	req := web2pdf.Request{
		URL:           target,
		WaitCondition: query.Get("waitCondition"),
		WaitTimeout:   s.waitTimeout,
		Timeout:       s.timeout,
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := s.convert(r.Context(), req, &buf); err != nil {
		// The error taxonomy is not exposed at this boundary.
		s.log.Errorw("conversion failed", "url", target, "error", err)
		http.Error(w, "conversion failed", http.StatusInternalServerError)
		return
	}

	s.log.Infow("conversion served", "url", target, "bytes", buf.Len(), "elapsed", time.Since(start))
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

// pooledConvert runs one conversion on a pooled converter. The request
// context bounds the wait for a free converter as well as the
// conversion itself.
func (s *Server) pooledConvert(ctx context.Context, req web2pdf.Request, w io.Writer) error {
	conv, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conv)
	return conv.Convert(ctx, req, w)
}
