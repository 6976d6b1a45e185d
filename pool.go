package web2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one converter is available.
	MinPoolSize = 1

	// MaxPoolSize caps engine processes to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the engine's child renderers.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("converter pool is closed")

// ConverterPool bounds the number of live Converter instances. Each
// converter owns its own engine process, so pooled conversions run in
// parallel while every converter still serves one conversion at a time.
//
// Capacity is handed out as tokens: Acquire takes a token and either
// pops an idle converter or constructs a fresh one, Release parks the
// converter and returns the token. Construction is deferred until a
// token holder actually needs a converter, so an idle pool costs no
// engine processes.
type ConverterPool struct {
	opts   []Option
	tokens chan struct{}

	mu     sync.Mutex
	idle   []*Converter
	all    []*Converter
	closed bool
}

// NewConverterPool creates a pool with capacity for n converters, each
// constructed with the given options. Capacities below one are raised
// to one.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	tokens := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		tokens <- struct{}{}
	}

	return &ConverterPool{
		opts:   opts,
		tokens: tokens,
		idle:   make([]*Converter, 0, n),
		all:    make([]*Converter, 0, n),
	}
}

// Acquire obtains a converter, blocking while the pool is at capacity.
// The context bounds the wait. Fails with ErrPoolClosed once the pool
// has been closed.
func (p *ConverterPool) Acquire(ctx context.Context) (*Converter, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.tokens:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.tokens <- struct{}{}
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		conv := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return conv, nil
	}
	p.mu.Unlock()

	// Construct outside the lock; engine launch is still lazy, it
	// happens on the converter's first conversion.
	conv := NewConverter(p.opts...)

	p.mu.Lock()
	p.all = append(p.all, conv)
	p.mu.Unlock()
	return conv, nil
}

// Release parks the converter for reuse and frees its capacity token.
// After Close the converter is torn down instead; the token channel is
// never closed, so Release is always safe to call.
func (p *ConverterPool) Release(conv *Converter) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = conv.Close()
		return
	}
	p.idle = append(p.idle, conv)
	p.mu.Unlock()

	p.tokens <- struct{}{}
}

// Close tears down every converter the pool ever constructed, including
// ones currently held by callers. Idempotent. Returns the aggregated
// close errors.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	all := p.all
	p.all = nil
	p.idle = nil
	p.mu.Unlock()

	var errs []error
	for _, conv := range all {
		if err := conv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return cap(p.tokens)
}

// ResolvePoolSize picks a pool capacity: an explicit positive worker
// count wins, otherwise half the usable CPUs clamped to
// [MinPoolSize, MaxPoolSize]. Exported for servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
