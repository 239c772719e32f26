package trade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/pkg/swap"
)

// QuoteService fetches a swap quote for a built request. Implementations may
// block on the network; the session drops results of superseded requests.
type QuoteService interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*swap.Quote, error)
}

// Result is delivered to the session owner once per settled request.
// Exactly one of the states applies: Disabled (nothing to quote), Err
// (request or composition failed, Calls empty), or a composed Calls sequence.
type Result struct {
	Generation uint64
	Quote      *swap.Quote
	Calls      []swap.Call
	Disabled   bool
	Err        error
}

// SessionConfig wires a Session's collaborators.
type SessionConfig struct {
	Builder  *RequestBuilder
	Quotes   QuoteService
	Composer *swap.Composer
	Pair     AssetPair
	Window   time.Duration // zero means DefaultDebounceWindow
	OnResult func(Result)
}

// Session drives one user's edit → debounce → quote → compose flow.
//
// Each debounced edit carries a generation; the session records the newest
// generation handed to the quote service and discards any response whose
// generation has been superseded by the time it resolves. Close cancels the
// pending debounce timer and the in-flight request context.
type Session struct {
	builder  *RequestBuilder
	quotes   QuoteService
	composer *swap.Composer
	pair     AssetPair
	onResult func(Result)
	deb      *Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	wallet    common.Address
	unitPrice float64
	latest    uint64
}

// NewSession creates a session ready to receive edits.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		builder:  cfg.Builder,
		quotes:   cfg.Quotes,
		composer: cfg.Composer,
		pair:     cfg.Pair,
		onResult: cfg.OnResult,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.deb = NewDebouncer(cfg.Window, s.fire)
	return s
}

// SetWallet updates the active wallet address. The zero address means no
// wallet is connected and gates requests off.
func (s *Session) SetWallet(addr common.Address) {
	s.mu.Lock()
	s.wallet = addr
	s.mu.Unlock()
}

// SetUnitPrice updates the fiat price used to convert user input.
func (s *Session) SetUnitPrice(price float64) {
	s.mu.Lock()
	s.unitPrice = price
	s.mu.Unlock()
}

// Edit records a user edit; the request fires only after the debounce window
// passes without a newer edit.
func (s *Session) Edit(raw string) {
	s.deb.Trigger(raw)
}

// Close tears the session down: the pending debounce timer is cancelled and
// any in-flight request context aborted. No results are delivered afterwards
// for superseded generations.
func (s *Session) Close() {
	s.deb.Close()
	s.cancel()
}

func (s *Session) fire(raw string, gen uint64) {
	s.mu.Lock()
	wallet, price := s.wallet, s.unitPrice
	s.mu.Unlock()

	req, err := s.builder.Build(raw, price, s.pair, wallet)
	if err != nil {
		s.deliver(Result{Generation: gen, Disabled: true, Err: err})
		return
	}
	if req.Disabled {
		s.deliver(Result{Generation: gen, Disabled: true})
		return
	}

	s.mu.Lock()
	s.latest = gen
	s.mu.Unlock()

	quote, err := s.quotes.GetQuote(s.ctx, req)
	if !s.isLatest(gen) {
		// A newer request was issued while this one was in flight.
		return
	}
	if err != nil {
		s.deliver(Result{Generation: gen, Err: fmt.Errorf("quote request failed: %w", err)})
		return
	}

	calls, err := s.composer.ComposeCalls(quote)
	if err != nil {
		// Fail closed: an error leaves the sequence empty, never partial.
		s.deliver(Result{Generation: gen, Err: err})
		return
	}
	s.deliver(Result{Generation: gen, Quote: quote, Calls: calls})
}

func (s *Session) isLatest(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.latest
}

func (s *Session) deliver(r Result) {
	if s.onResult != nil {
		s.onResult(r)
	}
}
