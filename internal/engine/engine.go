// Package engine orchestrates a translation session: one style manager
// decision, then the refinement pipeline over every chunk, then metrics and
// assembly of the finalized text.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/agentran/internal/chunker"
	"github.com/valpere/agentran/internal/config"
	"github.com/valpere/agentran/internal/failure"
	"github.com/valpere/agentran/internal/gateway"
	"github.com/valpere/agentran/internal/manager"
	"github.com/valpere/agentran/internal/pipeline"
	"github.com/valpere/agentran/internal/placeholder"
	"github.com/valpere/agentran/internal/registry"
	"github.com/valpere/agentran/internal/terminology"
)

type Engine struct {
	gw       gateway.Gateway
	reg      *registry.Registry
	mgr      *manager.Manager
	workers  int
	logger   *zap.Logger
	progress func(Event)
	now      func() time.Time

	mu sync.Mutex // serializes progress callbacks
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithProgress registers a callback for session events. Calls are
// serialized even when chunks run in parallel.
func WithProgress(fn func(Event)) Option {
	return func(e *Engine) { e.progress = fn }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an engine over gw. Profile temperatures come from
// cfg.Temperatures; cfg.Workers > 1 processes chunks in parallel.
func New(cfg config.Config, gw gateway.Gateway, opts ...Option) (*Engine, error) {
	if gw == nil {
		return nil, failure.Newf(failure.Configuration, "create engine", "no model gateway configured")
	}
	reg, err := registry.New(cfg.Temperatures)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		gw:      gw,
		reg:     reg,
		workers: max(cfg.Workers, 1),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mgr = manager.New(gw, reg, e.logger.Named("manager"))
	return e, nil
}

// Registry exposes the profile catalogue the engine runs with.
func (e *Engine) Registry() *registry.Registry { return e.reg }

type Request struct {
	Chunks        []chunker.Chunk
	SourceLang    string
	TargetLang    string
	RequestedType string
	Brief         string
	Terminology   terminology.Map

	// ProtectMarkup swaps code, tags, URLs and template variables for
	// markers before Draft and restores them in the session view.
	ProtectMarkup bool
}

// Translate runs a whole session. Any failed model call aborts it: the
// error is returned and nothing of the partial session is.
func (e *Engine) Translate(ctx context.Context, req Request) (*Session, error) {
	if len(req.Chunks) == 0 {
		return nil, failure.Newf(failure.UnsupportedInput, "translate", "no text to translate")
	}

	var tokens atomic.Int64
	log := e.logger.With(
		zap.String("source", req.SourceLang),
		zap.String("target", req.TargetLang),
		zap.Int("chunks", len(req.Chunks)),
	)
	log.Info("session started", zap.String("requested_type", req.RequestedType))
	e.emit(Event{Kind: SessionStarted, Total: len(req.Chunks)})

	decision, err := e.mgr.Decide(ctx, manager.Request{
		RequestedType: req.RequestedType,
		Brief:         req.Brief,
		Sample:        req.Chunks[0].Text,
	})
	if err != nil {
		log.Error("style manager failed", zap.Error(err))
		return nil, err
	}
	tokens.Add(int64(decision.Tokens))
	log.Info("manager decision",
		zap.Strings("profiles", decision.Profiles),
		zap.String("translation_type", decision.TranslationType),
		zap.Bool("auto_detected", decision.AutoDetected),
		zap.Bool("fallback", decision.Fallback),
	)
	e.emit(Event{Kind: DecisionMade, Total: len(req.Chunks), Decision: &decision})

	plan, err := pipeline.NewPlan(e.reg, decision)
	if err != nil {
		return nil, err
	}

	runner := pipeline.New(pipeline.Config{
		Gateway:     e.gw,
		Plan:        plan,
		Terminology: req.Terminology,
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
		Meter:       meterFunc(func(_ pipeline.Stage, n int) { tokens.Add(int64(n)) }),
		Logger:      log,
		OnStage: func(chunk int, stage pipeline.Stage) {
			e.emit(Event{Kind: StageStarted, Chunk: chunk, Total: len(req.Chunks), Stage: stage})
		},
	})

	start := e.now()
	results, err := e.run(ctx, runner, req)
	if err != nil {
		log.Error("session aborted", zap.Error(err))
		return nil, err
	}
	elapsed := e.now().Sub(start)

	s := &Session{
		SourceLang:  req.SourceLang,
		TargetLang:  req.TargetLang,
		Decision:    decision,
		Chunks:      results,
		TotalTokens: int(tokens.Load()),
		Elapsed:     elapsed,
	}
	log.Info("session finished",
		zap.Int("tokens", s.TotalTokens),
		zap.Duration("elapsed", elapsed),
	)
	e.emit(Event{Kind: SessionFinished, Total: len(req.Chunks)})
	return s, nil
}

func (e *Engine) run(ctx context.Context, runner *pipeline.Runner, req Request) ([]ChunkResult, error) {
	results := make([]ChunkResult, len(req.Chunks))

	work := func(ctx context.Context, i int) error {
		res, err := e.runChunk(ctx, runner, i, req)
		if err != nil {
			return err
		}
		results[i] = res
		e.emit(Event{Kind: ChunkFinished, Chunk: i, Total: len(req.Chunks)})
		return nil
	}

	if e.workers == 1 || len(req.Chunks) == 1 {
		for i := range req.Chunks {
			if err := work(ctx, i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range req.Chunks {
		g.Go(func() error { return work(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runChunk runs one chunk. Position i in the request is the chunk's index
// in the session; the chunk's own Index is not trusted for ordering.
func (e *Engine) runChunk(ctx context.Context, runner *pipeline.Runner, i int, req Request) (ChunkResult, error) {
	c := req.Chunks[i]
	in := pipeline.Chunk{Index: i, Text: c.Text}

	var guard placeholder.Protected
	if req.ProtectMarkup {
		guard = placeholder.Protect(c.Text)
		if guard.Len() > 0 {
			in.Text = guard.Text
			in.Notes = []string{placeholder.Hint}
		}
	}

	rec, err := runner.Run(ctx, in)
	if err != nil {
		return ChunkResult{}, err
	}

	if guard.Len() > 0 {
		if missing := guard.Missing(rec.Final()); len(missing) > 0 {
			e.logger.Warn("markers lost in translation", zap.Int("chunk", i+1), zap.Ints("missing", missing))
		}
		for j := range rec.Steps {
			rec.Steps[j].Result = guard.Restore(rec.Steps[j].Result)
		}
	}

	return ChunkResult{
		Number:   i + 1,
		Unit:     c.Unit,
		Original: c.Text,
		Steps:    rec.Steps,
	}, nil
}

func (e *Engine) emit(ev Event) {
	if e.progress == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress(ev)
}

type meterFunc func(pipeline.Stage, int)

func (f meterFunc) Add(stage pipeline.Stage, tokens int) { f(stage, tokens) }
