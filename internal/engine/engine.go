package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rpl/application-services/internal/compiler"
	"github.com/rpl/application-services/internal/logger"
	"github.com/rpl/application-services/internal/model"
)

// DefaultWorkers generates members one after another.
const DefaultWorkers = 1

type config struct {
	workers int
	logger  *zap.SugaredLogger
	options map[string]string
}

// Option configures a generation run.
type Option func(*config)

// WithWorkers generates up to n members concurrently. Output order and
// bytes do not depend on n.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger for run progress.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackendOptions passes key/value options to the file template, e.g.
// the Kotlin package or the shared library name.
func WithBackendOptions(opts map[string]string) Option {
	return func(c *config) {
		c.options = opts
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		workers: DefaultWorkers,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a successful generation run.
type Result struct {
	Component   string
	Backend     string
	Fingerprint string
	Symbols     *SymbolTable
	Fragments   []Fragment
}

// Generate produces the bindings of c for backend, one fragment per member
// in declaration order.
//
// Generation is a pure function of (c, backend): identical inputs give
// byte-identical fragments. A failing run returns no fragments.
func Generate(ctx context.Context, c *model.Component, backend Backend, opts ...Option) ([]Fragment, error) {
	res, err := Run(ctx, c, backend, opts...)
	if err != nil {
		return nil, err
	}
	return res.Fragments, nil
}

// Run is Generate returning the symbol table and fingerprint as well.
//
// Passes:
//  1. symbol pass: every FFI symbol is computed and checked for global
//     uniqueness before any fragment is produced
//  2. structural check of the component
//  3. native name check: no two declarations of the output share a name
//     in one scope under the backend's naming
//  4. generation of each member by kind
func Run(ctx context.Context, c *model.Component, backend Backend, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	start := time.Now()

	if c == nil {
		return nil, &GenerationError{Code: ErrCodeMalformedModel, Message: "component is nil"}
	}
	if backend == nil {
		return nil, &GenerationError{Code: ErrCodeMalformedModel, Component: c.Name, Message: "backend is nil"}
	}
	log := cfg.logger.With(logger.FieldComponent, c.Name, logger.FieldBackend, backend.Name())

	table, err := BuildSymbolTable(c)
	if err != nil {
		log.Debugw("symbol pass failed", logger.FieldError, err)
		return nil, err
	}

	if err := checkModel(c); err != nil {
		log.Debugw("structural check failed", logger.FieldError, err)
		return nil, err
	}

	if err := CheckNativeNames(c, backend); err != nil {
		log.Debugw("name check failed", logger.FieldError, err)
		return nil, err
	}

	fingerprint, err := model.Fingerprint(c)
	if err != nil {
		return nil, &GenerationError{Code: ErrCodeMalformedModel, Component: c.Name, Message: "fingerprint", Err: err}
	}

	g := &generator{component: c, backend: backend}
	var fragments []Fragment
	if cfg.workers <= 1 {
		fragments, err = g.sequential(ctx, table, log)
	} else {
		fragments, err = g.concurrent(ctx, table, cfg.workers, log)
	}
	if err != nil {
		return nil, err
	}

	log.Infow("generated bindings",
		logger.FieldSymbolCount, len(table.Signatures),
		logger.FieldWorkers, cfg.workers,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	return &Result{
		Component:   c.Name,
		Backend:     backend.Name(),
		Fingerprint: fingerprint,
		Symbols:     table,
		Fragments:   fragments,
	}, nil
}

// checkModel maps structural violations onto generation error codes.
func checkModel(c *model.Component) error {
	errs := compiler.Validate(c)
	if len(errs) == 0 {
		return nil
	}
	code := ErrCodeMalformedModel
	if compiler.IsUnresolved(errs) {
		code = ErrCodeUnresolvedType
	}
	return &GenerationError{
		Code:      code,
		Message:   errs[0].Message,
		Component: c.Name,
		Path:      errs[0].Field,
		Err:       compiler.ValidationErrors(errs),
	}
}

func (g *generator) sequential(ctx context.Context, table *SymbolTable, log *zap.SugaredLogger) ([]Fragment, error) {
	out := make([]Fragment, 0, len(g.component.Members))
	for i, m := range g.component.Members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frag, err := g.member(m, table.PerMember[i])
		if err != nil {
			return nil, err
		}
		log.Debugw("member generated", logger.FieldMember, frag.Member, logger.FieldKind, frag.Kind)
		out = append(out, frag)
	}
	return out, nil
}

// concurrent generates members on up to workers goroutines. Each result
// lands in the slot of its member, so ordering is unaffected. Members never
// cancel each other: the reported error is always the one of the earliest
// failing member, as in a sequential run.
func (g *generator) concurrent(ctx context.Context, table *SymbolTable, workers int, log *zap.SugaredLogger) ([]Fragment, error) {
	n := len(g.component.Members)
	out := make([]Fragment, n)
	errs := make([]error, n)

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, m := range g.component.Members {
		i, m := i, m
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			frag, err := g.member(m, table.PerMember[i])
			if err != nil {
				errs[i] = err
				return err
			}
			log.Debugw("member generated", logger.FieldMember, frag.Member, logger.FieldKind, frag.Kind)
			out[i] = frag
			return nil
		})
	}
	if err := eg.Wait(); err == nil {
		return out, nil
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return nil, ctx.Err()
}

// member dispatches on the member kind.
func (g *generator) member(m model.Member, sigs []Signature) (Fragment, error) {
	switch mt := m.(type) {
	case *model.ObjectType:
		return g.generateObject(mt, sigs)
	case *model.NamespaceType:
		return g.generateNamespace(mt, sigs)
	case *model.RecordType:
		return g.generateRecord(mt)
	case *model.EnumType:
		return g.generateEnum(mt)
	default:
		return Fragment{}, &GenerationError{
			Code:      ErrCodeMalformedModel,
			Component: g.component.Name,
			Message:   "unsupported member type",
		}
	}
}
