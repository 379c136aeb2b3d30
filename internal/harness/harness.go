package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/symtab/internal/config"
	"github.com/roach88/symtab/internal/testutil"
	"github.com/roach88/symtab/symbol"
)

// Harness executes scenarios. Each run gets its own registry, so scenarios
// never observe each other.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to each scenario's registry.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness. Logging is discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range opts {
		fn(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(s *Scenario) (*Result, error) {
	return New().Run(s)
}

// run holds the state of one scenario execution.
type run struct {
	reg     *symbol.Registry
	tables  map[string]*symbol.Table
	handles map[string]symbol.Symbol
	names   map[symbol.Symbol]string
	seq     int64
	result  *Result
}

// Run executes s and evaluates its assertions. Step and assertion failures
// are recorded in the Result; the error is reserved for scenarios that cannot
// run at all.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	cfg := config.Default()
	if s.Normalize != "" {
		cfg.Normalize = s.Normalize
	}
	opts := append(cfg.RegistryOptions(h.logger),
		symbol.WithIDGenerator(testutil.NewFixedIDGenerator("harness-"+s.Name)))

	r := &run{
		reg:     symbol.NewRegistry(opts...),
		tables:  make(map[string]*symbol.Table, len(s.Tables)),
		handles: make(map[string]symbol.Symbol),
		names:   make(map[symbol.Symbol]string),
		result:  NewResult(),
	}
	for _, def := range s.Tables {
		topts := []symbol.TableOption{symbol.WithRegistry(r.reg)}
		if def.Strict {
			topts = append(topts, symbol.WithStrictInit())
		}
		tbl := symbol.NewTable(def.Name, topts...)
		for _, lit := range def.Sites {
			tbl.Site(lit)
		}
		r.tables[def.Name] = tbl
	}

	for i, step := range s.Flow {
		if err := r.step(step); err != nil {
			r.result.AddError(fmt.Sprintf("flow[%d]: %v", i, err))
		}
	}
	for i, a := range s.Assertions {
		if err := r.assert(a); err != nil {
			r.result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	r.result.Texts = r.reg.Texts()

	h.logger.Debug("scenario finished",
		"scenario", s.Name,
		"steps", len(s.Flow),
		"pass", r.result.Pass,
	)
	return r.result, nil
}

// name returns the stable trace name of sym.
func (r *run) name(sym symbol.Symbol) string {
	if n, ok := r.names[sym]; ok {
		return n
	}
	n := fmt.Sprintf("s%d", len(r.names)+1)
	r.names[sym] = n
	return n
}

func (r *run) emit(ev TraceEvent) {
	r.seq++
	ev.Seq = r.seq
	r.result.Trace = append(r.result.Trace, ev)
}

func (r *run) step(step Step) error {
	var (
		sym   symbol.Symbol
		found = true
	)
	switch step.Op() {
	case OpRegister:
		stats := r.tables[step.Register].Register()
		r.emit(TraceEvent{Op: OpRegister, Subject: step.Register, Sites: stats.Sites, Inserted: stats.Inserted})
		if e := step.Expect; e != nil && e.Inserted != nil && *e.Inserted != stats.Inserted {
			return fmt.Errorf("register %s: inserted %d, want %d", step.Register, stats.Inserted, *e.Inserted)
		}
		return nil

	case OpSite:
		site := r.tables[step.Site].Sites()[step.Index]
		var err error
		sym, err = readSite(site)
		if err != nil {
			return err
		}
		r.emit(TraceEvent{Op: OpSite, Subject: fmt.Sprintf("%s[%d]", step.Site, step.Index), Symbol: r.name(sym)})

	case OpIntern:
		sym = r.reg.Intern(*step.Intern)
		r.emit(TraceEvent{Op: OpIntern, Subject: *step.Intern, Symbol: r.name(sym)})

	case OpLookup:
		sym, found = r.reg.Lookup(*step.Lookup)
		ev := TraceEvent{Op: OpLookup, Subject: *step.Lookup, Found: &found}
		if found {
			ev.Symbol = r.name(sym)
		}
		r.emit(ev)

	case OpOpaque:
		orig := r.handles[step.Opaque]
		sym, found = r.reg.FromOpaque(orig.ToOpaque())
		ev := TraceEvent{Op: OpOpaque, Subject: step.Opaque, Found: &found}
		if found {
			ev.Symbol = r.name(sym)
			if sym != orig {
				return fmt.Errorf("opaque %s: round trip returned a different symbol", step.Opaque)
			}
		}
		r.emit(ev)
	}

	if step.As != "" {
		r.handles[step.As] = sym
	}
	if e := step.Expect; e != nil {
		if e.Found != nil && *e.Found != found {
			return fmt.Errorf("%s: found=%t, want %t", step.Op(), found, *e.Found)
		}
		if e.Text != nil && found && sym.String() != *e.Text {
			return fmt.Errorf("%s: text %q, want %q", step.Op(), sym.String(), *e.Text)
		}
	}
	return nil
}

// readSite converts a protocol panic from a strict table into an error.
func readSite(site *symbol.Site) (sym symbol.Symbol, err error) {
	defer func() {
		if v := recover(); v != nil {
			pe, ok := v.(*symbol.ProtocolError)
			if !ok {
				panic(v)
			}
			err = pe
		}
	}()
	return site.Symbol(), nil
}
