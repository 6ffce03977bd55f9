package writepipe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/compiler/functions"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/eval"
	"github.com/sqldef/tablegen/internal/format"
	"github.com/sqldef/tablegen/internal/genrow"
	"github.com/sqldef/tablegen/internal/parser"
	"github.com/sqldef/tablegen/internal/randengine"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// Format selects the output serialization.
type Format string

const (
	FormatSQL Format = "sql"
	FormatCSV Format = "csv"
)

func (f Format) extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".sql"
}

// Config is the write pipeline's full input; cmd/tablegen's only job is to
// parse flags into this struct.
type Config struct {
	TemplatePath string
	OutDir       string

	Files           int
	InsertsPerFile  int
	RowsPerInsert   int
	LastFileInserts int
	LastInsertRows  int

	Seed    *[32]byte // nil means draw from OS entropy
	Workers int        // 0 means hardware parallelism
	Engine  randengine.Name

	// QualifiedNameOverride/TableNameOverride replace the sole table's
	// declared name. Only meaningful for single-table templates; ignored
	// otherwise.
	QualifiedNameOverride string
	TableNameOverride     string

	Format           Format
	Compression      Compression
	CompressionLevel int
	EscapeBackslash  bool

	Zone *time.Location

	Quiet bool
}

// Run executes the whole write pipeline: parse, compile, partition, seed,
// fan shards out across a worker pool, and emit schema files. Any returned
// error already has a rendered template snippet and causal chain attached,
// so the caller (cmd/tablegen) can print it verbatim.
func Run(cfg Config) error {
	tables, globals, spanReg, err := compileTemplate(cfg)
	if err != nil {
		return err
	}
	applyNameOverrides(cfg, tables)

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return errs.Wrap(errs.KindIO, span.Null, err, "creating output directory")
	}
	if err := writeSchema(cfg.OutDir, tables); err != nil {
		return errs.Wrap(errs.KindIO, span.Null, err, "writing schema files")
	}

	part := NewPartition(cfg.Files, cfg.InsertsPerFile, cfg.RowsPerInsert, cfg.LastFileInserts, cfg.LastInsertRows)
	plans := part.Plan()
	totalRows := part.TotalRows()

	seed := cfg.Seed
	if seed == nil {
		s, err := RandomSeed()
		if err != nil {
			return errs.Wrap(errs.KindIO, span.Null, err, "drawing seed")
		}
		seed = &s
	}
	seeder, err := newSeedingRNG(*seed)
	if err != nil {
		return err
	}

	// Global expressions run first, in a single synthetic row_num=0 shard,
	// consuming the first draw from the seeding RNG.
	globalSeed := seeder.Next()
	globalEngine, err := randengine.New(cfg.Engine, globalSeed)
	if err != nil {
		return err
	}
	vars, err := eval.EvalGlobals(globals, globalEngine, cfg.Zone)
	if err != nil {
		return renderErr(spanReg, err)
	}

	// Per-shard seeds are drawn sequentially (the seeding RNG is not safe
	// for concurrent use) before shards are dispatched to the worker pool.
	shardSeeds := make([][32]byte, len(plans))
	for i := range plans {
		shardSeeds[i] = seeder.Next()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	prog := newProgress()
	stopReporter := runReporter(prog, totalRows, cfg.Quiet)

	eg := &errgroup.Group{}
	eg.SetLimit(workers)
	for i := range plans {
		i := i
		eg.Go(func() error {
			slog.Info("shard starting", "file", i+1, "rows", plans[i].TotalRows)
			err := runShard(cfg, tables, plans[i], shardSeeds[i], vars, prog)
			if err != nil {
				slog.Error("shard failed", "file", i+1, "error", err)
				return err
			}
			slog.Info("shard finished", "file", i+1)
			return nil
		})
	}
	waitErr := eg.Wait()
	prog.finish()
	stopReporter()
	if waitErr != nil {
		return renderErr(spanReg, waitErr)
	}

	slog.Info("generation complete", "files", cfg.Files, "rows", totalRows)
	return nil
}

// compileTemplate reads, parses, and compiles cfg's template, returning its
// compiled tables and global expressions with any error already rendered
// with a template snippet.
func compileTemplate(cfg Config) ([]*genrow.CompiledTable, []compiler.Compiled, *span.Registry, error) {
	text, err := os.ReadFile(cfg.TemplatePath)
	if err != nil {
		return nil, nil, nil, errs.Wrap(errs.KindIO, span.Null, err, "reading template %s", cfg.TemplatePath)
	}

	tmpl, spanReg, err := parser.ParseTemplate(string(text))
	if err != nil {
		return nil, nil, spanReg, renderErr(spanReg, err)
	}

	cc := compiler.NewCompileContext(cfg.Zone)
	reg := compiler.NewRegistry()
	functions.Register(reg)

	globals, err := reg.CompileGlobals(tmpl.Globals, cc)
	if err != nil {
		return nil, nil, spanReg, renderErr(spanReg, err)
	}

	tables, err := genrow.Compile(tmpl, reg, cc)
	if err != nil {
		return nil, nil, spanReg, renderErr(spanReg, err)
	}

	return tables, globals, spanReg, nil
}

// applyNameOverrides implements the --qualified-name/--table-name flags:
// for a single-table template, replace the declared name the schema file
// and data files are written under.
func applyNameOverrides(cfg Config, tables []*genrow.CompiledTable) {
	if len(tables) != 1 {
		return
	}
	if cfg.QualifiedNameOverride != "" {
		tables[0].QualifiedName = cfg.QualifiedNameOverride
	} else if cfg.TableNameOverride != "" {
		tables[0].QualifiedName = cfg.TableNameOverride
	}
}

// Explain compiles cfg's template without generating any output, returning
// the compiled table tree for the CLI's --explain flag to pretty-print.
func Explain(cfg Config) ([]*genrow.CompiledTable, error) {
	tables, _, _, err := compileTemplate(cfg)
	return tables, err
}

// renderErr prefixes err with a rendered snippet of the offending span and
// its causal chain. Errors without an *errs.Error in their
// chain (plain I/O failures with a Null span) are returned unchanged.
func renderErr(reg *span.Registry, err error) error {
	if err == nil || reg == nil {
		return err
	}
	var e *errs.Error
	if !errors.As(err, &e) {
		return err
	}
	snippet := reg.Snippet(e.Span)
	return errors.New(errs.Causes(snippet, err))
}

// shardCloser accumulates the output handles a single shard opened, so they
// can be closed, in reverse wrapping order, once the shard finishes.
type shardCloser struct {
	closers []io.Closer
}

func (s *shardCloser) add(c io.Closer) { s.closers = append(s.closers, c) }

func (s *shardCloser) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// runShard produces exactly one output file per table for its file plan,
// fully independent of every other shard: no cross-shard communication
// occurs during generation.
func runShard(cfg Config, tables []*genrow.CompiledTable, plan FilePlan, seed [32]byte, vars []value.Value, prog *progress) (err error) {
	closer := &shardCloser{}
	defer func() {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = errs.Wrap(errs.KindIO, span.Null, cerr, "closing shard outputs")
		}
	}()

	newWriter := func(t *genrow.CompiledTable) (format.Writer, error) {
		name := fmt.Sprintf("%s.%d%s%s", t.QualifiedName, plan.Index+1, cfg.Format.extension(), cfg.Compression.Extension())
		path := filepath.Join(cfg.OutDir, name)
		f, err := os.Create(path)
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, span.Null, err, "creating %s", path)
		}
		closer.add(f)

		cw := newCountingWriter(f, &prog.bytes)
		buffered := bufio.NewWriter(cw)
		// Registered before any compression encoder so Close (which runs
		// registrations in reverse) flushes the encoder's trailer into
		// buffered before buffered itself is flushed to disk.
		closer.add(flusherCloser{buffered})

		var sink io.Writer = buffered
		if cfg.Compression != CompressionNone {
			enc, err := newEncoder(buffered, cfg.Compression, cfg.CompressionLevel)
			if err != nil {
				return nil, errs.Wrap(errs.KindIO, span.Null, err, "building %s encoder", cfg.Compression)
			}
			closer.add(enc)
			sink = enc
		}

		switch cfg.Format {
		case FormatCSV:
			return format.NewCSVWriter(sink), nil
		default:
			return format.NewSQLWriter(sink, cfg.EscapeBackslash), nil
		}
	}

	engine, err := randengine.New(cfg.Engine, seed)
	if err != nil {
		return err
	}
	state := eval.New(engine, cfg.Zone, vars)
	state.SetRowNum(plan.StartRowNum)

	env, err := genrow.NewEnv(tables, state, newWriter)
	if err != nil {
		return err
	}

	for group := 1; group <= plan.Inserts; group++ {
		rows := plan.InsertRows(group)
		for r := int64(0); r < rows; r++ {
			if err := env.WriteRow(); err != nil {
				return err
			}
			prog.addRows(1)
		}
		if err := env.Finish(); err != nil {
			return err
		}
	}
	return nil
}

// flusherCloser adapts a *bufio.Writer (which has Flush, not Close) to
// io.Closer so it fits in shardCloser's uniform close list.
type flusherCloser struct{ w *bufio.Writer }

func (f flusherCloser) Close() error { return f.w.Flush() }
