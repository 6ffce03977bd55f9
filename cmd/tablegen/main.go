// Command tablegen is the CLI front-end for the template-driven synthetic
// table-data generator: it parses flags into a writepipe.Config and hands
// off to the core. --help/--version are handled before any validation;
// unrecoverable flag errors are fatal.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/sqldef/tablegen/internal/randengine"
	"github.com/sqldef/tablegen/internal/writepipe"
	"github.com/sqldef/tablegen/util"
)

var version string

type cliOptions struct {
	Template        string `short:"t" long:"template" description:"Template file path" value-name:"template_file"`
	OutDir          string `short:"o" long:"out-dir" description:"Output directory" value-name:"dir"`
	QualifiedName   string `long:"qualified-name" description:"Override the template's qualified table name" value-name:"name"`
	TableName       string `long:"table-name" description:"Override the template's table name" value-name:"name"`
	Files           int    `long:"files" description:"Number of output files per table" value-name:"K" default:"1"`
	Inserts         int    `long:"inserts" description:"INSERT statements per file" value-name:"N" default:"1"`
	Rows            int    `long:"rows" description:"Rows per INSERT statement" value-name:"R" default:"1"`
	LastFileInserts int    `long:"last-file-inserts" description:"Override the last file's insert count" value-name:"N_last"`
	LastInsertRows  int    `long:"last-insert-rows" description:"Override the last insert's row count" value-name:"R_last"`
	EscapeBackslash bool   `long:"escape-backslash" description:"Escape backslash and NUL in SQL string literals"`
	Seed            string `long:"seed" description:"64 hex digit seed (256 bits)" value-name:"hex"`
	Workers         int    `long:"workers" description:"Worker count (0 = hardware parallelism)" value-name:"n" default:"0"`
	RNG             string `long:"rng" description:"RNG engine: chacha, hc128, isaac, isaac64, xorshift, pcg32" value-name:"engine" default:"chacha"`
	Quiet           bool   `short:"q" long:"quiet" description:"Suppress progress output"`
	Zone            string `long:"zone" description:"IANA time zone name" value-name:"zone" default:"UTC"`
	Format          string `long:"format" description:"Output format: sql, csv" value-name:"fmt" default:"sql"`
	Compression     string `long:"compression" description:"Compression: none, gzip, xz, zstd" value-name:"codec" default:"none"`
	CompressionLevel int   `long:"compression-level" description:"Compression level (0-9 gzip/xz, 1-21 zstd)" value-name:"level" default:"6"`
	Explain         bool   `long:"explain" description:"Print the compiled table/expression tree instead of generating output"`
	Help            bool   `long:"help" description:"Show this help"`
	Version         bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) (writepipe.Config, bool) {
	var opts cliOptions
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	_, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if opts.Template == "" || (opts.OutDir == "" && !opts.Explain) {
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	zone, err := time.LoadLocation(opts.Zone)
	if err != nil {
		log.Fatalf("invalid --zone %q: %v", opts.Zone, err)
	}

	var seed *[32]byte
	if opts.Seed != "" {
		s, err := writepipe.ParseSeed(opts.Seed)
		if err != nil {
			log.Fatalf("invalid --seed: %v", err)
		}
		seed = &s
	}

	compression := writepipe.CompressionNone
	switch opts.Compression {
	case "", "none":
		compression = writepipe.CompressionNone
	case "gzip":
		compression = writepipe.CompressionGzip
	case "xz":
		compression = writepipe.CompressionXZ
	case "zstd":
		compression = writepipe.CompressionZstd
	default:
		log.Fatalf("unknown --compression %q", opts.Compression)
	}

	format := writepipe.FormatSQL
	switch opts.Format {
	case "sql":
		format = writepipe.FormatSQL
	case "csv":
		format = writepipe.FormatCSV
	default:
		log.Fatalf("unknown --format %q", opts.Format)
	}

	engineName := randengine.Name(opts.RNG)
	switch engineName {
	case randengine.ChaCha, randengine.HC128, randengine.ISAAC, randengine.ISAAC64, randengine.XorShift, randengine.PCG32:
	default:
		log.Fatalf("unknown --rng %q", opts.RNG)
	}

	return writepipe.Config{
		TemplatePath:          opts.Template,
		OutDir:                opts.OutDir,
		QualifiedNameOverride: opts.QualifiedName,
		TableNameOverride:     opts.TableName,
		Files:            opts.Files,
		InsertsPerFile:   opts.Inserts,
		RowsPerInsert:    opts.Rows,
		LastFileInserts:  opts.LastFileInserts,
		LastInsertRows:   opts.LastInsertRows,
		Seed:             seed,
		Workers:          opts.Workers,
		Engine:           engineName,
		Format:           format,
		Compression:      compression,
		CompressionLevel: opts.CompressionLevel,
		EscapeBackslash:  opts.EscapeBackslash,
		Zone:             zone,
		Quiet:            opts.Quiet,
	}, opts.Explain
}

func main() {
	util.InitSlog()
	cfg, explain := parseOptions(os.Args[1:])

	if explain {
		tables, err := writepipe.Explain(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		pp.Println(tables)
		return
	}

	if err := writepipe.Run(cfg); err != nil {
		slog.Error("generation failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
