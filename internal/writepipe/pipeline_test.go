package writepipe

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/sqldef/tablegen/internal/randengine"
)

func writeTemplate(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.sql")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}
	return path
}

func baseConfig(t *testing.T, template string) Config {
	t.Helper()
	var seed [32]byte
	return Config{
		TemplatePath:   writeTemplate(t, template),
		OutDir:         filepath.Join(t.TempDir(), "out"),
		Files:          1,
		InsertsPerFile: 1,
		RowsPerInsert:  1,
		Seed:           &seed,
		Workers:        1,
		Engine:         randengine.ChaCha,
		Format:         FormatSQL,
		Compression:    CompressionNone,
		Zone:           time.UTC,
		Quiet:          true,
	}
}

func readOutput(t *testing.T, cfg Config, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(cfg.OutDir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(b)
}

func TestRunConstantExpressionProducesExactInsert(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (a int {{ 2 + 3 }});")
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	const want = "INSERT INTO t VALUES\n(5);\n"
	if got := readOutput(t, cfg, "t.1.sql"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunWritesSchemaFile(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (a int {{ 2 + 3 }});")
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	schema := readOutput(t, cfg, "t-schema.sql")
	if !strings.HasPrefix(schema, "CREATE TABLE t ") {
		t.Fatalf("schema file %q should start with the CREATE TABLE statement", schema)
	}
}

func TestRunCSVFormat(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (a int {{ 2 + 3 }});")
	cfg.Format = FormatCSV
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := readOutput(t, cfg, "t.1.csv"); got != "5\n" {
		t.Fatalf("got %q, want %q", got, "5\n")
	}
}

func TestRunGlobalExpressionsFeedVariableSlots(t *testing.T) {
	cfg := baseConfig(t, "SET n = 7;\nCREATE TABLE t (x int {{ n }});")
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	const want = "INSERT INTO t VALUES\n(7);\n"
	if got := readOutput(t, cfg, "t.1.sql"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestRunRowNumPartitioning drives the full K=3, N=2, R=4 worked example
// with the last file overridden to a single 2-row insert: 18 rows total,
// split 1..8 / 9..16 / 17..18.
func TestRunRowNumPartitioning(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (x int {{ rownum }});")
	cfg.Files = 3
	cfg.InsertsPerFile = 2
	cfg.RowsPerInsert = 4
	cfg.LastFileInserts = 1
	cfg.LastInsertRows = 2
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want1 := "INSERT INTO t VALUES\n(1),\n(2),\n(3),\n(4);\n" +
		"INSERT INTO t VALUES\n(5),\n(6),\n(7),\n(8);\n"
	want2 := "INSERT INTO t VALUES\n(9),\n(10),\n(11),\n(12);\n" +
		"INSERT INTO t VALUES\n(13),\n(14),\n(15),\n(16);\n"
	want3 := "INSERT INTO t VALUES\n(17),\n(18);\n"

	if got := readOutput(t, cfg, "t.1.sql"); got != want1 {
		t.Errorf("file 1: got %q, want %q", got, want1)
	}
	if got := readOutput(t, cfg, "t.2.sql"); got != want2 {
		t.Errorf("file 2: got %q, want %q", got, want2)
	}
	if got := readOutput(t, cfg, "t.3.sql"); got != want3 {
		t.Errorf("file 3: got %q, want %q", got, want3)
	}
}

// TestRunDeterministicAcrossWorkerCounts re-runs the same seeded template
// with 1 and 4 workers and expects byte-identical files.
func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	const template = `CREATE TABLE t (
  a int {{ rownum }},
  b int {{ rand.range_inclusive(1, 3) }}
);`
	var seed [32]byte
	for i := range seed {
		seed[i] = 0x41
	}

	run := func(workers int) map[string]string {
		cfg := baseConfig(t, template)
		cfg.Seed = &seed
		cfg.Engine = randengine.HC128
		cfg.Files = 3
		cfg.InsertsPerFile = 2
		cfg.RowsPerInsert = 4
		cfg.Workers = workers
		if err := Run(cfg); err != nil {
			t.Fatalf("Run(workers=%d): %v", workers, err)
		}
		out := map[string]string{}
		for _, name := range []string{"t.1.sql", "t.2.sql", "t.3.sql"} {
			out[name] = readOutput(t, cfg, name)
		}
		return out
	}

	serial := run(1)
	parallel := run(4)
	for name, want := range serial {
		if got := parallel[name]; got != want {
			t.Errorf("%s differs between worker counts:\n  1 worker: %q\n  4 workers: %q", name, want, got)
		}
	}

	rowPat := regexp.MustCompile(`\((\d+), ([123])\)`)
	for name, content := range serial {
		if !rowPat.MatchString(content) {
			t.Errorf("%s: %q does not look like (rownum, 1..3) rows", name, content)
		}
	}
}

func TestRunDerivedChildFanOut(t *testing.T) {
	const template = `
CREATE TABLE p (id int {{ rownum }});
CREATE TABLE c (pid int {{ rownum }}, s int {{ sub_row_num }});
{{for each row of p generate rand.range_inclusive(2, 2) rows of c}}
`
	cfg := baseConfig(t, template)
	cfg.RowsPerInsert = 5
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantParent := "INSERT INTO p VALUES\n(1),\n(2),\n(3),\n(4),\n(5);\n"
	if got := readOutput(t, cfg, "p.1.sql"); got != wantParent {
		t.Errorf("parent: got %q, want %q", got, wantParent)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO c VALUES\n")
	for row := 1; row <= 5; row++ {
		for sub := 1; sub <= 2; sub++ {
			if row != 1 || sub != 1 {
				sb.WriteString("),\n(")
			} else {
				sb.WriteString("(")
			}
			sb.WriteString(strconv.Itoa(row) + ", " + strconv.Itoa(sub))
		}
	}
	sb.WriteString(");\n")
	if got := readOutput(t, cfg, "c.1.sql"); got != sb.String() {
		t.Errorf("child: got %q, want %q", got, sb.String())
	}
}

func TestRunDivisionByZeroFailsWithKindAndSnippet(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (x int {{ 1/0 }});")
	err := Run(cfg)
	if err == nil {
		t.Fatalf("expected a division-by-zero failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "DivisionByZero") {
		t.Errorf("error %q should name the DivisionByZero kind", msg)
	}
	if !strings.Contains(msg, "1/0") {
		t.Errorf("error %q should render the offending template snippet", msg)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutDir, "t.1.sql")); statErr == nil {
		t.Errorf("no data file should be written when compilation fails")
	}
}

func TestRunGzipOutputRoundTrips(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (a int {{ 2 + 3 }});")
	cfg.Compression = CompressionGzip
	cfg.CompressionLevel = 6
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	f, err := os.Open(filepath.Join(cfg.OutDir, "t.1.sql.gz"))
	if err != nil {
		t.Fatalf("opening compressed output: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	const want = "INSERT INTO t VALUES\n(5);\n"
	if string(body) != want {
		t.Fatalf("got %q, want %q", string(body), want)
	}
}

func TestRunTableNameOverride(t *testing.T) {
	cfg := baseConfig(t, "CREATE TABLE t (a int {{ 2 + 3 }});")
	cfg.QualifiedNameOverride = "db.renamed"
	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	const want = "INSERT INTO db.renamed VALUES\n(5);\n"
	if got := readOutput(t, cfg, "db.renamed.1.sql"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
