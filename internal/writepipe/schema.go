package writepipe

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sqldef/tablegen/internal/genrow"
	"github.com/sqldef/tablegen/util"
)

// writeSchema emits `{qualified_name}-schema.sql` for every table, each
// containing exactly `CREATE TABLE {qualified_name} {body}`.
func writeSchema(outDir string, tables []*genrow.CompiledTable) error {
	for _, t := range tables {
		path := filepath.Join(outDir, t.QualifiedName+"-schema.sql")
		content := fmt.Sprintf("CREATE TABLE %s %s\n", t.QualifiedName, t.Body)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing schema for %s: %w", t.QualifiedName, err)
		}
	}
	names := util.TransformSlice(tables, func(t *genrow.CompiledTable) string { return t.QualifiedName })
	slog.Info("schema files written", "tables", names)
	return nil
}
