package functions

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// registerDebugFuncs installs debug.panic, which always fails with a
// formatted message built from its arguments; useful for exercising
// error-propagation paths from templates.
func registerDebugFuncs(reg *compiler.Registry) {
	reg.Register("debug.panic", newFunc("debug.panic", false, 0, -1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		return value.Value{}, errs.New(errs.KindPanic, sp, "debug.panic(%s)", strings.Join(parts, ", "))
	}))

	// debug.print returns its argument unchanged, logging it at debug level.
	// Registered impure so it logs on every row instead of folding away.
	reg.Register("debug.print", newFunc("debug.print", false, 1, 1, func(_ compiler.EvalContext, args []value.Value, _ span.Span) (value.Value, error) {
		slog.Debug("debug.print", "value", args[0].String())
		return args[0], nil
	}))
}
