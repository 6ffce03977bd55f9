package functions

import (
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// registerArrayFuncs installs generate_series; ARRAY[...] literals and a[i]
// subscripting are handled directly by the compiler package's dedicated
// control-flow nodes (compiler.NewArray / compiler.NewSubscript) since they
// are syntax, not named functions.
func registerArrayFuncs(reg *compiler.Registry) {
	reg.Register("generate_series", newFunc("generate_series", true, 2, 3, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		start, err := argNumber(args[0], sp, "generate_series")
		if err != nil {
			return value.Value{}, err
		}
		end, err := argNumber(args[1], sp, "generate_series")
		if err != nil {
			return value.Value{}, err
		}
		step := value.NewInt(1)
		if len(args) == 3 {
			step, err = argNumber(args[2], sp, "generate_series")
			if err != nil {
				return value.Value{}, err
			}
		}
		if step.Cmp(value.NewInt(0)) == 0 {
			return value.Value{}, errs.New(errs.KindInvalidArguments, sp, "generate_series: step must not be zero")
		}
		descending := step.Cmp(value.NewInt(0)) < 0
		if descending && start.Cmp(end) < 0 {
			return value.FromArray(value.NewMaterializedArray(nil)), nil
		}
		if !descending && start.Cmp(end) > 0 {
			return value.FromArray(value.NewMaterializedArray(nil)), nil
		}
		var length int
		diff, err := end.Sub(start)
		if err != nil {
			return value.Value{}, err
		}
		quot, err := diff.IntDiv(step)
		if err != nil {
			return value.Value{}, err
		}
		n, ok := quot.Int64()
		if !ok {
			return value.Value{}, errs.New(errs.KindIntegerOverflow, sp, "generate_series: range too large")
		}
		length = int(n) + 1
		return value.FromArray(value.NewSeriesArray(start, step, length)), nil
	}))
}
