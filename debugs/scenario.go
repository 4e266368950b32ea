package debugs

import (
	"context"
	"errors"
	"fmt"

	"github.com/reusee/softplc/ilvm"
	"github.com/reusee/softplc/logs"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Scenario scripts exercise a compiled program without any I/O attached:
// they force inputs, run scans and assert on outputs. The script language
// is starlark; failed expectations collect into the returned error.

type RunScenario func(ctx context.Context, interp *ilvm.Interpreter, path string) error

func (Module) RunScenario(
	logger logs.Logger,
) RunScenario {
	return func(ctx context.Context, interp *ilvm.Interpreter, path string) error {
		var failures []error

		thread := &starlark.Thread{
			Name: "scenario",
		}
		_, err := starlark.ExecFileOptions(
			&syntax.FileOptions{
				Set:             true,
				While:           true,
				TopLevelControl: true,
			},
			thread,
			path,
			nil,
			scenarioBuiltins(interp, &failures),
		)
		if err != nil {
			return err
		}

		for _, failure := range failures {
			logger.ErrorContext(ctx, "expectation failed",
				"error", failure,
			)
		}
		return errors.Join(failures...)
	}
}

func scenarioBuiltins(interp *ilvm.Interpreter, failures *[]error) starlark.StringDict {
	table := interp.Table()

	return starlark.StringDict{

		"set_bool": starlark.NewBuiltin("set_bool",
			func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
				var addr string
				var value bool
				if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &addr, &value); err != nil {
					return nil, err
				}
				table.SetBool(addr, value)
				return starlark.None, nil
			}),

		"set_word": starlark.NewBuiltin("set_word",
			func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
				var addr string
				var value int
				if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &addr, &value); err != nil {
					return nil, err
				}
				table.SetWord(addr, value)
				return starlark.None, nil
			}),

		"set_float": starlark.NewBuiltin("set_float",
			func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
				var addr string
				var value float64
				if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &addr, &value); err != nil {
					return nil, err
				}
				table.SetFloat(addr, value)
				return starlark.None, nil
			}),

		"get": starlark.NewBuiltin("get",
			func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
				var addr string
				if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &addr); err != nil {
					return nil, err
				}
				return toStarlarkValue(table.GetValue(addr)), nil
			}),

		"scan": starlark.NewBuiltin("scan",
			func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
				n := 1
				if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0, &n); err != nil {
					return nil, err
				}
				total := 0.0
				for i := 0; i < n; i++ {
					total += interp.RunScan()
				}
				return starlark.Float(total), nil
			}),

		"expect": starlark.NewBuiltin("expect",
			func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
				var addr string
				var expected starlark.Value
				if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &addr, &expected); err != nil {
					return nil, err
				}
				actual := toStarlarkValue(table.GetValue(addr))
				equal, err := starlark.Compare(syntax.EQL, actual, expected)
				if err != nil {
					return nil, err
				}
				if !equal {
					*failures = append(*failures, fmt.Errorf(
						"%s: expected %v, got %v", addr, expected, actual))
				}
				return starlark.Bool(equal), nil
			}),
	}
}

// InterpGlobals exposes the same operations to a Tap REPL session.
func InterpGlobals(interp *ilvm.Interpreter) map[string]any {
	table := interp.Table()
	return map[string]any{
		"set_bool":  table.SetBool,
		"set_word":  table.SetWord,
		"set_float": table.SetFloat,
		"get":       table.GetValue,
		"scan":      interp.RunScan,
		"stop":      interp.Stop,
	}
}
