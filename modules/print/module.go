package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed values. Nil means os.Stdout.
	Out io.Writer
}

// Print writes every input to w and produces no outputs. Map inputs are
// printed one key per line with the keys sorted for consistent output.
func Print(w io.Writer) func(context.Context, []any) ([]any, error) {
	return func(ctx context.Context, inputs []any) ([]any, error) {
		ctxlog.FromContext(ctx).Info("Printing input", "count", len(inputs))

		for i, in := range inputs {
			fmt.Fprintf(w, "    [%d]\n", i)
			if err := printValue(w, in); err != nil {
				return nil, fmt.Errorf("failed to print input %d: %w", i, err)
			}
		}
		return nil, nil
	}
}

func printValue(w io.Writer, v any) error {
	var err error
	switch val := v.(type) {
	case nil:
		_, err = fmt.Fprintln(w, "      (null)")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err = fmt.Fprintf(w, "      %s = %v\n", k, val[k]); err != nil {
				return err
			}
		}
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err = fmt.Fprintf(w, "      %s = %q\n", k, val[k]); err != nil {
				return err
			}
		}
	case string:
		_, err = fmt.Fprintf(w, "      %q\n", val)
	default:
		_, err = fmt.Fprintf(w, "      %v\n", val)
	}
	return err
}

// Register registers the function with the registry.
func (m *Module) Register(r *registry.Registry) {
	w := m.Out
	if w == nil {
		w = os.Stdout
	}
	r.RegisterFunc("print", Print(w))
}
