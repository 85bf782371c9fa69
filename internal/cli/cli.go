package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/fusegrid/internal/app"
	"github.com/vk/fusegrid/internal/hclconfig"
	"github.com/vk/fusegrid/internal/pipeline"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// flags holds the values shared by every subcommand.
type flags struct {
	configPaths  []string
	pipeline     string
	tags         []string
	nodes        []string
	fromNodes    []string
	toNodes      []string
	logLevel     string
	logFormat    string
	defaultClass string

	// plan
	format string
	image  string

	// run
	statusPort int
	async      bool
}

// NewRootCommand builds the fusegrid command tree. Command output (plans)
// goes to outW; logs go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "fusegrid",
		Short: "Fuse pipeline nodes into coarse orchestrator tasks and run them",
		Long: "fusegrid projects a pipeline of nodes and fused groups onto a task graph\n" +
			"for an external orchestrator, and runs selected parts of it locally,\n" +
			"keeping group-internal artifacts in memory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&f.configPaths, "config", "c", []string{"."}, "HCL files or directories holding the project.")
	pf.StringVarP(&f.pipeline, "pipeline", "p", "", "Pipeline to use (default \"__default__\").")
	pf.StringSliceVar(&f.tags, "tags", nil, "Keep entities carrying any of these tags.")
	pf.StringSliceVar(&f.nodes, "nodes", nil, "Keep these nodes or groups. A member name selects its group.")
	pf.StringSliceVar(&f.fromNodes, "from-nodes", nil, "Keep these entities and everything downstream of them.")
	pf.StringSliceVar(&f.toNodes, "to-nodes", nil, "Keep these entities and everything upstream of them.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.defaultClass, "default-resource-class", "", "Override the project's default resource class.")

	planCmd := &cobra.Command{
		Use:   "plan [PATH...]",
		Short: "Print the task graph of a pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), f, args, errW)
			if err != nil {
				return err
			}
			return a.Plan(cmd.Context(), cmd.OutOrStdout())
		},
	}
	planCmd.Flags().StringVar(&f.format, "format", app.FormatYAML, "Output format. Options: 'yaml' (task records) or 'workflow'.")
	planCmd.Flags().StringVar(&f.image, "image", "", "Container image for the workflow document (default: project image).")

	validateCmd := &cobra.Command{
		Use:   "validate [PATH...]",
		Short: "Check a pipeline without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), f, args, errW)
			if err != nil {
				return err
			}
			return a.Validate(cmd.Context())
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [PATH...]",
		Short: "Run a pipeline, or the selected part of it, locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), f, args, errW)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd.Context())
			return err
		},
	}
	runCmd.Flags().IntVar(&f.statusPort, "status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	runCmd.Flags().BoolVar(&f.async, "async", false, "Load and save artifacts concurrently.")

	root.AddCommand(planCmd, validateCmd, runCmd)
	return root
}

// newApp validates the flags and builds the application. Invalid flags are
// usage errors.
func newApp(ctx context.Context, f *flags, args []string, errW io.Writer) (*app.App, error) {
	paths := f.configPaths
	if len(args) > 0 {
		paths = args
	}
	slog.Debug("Config paths determined.", "paths", paths)

	cfg, err := app.NewConfig(app.Config{
		ConfigPaths: paths,
		Pipeline:    f.pipeline,
		Filter: pipeline.FilterOptions{
			Tags:      f.tags,
			Names:     f.nodes,
			FromNodes: f.fromNodes,
			ToNodes:   f.toNodes,
		},
		LogFormat:            strings.ToLower(f.logFormat),
		LogLevel:             strings.ToLower(f.logLevel),
		StatusPort:           f.statusPort,
		AsyncIO:              f.async,
		DefaultResourceClass: f.defaultClass,
		Format:               strings.ToLower(f.format),
		Image:                f.image,
	})
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(ctx, errW, cfg, hclconfig.NewLoader())
}

// Execute runs the command tree with args. Unknown commands and bad flags
// come back as an *ExitError with code 2.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(fmt.Errorf("%w\nRun 'fusegrid --help' for usage.", err))
	}
	return err
}
