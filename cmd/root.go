package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/treepick/internal/config"
	"github.com/oakwood-commons/treepick/internal/search"
	"github.com/oakwood-commons/treepick/internal/session"
	"github.com/oakwood-commons/treepick/internal/ui"
	"github.com/oakwood-commons/treepick/internal/watch"
	"github.com/oakwood-commons/treepick/pkg/loader"
	"github.com/oakwood-commons/treepick/pkg/logger"
	"github.com/oakwood-commons/treepick/pkg/settings"
)

// rootOptions holds the flag values of one invocation.
type rootOptions struct {
	configFile string
	logFile    string
	debug      bool
	noColor    bool

	output        string
	selectPaths   []string
	jsonPaths     []string
	search        string
	expression    bool
	selectMatched bool
	decode        bool
	watch         bool
	keyMode       string
	exportFile    string

	cfg *config.Config
	log logr.Logger
	ctx context.Context
}

// NewRootCommand builds the treepick command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{ctx: context.Background(), log: logr.Discard()}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Browse a JSON or YAML document as a tree and export the parts you pick",
		Long: `treepick loads a JSON, YAML, TOML or NDJSON document and shows it as a
collapsible tree. Tick the nodes you want, narrow the tree with a search, and
export the picked fields as a new, smaller document.

Without --output, --select, --jsonpath or --search the interactive browser
starts. With any of them treepick runs headless and writes the export to
stdout.`,
		Example: `  treepick inventory.json
  cat player.prefab | treepick -
  treepick inventory.json --search name -o yaml
  treepick inventory.json --select root.items.[0] --select root.owner
  treepick inventory.json --jsonpath '$.items[?@.price > 10].name' -o tree
  treepick inventory.json --expression --search 'key == "id" && value > 1'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/treepick/config.yaml)")
	pf.StringVar(&o.logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&o.noColor, "no-color", false, "disable color output")

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "headless output format: json|yaml|tree")
	f.StringArrayVarP(&o.selectPaths, "select", "s", nil, "select a path such as root.items.[0].name (repeatable)")
	f.StringArrayVar(&o.jsonPaths, "jsonpath", nil, "select every node matched by an RFC 9535 JSONPath query (repeatable)")
	f.StringVar(&o.search, "search", "", "filter the tree to nodes matching this term")
	f.BoolVarP(&o.expression, "expression", "e", false, "treat --search as a CEL predicate over key, value and path")
	f.BoolVar(&o.selectMatched, "select-matched", false, "select every search match")
	f.BoolVar(&o.decode, "decode", false, "expand string values that hold JSON, YAML or JWT documents")
	f.BoolVarP(&o.watch, "watch", "w", false, "reload the file when it changes on disk")
	f.StringVar(&o.keyMode, "key-mode", "", "keybinding mode: vim|emacs")
	f.StringVar(&o.exportFile, "export-file", "", "file written by the export key (default from config)")

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.AddCommand(newServeCommand(o), newVersionCommand(), newConfigCommand(o))
	return cmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// setup loads configuration and the logger shared by every subcommand.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var level int8
	if o.debug {
		level = -1
	}
	lgr, err := logger.Setup(logger.Options{Level: level, File: o.logFile})
	if err != nil {
		return err
	}
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
	o.log = *lgr

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.NoColor = o.noColor || os.Getenv("NO_COLOR") != ""
	run.LogFile = o.logFile
	o.ctx = settings.IntoContext(logger.WithLogger(cmd.Context(), lgr), run)

	cfg, path, err := config.Load(config.LoadOptions{ConfigFile: o.configFile})
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return usageErrorf("%v", err)
		}
		return err
	}
	if path != "" {
		o.log.V(1).Info("loaded config", "path", path)
	}
	o.cfg = cfg
	return nil
}

func (o *rootOptions) headless(cmd *cobra.Command) bool {
	for _, name := range []string{"output", "select", "jsonpath", "search", "select-matched"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return !stdoutIsTerminal()
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	if o.keyMode != "" && !ui.IsValidKeyMode(o.keyMode) {
		return usageErrorf("invalid --key-mode %q (expected vim or emacs)", o.keyMode)
	}
	if o.watch && (len(args) == 0 || args[0] == "-") {
		return usageErrorf("--watch needs a file argument")
	}
	format, err := session.ParseFormat(o.output)
	if err != nil {
		return usageErrorf("%v", err)
	}

	data, src, err := readInput(args, cmd.InOrStdin())
	if errors.Is(err, errNoInput) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}

	interactive := !o.headless(cmd)
	if interactive && o.logFile == "" {
		// stderr shares the terminal with the UI
		o.log = logr.Discard()
	}

	sessOpts := sessionOptions(o.cfg)
	if o.expression {
		sessOpts.Search.Mode = search.ModeExpression
	}
	ctl := session.NewController(sessOpts, o.log)
	doc, err := loader.Load(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", src.Name(), err)
	}
	if o.decode {
		doc = loader.ExpandEmbedded(doc)
	}
	sess, err := ctl.Replace(doc, src)
	if err != nil {
		return err
	}
	settings.SetSource(o.ctx, src)
	o.log.V(1).Info("loaded document", logger.SourceKey, src.Name(), logger.SessionKey, sess.ID(), "nodes", sess.Index().Len())

	if !interactive {
		return o.runHeadless(sess, format, cmd.OutOrStdout())
	}
	return o.runInteractive(ctl, src)
}

// runHeadless applies the pick flags and writes the export. Without any
// selection flag every search hit, or the whole document, is selected.
func (o *rootOptions) runHeadless(sess *session.Session, format session.Format, w io.Writer) error {
	pick := session.Pick{
		Search:        o.search,
		SelectMatched: o.selectMatched,
		Paths:         o.selectPaths,
		JSONPath:      o.jsonPaths,
	}
	if err := sess.Apply(pick); err != nil {
		return err
	}
	if len(pick.Paths) == 0 && len(pick.JSONPath) == 0 && !pick.SelectMatched {
		if sess.Search().Active() {
			sess.SelectMatched()
		} else {
			sess.SelectAll()
		}
	}
	out, err := sess.Render(format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (o *rootOptions) runInteractive(ctl *session.Controller, src settings.Source) error {
	opts := uiOptions(o.cfg)
	if run, ok := settings.FromContext(o.ctx); ok {
		opts.NoColor = run.NoColor
	}
	opts.Log = o.log
	if o.keyMode != "" {
		opts.KeyMode = ui.KeyMode(o.keyMode)
	}
	if o.exportFile != "" {
		opts.ExportPath = o.exportFile
	}

	ctx, cancel := context.WithCancel(o.ctx)
	defer cancel()

	if o.watch {
		w, err := watch.New(src.Path, watch.WithLogger(o.log))
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.log.Error(err, "watcher stopped")
			}
		}()
		opts.WatchPath = w.Path()
		opts.Changes = w.Changes()
		opts.Errors = w.Errors()
	}

	progOpts, cleanup := programOptions(ctx)
	defer cleanup()
	return ui.Run(ctl, opts, progOpts...)
}

// usageError marks errors caused by bad flags or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an Execute error to a process exit status: 0 for success,
// 2 for usage errors and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	return 1
}
