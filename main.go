// main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath  string
	logFile     string
	logLevel    string
	metricsAddr string
}

// panel bundles everything that outlives a single invocation.
type panel struct {
	reg      *registry
	store    *statusStore
	metrics  *panelMetrics
	logger   *slog.Logger
	closeLog func() error
}

func openPanel(opts *rootOptions) (*panel, error) {
	logger, closeLog, err := openLogger(opts.logFile, opts.logLevel)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	reg, err := newRegistry(cfg)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return &panel{
		reg:      reg,
		store:    newStatusStore(reg),
		metrics:  newPanelMetrics(),
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

func (p *panel) newInvoker(n notifier) *invoker {
	return newInvoker(p.reg, p.store, n, withMetrics(p.metrics), withLogger(p.logger))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "cloudpanel",
		Short: "Start and stop the database and compute instances",
		Long: `cloudpanel is a terminal control panel that starts and stops a
database instance and a compute instance by calling their pre-provisioned
function URLs, and shows the last known status of each.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "cloudpanel version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./"+defaultConfigPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file (default: discard)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /status on this address (disabled when empty)")

	rootCmd.AddCommand(newActionsCmd(opts))
	rootCmd.AddCommand(newInvokeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	p, err := openPanel(opts)
	if err != nil {
		return err
	}
	defer p.closeLog()

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if opts.metricsAddr != "" {
		go serveStatus(serverCtx, opts.metricsAddr, newStatusRouter(p.store, p.metrics), p.logger)
	}

	// Quitting the TUI cancels in-flight requests but not the program itself.
	invokeCtx, cancelInvocations := context.WithCancel(ctx)
	defer cancelInvocations()

	toasts := newToastNotifier(p.logger)
	inv := p.newInvoker(toasts)

	prog := tea.NewProgram(initialModel(invokeCtx, cancelInvocations, inv, p.store, toasts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

func newActionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the configured actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPanel(opts)
			if err != nil {
				return err
			}
			defer p.closeLog()
			printActions(cmd.OutOrStdout(), p.reg)
			return nil
		},
	}
}

func printActions(w io.Writer, reg *registry) {
	for _, a := range reg.all() {
		fmt.Fprintf(w, "%-10s %-6s %-9s %s\n", a.label, a.direction, a.resource, a.url)
	}
}

func newInvokeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <label>",
		Short: "Invoke one action without the TUI",
		Example: `  cloudpanel invoke "Start RDS"
  cloudpanel invoke "Stop EC2" --log-file cloudpanel.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPanel(opts)
			if err != nil {
				return err
			}
			defer p.closeLog()

			inv := p.newInvoker(&consoleNotifier{out: cmd.OutOrStdout()})
			o, err := inv.invoke(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st, _ := p.store.get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], st)
			if o != outcomeSuccess {
				return fmt.Errorf("%s: %s", args[0], o)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cloudpanel version %s\n", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
