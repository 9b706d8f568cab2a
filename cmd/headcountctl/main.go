package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"headcount/internal/amqp"
	"headcount/internal/backend"
	"headcount/internal/cli"
	"headcount/internal/config"
	"headcount/internal/export"
	applog "headcount/internal/log"
	"headcount/internal/ports"
)

var version = "dev"

// app carries what every subcommand needs. Tests fill it in directly;
// otherwise the root command's pre-run opens it from the environment.
type app struct {
	cfg    *config.Config
	res    *backend.BackendResult
	logger *applog.Logger
	now    func() time.Time

	newExporter func(ctx context.Context, targets cli.ExportTargets) (*export.Exporter, error)
	dialEvents  func() (ports.EventPublisher, func() error, error)

	owned bool
}

func newApp() *app {
	a := &app{now: time.Now}
	a.newExporter = func(ctx context.Context, targets cli.ExportTargets) (*export.Exporter, error) {
		return cli.NewExporter(ctx, a.cfg, targets)
	}
	a.dialEvents = func() (ports.EventPublisher, func() error, error) {
		if a.cfg.AMQPURL == "" {
			return nil, nil, fmt.Errorf("AMQP_URL is not configured")
		}
		client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "headcountctl",
		Short:         "Record and report daily workforce allocations",
		Long:          "headcountctl works on the same record store as the headcount server,\nconfigured through the same environment variables.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.AddCommand(
		departmentsCmd(a),
		addCmd(a),
		editCmd(a),
		reportCmd(a),
		exportCmd(a),
		replayCmd(a),
	)
	return root
}

// open loads configuration and the record store unless already provided.
func (a *app) open(cmd *cobra.Command) error {
	if a.res != nil {
		return nil
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	applog.SetDefault(a.logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(a.logger.Logger).CreateBackend(cmd.Context(), bcfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.DataBackend, err)
	}
	a.res = res
	a.owned = true
	return nil
}

func (a *app) close() error {
	if !a.owned || a.res == nil {
		return nil
	}
	a.owned = false
	return a.res.Cleanup()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}
