package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/custody/app"
	custodyapp "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/cmd/custodyd/server"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/eventlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var flagListen string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&flagListen, "listen", "", "address the HTTP server listens on, overrides the configuration")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if flagListen != "" {
		conf.HTTP.Listen = flagListen
	}
	logger, err := newLogger(conf.Log)
	if err != nil {
		return err
	}

	sinks := []app.EventSink{app.NewLogSink(logger)}
	var journal *eventlog.Journal
	if conf.EventLog.Path != "" {
		if journal, err = eventlog.Open(conf.EventLog.Path); err != nil {
			return errors.Wrap(err, "event journal")
		}
		defer journal.Close()
		sinks = append(sinks, journal)
	}

	store, err := custodyapp.CommitKVStore(conf.Store.Backend, conf.Store.Dir)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	node, err := custodyapp.NewNode(store, logger, reg, sinks...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if node.ChainID() == "" {
		gen, err := app.LoadGenesis(conf.Genesis)
		if err != nil {
			return errors.Wrap(err, "genesis")
		}
		if err := node.InitGenesis(ctx, gen); err != nil {
			return err
		}
	}

	var events server.EventReader
	if journal != nil {
		events = journal
	}
	api := server.New(node, events, reg, logger.With("module", "http"), server.Config{
		RateLimit: conf.HTTP.RateLimit,
		Burst:     conf.HTTP.Burst,
	})
	srv := &http.Server{
		Addr:              conf.HTTP.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "listen", conf.HTTP.Listen, "chain_id", node.ChainID())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrapf(errors.ErrInput, "http server: %s", err)
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
