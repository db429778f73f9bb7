package cmd

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/infersim/infersim/config"
	"github.com/infersim/infersim/observability"
)

var metricsAddr string

var runCmd = &cobra.Command{
	Use:   "run <preset>",
	Short: "Run a simulation preset to completion",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		applyLogLevel()
		preset := args[0]

		cfg, err := config.Load(configPath, preset)
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}

		if metricsAddr != "" {
			srv := observability.NewServer()
			go func() {
				if err := http.ListenAndServe(metricsAddr, srv.Handler()); err != nil {
					logrus.Warnf("metrics server stopped: %v", err)
				}
			}()
			logrus.Infof("metrics listening on %s", metricsAddr)
		}

		s, sink, err := config.Build(cfg)
		if err != nil {
			logrus.Fatalf("building simulator: %v", err)
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logrus.Warnf("closing trace sink: %v", err)
			}
		}()

		logrus.Infof("starting run: preset=%s seed=%q workers=%d", preset, cfg.Seed, len(cfg.Workers))
		if err := s.Run(); err != nil {
			logrus.Fatalf("simulation aborted: %v", err)
		}
		observability.Poll(s.PendingDepth(), s.BusyWorkers())

		res := s.Summary()
		logrus.Infof("run complete: admitted=%d finished=%d dropped=%d p50=%.3f p99=%.3f mean=%.3f",
			res.Admitted, res.Finished, res.Dropped, res.LatencyP50, res.LatencyP99, res.LatencyMean)
	},
}

func init() {
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve /metrics and /healthz on this address for the run's duration")
}
