package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"vtsched/internal/metrics"
	"vtsched/internal/sched"
	"vtsched/internal/sim"
)

func main() {
	if err := buildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "schedsim:", err)
		os.Exit(1)
	}
}

func buildCLI() *cobra.Command {
	var (
		configPath   string
		workloadPath string
		tracePath    string
		policy       string
		metricsAddr  string
		maxDecisions int64
	)

	cmd := &cobra.Command{
		Use:   "schedsim",
		Short: "Run a scheduling workload against one of the policies",
		Long: "schedsim drives the scheduling engine with a scripted YAML workload,\n" +
			"advancing virtual time and reporting the final outcome (Done, Deadlock\n" +
			"or Panic) together with basic accounting.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sched.Load(configPath)
			if policy != "" {
				cfg.Policy = policy
			}
			s, err := sched.New(cfg)
			if err != nil {
				return err
			}

			w, err := sim.LoadWorkload(workloadPath)
			if err != nil {
				return err
			}

			var trace *sim.Trace
			if tracePath != "" {
				trace, err = sim.NewTrace(tracePath)
				if err != nil {
					return fmt.Errorf("open trace: %w", err)
				}
				defer trace.Close()
			}

			collector := metrics.NewCollector()
			if metricsAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", collector.Handler())
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						fmt.Fprintln(os.Stderr, "metrics server:", err)
					}
				}()
			}

			h := sim.NewHarness(s, w, trace, collector)
			res, err := h.Run(maxDecisions)
			if err != nil {
				return err
			}

			fmt.Printf("policy=%s outcome=%s clock=%d decisions=%d idle=%d\n",
				cfg.Policy, res.Outcome, res.Clock, res.Decisions, res.Idle)
			for _, p := range s.List() {
				fmt.Printf("  pid=%d state=%s priority=%d total=%d running=%d ready=%d waiting=%d\n",
					p.Pid, p.State, p.Priority,
					p.Times.Total, p.Times.Running, p.Times.Ready, p.Times.Waiting)
			}

			if res.Outcome != sched.DecisionDone {
				return fmt.Errorf("scheduler halted with %s", res.Outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "scheduler config YAML (defaults apply when missing)")
	cmd.Flags().StringVarP(&workloadPath, "workload", "w", "workload.yml", "workload script YAML")
	cmd.Flags().StringVarP(&tracePath, "trace", "t", "", "write a CSV decision trace to this file")
	cmd.Flags().StringVarP(&policy, "policy", "p", "", "override the configured policy (rr, prr, cfs)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	cmd.Flags().Int64Var(&maxDecisions, "max-decisions", 1_000_000, "abort after this many scheduling decisions")

	return cmd
}
