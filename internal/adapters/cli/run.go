package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/Nadrieril/rustorio/internal/adapters/metrics"
	"github.com/Nadrieril/rustorio/internal/adapters/persistence"
	"github.com/Nadrieril/rustorio/internal/application/production"
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/infrastructure/config"
	"github.com/Nadrieril/rustorio/internal/infrastructure/database"
	"github.com/Nadrieril/rustorio/internal/infrastructure/logging"
	"github.com/Nadrieril/rustorio/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		scenarioPath string
		maxTicks     uint64
		realTime     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a production scenario to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfigOrDefault(configPath)
			if verbose {
				cfg.Logging.Level = "debug"
			}
			logger, err := logging.NewLogger(&cfg.Logging)
			if err != nil {
				return err
			}

			scenario, err := LoadScenario(scenarioPath)
			if err != nil {
				return err
			}
			cat, err := catalog.LoadFile(scenario.Catalog)
			if err != nil {
				return err
			}
			stock := scenario.InitialStock()

			opts := []production.Option{
				production.WithLogger(logger),
				production.WithDefaultBatchCapacity(cfg.Engine.DefaultBatchCapacity),
			}

			if cfg.Database.Enabled {
				db, err := database.NewConnection(&cfg.Database)
				if err != nil {
					return err
				}
				defer database.Close(db)
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
				opts = append(opts, production.WithJournal(persistence.NewGormRequestJournal(db)))
			}

			if cfg.Metrics.Enabled {
				registry := prometheus.NewRegistry()
				collector := metrics.NewProductionMetricsCollector()
				if err := collector.Register(registry); err != nil {
					return err
				}
				addr := metrics.StartServer(&cfg.Metrics, registry)
				fmt.Printf("Metrics: http://%s%s\n", addr, cfg.Metrics.Path)
				opts = append(opts, production.WithMetrics(collector))
			}

			engine := production.NewEngine(cat, stock, opts...)
			for _, m := range scenario.Machines {
				count := m.Count
				if count == 0 {
					count = 1
				}
				for i := 0; i < count; i++ {
					engine.AddMachine(catalog.EntityType(m.Entity), m.BatchCapacity)
				}
			}

			handles := make([]*production.RequestHandle, 0, len(scenario.Requests))
			for _, r := range scenario.Requests {
				handles = append(handles, engine.Request(catalog.ResourceType(r.Resource), r.Quantity))
			}

			if maxTicks == 0 {
				maxTicks = cfg.Engine.MaxTicks
			}

			var settled bool
			var lastTick uint64
			if realTime {
				if cfg.Engine.PIDFile != "" {
					pf := pidfile.New(cfg.Engine.PIDFile)
					if err := pf.Acquire(); err != nil {
						return err
					}
					defer pf.Release()
				}
				lastTick, settled, err = runPaced(cmd.Context(), engine, maxTicks, cfg.Engine.TickRate)
				if err != nil {
					return err
				}
			} else {
				lastTick, settled = engine.RunToCompletion(maxTicks)
			}

			printRunReport(engine, scenario, handles, stock.Snapshot(), lastTick, settled)
			if !settled {
				return fmt.Errorf("scenario did not settle within %d ticks", maxTicks)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "configs/scenario.yaml",
		"Path to scenario file")
	cmd.Flags().Uint64Var(&maxTicks, "ticks", 0,
		"Maximum ticks to run (default: engine.max_ticks from config)")
	cmd.Flags().BoolVar(&realTime, "real-time", false,
		"Pace ticks in real time at engine.tick_rate ticks per second")

	return cmd
}

// runPaced ticks the engine at a fixed real-time rate
func runPaced(ctx context.Context, engine *production.Engine, maxTicks uint64, tickRate float64) (uint64, bool, error) {
	if tickRate <= 0 {
		tickRate = 10
	}
	limiter := rate.NewLimiter(rate.Limit(tickRate), 1)
	for n := uint64(0); n < maxTicks; n++ {
		if err := limiter.Wait(ctx); err != nil {
			return engine.CurrentTick(), false, err
		}
		engine.Tick()
		if done := allTerminal(engine); done {
			return engine.CurrentTick(), true, nil
		}
	}
	return engine.CurrentTick(), allTerminal(engine), nil
}

func allTerminal(engine *production.Engine) bool {
	for _, r := range engine.Requests() {
		if r.State != string(production.RequestStateCompleted) && r.State != string(production.RequestStateFailed) {
			return false
		}
	}
	return true
}

func printRunReport(engine *production.Engine, scenario *Scenario,
	handles []*production.RequestHandle, stock map[catalog.ResourceType]int,
	lastTick uint64, settled bool) {
	fmt.Printf("Finished after %d ticks (settled=%v)\n\n", lastTick, settled)

	fmt.Println("Requests:")
	for i, h := range handles {
		st := engine.Status(h)
		line := fmt.Sprintf("  %d. %s x%d: %s",
			i+1, scenario.Requests[i].Resource, scenario.Requests[i].Quantity, st.State)
		if st.FailureReason != "" {
			line += fmt.Sprintf(" (%s)", st.FailureReason)
		}
		fmt.Println(line)
		for _, b := range st.BlockedOn {
			reason := "all machines busy"
			if b.NoMachines {
				reason = "no machine of this type"
			}
			fmt.Printf("     blocked on %s: %d task(s), %s\n", b.Entity, b.Waiting, reason)
		}
	}

	if stats := engine.PoolStats(); len(stats) > 0 {
		fmt.Println("\nMachine pools:")
		for _, s := range stats {
			fmt.Printf("  %-20s machines=%d queued=%d load=%d\n",
				s.Entity, s.Machines, s.QueueDepth, s.Load)
		}
	}

	fmt.Println("\nFinal stock:")
	resources := make([]string, 0, len(stock))
	for res := range stock {
		resources = append(resources, string(res))
	}
	sort.Strings(resources)
	if len(resources) == 0 {
		fmt.Println("  (empty)")
	}
	for _, res := range resources {
		fmt.Printf("  %-20s %d\n", res, stock[catalog.ResourceType(res)])
	}
}
