package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/scheduler"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize telemetry (if enabled)
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(context.Background(), telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  getEnvOrDefault("METRICS_PORT", "9090"),
		})
		if err != nil {
			log.Printf("Warning: telemetry init failed: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Telemetry shutdown error: %v", err)
				}
			}()
		}
	}

	// Initialize dependencies
	deps, err := NewDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Initialize the balance reconciler (if enabled)
	var sched *scheduler.Scheduler
	if cfg.Reconcile.Enabled {
		sched, err = scheduler.NewScheduler(scheduler.SchedulerConfig{
			ScheduleTimes: cfg.Reconcile.ScheduleTimes,
			WorkerCount:   cfg.Reconcile.WorkerCount,
			JobDelay:      cfg.Reconcile.JobDelay,
			QueueSize:     cfg.Reconcile.QueueSize,
			RunOnStartup:  cfg.Reconcile.RunOnStartup,
			JobProvider: func(ctx context.Context) ([]scheduler.Job, error) {
				ids, err := deps.UserRepo.ListIDs(ctx)
				if err != nil {
					return nil, err
				}
				jobs := make([]scheduler.Job, 0, len(ids))
				for _, id := range ids {
					jobs = append(jobs, scheduler.NewReconcileJob(id, deps.AccountRepo))
				}
				return jobs, nil
			},
		})
		if err != nil {
			return err
		}
		sched.Start()
	} else {
		log.Println("Balance reconciler is disabled")
	}

	// Set up routes and start servers
	handler := SetupRoutes(deps, cfg)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg))

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, redirectSrv, sched, 30*time.Second)
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
