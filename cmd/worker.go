package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/meeting-manager/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the meeting reminder scheduler.`,
}

var reminderWorkerCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Start the meeting reminder scheduler",
	Long:  `Send meeting_reminder notifications for scheduled meetings starting within the configured lead window.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReminderWorker()
	},
}

var (
	reminderSchedule string
	reminderOnce     bool
)

func startReminderWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if reminderOnce {
		sent, err := app.Reminders.Run(ctx)
		if err != nil {
			logger.Error("reminder pass failed", "error", err)
		}
		logger.Info("reminder pass complete", "reminded", sent)
		closeApp(app)
		return
	}

	spec := getStringFlag(reminderSchedule, config.Notification.ReminderSchedule)
	scheduler := cron.New()
	if _, err := app.Reminders.Schedule(ctx, scheduler, spec); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid reminder schedule %q: %v\n", spec, err)
		os.Exit(1)
	}
	scheduler.Start()

	logger.Info("reminder worker started",
		"schedule", spec,
		"lead", config.Notification.ReminderLead.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("received signal, shutting down reminder worker", "signal", sig)

	cancel()
	stopped := scheduler.Stop()
	select {
	case <-stopped.Done():
		logger.Info("reminder scheduler stopped")
	case <-time.After(30 * time.Second):
		logger.Warn("shutdown timeout reached, forcing exit")
	}
	closeApp(app)
}

func closeApp(app *application) {
	if err := app.Close(); err != nil {
		app.Logger.Error("close failed", "error", err)
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	reminderWorkerCmd.Flags().StringVar(&reminderSchedule, "schedule", "", "Cron schedule (overrides config)")
	reminderWorkerCmd.Flags().BoolVar(&reminderOnce, "once", false, "Run a single reminder pass and exit")

	workerCmd.AddCommand(reminderWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
