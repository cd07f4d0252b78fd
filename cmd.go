package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"daily-bible-bot/internal/config"
	"daily-bible-bot/internal/handlers"
	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/plans"
	"daily-bible-bot/internal/progress"
	"daily-bible-bot/internal/reading"
	"daily-bible-bot/internal/scheduler"
	"daily-bible-bot/internal/scripture"
	"daily-bible-bot/internal/storage"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "biblebot",
		Short:         "Daily Bible Reader Telegram bot",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newForgetCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(true)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	bot.Debug = cfg.Debug

	clock := clockwork.NewRealClock()
	tracker := progress.NewTracker(db, clock)
	svc := reading.NewService(tracker, scripture.NewClient(cfg.BibleAPIURL, cfg.FetchTimeout))
	h := handlers.NewHandler(bot, db, tracker, svc)

	hour, minute := cfg.ReminderClock()
	sched, err := scheduler.Start(db, tracker, h, scheduler.Options{Hour: hour, Minute: minute, Clock: clock})
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Shutdown()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := bot.GetUpdatesChan(updateConfig)

	logger.Info("bot started", "account", bot.Self.UserName, "reminder", cfg.ReminderAt)
	h.Listen(ctx, updates)

	bot.StopReceivingUpdates()
	logger.Info("bot stopped")
	return nil
}

func newPlanCommand() *cobra.Command {
	var key string
	var day, days int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the reading of a plan day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plans.Known(plans.Key(key)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown plan %q, using %s\n", key, plans.DefaultKey)
			}
			for d := day; d < day+days; d++ {
				r, err := plans.Compute(plans.Key(key), d)
				if errors.Is(err, plans.ErrPlanComplete) {
					fmt.Fprintf(cmd.OutOrStdout(), "day %d: plan complete\n", d)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "day %d/%d: %s\n", r.Day, r.TotalDays, r.Reference())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "plan", string(plans.DefaultKey), "plan key")
	cmd.Flags().IntVar(&day, "day", 1, "first plan day to print")
	cmd.Flags().IntVar(&days, "days", 1, "number of days to print")
	return cmd
}

func newForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget USER_ID",
		Short: "Delete every record of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			cfg, err := config.Load(false)
			if err != nil {
				return err
			}
			db, err := storage.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ClearData(userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d removed\n", userID)
			return nil
		},
	}
}
