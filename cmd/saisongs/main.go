// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

// Command saisongs inspects and drains the local offline mutation queue:
// show pending operations, run an advisory conflict check against the
// server, trigger a sync pass, or abandon the queue.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/srse369/saisongs-sub005/offqueue"
	"github.com/srse369/saisongs-sub005/restapi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	logger *slog.Logger
	db     *sql.DB
	store  *offqueue.QueueStore
	engine *offqueue.Engine
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool
	var a app

	root := &cobra.Command{
		Use:           "saisongs",
		Short:         "Offline queue tooling for the saisongs catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.WarnLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				Level:           level,
				ReportTimestamp: true,
			})
			a.logger = slog.New(handler)

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			storage, db, err := offqueue.OpenSQLiteStorage(cfg.Database.Path)
			if err != nil {
				return err
			}
			a.db = db
			a.store = offqueue.NewQueueStore(storage, a.logger)

			tokens := restapi.NewTokenSource(cfg.Server.JWTSecret, cfg.Server.UserID, cfg.Server.DeviceID, 24*time.Hour)
			client := restapi.NewClient(cfg.Server.URL, tokens.Token)
			a.engine = offqueue.NewEngine(a.store, client.Services(), &offqueue.EngineConfig{
				Logger: a.logger,
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath(), "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newStatusCmd(&a), newConflictsCmd(&a), newSyncCmd(&a), newClearCmd(&a))
	return root
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List pending offline operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := a.store.List()
			if len(ops) == 0 {
				fmt.Println("offline queue is empty")
				return nil
			}
			fmt.Printf("%d pending operation(s):\n", len(ops))
			for _, op := range ops {
				label := op.Label
				if label == "" {
					label = op.TargetID
					if label == "" {
						label = op.TempID
					}
				}
				fmt.Printf("  %-7s %-8s %-30s queued %s\n",
					op.Kind, op.Entity, label, op.QueuedAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newConflictsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Check queued operations against current server state",
		RunE: func(cmd *cobra.Command, args []string) error {
			conflicts := a.engine.CheckConflicts(cmd.Context())
			if len(conflicts) == 0 {
				fmt.Println("no conflicts detected")
				return nil
			}
			fmt.Printf("%d conflict(s):\n", len(conflicts))
			for _, c := range conflicts {
				line := fmt.Sprintf("  %s: %s", c.Reason, c.Label)
				if !c.ServerUpdatedAt.IsZero() {
					line += fmt.Sprintf(" (server updated %s)", c.ServerUpdatedAt.Local().Format(time.RFC3339))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay the offline queue against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.engine.Process(cmd.Context(), func(op offqueue.QueuedOp, stage offqueue.Stage) {
				if stage == offqueue.StageSyncing {
					return
				}
				label := op.Label
				if label == "" {
					label = op.ID
				}
				fmt.Printf("  %-7s %s %s %s\n", stage, op.Kind, op.Entity, label)
			})
			fmt.Printf("synced %d, failed %d, %d still pending\n",
				result.Synced, result.Failed, a.store.PendingCount())
			if result.Failed > 0 {
				return fmt.Errorf("%d operation(s) failed and remain queued", result.Failed)
			}
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Abandon all pending offline operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.store.PendingCount()
			if n == 0 {
				fmt.Println("offline queue is already empty")
				return nil
			}
			if !force {
				return fmt.Errorf("refusing to drop %d pending operation(s); re-run with --force", n)
			}
			a.store.Clear()
			fmt.Printf("dropped %d operation(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "drop pending operations without confirmation")
	return cmd
}
