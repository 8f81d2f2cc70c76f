package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"matrixdo/internal/aiparse"
	"matrixdo/internal/config"
	"matrixdo/internal/ical"
	"matrixdo/internal/storage"
	"matrixdo/internal/task"
	"matrixdo/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "matrixdo",
	Short: "matrixdo - Eisenhower-matrix task manager",
	RunE:  runTUI,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the task list as an iCalendar feed",
	RunE:  runExport,
}

var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Turn a natural-language description into a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the calendar feed token",
	RunE:  runToken,
}

var (
	exportOutFlag string
	parseSaveFlag bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "Output file (default stdout)")
	parseCmd.Flags().BoolVarP(&parseSaveFlag, "save", "s", false, "Create the parsed task")
	rootCmd.AddCommand(exportCmd, parseCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadEnv() (config.Config, *storage.Store, error) {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, store, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, store, err := loadEnv()
	if err != nil {
		return err
	}
	defer store.Close()
	return ui.Run(store, cfg)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, store, err := loadEnv()
	if err != nil {
		return err
	}
	defer store.Close()

	tasks, err := store.FetchTasks()
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	groups, err := store.FetchGroups()
	if err != nil {
		return fmt.Errorf("fetch lists: %w", err)
	}

	feed := ical.Feed(tasks, groups, cfg.CalendarName, time.Now(), time.Local)
	if exportOutFlag == "" {
		fmt.Print(feed)
		return nil
	}
	if err := os.WriteFile(exportOutFlag, []byte(feed), 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	fmt.Printf("Wrote %s\n", exportOutFlag)
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, store, err := loadEnv()
	if err != nil {
		return err
	}
	defer store.Close()

	text := strings.Join(args, " ")
	now := time.Now()
	parser := aiparse.New(cfg.AI.Model, cfg.AI.MaxTokens)
	res, err := parser.Parse(context.Background(), text, now.Format(task.DateLayout), now.Location().String())
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	fmt.Printf("Title:     %s\n", res.Title)
	if res.Notes != "" {
		fmt.Printf("Notes:     %s\n", res.Notes)
	}
	if res.DueDate != "" {
		due := res.DueDate
		if res.DueTime != "" {
			due += " " + res.DueTime + " (" + res.TimeSource + ")"
		}
		fmt.Printf("Due:       %s\n", due)
	}
	fmt.Printf("Urgent:    %t\n", res.Urgent)
	fmt.Printf("Important: %t\n", res.Important)

	if !parseSaveFlag {
		fmt.Println("\nRe-run with --save to create this task.")
		return nil
	}

	created, err := store.CreateTask(storage.TaskDraft{
		Title:     res.Title,
		Notes:     res.Notes,
		Urgent:    task.Bool(res.Urgent),
		Important: task.Bool(res.Important),
		Reminder:  res.Reminder,
		DueDate:   res.DueDate,
		DueTime:   res.DueTime,
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	fmt.Printf("\nCreated task %s\n", created.ID)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	_, store, err := loadEnv()
	if err != nil {
		return err
	}
	defer store.Close()

	token, err := store.CalendarToken()
	if err != nil {
		return fmt.Errorf("calendar token: %w", err)
	}
	fmt.Println(token)
	return nil
}
