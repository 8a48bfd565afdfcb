package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/bootstrap"
	"email-datagen/internal/scheduler/config"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/utils"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPath string
	nextCount  int
)

var rootCmd = &cobra.Command{
	Use:   "schedulectl",
	Short: "Operator CLI for the email data generation scheduler",
	Long:  `schedulectl inspects schedules, previews their next runs, exports them as YAML and runs a single engine tick.`,
}

func setup() (*bootstrap.Components, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	components, err := bootstrap.Build(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	return components, appLogger
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		components, appLogger := setup()
		defer components.Close()
		defer func() { _ = appLogger.Sync() }()

		schedules, err := components.ScheduleRepo.FindAll(cmd.Context())
		if err != nil {
			return err
		}
		return printSchedules(cmd.OutOrStdout(), schedules)
	},
}

var nextCmd = &cobra.Command{
	Use:   "next <schedule-id>",
	Short: "Preview the next runs of a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		components, appLogger := setup()
		defer components.Close()
		defer func() { _ = appLogger.Sync() }()

		preview, err := components.Schedules.PreviewNextRuns(cmd.Context(), args[0], nextCount)
		if err != nil {
			return err
		}
		loc := components.Calculator.Location()
		for _, t := range preview.NextRuns {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", utils.FormatUTC(t), t.In(loc).Format("Mon 2006-01-02 15:04 MST"))
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all schedules as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		components, appLogger := setup()
		defer components.Close()
		defer func() { _ = appLogger.Sync() }()

		schedules, err := components.ScheduleRepo.FindAll(cmd.Context())
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(exportDocument{Schedules: toExport(schedules)})
	},
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a single scheduler tick now",
	RunE: func(cmd *cobra.Command, args []string) error {
		components, appLogger := setup()
		defer components.Close()
		defer func() { _ = appLogger.Sync() }()

		report, err := components.Engine.Tick(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "due=%d fired=%d failed=%d skipped=%d repaired=%d\n",
			report.Due, report.Fired, report.Failed, report.Skipped, report.Repaired)
		return nil
	},
}

// exportDocument is the YAML layout written by export.
type exportDocument struct {
	Schedules []exportSchedule `yaml:"schedules"`
}

type exportSchedule struct {
	ID             string                 `yaml:"id"`
	Name           string                 `yaml:"name"`
	EmailType      string                 `yaml:"email_type"`
	Recipients     []string               `yaml:"recipients"`
	Count          int                    `yaml:"count"`
	ConfigName     string                 `yaml:"config_name,omitempty"`
	ScheduleType   string                 `yaml:"schedule_type"`
	Enabled        bool                   `yaml:"enabled"`
	RunAtUTC       string                 `yaml:"run_at_utc,omitempty"`
	IntervalHours  int                    `yaml:"interval_hours,omitempty"`
	WeeklyDays     []string               `yaml:"weekly_days,omitempty"`
	TimeOfDayLocal string                 `yaml:"time_of_day_local,omitempty"`
	Payload        map[string]interface{} `yaml:"payload,omitempty"`
	NextRunUTC     string                 `yaml:"next_run_utc,omitempty"`
	LastStatus     string                 `yaml:"last_status,omitempty"`
}

func toExport(schedules []entity.Schedule) []exportSchedule {
	out := make([]exportSchedule, 0, len(schedules))
	for i := range schedules {
		s := &schedules[i]
		e := exportSchedule{
			ID:             s.ID,
			Name:           s.Name,
			EmailType:      string(s.EmailType),
			Recipients:     []string(s.Recipients),
			Count:          s.Count,
			ConfigName:     s.ConfigName,
			ScheduleType:   string(s.ScheduleType),
			Enabled:        s.Enabled,
			IntervalHours:  s.IntervalHours,
			WeeklyDays:     []string(s.WeeklyDays),
			TimeOfDayLocal: s.TimeOfDayLocal,
			LastStatus:     string(s.LastStatus),
		}
		if s.RunAt != nil {
			e.RunAtUTC = utils.FormatUTC(*s.RunAt)
		}
		if s.NextRunAt != nil {
			e.NextRunUTC = utils.FormatUTC(*s.NextRunAt)
		}
		if len(s.Payload) > 0 {
			var payload map[string]interface{}
			if err := yaml.Unmarshal(s.Payload, &payload); err == nil && len(payload) > 0 {
				e.Payload = payload
			}
		}
		out = append(out, e)
	}
	return out
}

func printSchedules(w io.Writer, schedules []entity.Schedule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tEMAIL\tENABLED\tNEXT RUN (UTC)\tLAST STATUS\tFAILURES")
	for _, s := range schedules {
		next := "-"
		if s.NextRunAt != nil {
			next = utils.FormatUTC(*s.NextRunAt)
		}
		status := string(s.LastStatus)
		if status == "" {
			status = "-"
		}
		enabled := fmt.Sprintf("%t", s.Enabled)
		if s.Exhausted {
			enabled = "exhausted"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.Name, s.ScheduleType, strings.ToUpper(string(s.EmailType)), enabled, next, status, s.FailureCount)
	}
	return tw.Flush()
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-scheduler.yaml", "Path to the configuration file")
	nextCmd.Flags().IntVarP(&nextCount, "count", "n", 5, "Number of runs to preview")

	rootCmd.AddCommand(listCmd, nextCmd, exportCmd, tickCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'\n", err)
		os.Exit(1)
	}
}
