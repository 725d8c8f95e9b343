package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	auditPostgres "github.com/teryaq/pharmacy-backend/internal/audit/postgres"
	"github.com/teryaq/pharmacy-backend/pkg/logger"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit trail commands",
	Long:  `Inspect the persisted audit trail`,
}

var auditTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the latest audit events",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printTimeline(cmd.Context()); err != nil {
			log.Fatal(err)
		}
	},
}

var (
	timelineFilter audit.Filter
	timelineUserID int64
	timelineSince  time.Duration
)

func printTimeline(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Env, cfg.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database, lg)
	if err != nil {
		return err
	}
	defer closeDB(db)
	reader, err := initReader(db)
	if err != nil {
		return err
	}

	filter := timelineFilter
	if timelineUserID > 0 {
		filter.UserID = &timelineUserID
	}
	if timelineSince > 0 {
		from := time.Now().Add(-timelineSince)
		filter.From = &from
	}

	service := audit.NewService(auditPostgres.NewAuditRepository(db, reader), lg)
	timeline, err := service.Timeline(ctx, filter)
	if err != nil {
		return fmt.Errorf("read timeline: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(timeline)
}

func init() {
	auditTimelineCmd.Flags().Int64Var(&timelineUserID, "user", 0, "only events recorded for this user id")
	auditTimelineCmd.Flags().StringVar(&timelineFilter.Action, "action", "", "only this action, e.g. CREATE_COMPLAINT")
	auditTimelineCmd.Flags().StringVar(&timelineFilter.TargetType, "target-type", "", "only this target type")
	auditTimelineCmd.Flags().StringVar(&timelineFilter.TargetID, "target-id", "", "only this target id")
	auditTimelineCmd.Flags().DurationVar(&timelineSince, "since", 0, "only events newer than this, e.g. 24h")
	auditTimelineCmd.Flags().IntVar(&timelineFilter.PageSize, "limit", audit.DefaultPageSize, "number of events to print")

	auditCmd.AddCommand(auditTimelineCmd)
}
