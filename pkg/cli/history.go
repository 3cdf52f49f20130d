package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
	"github.com/refsyncd/refsyncd/pkg/infra/journal"
)

func cmdHistory() *cli.Command {
	var (
		journalPath string
		limit       int64
		failedOnly  bool
	)

	return &cli.Command{
		Name:  "history",
		Usage: "Show past mirror runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "journal",
				Usage:       "Path to the bbolt journal database",
				Value:       "refsyncd.db",
				Destination: &journalPath,
				Sources:     cli.EnvVars("REFSYNCD_JOURNAL"),
			},
			&cli.Int64Flag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "Max number of runs to show (0 = all)",
				Value:       20,
				Destination: &limit,
			},
			&cli.BoolFlag{
				Name:        "failed",
				Usage:       "Show only failed runs",
				Destination: &failedOnly,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			j, err := journal.New(journalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			records, err := j.List(ctx, int(limit), failedOnly)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("no mirror runs recorded")
				return nil
			}

			for _, rec := range records {
				printRecord(rec)
			}
			return nil
		},
	}
}

func printRecord(rec *model.SyncRecord) {
	var status string
	switch rec.Status {
	case model.StatusMirrored:
		status = color.GreenString("%-8s", rec.Status)
	case model.StatusSkipped:
		status = color.YellowString("%-8s", rec.Status)
	case model.StatusFailed:
		status = color.RedString("%-8s", rec.Status)
	default:
		status = fmt.Sprintf("%-8s", rec.Status)
	}

	fmt.Printf("%s  %s  %-6s %-30s %s\n",
		rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
		status,
		rec.Kind,
		rec.Ref,
		detail(rec),
	)
}

func detail(rec *model.SyncRecord) string {
	switch rec.Status {
	case model.StatusMirrored:
		hash := rec.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		return fmt.Sprintf("%s (%s, %d attempt(s))", hash, rec.Trigger, rec.Attempts)
	case model.StatusSkipped:
		return rec.Reason
	case model.StatusFailed:
		return color.RedString(rec.Error)
	default:
		return ""
	}
}
