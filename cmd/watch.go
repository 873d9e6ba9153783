package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/session-feed/internal"
	"github.com/spf13/cobra"
)

var (
	watchLimit    int
	watchInterval int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live feed refreshed on change",
	Long: `Render the merged feed and keep it fresh: the key-value store is
watched for file changes, the JSONL source is re-polled on a fixed
interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, fileCfg, err := loadReaderConfig(false)
		if err != nil {
			return err
		}

		reader, err := internal.NewReader(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize sources: %w", err)
		}
		defer func() { _ = reader.Close() }()

		interval := watchInterval
		if interval <= 0 {
			interval = fileCfg.PollIntervalSeconds
		}

		// Change events and the poll timer both funnel into one
		// refresh channel; an in-flight refresh is never preempted,
		// the next tick simply corrects any brief staleness.
		refresh := make(chan struct{}, 1)
		kick := func() {
			select {
			case refresh <- struct{}{}:
			default:
			}
		}

		unregister := reader.OnDataChanged(kick)
		defer unregister()

		ticker := time.NewTicker(time.Duration(interval) * time.Second)
		defer ticker.Stop()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		render := func() {
			fmt.Print("\033[H\033[2J") // clear screen
			renderFeed(reader.GetRecentSessions(watchLimit))
			fmt.Println()
			fmt.Println(idStyle.Render(fmt.Sprintf("refreshing every %ds — ctrl-c to quit", interval)))
		}
		render()

		for {
			select {
			case <-sigs:
				return nil
			case <-ticker.C:
				render()
			case <-refresh:
				render()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVarP(&watchLimit, "limit", "n", 20, "Maximum number of sessions")
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "Poll interval in seconds (default from config)")
}
