package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/session-feed/internal"
	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listFilter string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	projectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the merged recent-session feed",
	Long:  `List recent sessions from both sources, most recent first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadReaderConfig(true)
		if err != nil {
			return err
		}
		cfg.Substring = listFilter

		reader, err := internal.NewReader(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize sources: %w", err)
		}
		defer func() { _ = reader.Close() }()

		result := reader.GetRecentSessions(listLimit)
		renderFeed(result)
		return nil
	},
}

func renderFeed(result internal.FeedResult) {
	for _, warning := range result.Warnings {
		fmt.Println(warnStyle.Render("⚠ " + warning))
	}

	if len(result.Sessions) == 0 {
		fmt.Println(headerStyle.Render("📋 No sessions found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("📋 %d recent session(s)", len(result.Sessions)))
	fmt.Println(header)
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("STATUS")+"\t"+titleStyle.Render("PROJECT")+"\t"+titleStyle.Render("TITLE")+"\t"+titleStyle.Render("MSGS")+"\t"+titleStyle.Render("TODOS")+"\t"+titleStyle.Render("ACTIVITY")+"\t"+titleStyle.Render("SOURCE")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, s := range result.Sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			statusBadge(s.Status),
			projectStyle.Render(s.ProjectName),
			formatTitle(s.Title),
			strconv.Itoa(s.MessageCount),
			formatTodos(s.Todos),
			s.LastActivity,
			idStyle.Render(s.Source),
		)
	}

	_ = w.Flush()
}

func statusBadge(status internal.SessionStatus) string {
	switch status {
	case internal.StatusActive:
		return activeStyle.Render("● active")
	case internal.StatusPending:
		return pendingStyle.Render("◐ pending")
	default:
		return completedStyle.Render("○ done")
	}
}

func formatTitle(title string) string {
	if title == "" {
		title = "Untitled"
	}
	if len(title) > 50 {
		title = internal.TruncateText(title, 50)
	}
	return title
}

func formatTodos(todos internal.TodoProgress) string {
	if todos.Total == 0 {
		return "—"
	}
	return fmt.Sprintf("%d/%d", todos.Completed, todos.Total)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of sessions")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Substring filter (project path, file name or keyword)")
}
