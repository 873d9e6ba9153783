package cmd

import (
	"fmt"

	"github.com/iksnae/session-feed/internal"
	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe both sources and report what is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadReaderConfig(true)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("🔍 Source health"))
		fmt.Println()

		reportEditorHealth(cfg.DatabasePath)
		reportAgentHealth(cfg.SessionsRoot)
		return nil
	},
}

func reportEditorHealth(path string) {
	fmt.Printf("editor store  %s\n", idStyle.Render(path))
	store, err := internal.OpenConversationStore(path)
	if err != nil {
		fmt.Println("  " + warnStyle.Render(fmt.Sprintf("unreachable: %v", err)))
		return
	}
	defer func() { _ = store.Close() }()

	ids, err := store.ListConversationIDs(internal.ConversationFilter{})
	if err != nil {
		fmt.Println("  " + warnStyle.Render(fmt.Sprintf("query failed: %v", err)))
		return
	}
	fmt.Println("  " + activeStyle.Render(fmt.Sprintf("ok — %d conversation(s)", len(ids))))
}

func reportAgentHealth(root string) {
	fmt.Printf("agent logs    %s\n", idStyle.Render(root))
	logs := internal.NewSessionLogReader(root)
	projects, err := logs.ListProjects()
	if err != nil {
		fmt.Println("  " + warnStyle.Render(fmt.Sprintf("unreachable: %v", err)))
		return
	}

	sessions := 0
	for _, project := range projects {
		files, err := logs.ListSessionFiles(project)
		if err != nil {
			continue
		}
		sessions += len(files)
	}
	fmt.Println("  " + activeStyle.Render(fmt.Sprintf("ok — %d project(s), %d session file(s)", len(projects), sessions)))
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
