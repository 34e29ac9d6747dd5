package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/model"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with session counts",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	entries, err := loadIndex(cfg)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	byName := make(map[string]*model.Project)
	var totalTokens = make(map[string]int64)
	for _, e := range entries {
		name := e.Session.ProjectName
		p, ok := byName[name]
		if !ok {
			p = &model.Project{Name: name}
			byName[name] = p
		}
		p.SessionCount++
		p.MessageCount += e.Session.MessageCount
		if e.Session.LastModified > p.LastModified {
			p.LastModified = e.Session.LastModified
		}
		totalTokens[name] += e.Stats.TotalTokens
	}

	projects := make([]*model.Project, 0, len(byName))
	for _, p := range byName {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return totalTokens[projects[i].Name] > totalTokens[projects[j].Name]
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTS"))
	fmt.Println()

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			cli.Truncate(p.Name, 45),
			cli.FormatNumber(int64(p.SessionCount)),
			cli.FormatNumber(int64(p.MessageCount)),
			cli.FormatTokens(totalTokens[p.Name]),
			cli.FormatTimestamp(p.LastModified),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Sessions", "Messages", "Tokens", "Last Active"},
		Rows:    rows,
	}))

	return nil
}
