package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List archived lessons or print the latest one for a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		repo := s.LessonRepo()

		if strings.TrimSpace(topic) != "" {
			l, err := repo.LatestLesson(cmd.Context(), topic)
			if err != nil {
				return fmt.Errorf("get lesson: %w", err)
			}
			if l == nil {
				return fmt.Errorf("no lesson archived for %q", topic)
			}
			fmt.Fprintf(out, "%s\n%s  %s\n\n%s\n",
				l.Topic, l.CreatedAt.Local().Format("2006-01-02 15:04"), l.Model, l.Content)
			return nil
		}

		lessons, err := repo.RecentLessons(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		if len(lessons) == 0 {
			fmt.Fprintln(out, "No lessons archived yet.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-16s  %-24s  %s\n", "ID", "Created", "Model", "Topic")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, l := range lessons {
			fmt.Fprintf(out, "%-5d  %-16s  %-24s  %s\n",
				l.ID, l.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(l.Model, 24), l.Topic)
		}
		return nil
	},
}

func init() {
	lessonsCmd.Flags().IntP("limit", "n", 20, "Number of lessons to list")
	lessonsCmd.Flags().StringP("topic", "t", "", "Print the latest lesson for this topic")
}
