package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a student's quiz and interview statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			return ctx.withStore(cmd.Context(), func(store repository.Store) error {
				user, err := store.GetUserByEmail(cmd.Context(), email)
				if err != nil {
					return fmt.Errorf("failed to look up user: %w", err)
				}
				if user == nil {
					return fmt.Errorf("user %s not found", email)
				}
				quizzes, err := store.ListQuizResults(cmd.Context(), user.ID)
				if err != nil {
					return fmt.Errorf("failed to list quiz results: %w", err)
				}
				interviews, err := store.ListInterviewRecords(cmd.Context(), user.ID, 0)
				if err != nil {
					return fmt.Errorf("failed to list interviews: %w", err)
				}
				printStats(cmd.OutOrStdout(), user, quizzes, interviews)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Student email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func formatScore(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func printStats(out io.Writer, user *models.User, quizzes []models.QuizResult, interviews []models.InterviewRecord) {
	qs := stats.Quizzes(quizzes)
	is := stats.Interviews(interviews)

	fmt.Fprintf(out, "Student: %s <%s>\n", user.Name, user.Email)
	if user.Standard != "" {
		fmt.Fprintf(out, "Standard: %s\n", user.Standard)
	}

	summary := [][]string{
		{"Quizzes taken", strconv.Itoa(qs.TotalQuizzes)},
		{"Average quiz score", formatScore(qs.AvgScore)},
		{"Interviews", strconv.Itoa(is.TotalInterviews)},
		{"Average content score", formatScore(is.AvgContentScore)},
		{"Average communication score", formatScore(is.AvgCommunicationScore)},
		{"Average overall score", formatScore(is.AvgOverallScore)},
	}
	fmt.Fprintln(out, renderTable("Summary", []string{"Metric", "Value"}, summary, []columnAlignment{alignLeft, alignRight}))

	if len(qs.TopicStats) > 0 {
		rows := make([][]string, 0, len(qs.TopicStats))
		for _, t := range qs.TopicStats {
			rows = append(rows, []string{t.Topic, strconv.Itoa(t.Count), formatScore(t.AvgScore)})
		}
		fmt.Fprintln(out, renderTable("Quiz topics", []string{"Topic", "Quizzes", "Avg score"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
	}

	if topics := stats.WeakTopics(user.WeakTopics, stats.Latest(interviews)); len(topics) > 0 {
		fmt.Fprintf(out, "Weak topics: %s\n", strings.Join(topics, ", "))
	} else {
		fmt.Fprintln(out, "Weak topics: none")
	}
}
