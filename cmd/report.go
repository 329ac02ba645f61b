package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/canvasops/canvasctl/pkg/report"
	"github.com/spf13/cobra"
)

var (
	reportCourse     int
	reportAssignment int
	reportCSV        bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Pull quiz reports from Canvas",
}

type studentScoreRow struct {
	StudentID   int     `csv:"student_id"`
	StudentName string  `csv:"student"`
	Score       float64 `csv:"score"`
}

var studentAnalysisCmd = &cobra.Command{
	Use:   "student-analysis",
	Short: "Download a New Quiz student_analysis report",
	Long: `Generates a student_analysis report for a New Quiz, waits for Canvas to
finish building it, and saves the raw JSON locally. With --csv, a summary of
per-student scores is written alongside it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		log.Info("requesting student analysis report")
		progressURL, err := client.CreateStudentAnalysis(ctx, reportCourse, reportAssignment)
		if err != nil {
			return err
		}
		prog, err := client.PollProgress(ctx, progressURL, 2*time.Second, 15*time.Minute)
		if err != nil {
			return err
		}
		downloadURL, err := client.ResolveDownloadURL(ctx, prog)
		if err != nil {
			return err
		}

		body, err := client.DownloadRaw(ctx, downloadURL)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("student_analysis_%d_%d.json", reportCourse, reportAssignment)
		if err := os.WriteFile(name, body, 0o644); err != nil {
			return err
		}
		log.Infof("report saved to %s", name)

		if reportCSV {
			rows, err := client.DownloadStudentAnalysis(ctx, downloadURL)
			if err != nil {
				return err
			}
			scores := make([]studentScoreRow, 0, len(rows))
			for _, row := range rows {
				scores = append(scores, studentScoreRow{
					StudentID:   row.StudentData.ID,
					StudentName: row.StudentData.Name,
					Score:       row.Summary.Score,
				})
			}
			csvName := fmt.Sprintf("student_analysis_%d_%d.csv", reportCourse, reportAssignment)
			if err := report.WriteCsv(scores, csvName); err != nil {
				return err
			}
			log.Infof("scores saved to %s", csvName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(studentAnalysisCmd)

	studentAnalysisCmd.Flags().IntVar(&reportCourse, "course", 0, "Canvas course id (required)")
	studentAnalysisCmd.Flags().IntVar(&reportAssignment, "assignment", 0, "New Quiz assignment id (required)")
	studentAnalysisCmd.Flags().BoolVar(&reportCSV, "csv", false, "Also write per-student scores as CSV")
	_ = studentAnalysisCmd.MarkFlagRequired("course")
	_ = studentAnalysisCmd.MarkFlagRequired("assignment")
}
