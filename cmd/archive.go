package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/canvasops/canvasctl/pkg/database"
	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/spf13/cobra"
)

const (
	archiveDBFile = "canvasctl.db"
	topicID       = "course-graded"
)

var (
	archiveProject string
	archiveDryRun  bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive <session.json>...",
	Short: "Archive grading sessions to SQLite and BigQuery",
	Long: `Flattens each grading session into grade records and stores them in a
local SQLite database. With --project, the records are also merged into the
BigQuery grades table and a course-graded event is published for each course.
Re-archiving a session is idempotent on both sides.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if archiveProject == "" {
			archiveProject = cfg.ProjectID
		}

		var records []database.GradeRecord
		courses := make(map[int]bool)
		for _, path := range args {
			session, err := grader.LoadSession(path)
			if err != nil {
				return err
			}
			gradedAt, err := time.Parse(time.RFC3339, session.Timestamp)
			if err != nil {
				gradedAt = time.Now()
			}
			for _, sub := range session.Submissions {
				records = append(records, database.GradeRecord{
					CourseID:     session.Course.ID,
					CourseName:   session.Course.Name,
					QuizID:       session.Quiz.QuizID,
					QuizName:     session.Quiz.Name,
					QuestionID:   session.Question.ID,
					QuestionName: session.Question.Name,
					UserID:       sub.UserID,
					UserName:     sub.UserName,
					SubmissionID: sub.SubmissionID,
					Attempt:      sub.Attempt,
					Score:        sub.AIScore,
					Feedback:     sub.AIFeedback,
					GradedAt:     gradedAt,
				})
			}
			courses[session.Course.ID] = true
			log.Infof("loaded %s: %d submissions", path, len(session.Submissions))
		}
		if len(records) == 0 {
			fmt.Println("No submissions to archive.")
			return nil
		}

		if archiveDryRun {
			fmt.Printf("Dry run: %d records would be archived.\n", len(records))
			return nil
		}

		sqlite := database.NewSqlite(archiveDBFile)
		defer sqlite.Close()
		if err := sqlite.SaveGrades(records); err != nil {
			return fmt.Errorf("save to sqlite: %w", err)
		}
		log.Infof("saved %d records to %s", len(records), archiveDBFile)

		if archiveProject == "" {
			return nil
		}

		bq, err := database.NewBigQuery(ctx, archiveProject)
		if err != nil {
			return fmt.Errorf("connect to bigquery: %w", err)
		}
		defer bq.Close()
		if err := bq.InsertGrades(records); err != nil {
			return fmt.Errorf("insert into bigquery: %w", err)
		}
		log.Infof("merged %d records into BigQuery", len(records))

		ps, err := pubsub.NewClient(ctx, archiveProject)
		if err != nil {
			return fmt.Errorf("create pubsub client: %w", err)
		}
		defer ps.Close()

		topic := ps.Topic(topicID)
		defer topic.Stop()
		for courseID := range courses {
			msg, err := json.Marshal(struct {
				CourseId int `json:"courseId"`
			}{courseID})
			if err != nil {
				return err
			}
			res := topic.Publish(ctx, &pubsub.Message{Data: msg})
			if _, err := res.Get(ctx); err != nil {
				return fmt.Errorf("publish event: %w", err)
			}
			log.Infof("published %s event for course %d", topicID, courseID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archiveProject, "project", "", "Google Cloud project for BigQuery and Pub/Sub (default: GOOGLE_PROJECT_ID)")
	archiveCmd.Flags().BoolVar(&archiveDryRun, "dry-run", false, "Load sessions without writing anywhere")
}
