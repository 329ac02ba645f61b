package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

const datasetID = "canvasctl"

type BigQuery struct {
	ctx     context.Context
	client  *bigquery.Client
	dataset *bigquery.Dataset
}

func NewBigQuery(ctx context.Context, projectID string) (BigQuery, error) {
	var bq BigQuery

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return bq, fmt.Errorf("failed to create client: %v", err)
	}

	dataset := client.Dataset(datasetID)
	if err := dataset.Create(ctx, nil); err != nil {
		if !isDuplicateError(err) {
			return bq, fmt.Errorf("failed to create dataset: %v", err)
		}
	}

	bq = BigQuery{ctx, client, dataset}
	return bq, nil
}

// InsertGrades merges grade records into the grades table, keyed on
// submission, question and attempt so re-archiving a session is idempotent.
func (bq BigQuery) InsertGrades(grades []GradeRecord) error {
	// Infer the table schema
	schema, err := bigquery.InferSchema(GradeRecord{})
	if err != nil {
		return fmt.Errorf("failed to infer schema: %v", err)
	}

	// Get a reference to the table
	table := bq.dataset.Table("grades")
	if err := table.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	// Stage into a fresh arrivals table, then MERGE into the real one
	tempName := "grades_" + strconv.Itoa(int(time.Now().Unix()))
	newArrivals := bq.dataset.Table(tempName)
	if err := newArrivals.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create arrivals table: %v", err)
		}
	}

	u := newArrivals.Inserter()
	if err := u.Put(bq.ctx, grades); err != nil {
		return fmt.Errorf("failed to insert rows: %v", err)
	}

	q := bq.client.Query(fmt.Sprintf(`
		MERGE %s.grades t
		USING %s.%s s
		ON t.submission_id = s.submission_id
		  AND t.question_id = s.question_id
		  AND t.attempt = s.attempt
		WHEN MATCHED THEN
		  UPDATE SET score = s.score, feedback = s.feedback, graded_at = s.graded_at
		WHEN NOT MATCHED THEN
		  INSERT ROW`, datasetID, datasetID, tempName))
	if _, err := q.Run(bq.ctx); err != nil {
		return fmt.Errorf("failed to execute merge: %v", err)
	}

	return nil
}

func (bq BigQuery) Close() error {
	return bq.client.Close()
}

func isDuplicateError(err error) bool {
	if e, ok := err.(*googleapi.Error); ok {
		return e.Code == 409
	}
	return false
}
