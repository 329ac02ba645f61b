package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// New Quizzes live behind the quiz LTI API rather than /api/v1.
const quizAPIPrefix = "api/quiz/v1"

// QuizItem is one question of a New Quiz.
type QuizItem struct {
	ID             string    `json:"id"`
	PointsPossible float64   `json:"points_possible"`
	Entry          QuizEntry `json:"entry"`
}

type QuizEntry struct {
	Title               string          `json:"title"`
	ItemBody            string          `json:"item_body"`
	InteractionTypeSlug string          `json:"interaction_type_slug"`
	InteractionData     InteractionData `json:"interaction_data"`
	ScoringData         ScoringData     `json:"scoring_data"`
}

type InteractionData struct {
	Categories  map[string]ItemBody `json:"categories"`
	Distractors map[string]ItemBody `json:"distractors"`
}

type ItemBody struct {
	ItemBody string `json:"item_body"`
}

type ScoringData struct {
	Value []CategoryScoring `json:"value"`
}

type CategoryScoring struct {
	ID          string `json:"id"`
	ScoringData struct {
		Value []string `json:"value"`
	} `json:"scoring_data"`
}

func (c *Client) QuizItems(ctx context.Context, courseID, assignmentID int) ([]QuizItem, error) {
	var items []QuizItem
	path := fmt.Sprintf("%s/courses/%d/quizzes/%d/items", quizAPIPrefix, courseID, assignmentID)
	if err := c.getJSON(ctx, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateStudentAnalysis kicks off a student_analysis report build and returns
// the progress URL to poll. Tenants disagree on where the URL lives, so all
// three known shapes are accepted.
func (c *Client) CreateStudentAnalysis(ctx context.Context, courseID, assignmentID int) (string, error) {
	payload := map[string]interface{}{
		"quiz_report": map[string]string{
			"report_type": "student_analysis",
			"format":      "json",
		},
	}
	var out struct {
		ProgressURL string `json:"progress_url"`
		Progress    struct {
			URL string `json:"url"`
			ID  int    `json:"id"`
		} `json:"progress"`
	}
	path := fmt.Sprintf("%s/courses/%d/quizzes/%d/reports", quizAPIPrefix, courseID, assignmentID)
	if err := c.postJSON(ctx, path, payload, &out); err != nil {
		return "", err
	}
	switch {
	case out.ProgressURL != "":
		return out.ProgressURL, nil
	case out.Progress.URL != "":
		return out.Progress.URL, nil
	case out.Progress.ID != 0:
		return fmt.Sprintf("/api/v1/progress/%d", out.Progress.ID), nil
	}
	return "", errors.New("canvas: report response carried no progress_url")
}

type Progress struct {
	WorkflowState string          `json:"workflow_state"`
	Results       json.RawMessage `json:"results"`
}

// PollProgress polls a progress URL until the job completes or fails.
func (c *Client) PollProgress(ctx context.Context, progressURL string, interval, timeout time.Duration) (*Progress, error) {
	deadline := time.Now().Add(timeout)
	for {
		var prog Progress
		if err := c.getJSON(ctx, progressURL, nil, &prog); err != nil {
			return nil, err
		}
		c.log.Debugw("report progress", "state", prog.WorkflowState)
		switch prog.WorkflowState {
		case "completed":
			return &prog, nil
		case "failed":
			return nil, errors.New("canvas: report generation failed")
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("canvas: report generation timed out after %s", timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		c.sleep(interval)
	}
}

// ResolveDownloadURL digs the report file URL out of completed progress
// results: a direct url, an attachment, or a bare file id via the Files API.
func (c *Client) ResolveDownloadURL(ctx context.Context, prog *Progress) (string, error) {
	var results struct {
		URL        string `json:"url"`
		Attachment struct {
			URL         string `json:"url"`
			DownloadURL string `json:"download_url"`
		} `json:"attachment"`
		AttachmentID int `json:"attachment_id"`
		FileID       int `json:"file_id"`
	}
	if len(prog.Results) > 0 {
		if err := json.Unmarshal(prog.Results, &results); err != nil {
			return "", fmt.Errorf("canvas: bad progress results: %w", err)
		}
	}
	switch {
	case results.URL != "":
		return results.URL, nil
	case results.Attachment.URL != "":
		return results.Attachment.URL, nil
	case results.Attachment.DownloadURL != "":
		return results.Attachment.DownloadURL, nil
	}
	fileID := results.AttachmentID
	if fileID == 0 {
		fileID = results.FileID
	}
	if fileID != 0 {
		var file struct {
			URL         string `json:"url"`
			DownloadURL string `json:"download_url"`
		}
		if err := c.getJSON(ctx, fmt.Sprintf("api/v1/files/%d", fileID), nil, &file); err != nil {
			return "", err
		}
		if file.URL != "" {
			return file.URL, nil
		}
		if file.DownloadURL != "" {
			return file.DownloadURL, nil
		}
	}
	return "", errors.New("canvas: could not resolve report download url")
}

// StudentAnalysisRow is one student's row of a student_analysis report.
type StudentAnalysisRow struct {
	StudentData struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"student_data"`
	Summary struct {
		Score float64 `json:"score"`
	} `json:"summary"`
	ItemResponses []ItemResponse `json:"item_responses"`
}

type ItemResponse struct {
	ItemID   string  `json:"item_id"`
	ItemType string  `json:"item_type"`
	Score    float64 `json:"score"`
	Answer   string  `json:"answer"`
}

// DownloadStudentAnalysis fetches and decodes a finished report.
func (c *Client) DownloadStudentAnalysis(ctx context.Context, downloadURL string) ([]StudentAnalysisRow, error) {
	body, err := c.DownloadRaw(ctx, downloadURL)
	if err != nil {
		return nil, err
	}
	var rows []StudentAnalysisRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("canvas: bad student_analysis payload: %w", err)
	}
	return rows, nil
}

// DownloadRaw fetches a report body without decoding it.
func (c *Client) DownloadRaw(ctx context.Context, downloadURL string) ([]byte, error) {
	res, err := c.do(ctx, http.MethodGet, c.url(downloadURL), "", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}
