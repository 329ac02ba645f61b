package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type QuizQuestion struct {
	ID             int     `json:"id"`
	QuestionName   string  `json:"question_name"`
	QuestionText   string  `json:"question_text"`
	QuestionType   string  `json:"question_type"`
	PointsPossible float64 `json:"points_possible"`
}

type QuizSubmission struct {
	ID            int    `json:"id"`
	UserID        int    `json:"user_id"`
	Attempt       int    `json:"attempt"`
	WorkflowState string `json:"workflow_state"`
	User          *User  `json:"user"`
}

type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StudentName falls back to "Student <id>" when the user wasn't included.
func (s QuizSubmission) StudentName() string {
	if s.User != nil && s.User.Name != "" {
		return s.User.Name
	}
	return fmt.Sprintf("Student %d", s.UserID)
}

type SubmissionAnswer struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}

// EssayQuestions lists a classic quiz's essay questions.
func (c *Client) EssayQuestions(ctx context.Context, courseID, quizID int) ([]QuizQuestion, error) {
	var questions []QuizQuestion
	path := fmt.Sprintf("api/v1/courses/%d/quizzes/%d/questions", courseID, quizID)
	err := c.paginate(ctx, path, nil, func(body []byte) error {
		var page []QuizQuestion
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, q := range page {
			if q.QuestionType == "essay_question" {
				questions = append(questions, q)
			}
		}
		return nil
	})
	return questions, err
}

// CompletedQuizSubmissions lists finished submissions with user records.
func (c *Client) CompletedQuizSubmissions(ctx context.Context, courseID, quizID int) ([]QuizSubmission, error) {
	q := url.Values{}
	q.Set("include[]", "user")
	var submissions []QuizSubmission
	path := fmt.Sprintf("api/v1/courses/%d/quizzes/%d/submissions", courseID, quizID)
	err := c.paginate(ctx, path, q, func(body []byte) error {
		// Submission pages nest the list under quiz_submissions.
		var page struct {
			QuizSubmissions []QuizSubmission `json:"quiz_submissions"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, s := range page.QuizSubmissions {
			if s.WorkflowState == "complete" {
				submissions = append(submissions, s)
			}
		}
		return nil
	})
	return submissions, err
}

// SubmissionAnswers fetches the per-question answers of one quiz submission.
func (c *Client) SubmissionAnswers(ctx context.Context, quizSubmissionID int) ([]SubmissionAnswer, error) {
	var out struct {
		QuizSubmissionQuestions []SubmissionAnswer `json:"quiz_submission_questions"`
	}
	path := fmt.Sprintf("api/v1/quiz_submissions/%d/questions", quizSubmissionID)
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out.QuizSubmissionQuestions, nil
}

// HideQuizResults keeps graded results invisible to students until the
// instructor has reviewed the AI grades.
func (c *Client) HideQuizResults(ctx context.Context, courseID, quizID int) error {
	form := url.Values{}
	form.Set("quiz[hide_results]", "always")
	return c.putForm(ctx, fmt.Sprintf("api/v1/courses/%d/quizzes/%d", courseID, quizID), form)
}

// PostQuestionScore writes a score and comment for one question of one
// submission attempt.
func (c *Client) PostQuestionScore(ctx context.Context, courseID, quizID, submissionID, attempt, questionID int, score float64, comment string) error {
	payload := map[string]interface{}{
		"quiz_submissions": []map[string]interface{}{{
			"attempt": attempt,
			"questions": map[string]interface{}{
				fmt.Sprintf("%d", questionID): map[string]interface{}{
					"score":   score,
					"comment": comment,
				},
			},
		}},
	}
	path := fmt.Sprintf("api/v1/courses/%d/quizzes/%d/submissions/%d", courseID, quizID, submissionID)
	return c.putJSON(ctx, path, payload, nil)
}
