package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type Assignment struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	PointsPossible      float64  `json:"points_possible"`
	DueAt               string   `json:"due_at"`
	Published           bool     `json:"published"`
	GradingType         string   `json:"grading_type"`
	SubmissionTypes     []string `json:"submission_types"`
	QuizID              int      `json:"quiz_id"`
	IsQuizAssignment    bool     `json:"is_quiz_assignment"`
	IsQuizLTIAssignment bool     `json:"is_quiz_lti_assignment"`
}

type AssignmentGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c *Client) Assignments(ctx context.Context, courseID int) ([]Assignment, error) {
	var assignments []Assignment
	path := fmt.Sprintf("api/v1/courses/%d/assignments", courseID)
	err := c.paginate(ctx, path, nil, func(body []byte) error {
		var page []Assignment
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		assignments = append(assignments, page...)
		return nil
	})
	return assignments, err
}

// QuizAssignments filters a course's assignments down to classic quizzes.
func (c *Client) QuizAssignments(ctx context.Context, courseID int) ([]Assignment, error) {
	all, err := c.Assignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var quizzes []Assignment
	for _, a := range all {
		if a.IsQuizAssignment || a.QuizID != 0 {
			quizzes = append(quizzes, a)
		}
	}
	return quizzes, nil
}

// NewQuizAssignments filters a course's assignments down to New Quizzes
// (the quiz LTI), which use the /api/quiz/v1 endpoints.
func (c *Client) NewQuizAssignments(ctx context.Context, courseID int) ([]Assignment, error) {
	all, err := c.Assignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var quizzes []Assignment
	for _, a := range all {
		if a.IsQuizLTIAssignment {
			quizzes = append(quizzes, a)
		}
	}
	return quizzes, nil
}

// TextEntryAssignments filters a course's assignments down to those that
// accept online text entry submissions.
func (c *Client) TextEntryAssignments(ctx context.Context, courseID int) ([]Assignment, error) {
	all, err := c.Assignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var assignments []Assignment
	for _, a := range all {
		for _, st := range a.SubmissionTypes {
			if st == "online_text_entry" {
				assignments = append(assignments, a)
				break
			}
		}
	}
	return assignments, nil
}

// AssignmentSubmission is one student's submission on an assignment.
type AssignmentSubmission struct {
	UserID         int     `json:"user_id"`
	SubmissionType string  `json:"submission_type"`
	Body           string  `json:"body"`
	Score          float64 `json:"score"`
	User           *User   `json:"user"`
}

// StudentName falls back to "Student <id>" when the user wasn't included.
func (s AssignmentSubmission) StudentName() string {
	if s.User != nil && s.User.Name != "" {
		return s.User.Name
	}
	return fmt.Sprintf("Student %d", s.UserID)
}

// AssignmentSubmissions lists an assignment's submissions with user records.
func (c *Client) AssignmentSubmissions(ctx context.Context, courseID, assignmentID int) ([]AssignmentSubmission, error) {
	q := url.Values{}
	q.Set("include[]", "user")
	var submissions []AssignmentSubmission
	path := fmt.Sprintf("api/v1/courses/%d/assignments/%d/submissions", courseID, assignmentID)
	err := c.paginate(ctx, path, q, func(body []byte) error {
		var page []AssignmentSubmission
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		submissions = append(submissions, page...)
		return nil
	})
	return submissions, err
}

func (c *Client) AssignmentGroups(ctx context.Context, courseID int) ([]AssignmentGroup, error) {
	var groups []AssignmentGroup
	path := fmt.Sprintf("api/v1/courses/%d/assignment_groups", courseID)
	err := c.paginate(ctx, path, nil, func(body []byte) error {
		var page []AssignmentGroup
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		groups = append(groups, page...)
		return nil
	})
	return groups, err
}

func (c *Client) AssignmentsInGroup(ctx context.Context, courseID, groupID int) ([]Assignment, error) {
	q := url.Values{}
	q.Set("assignment_group_id", strconv.Itoa(groupID))
	var assignments []Assignment
	path := fmt.Sprintf("api/v1/courses/%d/assignment_groups/%d/assignments", courseID, groupID)
	err := c.paginate(ctx, path, q, func(body []byte) error {
		var page []Assignment
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		assignments = append(assignments, page...)
		return nil
	})
	return assignments, err
}

func (c *Client) SetAssignmentPublished(ctx context.Context, courseID, assignmentID int, published bool) error {
	form := url.Values{}
	form.Set("assignment[published]", strconv.FormatBool(published))
	return c.putForm(ctx, fmt.Sprintf("api/v1/courses/%d/assignments/%d", courseID, assignmentID), form)
}

// MakeAssignmentNonGraded converts an assignment to not_graded with zero points.
func (c *Client) MakeAssignmentNonGraded(ctx context.Context, courseID, assignmentID int) error {
	form := url.Values{}
	form.Set("assignment[grading_type]", "not_graded")
	form.Set("assignment[points_possible]", "0")
	return c.putForm(ctx, fmt.Sprintf("api/v1/courses/%d/assignments/%d", courseID, assignmentID), form)
}

// UpdateSubmissionGrade posts a new total grade plus a text comment on a
// student's assignment submission.
func (c *Client) UpdateSubmissionGrade(ctx context.Context, courseID, assignmentID, userID int, grade float64, comment string) error {
	form := url.Values{}
	form.Set("submission[posted_grade]", strconv.FormatFloat(grade, 'f', -1, 64))
	form.Set("comment[text_comment]", comment)
	path := fmt.Sprintf("api/v1/courses/%d/assignments/%d/submissions/%d", courseID, assignmentID, userID)
	return c.putForm(ctx, path, form)
}
