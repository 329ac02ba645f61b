package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

// At most this many model calls run at once.
const maxConcurrentRequests = 5

const systemPrompt = "You are an expert educator grading essays. Return only valid JSON."

const DefaultGuidelines = `Grade based on clarity, accuracy, use of examples, and writing quality.
Provide constructive feedback in 2-3 sentences.`

// EssayGrader scores free-text answers with Gemini.
type EssayGrader struct {
	client *genai.Client
	model  string
}

func NewEssayGrader(ctx context.Context, apiKey, model string) (*EssayGrader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &EssayGrader{client: client, model: model}, nil
}

// Result is one model verdict.
type Result struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Grade asks the model for a score and feedback, temperature 0, JSON out.
// Scores are clamped to [0, pointsPossible].
func (g *EssayGrader) Grade(ctx context.Context, questionText, answer string, pointsPossible float64, guidelines string) (*Result, error) {
	prompt := fmt.Sprintf(`Question: %s
Maximum Points: %g

Grading Guidelines:
%s

Student Response:
%s

Respond with JSON only:
{"score": <number>, "feedback": "<text>"}`, questionText, pointsPossible, guidelines, answer)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("grade essay: %w", err)
	}

	result, err := parseResult(resp.Text())
	if err != nil {
		return nil, err
	}
	if result.Score < 0 {
		result.Score = 0
	} else if result.Score > pointsPossible {
		result.Score = pointsPossible
	}
	if result.Feedback == "" {
		result.Feedback = "No feedback provided."
	}
	return result, nil
}

// parseResult decodes the model's JSON verdict, tolerating fenced blocks.
func parseResult(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}
	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("bad model response %q: %w", truncateForErr(text), err)
	}
	return &result, nil
}

func truncateForErr(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// Pending is a submission queued for grading.
type Pending struct {
	UserID       int
	UserName     string
	SubmissionID int
	Attempt      int
	Answer       string
	// Prior grades, carried into the checkpoint for kinds that post a
	// recomputed total.
	OldQuestionGrade float64
	OldTotalGrade    float64
}

// GradeAll fans submissions out to the model, at most five in flight, and
// reports per-submission outcomes through report. A model failure skips that
// submission instead of aborting the batch.
func (g *EssayGrader) GradeAll(ctx context.Context, pending []Pending, questionText string, pointsPossible float64, guidelines string, report func(p Pending, r *Result, err error)) []GradedSubmission {
	results := make([]*Result, len(pending))
	errs := make([]error, len(pending))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentRequests)
	for i, p := range pending {
		eg.Go(func() error {
			results[i], errs[i] = g.Grade(ctx, questionText, p.Answer, pointsPossible, guidelines)
			return nil
		})
	}
	_ = eg.Wait()

	var graded []GradedSubmission
	for i, p := range pending {
		if report != nil {
			report(p, results[i], errs[i])
		}
		if errs[i] != nil {
			continue
		}
		graded = append(graded, GradedSubmission{
			UserID:           p.UserID,
			UserName:         p.UserName,
			SubmissionID:     p.SubmissionID,
			Attempt:          p.Attempt,
			Answer:           p.Answer,
			OldQuestionGrade: p.OldQuestionGrade,
			OldTotalGrade:    p.OldTotalGrade,
			AIScore:          results[i].Score,
			AIFeedback:       results[i].Feedback,
		})
	}
	return graded
}
