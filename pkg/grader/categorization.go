package grader

import (
	"regexp"
	"strings"

	"github.com/canvasops/canvasctl/pkg/canvas"
)

// CategorizationQuestion is a New Quizzes drag-into-categories item with its
// answer key. CorrectAnswers maps item label to category label; Distractors
// holds labels that belong in no category.
type CategorizationQuestion struct {
	ItemID         string
	Title          string
	PointsPossible float64
	CorrectAnswers map[string]string
	Distractors    map[string]bool
}

// ParseCategorizationItem extracts the answer key from a quiz item, or
// returns false when the item is not a categorization question.
func ParseCategorizationItem(item canvas.QuizItem) (*CategorizationQuestion, bool) {
	if item.Entry.InteractionTypeSlug != "categorization" {
		return nil, false
	}

	categories := item.Entry.InteractionData.Categories
	distractors := item.Entry.InteractionData.Distractors

	correct := make(map[string]string)
	classified := make(map[string]bool)
	for _, cat := range item.Entry.ScoringData.Value {
		catLabel := strings.TrimSpace(categories[cat.ID].ItemBody)
		for _, uuid := range cat.ScoringData.Value {
			classified[uuid] = true
			itemLabel := strings.TrimSpace(distractors[uuid].ItemBody)
			correct[itemLabel] = catLabel
		}
	}

	// Distractor entries the key never places are the true distractors.
	trueDistractors := make(map[string]bool)
	for uuid, d := range distractors {
		if !classified[uuid] {
			trueDistractors[strings.TrimSpace(d.ItemBody)] = true
		}
	}

	title := item.Entry.Title
	if title == "" {
		title = "Untitled Question"
	}
	return &CategorizationQuestion{
		ItemID:         item.ID,
		Title:          title,
		PointsPossible: item.PointsPossible,
		CorrectAnswers: correct,
		Distractors:    trueDistractors,
	}, true
}

// EssayItem is a New Quizzes essay question.
type EssayItem struct {
	ItemID         string
	Title          string
	Body           string
	PointsPossible float64
}

// ParseEssayItem extracts an essay question from a quiz item, or returns
// false when the item is not an essay.
func ParseEssayItem(item canvas.QuizItem) (*EssayItem, bool) {
	if item.Entry.InteractionTypeSlug != "essay" {
		return nil, false
	}
	title := item.Entry.Title
	if title == "" {
		title = "Untitled Question"
	}
	return &EssayItem{
		ItemID:         item.ID,
		Title:          title,
		Body:           item.Entry.ItemBody,
		PointsPossible: item.PointsPossible,
	}, true
}

// Student answers arrive as "cat1 => [item1,item2],cat2 => [item3]".
var placementRe = regexp.MustCompile(`(\w+(?:\([^)]*\))?)\s*=>\s*\[([^\]]*)\]`)

// ParsePlacements parses a report answer string into item -> category.
func ParsePlacements(answer string) map[string]string {
	placements := make(map[string]string)
	for _, m := range placementRe.FindAllStringSubmatch(answer, -1) {
		category := m[1]
		for _, item := range strings.Split(m[2], ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				placements[item] = category
			}
		}
	}
	return placements
}

// ScorePlacements applies partial credit:
//
//	score = (correct - 0.5*misclassified) / total * points_possible
//
// floored at zero. Unplaced items lose credit without penalty; a placed true
// distractor counts as misclassified.
func ScorePlacements(q *CategorizationQuestion, placements map[string]string) (score float64, correct, misclassified int) {
	for itemLabel, want := range q.CorrectAnswers {
		got, placed := placements[itemLabel]
		switch {
		case placed && got == want:
			correct++
		case placed:
			misclassified++
		}
	}
	for itemLabel := range q.Distractors {
		if _, placed := placements[itemLabel]; placed {
			misclassified++
		}
	}

	total := len(q.CorrectAnswers)
	if total == 0 || q.PointsPossible == 0 {
		return 0, 0, 0
	}
	score = (float64(correct) - 0.5*float64(misclassified)) / float64(total) * q.PointsPossible
	if score < 0 {
		score = 0
	}
	return score, correct, misclassified
}
