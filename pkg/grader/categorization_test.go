package grader

import (
	"testing"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categorizationItem() canvas.QuizItem {
	item := canvas.QuizItem{ID: "item-1", PointsPossible: 10}
	item.Entry.Title = "Sorting Algorithms"
	item.Entry.InteractionTypeSlug = "categorization"
	item.Entry.InteractionData.Categories = map[string]canvas.ItemBody{
		"cat-a": {ItemBody: "stable"},
		"cat-b": {ItemBody: "unstable"},
	}
	item.Entry.InteractionData.Distractors = map[string]canvas.ItemBody{
		"u1": {ItemBody: "mergesort"},
		"u2": {ItemBody: "insertion"},
		"u3": {ItemBody: "quicksort"},
		"u4": {ItemBody: "heapsort"},
		"u5": {ItemBody: "bogosort"},
	}
	item.Entry.ScoringData.Value = []canvas.CategoryScoring{
		{ID: "cat-a", ScoringData: struct {
			Value []string `json:"value"`
		}{Value: []string{"u1", "u2"}}},
		{ID: "cat-b", ScoringData: struct {
			Value []string `json:"value"`
		}{Value: []string{"u3", "u4"}}},
	}
	return item
}

func TestParseCategorizationItem(t *testing.T) {
	q, ok := ParseCategorizationItem(categorizationItem())
	require.True(t, ok)

	assert.Equal(t, "item-1", q.ItemID)
	assert.Equal(t, "Sorting Algorithms", q.Title)
	assert.Equal(t, 10.0, q.PointsPossible)
	assert.Equal(t, map[string]string{
		"mergesort": "stable",
		"insertion": "stable",
		"quicksort": "unstable",
		"heapsort":  "unstable",
	}, q.CorrectAnswers)
	assert.Equal(t, map[string]bool{"bogosort": true}, q.Distractors)
}

func TestParseCategorizationItemSkipsOtherTypes(t *testing.T) {
	item := categorizationItem()
	item.Entry.InteractionTypeSlug = "multi-answer"
	_, ok := ParseCategorizationItem(item)
	assert.False(t, ok)
}

func TestParseCategorizationItemUntitled(t *testing.T) {
	item := categorizationItem()
	item.Entry.Title = ""
	q, ok := ParseCategorizationItem(item)
	require.True(t, ok)
	assert.Equal(t, "Untitled Question", q.Title)
}

func TestParseEssayItem(t *testing.T) {
	item := canvas.QuizItem{ID: "item-9", PointsPossible: 8}
	item.Entry.Title = "Reflection"
	item.Entry.ItemBody = "<p>Discuss index trade-offs.</p>"
	item.Entry.InteractionTypeSlug = "essay"

	q, ok := ParseEssayItem(item)
	require.True(t, ok)
	assert.Equal(t, "item-9", q.ItemID)
	assert.Equal(t, "Reflection", q.Title)
	assert.Equal(t, "<p>Discuss index trade-offs.</p>", q.Body)
	assert.Equal(t, 8.0, q.PointsPossible)
}

func TestParseEssayItemSkipsOtherTypes(t *testing.T) {
	item := categorizationItem()
	_, ok := ParseEssayItem(item)
	assert.False(t, ok)
}

func TestParseEssayItemUntitled(t *testing.T) {
	item := canvas.QuizItem{ID: "item-9"}
	item.Entry.InteractionTypeSlug = "essay"
	q, ok := ParseEssayItem(item)
	require.True(t, ok)
	assert.Equal(t, "Untitled Question", q.Title)
}

func TestParsePlacements(t *testing.T) {
	placements := ParsePlacements("stable => [mergesort, insertion],unstable => [quicksort]")
	assert.Equal(t, map[string]string{
		"mergesort": "stable",
		"insertion": "stable",
		"quicksort": "unstable",
	}, placements)
}

func TestParsePlacementsParenthesizedCategories(t *testing.T) {
	placements := ParsePlacements("O(1) => [lookup],O(n) => [scan, insert]")
	assert.Equal(t, map[string]string{
		"lookup": "O(1)",
		"scan":   "O(n)",
		"insert": "O(n)",
	}, placements)
}

func TestParsePlacementsEmpty(t *testing.T) {
	assert.Empty(t, ParsePlacements(""))
	assert.Empty(t, ParsePlacements("not an answer"))
	assert.Empty(t, ParsePlacements("stable => []"))
}

func TestScorePlacements(t *testing.T) {
	q, ok := ParseCategorizationItem(categorizationItem())
	require.True(t, ok)

	tests := []struct {
		name              string
		placements        map[string]string
		wantScore         float64
		wantCorrect       int
		wantMisclassified int
	}{
		{
			name: "all correct",
			placements: map[string]string{
				"mergesort": "stable", "insertion": "stable",
				"quicksort": "unstable", "heapsort": "unstable",
			},
			wantScore: 10, wantCorrect: 4,
		},
		{
			name: "one misclassified",
			placements: map[string]string{
				"mergesort": "stable", "insertion": "stable",
				"quicksort": "unstable", "heapsort": "stable",
			},
			wantScore: 6.25, wantCorrect: 3, wantMisclassified: 1,
		},
		{
			name: "unplaced items lose credit without penalty",
			placements: map[string]string{
				"mergesort": "stable", "quicksort": "unstable",
			},
			wantScore: 5, wantCorrect: 2,
		},
		{
			name: "placed distractor counts as misclassified",
			placements: map[string]string{
				"mergesort": "stable", "insertion": "stable",
				"quicksort": "unstable", "heapsort": "unstable",
				"bogosort": "stable",
			},
			wantScore: 8.75, wantCorrect: 4, wantMisclassified: 1,
		},
		{
			name: "floor at zero",
			placements: map[string]string{
				"mergesort": "unstable", "insertion": "unstable",
				"quicksort": "stable", "heapsort": "stable",
				"bogosort": "stable",
			},
			wantScore: 0, wantMisclassified: 5,
		},
		{
			name:      "nothing placed",
			wantScore: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, correct, misclassified := ScorePlacements(q, tt.placements)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantCorrect, correct)
			assert.Equal(t, tt.wantMisclassified, misclassified)
		})
	}
}

func TestScorePlacementsDegenerateQuestions(t *testing.T) {
	empty := &CategorizationQuestion{PointsPossible: 10}
	score, _, _ := ScorePlacements(empty, map[string]string{"x": "y"})
	assert.Zero(t, score)

	zeroPoints := &CategorizationQuestion{
		CorrectAnswers: map[string]string{"a": "b"},
	}
	score, _, _ = ScorePlacements(zeroPoints, map[string]string{"a": "b"})
	assert.Zero(t, score)
}
