package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStudentAnalysisProgressShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{"progress_url", `{"progress_url": "https://x.test/api/v1/progress/5"}`, "https://x.test/api/v1/progress/5", false},
		{"nested url", `{"progress": {"url": "https://x.test/api/v1/progress/6"}}`, "https://x.test/api/v1/progress/6", false},
		{"bare id", `{"progress": {"id": 7}}`, "/api/v1/progress/7", false},
		{"nothing", `{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/quiz/v1/courses/1/quizzes/2/reports", r.URL.Path)
				fmt.Fprint(w, tt.response)
			})
			url, err := c.CreateStudentAnalysis(context.Background(), 1, 2)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestPollProgressWaitsForCompletion(t *testing.T) {
	polls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			fmt.Fprint(w, `{"workflow_state": "running"}`)
			return
		}
		fmt.Fprint(w, `{"workflow_state": "completed", "results": {"url": "https://x.test/report.json"}}`)
	})

	prog, err := c.PollProgress(context.Background(), "api/v1/progress/1", time.Millisecond, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, "completed", prog.WorkflowState)
}

func TestPollProgressFailedReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"workflow_state": "failed"}`)
	})
	_, err := c.PollProgress(context.Background(), "api/v1/progress/1", time.Millisecond, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestResolveDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		results string
		want    string
	}{
		{"direct url", `{"url": "https://x.test/a.json"}`, "https://x.test/a.json"},
		{"attachment url", `{"attachment": {"url": "https://x.test/b.json"}}`, "https://x.test/b.json"},
		{"attachment download_url", `{"attachment": {"download_url": "https://x.test/c.json"}}`, "https://x.test/c.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			})
			url, err := c.ResolveDownloadURL(context.Background(), &Progress{Results: json.RawMessage(tt.results)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestResolveDownloadURLByFileID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/files/33", r.URL.Path)
		fmt.Fprint(w, `{"url": "https://x.test/d.json"}`)
	})
	url, err := c.ResolveDownloadURL(context.Background(), &Progress{Results: json.RawMessage(`{"attachment_id": 33}`)})
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/d.json", url)
}

func TestResolveDownloadURLExhausted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.ResolveDownloadURL(context.Background(), &Progress{})
	require.Error(t, err)
}
