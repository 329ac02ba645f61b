package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUploadFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUploadCourseFileThreeSteps(t *testing.T) {
	const content = "week 3 lecture notes"
	path := writeUploadFixture(t, content)

	var steps []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/courses/7/files":
			steps = append(steps, "reserve")
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			var payload struct {
				Name        string `json:"name"`
				Size        int64  `json:"size"`
				ContentType string `json:"content_type"`
				OnDuplicate string `json:"on_duplicate"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "notes.txt", payload.Name)
			assert.Equal(t, int64(len(content)), payload.Size)
			assert.Equal(t, "overwrite", payload.OnDuplicate)
			fmt.Fprintf(w, `{"upload_url": "http://%s/storage", "upload_params": {"key": "uploads/notes.txt", "policy": "signed"}}`, r.Host)
		case "/storage":
			steps = append(steps, "store")
			// The storage host is not Canvas; the token must not leak there.
			assert.Empty(t, r.Header.Get("Authorization"))
			mr, err := r.MultipartReader()
			if !assert.NoError(t, err) {
				return
			}
			var fields []string
			for {
				part, err := mr.NextPart()
				if err == io.EOF {
					break
				}
				if !assert.NoError(t, err) {
					return
				}
				fields = append(fields, part.FormName())
				if part.FormName() == "file" {
					b, _ := io.ReadAll(part)
					assert.Equal(t, content, string(b))
				}
			}
			// Reserved params ride along, and the file part comes last.
			assert.ElementsMatch(t, []string{"key", "policy", "file"}, fields)
			assert.Equal(t, "file", fields[len(fields)-1])
			w.Header().Set("Location", fmt.Sprintf("http://%s/confirm", r.Host))
			w.WriteHeader(http.StatusFound)
		case "/confirm":
			steps = append(steps, "confirm")
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"id": 99, "display_name": "notes.txt", "url": "http://files/99"}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})

	file, err := c.UploadCourseFile(context.Background(), 7, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"reserve", "store", "confirm"}, steps)
	assert.Equal(t, 99, file.ID)
	assert.Equal(t, "notes.txt", file.DisplayName)
}

func TestUploadCourseFileConfirmsFromBody(t *testing.T) {
	path := writeUploadFixture(t, "inline confirmation")

	confirmCalled := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/courses/7/files":
			fmt.Fprintf(w, `{"upload_url": "http://%s/storage", "upload_params": {}}`, r.Host)
		case "/storage":
			// Some storage backends answer with the file record directly
			// instead of a Location redirect.
			fmt.Fprint(w, `{"id": 100, "display_name": "notes.txt"}`)
		default:
			confirmCalled = true
		}
	})

	file, err := c.UploadCourseFile(context.Background(), 7, path)
	require.NoError(t, err)
	assert.False(t, confirmCalled)
	assert.Equal(t, 100, file.ID)
}

func TestUploadCourseFileNoConfirmation(t *testing.T) {
	path := writeUploadFixture(t, "x")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/courses/7/files":
			fmt.Fprintf(w, `{"upload_url": "http://%s/storage", "upload_params": {}}`, r.Host)
		case "/storage":
			fmt.Fprint(w, `{"ok": true}`)
		}
	})

	_, err := c.UploadCourseFile(context.Background(), 7, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no confirmation location")
}

func TestUploadCourseFileMissingFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a missing source file")
	})

	_, err := c.UploadCourseFile(context.Background(), 7, filepath.Join(t.TempDir(), "gone.txt"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
