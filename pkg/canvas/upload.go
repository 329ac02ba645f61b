package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// UploadedFile is the confirmed Canvas file record after an upload.
type UploadedFile struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// UploadCourseFile runs the Canvas three-step upload: reserve an upload
// target on the course, post the bytes to the returned storage URL, then
// confirm via the Location redirect. Duplicates are overwritten.
func (c *Client) UploadCourseFile(ctx context.Context, courseID int, path string) (*UploadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Step 1: reserve the upload.
	payload := map[string]interface{}{
		"name":         name,
		"size":         info.Size(),
		"content_type": contentType,
		"on_duplicate": "overwrite",
	}
	var target struct {
		UploadURL    string            `json:"upload_url"`
		UploadParams map[string]string `json:"upload_params"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("api/v1/courses/%d/files", courseID), payload, &target); err != nil {
		return nil, err
	}
	if target.UploadURL == "" {
		return nil, errors.New("canvas: upload target carried no upload_url")
	}

	// Step 2: multipart post to the storage endpoint. Params first, file last.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range target.UploadParams {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	_, copyErr := io.Copy(fw, f)
	_ = f.Close()
	if copyErr != nil {
		return nil, copyErr
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// The storage host is not Canvas: no bearer token, no redirect following.
	noRedirect := &http.Client{
		Timeout: c.http.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	res, err := noRedirect.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canvas: file upload: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		b, _ := io.ReadAll(res.Body)
		return nil, &APIError{StatusCode: res.StatusCode, URL: target.UploadURL, Body: string(b)}
	}

	// Step 3: confirm. A redirect hands back the finished file record URL.
	location := res.Header.Get("Location")
	if location == "" {
		var file UploadedFile
		if err := json.NewDecoder(res.Body).Decode(&file); err != nil || file.ID == 0 {
			return nil, errors.New("canvas: upload incomplete, no confirmation location")
		}
		return &file, nil
	}

	confirm, err := c.do(ctx, http.MethodPost, location, "", nil)
	if err != nil {
		return nil, err
	}
	defer confirm.Body.Close()
	var file UploadedFile
	if err := json.NewDecoder(confirm.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("canvas: bad upload confirmation: %w", err)
	}
	return &file, nil
}
