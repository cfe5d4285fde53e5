package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	appErr "quickearn-admin/pkg/errors"
)

// Client forwards admin image uploads to a Cloudinary-style unsigned upload
// endpoint and hands back the public URL.
type Client struct {
	uploadURL    string
	uploadPreset string
	apiKey       string
	httpClient   *http.Client
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func NewClient(uploadURL, uploadPreset, apiKey string) *Client {
	return &Client{
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload sends one file as multipart form data and returns the CDN URL.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", err
	}
	if c.apiKey != "" {
		if err := writer.WriteField("api_key", c.apiKey); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: upload endpoint returned status %d", appErr.ErrUploadFailed, resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrUploadFailed, err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("%w: response missing secure_url", appErr.ErrUploadFailed)
	}
	return parsed.SecureURL, nil
}
