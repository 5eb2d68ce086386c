package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// Upload sends a file to /storage/upload as multipart form data with a
// "file" part and a "folder" field.
func (c *Client) Upload(ctx context.Context, fileName, contentType string, body []byte, folder string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(body); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("write folder field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/storage/upload", nil, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return "", err
	}
	var out struct {
		PublicURL string `json:"publicUrl"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.PublicURL == "" {
		return "", ErrNoPublicURL
	}
	return out.PublicURL, nil
}
