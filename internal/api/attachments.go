package api

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// AttachmentsClient covers /complaints/{id}/attachments.
type AttachmentsClient struct {
	http *transport.Client
}

// NewAttachmentsClient constructs the client.
func NewAttachmentsClient(http *transport.Client) *AttachmentsClient {
	return &AttachmentsClient{http: http}
}

// List fetches attachment metadata for a complaint.
func (c *AttachmentsClient) List(ctx context.Context, complaintID string) ([]domain.Attachment, error) {
	var raw json.RawMessage
	if err := c.http.Get(ctx, "/complaints/"+url.PathEscape(complaintID)+"/attachments", &raw); err != nil {
		return nil, err
	}
	var attachments []domain.Attachment
	if _, err := decodeList(raw, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// UploadFile sends a local file as a multipart upload, reporting progress.
func (c *AttachmentsClient) UploadFile(ctx context.Context, complaintID, filePath, mimeType string, progress transport.UploadProgress) (domain.Attachment, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return domain.Attachment{}, err
	}

	source := transport.FileSource{
		Field:    "file",
		FileName: filepath.Base(filePath),
		MimeType: mimeType,
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(filePath)
		},
	}

	var raw json.RawMessage
	path := "/complaints/" + url.PathEscape(complaintID) + "/attachments"
	if err := c.http.Upload(ctx, path, nil, source, progress, &raw); err != nil {
		return domain.Attachment{}, err
	}

	var attachment domain.Attachment
	if err := decodeObject(raw, &attachment); err != nil {
		return domain.Attachment{}, err
	}
	return attachment, nil
}
