package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// UploadProgress is invoked as file bytes are written to the wire.
type UploadProgress func(sent, total int64)

// FileSource describes a file to upload. Open is called per attempt so the
// body can be rebuilt when the request is replayed after a refresh.
type FileSource struct {
	Field    string
	FileName string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Upload sends a multipart request through the full pipeline. It uses the
// extended upload timeout and reports progress to the caller.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, file FileSource, progress UploadProgress, out any) error {
	return c.send(ctx, attempt{
		method: http.MethodPost,
		path:   path,
		upload: &uploadPayload{
			fields:   fields,
			file:     file,
			progress: progress,
		},
	}, out)
}

type uploadPayload struct {
	fields   map[string]string
	file     FileSource
	progress UploadProgress
}

// open builds a streaming multipart body. The file is re-opened on every call
// so retries never replay a drained reader.
func (u *uploadPayload) open() (io.Reader, string, error) {
	src, err := u.file.Open()
	if err != nil {
		return nil, "", err
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer src.Close()

		for key, val := range u.fields {
			if err := writer.WriteField(key, val); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}

		part, err := writer.CreatePart(filePartHeader(u.file))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}

		var reader io.Reader = src
		if u.progress != nil {
			reader = &progressReader{r: src, total: u.file.Size, report: u.progress}
		}
		if _, err := io.Copy(part, reader); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := writer.Close(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.Close()
	}()

	return pr, writer.FormDataContentType(), nil
}

// filePartHeader builds the file part's MIME header so the declared content
// type reaches the wire instead of the multipart default.
func filePartHeader(file FileSource) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)
	return h
}

type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report UploadProgress
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
