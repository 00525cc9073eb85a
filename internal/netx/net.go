// Package netx contains HTTP helpers that do not belong to a specific API.
package netx

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// FormFile is a file part of a multipart/form-data body.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// Field is a plain text part of a multipart/form-data body.
type Field struct {
	Name  string
	Value string
}

// MultipartBody encodes fields and files into a multipart/form-data body and
// returns it with the matching Content-Type header value. Empty field values
// are skipped, so optional inputs are simply not sent.
func MultipartBody(fields []Field, files ...FormFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
