package soopify

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"

	"github.com/soopify/site/objectstore"
)

const (
	maxImageSize    = 5 << 20  // 5MB
	maxDocumentSize = 10 << 20 // 10MB
)

type uploadKind string

const (
	kindImage    uploadKind = "image"
	kindDocument uploadKind = "document"
)

// uploadRule is what an accepted MIME type is stored as.
type uploadRule struct {
	kind uploadKind
	ext  string
}

// allowedUploads maps accepted MIME types to their kind and the extension
// their object keys get. Client file names never pick the extension.
var allowedUploads = map[string]uploadRule{
	"image/jpeg": {kindImage, "jpg"},
	"image/png":  {kindImage, "png"},
	"image/gif":  {kindImage, "gif"},
	"image/webp": {kindImage, "webp"},

	"application/pdf":               {kindDocument, "pdf"},
	"application/msword":            {kindDocument, "doc"},
	"application/vnd.ms-excel":      {kindDocument, "xls"},
	"application/vnd.ms-powerpoint": {kindDocument, "ppt"},

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {kindDocument, "docx"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {kindDocument, "xlsx"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {kindDocument, "pptx"},

	"application/x-hwp":           {kindDocument, "hwp"},
	"application/haansofthwp":     {kindDocument, "hwp"},
	"application/vnd.hancom.hwp":  {kindDocument, "hwp"},
	"application/vnd.hancom.hwpx": {kindDocument, "hwpx"},

	"text/plain":                   {kindDocument, "txt"},
	"application/zip":              {kindDocument, "zip"},
	"application/x-zip-compressed": {kindDocument, "zip"},
}

func (k uploadKind) maxSize() int64 {
	if k == kindImage {
		return maxImageSize
	}
	return maxDocumentSize
}

func (k uploadKind) tooLarge() *APIError {
	if k == kindImage {
		return badRequest(msgImageTooLarge)
	}
	return badRequest(msgFileTooLarge)
}

func (k uploadKind) prefix() string {
	if k == kindImage {
		return "images"
	}
	return "files"
}

// baseMediaType strips parameters and lowercases a Content-Type value.
func baseMediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

func (a *App) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(msgNoFile)
	}

	declared := baseMediaType(fh.Header.Get(echo.HeaderContentType))
	if rule, ok := allowedUploads[declared]; ok && fh.Size > rule.kind.maxSize() {
		a.metrics.uploads.WithLabelValues(string(rule.kind), "too_large").Inc()
		return rule.kind.tooLarge()
	}
	if fh.Size > maxDocumentSize {
		a.metrics.uploads.WithLabelValues("unknown", "too_large").Inc()
		return badRequest(msgFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return internalError(msgUploadFailed, err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxDocumentSize+1))
	if err != nil {
		return internalError(msgUploadFailed, err)
	}

	contentType := declared
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = baseMediaType(mimetype.Detect(data).String())
	}
	rule, ok := allowedUploads[contentType]
	if !ok {
		a.metrics.uploads.WithLabelValues("unknown", "unsupported").Inc()
		return badRequest(msgUnsupportedType)
	}
	kind := rule.kind
	if int64(len(data)) > kind.maxSize() {
		a.metrics.uploads.WithLabelValues(string(kind), "too_large").Inc()
		return kind.tooLarge()
	}
	if kind == kindImage {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			a.metrics.uploads.WithLabelValues(string(kind), "invalid").Inc()
			return badRequest(msgInvalidImage)
		}
	}

	url, err := a.Objects.Put(c.Request().Context(), objectstore.Object{
		Key:         objectstore.NewKey(kind.prefix(), rule.ext),
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		a.metrics.uploads.WithLabelValues(string(kind), "error").Inc()
		return internalError(msgUploadFailed, fmt.Errorf("store %s: %w", fh.Filename, err))
	}
	a.metrics.uploads.WithLabelValues(string(kind), "stored").Inc()

	return c.JSON(http.StatusOK, echo.Map{
		"ok":       true,
		"location": url,
		"attachment": Attachment{
			ID:   uuid.NewString(),
			Name: filepath.Base(fh.Filename),
			URL:  url,
			Size: int64(len(data)),
			Type: contentType,
		},
	})
}
