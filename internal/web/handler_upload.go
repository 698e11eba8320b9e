package web

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/fridgechef/internal/domain"
)

const maxUploadSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

type imageFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type uploadResponse struct {
	Processed   int            `json:"processed"`
	Added       []string       `json:"added"`
	Failures    []imageFailure `json:"failures"`
	Ingredients []string       `json:"ingredients"`
}

// handleUploadImages accepts one or more "image" files and an optional
// "context" hint applied to every image, then runs them as a single batch.
func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "image file required")
		return
	}
	hint := r.FormValue("context")

	images := make([]domain.ImageRecord, 0, len(files))
	for i, fh := range files {
		file, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to open image %d", i))
			return
		}
		data, err := io.ReadAll(file)
		closeWithLog(file, "upload file", s.logger)
		if err != nil {
			s.logger.Error("read upload failed", "session_id", id, "image", i, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read file")
			return
		}

		mimeType, ok := allowedImageMIME(data)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported image format for image %d", i))
			return
		}
		images = append(images, domain.ImageRecord{Data: data, MimeType: mimeType, Context: hint})
	}

	result, err := s.service.UploadImages(r.Context(), id, images)
	if err != nil {
		s.writeServiceError(w, err, "process images", id)
		return
	}

	snap, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err, "get session", id)
		return
	}

	resp := uploadResponse{
		Processed:   result.Processed,
		Added:       result.Added,
		Failures:    make([]imageFailure, 0, len(result.Failures)),
		Ingredients: snap.Ingredients,
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, imageFailure{Index: f.Index, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
