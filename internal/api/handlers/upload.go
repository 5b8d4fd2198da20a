package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
	"github.com/nikhilbhutani/podcastsummarizer/internal/prompt"
)

const (
	// multipartOverhead is headroom for boundaries and form fields on top of
	// the file size limit.
	multipartOverhead = 1 << 20
	maxFormMemory     = 8 << 20
)

// upload is a parsed multipart audio request.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Language    string
	Live        bool
}

// readUpload parses the multipart form, rejecting oversize files before any
// byte of audio is decoded. The returned error is a *pipeline.Error.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	lang := r.URL.Query().Get("language")
	tooLarge := func(err error) error {
		return &pipeline.Error{
			Stage:   pipeline.StageReceive,
			Kind:    pipeline.KindTooLarge,
			Message: prompt.TooLargeMessage(lang, maxBytes),
			Err:     err,
		}
	}
	invalid := func(msg string, err error) error {
		return &pipeline.Error{Stage: pipeline.StageReceive, Kind: pipeline.KindValidation, Message: msg, Err: err}
	}

	if r.ContentLength > maxBytes+multipartOverhead {
		return nil, tooLarge(errors.New("content length " + strconv.FormatInt(r.ContentLength, 10)))
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, tooLarge(err)
		}
		return nil, invalid("invalid multipart form", err)
	}
	if v := r.FormValue("language"); v != "" {
		lang = v
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, invalid("file is required", err)
	}
	defer f.Close()

	if header.Size > maxBytes {
		return nil, tooLarge(errors.New("file size " + strconv.FormatInt(header.Size, 10)))
	}
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, invalid("failed to read file", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, tooLarge(errors.New("file exceeds limit while reading"))
	}

	return &upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Language:    lang,
		Live:        parseFlag(r.FormValue("live_recording")),
	}, nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
