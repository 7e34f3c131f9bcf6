package utils

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxAudioUpload caps multipart recordings.
const MaxAudioUpload = 32 << 20

// AudioUpload is a recording submitted as multipart form data.
type AudioUpload struct {
	Data     []byte
	Format   string
	Language string
}

// ReadAudioForm extracts the "audio" file and the optional "format" and
// "language" fields. The returned error is safe to show to clients.
func ReadAudioForm(r *http.Request) (AudioUpload, error) {
	if err := r.ParseMultipartForm(MaxAudioUpload); err != nil {
		return AudioUpload{}, errors.New("failed to parse multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		return AudioUpload{}, errors.New("audio file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return AudioUpload{}, errors.New("failed to read audio file")
	}
	if len(data) == 0 {
		return AudioUpload{}, errors.New("audio file is empty")
	}

	format := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
	if format == "" {
		format = InferAudioFormat(header.Filename)
	}
	return AudioUpload{
		Data:     data,
		Format:   format,
		Language: strings.TrimSpace(r.FormValue("language")),
	}, nil
}

// InferAudioFormat maps a file name to a recognizer format, defaulting to wav.
func InferAudioFormat(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".mp3", ".wav", ".ogg", ".pcm":
		return ext[1:]
	case ".raw":
		return "pcm"
	default:
		return "wav"
	}
}
