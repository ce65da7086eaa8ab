package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// MaxBodyBytes caps webhook bodies; GitHub never sends more than 25 MiB.
const MaxBodyBytes = 25 << 20

// readBody returns the request body as JSON bytes. Form-encoded bodies are
// flattened to an object of strings, keeping the first value of each key.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: parsing form: %w", ErrInvalidJSON, err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("%w: parsing form: %w", ErrInvalidJSON, err)
		}
	default:
		return io.ReadAll(r.Body)
	}

	flat := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return json.Marshal(flat)
}
