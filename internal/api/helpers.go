package api

import (
	"encoding/json/v2"
	"io"
	"net/http"

	"github.com/inkwellapp/inkwell-server/internal/errors"
)

// decodeJSON reads a JSON request body into dst, capped at the
// configured upload limit.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.Upload.MaxBytes))
	if err != nil {
		return errors.Validation("failed to read request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Validation("invalid JSON body")
	}
	return nil
}

// readUpload reads a raw binary request body (image uploads), capped at
// the configured upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes))
	if err != nil {
		return nil, errors.Validation("upload too large or unreadable")
	}
	if len(data) == 0 {
		return nil, errors.Validation("empty upload")
	}
	return data, nil
}
