package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/velotrans/tms/internal/common"
)

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusForCode(code string) int {
	switch code {
	case common.CodeInvalidInput:
		return http.StatusBadRequest
	case common.CodeInvalidCredentials, common.CodeInvalidRefreshToken, common.CodeUnauthenticated:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status and a JSON payload. Expected error kinds
// pass through with their own message; anything else is logged with full
// detail and, in production, replaced by a generic message.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := common.ErrorCode(err)

	message := err.Error()
	if code == common.CodeInternal {
		s.logger.Error(ctx, "internal error", "error", err.Error())
		if s.production {
			message = common.ErrInternal.Error()
		}
	}

	writeJSON(w, statusForCode(code), errorPayload{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v; failures become InvalidInput.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return common.Invalid("body", "must be valid JSON")
	}
	return nil
}
