package response

import (
	"encoding/json"
	"net/http"

	"waystation/internal/validation"
)

// JSON writes v as the response body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Err writes a {"detail": msg} error body with the given status code.
func Err(w http.ResponseWriter, msg string, code int) {
	JSON(w, code, map[string]string{"detail": msg})
}

type fieldDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// Invalid writes a 422 whose detail lists one entry per field error.
func Invalid(w http.ResponseWriter, ve *validation.ValidationErrors) {
	details := make([]fieldDetail, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		details = append(details, fieldDetail{Loc: []string{"body", e.Field}, Msg: e.Message})
	}
	JSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": details})
}

// DecodeBody decodes a JSON request body into the given value.
func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
