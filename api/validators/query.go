package validators

import (
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/zinxon/towber-api/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter, applying a
// default when absent and rejecting values outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be an integer", key))
	}
	if val < min || val > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be between %d and %d", key, min, max))
	}
	return val, nil
}
