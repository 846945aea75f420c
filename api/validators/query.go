package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/gasflow-backend/pkg/daterange"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

// QuerySearchTerm reads a free-text filter. Inner whitespace collapses to one
// space and the result is cut to maxRunes so accented names stay valid UTF-8.
func QuerySearchTerm(r *http.Request, key string, maxRunes int) string {
	term := strings.Join(strings.Fields(r.URL.Query().Get(key)), " ")
	if maxRunes > 0 {
		if runes := []rune(term); len(runes) > maxRunes {
			term = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}
	return term
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryBool returns nil when the parameter is absent.
func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a boolean").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParseQueryUUID returns uuid.Nil when the parameter is absent.
func ParseQueryUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseUUIDParam reads a chi route parameter.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// ParseDayRange reads the optional from/to query parameters as business days.
func ParseDayRange(r *http.Request, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := daterange.ParseDay(r.URL.Query().Get("from"), loc)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from date").WithDetails(map[string]any{"field": "from", "format": "YYYY-MM-DD"})
	}
	to, err := daterange.ParseDay(r.URL.Query().Get("to"), loc)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to date").WithDetails(map[string]any{"field": "to", "format": "YYYY-MM-DD"})
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	return from, to, nil
}
