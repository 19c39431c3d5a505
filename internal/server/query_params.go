package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/bullionbook/pkg/apperror"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalDate(field, value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateOnlyLayout, trimmed, time.UTC)
	if err != nil {
		return nil, apperror.Validation(field, "invalid_"+field)
	}
	return &parsed, nil
}

// parseDateOr returns def when value is empty.
func parseDateOr(field, value string, def time.Time) (time.Time, error) {
	parsed, err := parseOptionalDate(field, value)
	if err != nil {
		return time.Time{}, err
	}
	if parsed == nil {
		return def, nil
	}
	return *parsed, nil
}

func parseOptionalInt(field, value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, apperror.Validation(field, "invalid_"+field)
	}
	return parsed, nil
}
