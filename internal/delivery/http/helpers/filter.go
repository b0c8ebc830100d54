package helpers

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"

	"github.com/google/uuid"
)

// ParseEventFilter reads the event list filters from the query string. now anchors
// is_upcoming. Malformed values are reported as an error, never silently dropped.
func ParseEventFilter(r *http.Request, now time.Time) (domain.EventFilter, error) {
	q := r.URL.Query()
	var f domain.EventFilter

	parseTime := func(key string) (*time.Time, error) {
		v := q.Get(key)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an RFC3339 timestamp", key)
		}
		return &t, nil
	}

	var err error
	if f.DateFrom, err = parseTime("date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = parseTime("date_to"); err != nil {
		return f, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, fmt.Errorf("date_to must not be before date_from")
	}

	f.Location = strings.TrimSpace(q.Get("location"))
	f.Search = strings.TrimSpace(q.Get("search"))

	if v := q.Get("organizer"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("organizer must be a UUID")
		}
		f.OrganizerID = id.String()
	}

	if v := q.Get("is_upcoming"); v != "" {
		upcoming, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("is_upcoming must be a boolean")
		}
		if upcoming {
			at := now
			f.UpcomingAt = &at
		}
	}

	if v := q.Get("ordering"); v != "" {
		if !slices.Contains(domain.EventOrderings, v) {
			return f, fmt.Errorf("ordering must be one of %s", strings.Join(domain.EventOrderings, ", "))
		}
		f.Ordering = v
	}
	return f, nil
}
