package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finboard/internal/services"
)

// parseDashboardRequest reads start, end, category, categories, horizon and
// top_n. Repeated category values and a comma-separated categories value are
// merged. With neither parameter every category is selected; categories
// given but empty selects none.
func parseDashboardRequest(q url.Values) (services.Request, error) {
	var req services.Request
	var err error

	if req.Start, err = parseDate(q, "start"); err != nil {
		return services.Request{}, err
	}
	if req.End, err = parseDate(q, "end"); err != nil {
		return services.Request{}, err
	}
	if req.Horizon, err = parseInt(q, "horizon"); err != nil {
		return services.Request{}, err
	}
	if req.TopN, err = parseInt(q, "top_n"); err != nil {
		return services.Request{}, err
	}
	req.Categories = parseCategories(q)
	return req, nil
}

func parseCategories(q url.Values) []string {
	_, hasList := q["categories"]
	_, hasRepeated := q["category"]
	if !hasList && !hasRepeated {
		return nil
	}

	out := []string{}
	for _, v := range q["category"] {
		if v = sanitizeInput(v); v != "" {
			out = append(out, v)
		}
	}
	for _, list := range q["categories"] {
		for _, v := range strings.Split(list, ",") {
			if v = sanitizeInput(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// parseDate parses a YYYY-MM-DD query value; a missing value is the zero time.
func parseDate(q url.Values, key string) (time.Time, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", key, v)
	}
	return t, nil
}

func parseInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", key, v)
	}
	return n, nil
}
