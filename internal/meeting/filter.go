package meeting

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Filter narrows the meeting list. Nil and empty fields impose no constraint;
// everything supplied is combined with AND.
type Filter struct {
	Title          string
	DateFrom       *time.Time
	DateTo         *time.Time
	DepartmentID   *int64
	OrganizationID *int64
	Status         *Status
	Search         string
	Limit          int
	Offset         int
}

// ParseFilter reads list query parameters. Malformed dates, ids and unknown
// statuses are dropped rather than rejected.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Title:  strings.TrimSpace(q.Get("title")),
		Search: strings.TrimSpace(q.Get("search")),
	}

	if t, err := parseDate(q.Get("date_from")); err == nil {
		f.DateFrom = &t
	}
	if t, err := parseDate(q.Get("date_to")); err == nil {
		f.DateTo = &t
	}
	f.DepartmentID = parsePositiveID(q.Get("department"))
	f.OrganizationID = parsePositiveID(q.Get("organization"))

	if s := Status(strings.TrimSpace(q.Get("status"))); s.Valid() {
		f.Status = &s
	}

	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = v
	}

	f.Normalize()
	return f
}

func (f *Filter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

func parsePositiveID(raw string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// EscapeLike escapes LIKE wildcards so user input matches literally. The
// result is meant for a LIKE ... ESCAPE '\' clause.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
