// Package query validates and normalizes lead listing parameters.
// It is the only place raw query strings are inspected; everything
// downstream works from the structured Options value.
package query

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidOptions indicates pagination/sort parameters that were
// rejected before any store call.
var ErrInvalidOptions = errors.New("invalid query options")

// Direction is a validated sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Region selects which part of the lead document a sort field
// addresses.
type Region string

const (
	// RegionSystem addresses the server-assigned envelope.
	RegionSystem Region = "system"
	// RegionLead addresses a key in the caller-supplied lead payload.
	RegionLead Region = "lead"
	// RegionTracking addresses a key in the tracking payload.
	RegionTracking Region = "tracking"
)

// SystemField names within RegionSystem.
const (
	SystemCreated = "created"
	SystemLeadNum = "leadNum"
	SystemIP      = "ip"
)

// SortField is a validated ordering field.
type SortField struct {
	Region Region
	// Key is the envelope field name for RegionSystem, or the payload
	// key for RegionLead/RegionTracking.
	Key string
}

// Path returns the dotted field path, e.g. "system.created".
func (f SortField) Path() string {
	return string(f.Region) + "." + f.Key
}

// Options is the normalized form of the listing parameters.
type Options struct {
	OrderBy   SortField
	Direction Direction
	// Limit is the page size; 0 means unbounded.
	Limit int
	// StartAfter is the opaque cursor: the ordering-field value of the
	// last item of the previous page. Empty means first page.
	StartAfter string
}

// orderByPattern is the only shape orderBy may take; anything else is
// rejected before it can reach the store.
var orderByPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var systemFields = map[string]bool{
	SystemCreated: true,
	SystemLeadNum: true,
	SystemIP:      true,
}

// DefaultOptions returns the defaults: newest first by creation time.
func DefaultOptions() *Options {
	return &Options{
		OrderBy:   SortField{Region: RegionSystem, Key: SystemCreated},
		Direction: Desc,
	}
}

// Parse validates raw query parameters into Options.
// Underscores in orderBy are path separators: system_created addresses
// the nested system.created field.
func Parse(values url.Values) (*Options, error) {
	opts := DefaultOptions()

	if raw := values.Get("orderBy"); raw != "" {
		field, err := parseOrderBy(raw)
		if err != nil {
			return nil, err
		}
		opts.OrderBy = field
	}

	if raw := values.Get("orderDirection"); raw != "" {
		switch raw {
		case string(Asc):
			opts.Direction = Asc
		case string(Desc):
			opts.Direction = Desc
		default:
			return nil, ErrInvalidOptions
		}
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, ErrInvalidOptions
		}
		opts.Limit = limit
	}

	opts.StartAfter = values.Get("startAfter")

	return opts, nil
}

func parseOrderBy(raw string) (SortField, error) {
	if !orderByPattern.MatchString(raw) {
		return SortField{}, ErrInvalidOptions
	}

	segments := strings.SplitN(raw, "_", 2)

	// A bare name addresses the lead payload directly.
	if len(segments) == 1 {
		return SortField{Region: RegionLead, Key: segments[0]}, nil
	}

	root, rest := segments[0], segments[1]
	switch Region(root) {
	case RegionSystem:
		if !systemFields[rest] {
			return SortField{}, ErrInvalidOptions
		}
		return SortField{Region: RegionSystem, Key: rest}, nil
	case RegionLead:
		return SortField{Region: RegionLead, Key: rest}, nil
	case RegionTracking:
		return SortField{Region: RegionTracking, Key: rest}, nil
	default:
		// Unknown root: the whole name is a lead payload key with an
		// underscore in it.
		return SortField{Region: RegionLead, Key: raw}, nil
	}
}
