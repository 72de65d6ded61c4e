package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// memStore is an in-memory stand-in for the content store. It evaluates
// the subset of GROQ the service emits: equality and membership filters
// bound as parameters, order(), prefix slices and aggregate objects.
// Documents are stored already projected.
type memStore struct {
	mu      sync.Mutex
	docs    []map[string]any
	err     error
	calls   int
	queries []string
	params  []map[string]any
}

var (
	orderRegex = regexp.MustCompile(`order\(([^)]*)\)`)
	sliceRegex = regexp.MustCompile(`\[(\d+)\.\.\.(\d+)\]`)
)

func (m *memStore) Query(_ context.Context, query string, params map[string]any, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.queries = append(m.queries, query)
	m.params = append(m.params, params)
	if m.err != nil {
		return m.err
	}

	var result any
	if strings.HasPrefix(query, "{") {
		result = m.aggregate(params)
	} else {
		result = m.list(query, params)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (m *memStore) matches(doc map[string]any, params map[string]any) bool {
	for key, want := range params {
		switch key {
		case "type":
			if doc["_type"] != want {
				return false
			}
		case "types":
			if !slices.Contains(want.([]string), fmt.Sprint(doc["_type"])) {
				return false
			}
		case "sites":
			sites, _ := doc["sites"].([]string)
			if !slices.Contains(sites, fmt.Sprint(want)) {
				return false
			}
		case "slug_current":
			if doc["slug"] != want {
				return false
			}
		default:
			if doc[key] != want {
				return false
			}
		}
	}
	return true
}

func (m *memStore) list(query string, params map[string]any) []map[string]any {
	out := []map[string]any{}
	for _, doc := range m.docs {
		if m.matches(doc, params) {
			out = append(out, doc)
		}
	}

	if om := orderRegex.FindStringSubmatch(query); om != nil {
		keys := strings.Split(om[1], ", ")
		sort.SliceStable(out, func(i, j int) bool {
			for _, k := range keys {
				field, dir, _ := strings.Cut(k, " ")
				if field == "slug.current" {
					field = "slug"
				}
				a, b := fmt.Sprint(out[i][field]), fmt.Sprint(out[j][field])
				if a == b {
					continue
				}
				if dir == "desc" {
					return a > b
				}
				return a < b
			}
			return false
		})
	}

	if sm := sliceRegex.FindStringSubmatch(query); sm != nil {
		start, _ := strconv.Atoi(sm[1])
		end, _ := strconv.Atoi(sm[2])
		end = min(end, len(out))
		start = min(start, end)
		out = out[start:end]
	}
	return out
}

func (m *memStore) aggregate(params map[string]any) map[string]any {
	site, hasSite := params["sites"]
	total, open := 0, 0
	var departments []any
	for _, doc := range m.docs {
		if doc["_type"] != "jobPosting" {
			continue
		}
		if hasSite {
			sites, _ := doc["sites"].([]string)
			if !slices.Contains(sites, fmt.Sprint(site)) {
				continue
			}
		}
		total++
		if doc["status"] == "open" {
			open++
			if !slices.Contains(departments, doc["department"]) {
				departments = append(departments, doc["department"])
			}
		}
	}
	return map[string]any{"total": total, "open": open, "departments": departments}
}

var errUnreachable = errors.New("dial tcp: connection refused")
