package memory

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"headcount/internal/core"
)

// Store keeps allocation records in process memory. Ids start at 1 and are never reused.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.AllocationRecord
	// known are department names offered before any record uses them.
	known []string
}

func New(seed ...core.AllocationRecord) *Store {
	s := &Store{nextID: 1}
	for _, rec := range seed {
		_, _ = s.Create(context.Background(), rec)
	}
	return s
}

// NewFromFile returns an empty store whose department list starts with the
// names in path (one per line, '#' comments and blanks skipped). A missing
// file yields no names.
func NewFromFile(path string) *Store {
	s := New()
	s.known = readLines(path)
	return s
}

func (s *Store) Create(_ context.Context, rec core.AllocationRecord) (int64, error) {
	rec.Department = strings.TrimSpace(rec.Department)
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	s.items = append(s.items, rec)
	return rec.ID, nil
}

func (s *Store) Update(_ context.Context, rec core.AllocationRecord) error {
	rec.Department = strings.TrimSpace(rec.Department)
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == rec.ID {
			s.items[i] = rec
			return nil
		}
	}
	return &core.NotFoundError{ID: rec.ID}
}

func (s *Store) Get(_ context.Context, id int64) (core.AllocationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items {
		if rec.ID == id {
			return rec, nil
		}
	}
	return core.AllocationRecord{}, &core.NotFoundError{ID: id}
}

// Query returns matches in insertion order, which equals id order.
func (s *Store) Query(_ context.Context, filter core.DepartmentFilter, start, end core.Date) ([]core.AllocationRecord, error) {
	out := []core.AllocationRecord{}
	if start.After(end.Time) {
		return out, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items {
		if !filter.Matches(rec.Department) {
			continue
		}
		if rec.Date.Before(start.Time) || rec.Date.After(end.Time) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) ListDepartments(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.items)+len(s.known))
	names = append(names, s.known...)
	for _, rec := range s.items {
		names = append(names, rec.Department)
	}
	return dedupeSorted(names), nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.items)), nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupeSorted(out)
}

func dedupeSorted(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
