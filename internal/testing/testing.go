// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/soundshelf/internal/models"
)

// Response is one scripted answer from [MockStore].
//
// For LookupOne, no rows means not found and a single row is returned as found.
type Response struct {
	Rows []models.Row
	Err  error
}

// MockStore is a test double for the user-type store.
//
// Responses are queued per table and consumed in order; the last one repeats once the queue
// is drained. Tables with nothing queued answer with no rows.
type MockStore struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     map[string]int
	filters   map[string][]models.Filter

	// Gate, when set, blocks every lookup until it is closed or the context ends.
	Gate chan struct{}
}

func NewMockStore() *MockStore {
	return &MockStore{
		responses: make(map[string][]Response),
		calls:     make(map[string]int),
		filters:   make(map[string][]models.Filter),
	}
}

// On queues responses for table.
func (m *MockStore) On(table string, responses ...Response) *MockStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[table] = append(m.responses[table], responses...)
	return m
}

// Calls returns how many lookups hit table.
func (m *MockStore) Calls(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[table]
}

// Filters returns the filters of the most recent lookup on table.
func (m *MockStore) Filters(table string) []models.Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters[table]
}

// Reset clears queued responses and call counts.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.responses)
	clear(m.calls)
	clear(m.filters)
}

func (m *MockStore) LookupOne(ctx context.Context, table string, filters ...models.Filter) (models.Row, bool, error) {
	resp, err := m.next(ctx, table, filters)
	if err != nil {
		return nil, false, err
	}
	switch len(resp.Rows) {
	case 0:
		return nil, false, nil
	case 1:
		return resp.Rows[0], true, nil
	default:
		return nil, false, errors.New("lookup matched more than one row")
	}
}

func (m *MockStore) LookupMany(ctx context.Context, table string, filters ...models.Filter) ([]models.Row, error) {
	resp, err := m.next(ctx, table, filters)
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (m *MockStore) next(ctx context.Context, table string, filters []models.Filter) (Response, error) {
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[table]++
	m.filters[table] = filters

	queue := m.responses[table]
	if len(queue) == 0 {
		return Response{}, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		m.responses[table] = queue[1:]
	}
	return resp, resp.Err
}

// PlanRow builds a user_plans row for plan.
func PlanRow(plan string) models.Row {
	return models.Row{"plan": plan, "is_active": int64(1)}
}

// RoleRows builds one user_roles row per role.
func RoleRows(roles ...string) []models.Row {
	rows := make([]models.Row, len(roles))
	for i, r := range roles {
		rows[i] = models.Row{"role": []byte(r), "is_active": int64(1)}
	}
	return rows
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
