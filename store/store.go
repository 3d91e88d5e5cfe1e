package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autoaudit/estimator/vehicle"
)

// ErrNotFound is returned when no report has the requested ID
var ErrNotFound = errors.New("report not found")

// Report is one stored estimate. The payloads are kept verbatim as produced by the engine.
type Report struct {
	ID          string          `json:"id"`
	Facts       vehicle.Facts   `json:"facts"`
	Preview     json.RawMessage `json:"preview_payload"`
	Full        json.RawMessage `json:"full_payload"`
	IsPaid      bool            `json:"is_paid"`
	CheckoutRef string          `json:"checkout_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *Report) clone() *Report {
	c := *r
	c.Preview = bytes.Clone(r.Preview)
	c.Full = bytes.Clone(r.Full)
	if r.Facts.AskingPrice != nil {
		p := *r.Facts.AskingPrice
		c.Facts.AskingPrice = &p
	}
	return &c
}

// ReportStore manages report persistence and retrieval
type ReportStore interface {
	// Create stores a new report, assigning an ID if it has none
	Create(ctx context.Context, r *Report) error

	// Get a report by ID
	Get(ctx context.Context, id string) (*Report, error)

	// GetByCheckoutRef finds the report a payment session belongs to
	GetByCheckoutRef(ctx context.Context, ref string) (*Report, error)

	// MarkPaid unlocks the full payload; repeating it is a no-op
	MarkPaid(ctx context.Context, id string) (*Report, error)

	// SetCheckoutRef records the payment session that will unlock the report
	SetCheckoutRef(ctx context.Context, id, ref string) error
}

// NewReportID returns a fresh random report identifier
func NewReportID() string {
	return uuid.NewString()
}

// InMemoryReportStore implements ReportStore using an in-memory map
type InMemoryReportStore struct {
	reports map[string]*Report
	mu      sync.RWMutex
}

// NewInMemoryReportStore creates a new in-memory report store
func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{
		reports: make(map[string]*Report),
	}
}

// Create adds a report and sets CreatedAt and UpdatedAt
func (s *InMemoryReportStore) Create(_ context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = NewReportID()
	}
	if _, exists := s.reports[r.ID]; exists {
		return fmt.Errorf("report with ID %s already exists", r.ID)
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.reports[r.ID] = r.clone()
	return nil
}

// Get retrieves a report by ID
func (s *InMemoryReportStore) Get(_ context.Context, id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.reports[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.clone(), nil
}

// GetByCheckoutRef scans for the report carrying ref
func (s *InMemoryReportStore) GetByCheckoutRef(_ context.Context, ref string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *Report
	if ref != "" {
		for _, r := range s.reports {
			if r.CheckoutRef == ref && (found == nil || r.UpdatedAt.After(found.UpdatedAt)) {
				found = r
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: checkout %s", ErrNotFound, ref)
	}
	return found.clone(), nil
}

// MarkPaid sets the paid flag
func (s *InMemoryReportStore) MarkPaid(_ context.Context, id string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.reports[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !r.IsPaid {
		r.IsPaid = true
		r.UpdatedAt = time.Now().UTC()
	}
	return r.clone(), nil
}

// SetCheckoutRef stores the payment reference
func (s *InMemoryReportStore) SetCheckoutRef(_ context.Context, id, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.reports[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.CheckoutRef = ref
	r.UpdatedAt = time.Now().UTC()
	return nil
}
