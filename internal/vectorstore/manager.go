package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errs"
)

// Manager owns one Index per domain under a common root directory
// (<root>/<domain>/index.db). Open is idempotent: the first caller creates the
// backing storage, later callers get the same handle.
type Manager struct {
	root      string
	dimension int

	mu      sync.Mutex
	indexes map[model.Domain]Index
}

type DomainStats struct {
	Domain model.Domain `json:"domain"`
	Count  int64        `json:"count"`
	Path   string       `json:"path"`
}

type Stats struct {
	Domains   []DomainStats `json:"domains"`
	Total     int64         `json:"total"`
	Dimension int           `json:"dimension"`
	Root      string        `json:"root"`
}

func NewManager(root string, dimension int) *Manager {
	return &Manager{
		root:      root,
		dimension: dimension,
		indexes:   make(map[model.Domain]Index),
	}
}

func (m *Manager) Open(domain model.Domain) (Index, error) {
	if !domain.Valid() {
		return nil, fmt.Errorf("%w: unknown domain %q", errs.ErrInvalid, domain)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.indexes[domain]; ok {
		return idx, nil
	}
	dir := filepath.Join(m.root, string(domain))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("create index dir", err)
	}
	idx, err := OpenSQLite(filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, err
	}
	m.indexes[domain] = idx
	return idx, nil
}

// InitializeAll opens every known domain and reports the index names touched.
// Safe to call repeatedly.
func (m *Manager) InitializeAll(ctx context.Context) ([]string, error) {
	domains := []model.Domain{model.DomainBooks, model.DomainConversations}
	names := make([]string, 0, len(domains))
	for _, domain := range domains {
		if _, err := m.Open(domain); err != nil {
			return nil, fmt.Errorf("initialize %s index: %w", domain, err)
		}
		names = append(names, string(domain))
	}
	logutil.GetLogger(ctx).Info("vector indexes ready",
		zap.Strings("domains", names),
		zap.String("root", m.root),
	)
	return names, nil
}

func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Dimension: m.dimension,
		Root:      m.root,
	}
	for _, domain := range []model.Domain{model.DomainBooks, model.DomainConversations} {
		idx, err := m.Open(domain)
		if err != nil {
			return nil, err
		}
		count, err := idx.Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.Domains = append(stats.Domains, DomainStats{
			Domain: domain,
			Count:  count,
			Path:   idx.Path(),
		})
		stats.Total += count
	}
	return stats, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for domain, idx := range m.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.indexes, domain)
	}
	return firstErr
}
