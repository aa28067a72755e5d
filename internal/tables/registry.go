// Package tables tracks dining table occupancy. Only the coordinator writes to
// it, so occupancy stays in step with the active orders.
package tables

import (
	"restaurant-system/internal/domain"
)

type Registry struct {
	tables []domain.Table
}

func NewRegistry(tables ...domain.Table) (*Registry, error) {
	r := &Registry{}
	for _, t := range tables {
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(t domain.Table) error {
	if t.ID == "" {
		return domain.Invalid("id", "is required")
	}
	if r.index(t.ID) >= 0 {
		return domain.Invalid("id", "table "+t.ID+" already exists")
	}
	if t.Status == "" {
		t.Status = domain.TableAvailable
	}
	if !t.Status.Valid() {
		return domain.Invalid("status", "unknown table status "+string(t.Status))
	}
	r.tables = append(r.tables, t)
	return nil
}

func (r *Registry) SetStatus(id string, status domain.TableStatus) (domain.Table, error) {
	if !status.Valid() {
		return domain.Table{}, domain.Invalid("status", "unknown table status "+string(status))
	}
	i := r.index(id)
	if i < 0 {
		return domain.Table{}, domain.NotFound("table", id)
	}
	r.tables[i].Status = status
	return r.tables[i], nil
}

func (r *Registry) Get(id string) (domain.Table, bool) {
	i := r.index(id)
	if i < 0 {
		return domain.Table{}, false
	}
	return r.tables[i], true
}

func (r *Registry) List() []domain.Table {
	return append([]domain.Table(nil), r.tables...)
}

// Occupied returns the ids of OCCUPIED tables in registry order.
func (r *Registry) Occupied() []string {
	var ids []string
	for _, t := range r.tables {
		if t.Status == domain.TableOccupied {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (r *Registry) IsOccupied(id string) bool {
	t, ok := r.Get(id)
	return ok && t.Status == domain.TableOccupied
}

func (r *Registry) index(id string) int {
	for i := range r.tables {
		if r.tables[i].ID == id {
			return i
		}
	}
	return -1
}
