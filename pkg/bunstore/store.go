// Package bunstore adapts go-repository-bun repositories to the
// repositorycache.PrimaryStore contract.
package bunstore

import (
	"context"
	"reflect"
	"sort"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cacher/repositorycache"
)

var _ repositorycache.PrimaryStore[any] = (*Store[any])(nil)

// Store serves repositorycache reads and writes from a bun repository.
type Store[T any] struct {
	repo   repository.Repository[T]
	params repositorycache.ConnectionParams
}

// New wraps repo. params are the connection settings reported to the cache
// binding; "name" and "database" are the ones the cache layer reads.
func New[T any](repo repository.Repository[T], params repositorycache.ConnectionParams) *Store[T] {
	return &Store[T]{repo: repo, params: params.Clone()}
}

func (s *Store[T]) ConnectionParams() repositorycache.ConnectionParams {
	return s.params.Clone()
}

// Read lists the records matching q.
func (s *Store[T]) Read(ctx context.Context, q repositorycache.Query) ([]T, error) {
	records, _, err := s.repo.List(ctx, Criteria(q)...)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Write upserts record.
func (s *Store[T]) Write(ctx context.Context, record T) (T, error) {
	return s.repo.Upsert(ctx, record)
}

// Delete loads the record with id and deletes it.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, record)
}

// Criteria translates q into select criteria. Conditions are applied in key
// order: nil values match NULL, slices match with IN, anything else with =.
func Criteria(q repositorycache.Query) []repository.SelectCriteria {
	var criteria []repository.SelectCriteria

	keys := make([]string, 0, len(q.Conditions))
	for k := range q.Conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		criteria = append(criteria, condition(k, q.Conditions[k]))
	}

	if len(q.Fields) > 0 {
		fields := append([]string(nil), q.Fields...)
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Column(fields...)
		})
	}
	if len(q.Order) > 0 {
		order := append([]string(nil), q.Order...)
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order(order...)
		})
	}
	if q.Limit > 0 {
		limit := q.Limit
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Limit(limit)
		})
	}
	if q.Offset > 0 {
		offset := q.Offset
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Offset(offset)
		})
	}

	return criteria
}

func condition(column string, value any) repository.SelectCriteria {
	if value == nil {
		return func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("? IS NULL", bun.Ident(column))
		}
	}

	if v := reflect.ValueOf(value); (v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8) || v.Kind() == reflect.Array {
		return func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("? IN (?)", bun.Ident(column), bun.In(value))
		}
	}

	return func(sq *bun.SelectQuery) *bun.SelectQuery {
		return sq.Where("? = ?", bun.Ident(column), value)
	}
}
