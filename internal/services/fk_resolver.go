package services

import (
	"context"
	"errors"

	"backoffice-service/internal/repository"
	"backoffice-service/internal/schema"

	"github.com/sirupsen/logrus"
)

// ForeignKeyResolver replaces integer ids on relation fields with references to stored rows
type ForeignKeyResolver struct {
	registry *schema.Registry
	store    repository.EntityRepositoryInterface
	logger   *logrus.Entry
}

// NewForeignKeyResolver creates a new resolver
func NewForeignKeyResolver(registry *schema.Registry, store repository.EntityRepositoryInterface, logger *logrus.Entry) *ForeignKeyResolver {
	return &ForeignKeyResolver{
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Resolve returns a copy of rec in which every relation field holding an
// integer id of an existing row is replaced by a schema.Reference. Ids with
// no matching row, and ids whose lookup fails, are left as they are so the
// write reports the broken reference.
func (r *ForeignKeyResolver) Resolve(ctx context.Context, s *schema.Schema, rec schema.Record) schema.Record {
	out := rec.Clone()
	for field, value := range rec {
		rel, ok := s.Relation(field)
		if !ok || value == nil {
			continue
		}
		target, err := r.registry.Lookup(rel.Target)
		if err != nil {
			continue
		}

		if items, isList := value.([]any); rel.Many && isList {
			resolved := make([]any, len(items))
			for i, item := range items {
				resolved[i] = r.resolveOne(ctx, target, item)
			}
			out[field] = resolved
			continue
		}
		out[field] = r.resolveOne(ctx, target, value)
	}
	return out
}

func (r *ForeignKeyResolver) resolveOne(ctx context.Context, target *schema.Schema, value any) any {
	id, ok := schema.AsInt(value)
	if !ok || id <= 0 {
		return value
	}

	row, err := r.store.FindByPK(ctx, target, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"kind": target.Kind,
				"id":   id,
			}).Warn("Foreign key lookup failed, keeping raw id")
		}
		return value
	}
	return schema.Reference{Kind: target.Kind, ID: uint(id), Row: row}
}
