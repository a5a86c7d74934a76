package services

import (
	"context"
	"fmt"

	"backoffice-service/internal/repository"
	"backoffice-service/internal/schema"

	"github.com/sirupsen/logrus"
)

// Stage is the point of the record pipeline at which a natural key is checked
type Stage int

const (
	// StageBeforeResolve runs on raw identifiers, before foreign keys are resolved
	StageBeforeResolve Stage = iota
	// StageAfterResolve runs once relation fields hold references
	StageAfterResolve
)

func (s Stage) String() string {
	if s == StageBeforeResolve {
		return "before_resolve"
	}
	return "after_resolve"
}

type keyPart struct {
	field    string // record field
	column   string // column compared in the store
	relation bool   // after resolution the value must be a reference
}

// NaturalKey is the set of fields that identifies an already imported record of one kind
type NaturalKey struct {
	Stage Stage
	parts []keyPart
}

func scalarKey(field string) keyPart {
	return keyPart{field: field, column: field}
}

func relationKey(field string) keyPart {
	return keyPart{field: field, column: field + "_id", relation: true}
}

// DefaultNaturalKeys is the duplicate detection table of the marketplace import
func DefaultNaturalKeys() map[string]NaturalKey {
	return map[string]NaturalKey{
		schema.KindUser: {
			Stage: StageBeforeResolve,
			parts: []keyPart{scalarKey("email")},
		},
		schema.KindProductInfo: {
			Stage: StageBeforeResolve,
			parts: []keyPart{
				scalarKey("external_id"),
				{field: "shop", column: "shop_id"},
				{field: "product", column: "product_id"},
			},
		},
		schema.KindShop: {
			Stage: StageAfterResolve,
			parts: []keyPart{relationKey("user")},
		},
		schema.KindOrderItem: {
			Stage: StageAfterResolve,
			parts: []keyPart{relationKey("order"), relationKey("product_info")},
		},
		schema.KindProductParameter: {
			Stage: StageAfterResolve,
			parts: []keyPart{relationKey("product_info"), relationKey("parameter")},
		},
		schema.KindConfirmEmailToken: {
			Stage: StageAfterResolve,
			parts: []keyPart{scalarKey("key")},
		},
	}
}

// DuplicatePolicy decides whether an incoming record is already stored
type DuplicatePolicy struct {
	store  repository.EntityRepositoryInterface
	keys   map[string]NaturalKey
	logger *logrus.Entry
}

// NewDuplicatePolicy creates a policy using DefaultNaturalKeys
func NewDuplicatePolicy(store repository.EntityRepositoryInterface, logger *logrus.Entry) *DuplicatePolicy {
	return &DuplicatePolicy{
		store:  store,
		keys:   DefaultNaturalKeys(),
		logger: logger,
	}
}

// ShouldSkip reports whether rec duplicates a stored row. Kinds without a
// natural key, checks belonging to the other stage, and records whose key
// is missing or falsy are never skipped.
func (p *DuplicatePolicy) ShouldSkip(ctx context.Context, s *schema.Schema, stage Stage, rec schema.Record) (bool, error) {
	key, ok := p.keys[s.Kind]
	if !ok || key.Stage != stage {
		return false, nil
	}

	conds := make(map[string]any, len(key.parts))
	for _, part := range key.parts {
		value := rec[part.field]
		if !schema.Truthy(value) {
			return false, nil
		}
		if part.relation {
			ref, isRef := value.(schema.Reference)
			if !isRef {
				return false, nil
			}
			conds[part.column] = ref.ID
			continue
		}
		conds[part.column] = schema.Normalize(value)
	}

	exists, err := p.store.Exists(ctx, s, conds)
	if err != nil {
		return false, fmt.Errorf("duplicate check failed: %w", err)
	}
	if exists {
		p.logger.WithFields(logrus.Fields{
			"kind": s.Kind,
			"key":  conds,
		}).Info("Record already exists, skipping")
	}
	return exists, nil
}
