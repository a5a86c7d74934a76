package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"backoffice-service/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDuplicatePolicy_UncoveredKindsNeverSkip(t *testing.T) {
	store := &MockEntityRepository{}
	policy := NewDuplicatePolicy(store, testLogger())
	ctx := context.Background()

	for _, kind := range []string{schema.KindCategory, schema.KindProduct, schema.KindParameter, schema.KindContact, schema.KindOrder} {
		for _, stage := range []Stage{StageBeforeResolve, StageAfterResolve} {
			skip, err := policy.ShouldSkip(ctx, kindSchema(kind), stage, schema.Record{"name": "x"})
			require.NoError(t, err)
			assert.False(t, skip)
		}
	}
	store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestDuplicatePolicy_UserByEmailBeforeResolve(t *testing.T) {
	store := &MockEntityRepository{}
	store.On("Exists", mock.Anything, isKind(schema.KindUser), map[string]any{"email": "a@x.com"}).Return(true, nil)
	policy := NewDuplicatePolicy(store, testLogger())
	rec := schema.Record{"email": "a@x.com"}

	skip, err := policy.ShouldSkip(context.Background(), kindSchema(schema.KindUser), StageAfterResolve, rec)
	require.NoError(t, err)
	assert.False(t, skip, "User is only checked before resolution")

	skip, err = policy.ShouldSkip(context.Background(), kindSchema(schema.KindUser), StageBeforeResolve, rec)
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestDuplicatePolicy_MissingOrFalsyKeyIsInapplicable(t *testing.T) {
	store := &MockEntityRepository{}
	policy := NewDuplicatePolicy(store, testLogger())
	ctx := context.Background()

	tests := []struct {
		kind  string
		stage Stage
		rec   schema.Record
	}{
		{schema.KindUser, StageBeforeResolve, schema.Record{}},
		{schema.KindUser, StageBeforeResolve, schema.Record{"email": ""}},
		{schema.KindProductInfo, StageBeforeResolve, schema.Record{"external_id": json.Number("0"), "shop": json.Number("1"), "product": json.Number("1")}},
		{schema.KindProductInfo, StageBeforeResolve, schema.Record{"external_id": json.Number("5"), "shop": json.Number("1")}},
		{schema.KindShop, StageAfterResolve, schema.Record{"user": nil}},
		{schema.KindShop, StageAfterResolve, schema.Record{"user": json.Number("404")}},
		{schema.KindOrderItem, StageAfterResolve, schema.Record{"order": schema.Reference{Kind: schema.KindOrder, ID: 1}}},
		{schema.KindConfirmEmailToken, StageAfterResolve, schema.Record{"user": schema.Reference{ID: 1}}},
	}

	for _, tt := range tests {
		skip, err := policy.ShouldSkip(ctx, kindSchema(tt.kind), tt.stage, tt.rec)
		require.NoError(t, err)
		assert.False(t, skip, "%s %v", tt.kind, tt.rec)
	}
	store.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestDuplicatePolicy_ProductInfoUsesRawIDs(t *testing.T) {
	store := &MockEntityRepository{}
	store.On("Exists", mock.Anything, isKind(schema.KindProductInfo), map[string]any{
		"external_id": int64(4216292),
		"shop_id":     int64(1),
		"product_id":  int64(2),
	}).Return(true, nil)
	policy := NewDuplicatePolicy(store, testLogger())

	skip, err := policy.ShouldSkip(context.Background(), kindSchema(schema.KindProductInfo), StageBeforeResolve, schema.Record{
		"external_id": json.Number("4216292"),
		"shop":        json.Number("1"),
		"product":     json.Number("2"),
		"price":       json.Number("100"),
	})

	require.NoError(t, err)
	assert.True(t, skip)
	store.AssertExpectations(t)
}

func TestDuplicatePolicy_ResolvedReferences(t *testing.T) {
	store := &MockEntityRepository{}
	store.On("Exists", mock.Anything, isKind(schema.KindOrderItem), map[string]any{
		"order_id":        uint(3),
		"product_info_id": uint(4),
	}).Return(false, nil)
	store.On("Exists", mock.Anything, isKind(schema.KindShop), map[string]any{"user_id": uint(7)}).Return(true, nil)
	policy := NewDuplicatePolicy(store, testLogger())
	ctx := context.Background()

	skip, err := policy.ShouldSkip(ctx, kindSchema(schema.KindOrderItem), StageAfterResolve, schema.Record{
		"order":        schema.Reference{Kind: schema.KindOrder, ID: 3},
		"product_info": schema.Reference{Kind: schema.KindProductInfo, ID: 4},
	})
	require.NoError(t, err)
	assert.False(t, skip)

	skip, err = policy.ShouldSkip(ctx, kindSchema(schema.KindShop), StageAfterResolve, schema.Record{
		"user": schema.Reference{Kind: schema.KindUser, ID: 7},
	})
	require.NoError(t, err)
	assert.True(t, skip)
	store.AssertExpectations(t)
}

func TestDuplicatePolicy_StoreError(t *testing.T) {
	store := &MockEntityRepository{}
	store.On("Exists", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("db down"))
	policy := NewDuplicatePolicy(store, testLogger())

	_, err := policy.ShouldSkip(context.Background(), kindSchema(schema.KindConfirmEmailToken), StageAfterResolve, schema.Record{"key": "abc"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
