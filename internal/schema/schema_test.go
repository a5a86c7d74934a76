package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"backoffice-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, raw string) Record {
	t.Helper()
	rec, err := ParseRecord(json.RawMessage(raw))
	require.NoError(t, err)
	return rec
}

func TestRegistry_LookupIgnoresCase(t *testing.T) {
	reg := Marketplace()

	for _, kind := range []string{"ProductInfo", "productinfo", "PRODUCTINFO", " ProductInfo "} {
		s, err := reg.Lookup(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, KindProductInfo, s.Kind)
	}
}

func TestRegistry_LookupUnknownKind(t *testing.T) {
	_, err := Marketplace().Lookup("Warehouse")

	assert.True(t, errors.Is(err, ErrKindNotFound))
	assert.Contains(t, err.Error(), "Warehouse")
}

func TestRegistry_Kinds(t *testing.T) {
	kinds := Marketplace().Kinds()

	assert.Len(t, kinds, 11)
	assert.Contains(t, kinds, KindConfirmEmailToken)
}

func TestBuild_UserAppliesDefaults(t *testing.T) {
	s, err := Marketplace().Lookup(KindUser)
	require.NoError(t, err)

	entity, err := s.Build(mustRecord(t, `{"email":"a@x.com","password":"secret"}`))
	require.NoError(t, err)

	user, ok := entity.(*models.User)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, models.UserTypeBuyer, user.Type)
	assert.True(t, user.IsActive)
}

func TestBuild_ResolvedReferenceWritesColumn(t *testing.T) {
	s, err := Marketplace().Lookup(KindShop)
	require.NoError(t, err)

	rec := mustRecord(t, `{"name":"Svyaznoy"}`)
	rec["user"] = Reference{Kind: KindUser, ID: 7, Row: &models.User{ID: 7}}

	entity, err := s.Build(rec)
	require.NoError(t, err)

	shop := entity.(*models.Shop)
	require.NotNil(t, shop.UserID)
	assert.Equal(t, uint(7), *shop.UserID)
	assert.True(t, shop.State)
}

func TestBuild_RawIntegerPassesThrough(t *testing.T) {
	s, err := Marketplace().Lookup(KindProduct)
	require.NoError(t, err)

	entity, err := s.Build(mustRecord(t, `{"name":"Phone","category":404}`))
	require.NoError(t, err)

	assert.Equal(t, uint(404), entity.(*models.Product).CategoryID)
}

func TestBuild_ColumnAlias(t *testing.T) {
	s, err := Marketplace().Lookup(KindOrderItem)
	require.NoError(t, err)

	entity, err := s.Build(mustRecord(t, `{"order_id":3,"product_info_id":4,"quantity":2}`))
	require.NoError(t, err)

	item := entity.(*models.OrderItem)
	assert.Equal(t, uint(3), item.OrderID)
	assert.Equal(t, uint(4), item.ProductInfoID)
	assert.Equal(t, uint(2), item.Quantity)
}

func TestBuild_UnknownField(t *testing.T) {
	s, err := Marketplace().Lookup(KindParameter)
	require.NoError(t, err)

	_, err = s.Build(mustRecord(t, `{"name":"Color","colour":"red"}`))

	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestBuild_ManyToMany(t *testing.T) {
	s, err := Marketplace().Lookup(KindCategory)
	require.NoError(t, err)

	rec := mustRecord(t, `{"name":"Phones"}`)
	rec["shops"] = []any{
		Reference{Kind: KindShop, ID: 1, Row: &models.Shop{ID: 1, Name: "A"}},
		Reference{Kind: KindShop, ID: 2, Row: &models.Shop{ID: 2, Name: "B"}},
	}

	entity, err := s.Build(rec)
	require.NoError(t, err)

	category := entity.(*models.Category)
	require.Len(t, category.Shops, 2)
	assert.Equal(t, uint(2), category.Shops[1].ID)
}

func TestBuild_ManyToManyUnresolved(t *testing.T) {
	s, err := Marketplace().Lookup(KindCategory)
	require.NoError(t, err)

	rec := mustRecord(t, `{"name":"Phones","shops":[99]}`)

	_, err = s.Build(rec)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
}

func TestBuild_InvalidValue(t *testing.T) {
	s, err := Marketplace().Lookup(KindProductInfo)
	require.NoError(t, err)

	_, err = s.Build(mustRecord(t, `{"external_id":-1,"product":1,"shop":1}`))

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid ProductInfo"))
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"json integer", json.Number("42"), 42, true},
		{"json decimal", json.Number("1.0"), 0, false},
		{"json exponent", json.Number("1e3"), 0, false},
		{"native int", 5, 5, true},
		{"string", "5", 0, false},
		{"reference", Reference{ID: 5}, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(json.Number("0")))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(Reference{}))
	assert.False(t, Truthy([]any{}))
	assert.False(t, Truthy(uint(0)))

	assert.True(t, Truthy("a@x.com"))
	assert.True(t, Truthy(json.Number("3")))
	assert.True(t, Truthy(Reference{ID: 3}))
	assert.True(t, Truthy(int64(-1)))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, int64(3), Normalize(json.Number("3")))
	assert.Equal(t, 2.5, Normalize(json.Number("2.5")))
	assert.Equal(t, uint(9), Normalize(Reference{ID: 9}))
	assert.Equal(t, "x", Normalize("x"))
}

func TestRecord_StringRendersReferences(t *testing.T) {
	rec := Record{"user": Reference{Kind: KindUser, ID: 2}, "name": "A"}

	assert.Equal(t, `{"name":"A","user":"User(2)"}`, rec.String())
}

func TestParseRecord_RejectsNonObject(t *testing.T) {
	_, err := ParseRecord(json.RawMessage(`[1,2]`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "array")
}
