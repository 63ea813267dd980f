package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordRepo_GetOrCreate_CreatesOnce(t *testing.T) {
	db := setupTestDB(t)
	domains := NewDomainRepo(db)
	repo := NewKeywordRepo(db)
	ctx := context.Background()

	domainID, err := domains.Add(ctx, makeDomain(1, "example.com", "sc-domain:example.com"))
	require.NoError(t, err)

	first, err := repo.GetOrCreate(ctx, domainID, 1, "best coffee grinder")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.GetOrCreate(ctx, domainID, 1, "best coffee grinder")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "repeat discovery must resolve to the same keyword")

	keywords, err := repo.ListByDomain(ctx, domainID)
	require.NoError(t, err)
	assert.Len(t, keywords, 1)
}

func TestKeywordRepo_GetOrCreate_ScopedToDomain(t *testing.T) {
	db := setupTestDB(t)
	domains := NewDomainRepo(db)
	repo := NewKeywordRepo(db)
	ctx := context.Background()

	domainA, err := domains.Add(ctx, makeDomain(1, "a.com", ""))
	require.NoError(t, err)
	domainB, err := domains.Add(ctx, makeDomain(1, "b.com", ""))
	require.NoError(t, err)

	kwA, err := repo.GetOrCreate(ctx, domainA, 1, "espresso")
	require.NoError(t, err)
	kwB, err := repo.GetOrCreate(ctx, domainB, 1, "espresso")
	require.NoError(t, err)

	assert.NotEqual(t, kwA.ID, kwB.ID, "same text under different domains is a different keyword")
}

func TestKeywordRepo_ListByDomain_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKeywordRepo(db)

	keywords, err := repo.ListByDomain(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, keywords)
}
