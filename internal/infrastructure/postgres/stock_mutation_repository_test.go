package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

func TestMutationListQuery_OrdenaPorSecuencia(t *testing.T) {
	query, args := mutationListQuery(repository.MutationFilter{ProductID: "p1", Limit: 10})

	assert.Contains(t, query, "ORDER BY seq LIMIT $2 OFFSET $3")
	assert.NotContains(t, query, "ORDER BY created_at")
	require.Len(t, args, 3)
	assert.Equal(t, "p1", args[0])
}

func TestMutationListQuery_Filtros(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	query, args := mutationListQuery(repository.MutationFilter{
		ProductID: "p1", VariantID: "v1", From: &from, To: &to, Offset: 5,
	})

	assert.Contains(t, query, "AND variant_id = $2")
	assert.Contains(t, query, "AND created_at >= $3")
	assert.Contains(t, query, "AND created_at <= $4")
	assert.True(t, strings.HasSuffix(query, "ORDER BY seq LIMIT $5 OFFSET $6"))
	require.Len(t, args, 6)
	assert.Nil(t, args[4], "sin límite")
	assert.Equal(t, 5, args[5])
}
