package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abgdnv/gocommerce-admin/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductDeletedEvent(t *testing.T) {
	// given
	deletedAt := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	event := ProductDeletedEvent{ProductID: "p1", OperatorID: "admin-1", DeletedAt: deletedAt}

	// when
	payload, err := event.Payload()

	// then
	require.NoError(t, err)
	assert.Equal(t, messaging.ProductsDeletedSubject, event.Subject())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "p1", decoded["product_id"])
	assert.Equal(t, "admin-1", decoded["operator_id"])
	assert.Equal(t, "2025-07-01T12:00:00Z", decoded["deleted_at"])
}
