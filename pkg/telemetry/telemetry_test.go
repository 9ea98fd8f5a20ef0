package telemetry

import (
	"context"
	"testing"

	"github.com/abgdnv/gocommerce-admin/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	// when
	shutdown, err := Setup(context.Background(), "admin", config.TelemetryConfig{})

	// then
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
