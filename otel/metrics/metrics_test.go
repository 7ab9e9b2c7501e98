package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBeforeInitIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordGatewayCall(context.Background(), "GET", "user", 200, time.Millisecond)
		RecordSessionTransition(context.Background(), "loading", "anonymous")
		RecordEviction(context.Background())
	})
}

func TestInitAndRecord(t *testing.T) {
	require.NoError(t, Init("caisse-test"))

	assert.NotNil(t, gatewayRequestsTotal)
	assert.NotNil(t, gatewayRequestDuration)
	assert.NotPanics(t, func() {
		RecordGatewayCall(context.Background(), "POST", "auth/login", 401, 12*time.Millisecond)
		RecordGatewayCall(context.Background(), "GET", "user", 0, time.Second)
		RecordSessionTransition(context.Background(), "anonymous", "authenticated")
		RecordEviction(context.Background())
	})
}
