package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentModeRequiresPieceNumber(t *testing.T) {
	assert.True(t, PaymentModeCheque.RequiresPieceNumber())
	assert.True(t, PaymentModeCard.RequiresPieceNumber())
	assert.False(t, PaymentModeCash.RequiresPieceNumber())
	assert.False(t, PaymentModeAll.RequiresPieceNumber())
}

func TestPaymentModeLabel(t *testing.T) {
	assert.Equal(t, "Chèque", PaymentModeCheque.Label())
	assert.Equal(t, "Tous les modes", PaymentMode("").Label())
}

func TestLandingRoute(t *testing.T) {
	assert.Equal(t, SuperAdminRoute, LandingRoute(RoleSuperAdmin))
	assert.Equal(t, AdminRoute, LandingRoute(RoleAdmin))
	assert.Equal(t, DashboardRoute, LandingRoute(RoleCashier))
	assert.Equal(t, DashboardRoute, LandingRoute(RoleClient))
}
