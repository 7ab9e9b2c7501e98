package utils

import (
	"errors"
	"testing"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Nom     string  `json:"nom" validate:"required"`
	Montant float64 `json:"montant,omitempty" validate:"required,gt=0"`
	Note    string  `validate:"required"`
}

func TestValidatePayload(t *testing.T) {
	assert.NoError(t, ValidatePayload(samplePayload{Nom: "Diop", Montant: 10, Note: "x"}))

	err := ValidatePayload(samplePayload{Montant: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrValidation)

	var validationErr *apierror.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, map[string][]string{
		"nom":     {"required"},
		"montant": {"gt"},
		"Note":    {"required"},
	}, validationErr.Fields)
}
