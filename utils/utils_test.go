package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromBearerHeader(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{"bearer", "Bearer T1", "T1"},
		{"lowercase scheme", "bearer T1", "T1"},
		{"empty", "", ""},
		{"basic scheme", "Basic dXNlcg==", ""},
		{"scheme only", "Bearer", ""},
		{"sanctum token", "Bearer 12|abcDEF", "12|abcDEF"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TokenFromBearerHeader(tc.header))
		})
	}
}

func TestBearerHeader(t *testing.T) {
	assert.Equal(t, "Bearer T1", BearerHeader("T1"))
}

func TestFormatXOF(t *testing.T) {
	assert.Equal(t, "0 F CFA", FormatXOF(0))
	assert.Equal(t, "950 F CFA", FormatXOF(950))
	assert.Equal(t, "15 000 F CFA", FormatXOF(15000))
	assert.Equal(t, "1 250 000 F CFA", FormatXOF(1249999.6))
	assert.Equal(t, "-2 500 F CFA", FormatXOF(-2500))
	assert.NotContains(t, FormatXOF(1234567), "\u00a0")
	assert.NotContains(t, FormatXOF(1234567), "\u202f")
}

func TestReportDate(t *testing.T) {
	day := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-07", ReportDate(day))

	parsed, err := ParseReportDate("2024-03-07")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())

	month, year := MonthYear(day)
	assert.Equal(t, 3, month)
	assert.Equal(t, 2024, year)
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("DIALLO", "dia"))
	assert.False(t, ContainsFold("Ndiaye", "fall"))
}

func TestStructRoundTrip(t *testing.T) {
	type pair struct {
		Token string `json:"token"`
	}
	data, err := StructToBytes(pair{Token: "T1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"T1"}`, string(data))
}
