package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceFloorPolicy = "price >= 100000000u"

func TestPriceFloor(t *testing.T) {
	pol, err := Compile(priceFloorPolicy)
	require.NoError(t, err)

	tests := []struct {
		name    string
		price   uint64
		allowed bool
	}{
		{"zero", 0, false},
		{"below floor", 50_000_000, false}, // 0.05 SUI
		{"one below floor", 99_999_999, false},
		{"exact floor", 100_000_000, true}, // 0.1 SUI
		{"above floor", 500_000_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := pol.Allows(Listing{Price: tt.price, Name: "pass"})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestCompileRejectsInvalidExpression(t *testing.T) {
	_, err := Compile("price >=")
	assert.Error(t, err)
}

func TestAllowsRejectsNonBooleanExpression(t *testing.T) {
	pol, err := Compile("price + 1u")
	require.NoError(t, err)

	_, err = pol.Allows(Listing{Price: 1})
	assert.Error(t, err)
}

func TestPolicyCanReferenceNameAndDescription(t *testing.T) {
	pol, err := Compile(`name != "" && description.size() < 100`)
	require.NoError(t, err)

	allowed, err := pol.Allows(Listing{Price: 1, Name: "pass", Description: "short"})
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = pol.Allows(Listing{Price: 1, Name: ""})
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestExpression(t *testing.T) {
	pol, err := Compile(priceFloorPolicy)
	require.NoError(t, err)
	assert.Equal(t, priceFloorPolicy, pol.Expression())
}
