package money

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
		err  error
	}{
		{"1000", 100000, nil},
		{"12.5", 1250, nil},
		{"0.01", 1, nil},
		{" 7.10 ", 710, nil},
		{"-3", -300, nil},
		{"0", 0, nil},
		{"1.005", 0, ErrPrecision},
		{"abc", 0, ErrNotANumber},
		{"", 0, ErrMissing},
		{"10000000000000", 0, ErrOutOfRange},
		{"9999999999999.99", 999999999999999, nil},
		{"1e2", 10000, nil},
		{"1.50e1", 1500, nil},
		{"1500e-2", 1500, nil},
		{"150000e-4", 1500, nil},
		{"15e-4", 0, ErrPrecision},
		{"0e-2000000000", 0, nil},
		{"1e14", 0, ErrOutOfRange},
		{"1e2000000000", 0, ErrOutOfRange},
		{"-1e2000000000", 0, ErrOutOfRange},
		{"1e-2000000000", 0, ErrPrecision},
		{"123456789e-2000000000", 0, ErrPrecision},
		{"1" + strings.Repeat("0", 70), 0, ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_ExtremeExponentsAreCheap(t *testing.T) {
	inputs := []string{"1e2000000000", "1e-2000000000", "-9e2147483647", "7e-2147483648"}

	start := time.Now()
	for _, in := range inputs {
		_, err := Parse(in)
		require.Error(t, err, in)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestFromJSON(t *testing.T) {
	got, err := FromJSON(json.RawMessage(`50`))
	require.NoError(t, err)
	assert.Equal(t, Cents(5000), got)

	got, err = FromJSON(json.RawMessage(`"19.99"`))
	require.NoError(t, err)
	assert.Equal(t, Cents(1999), got)

	_, err = FromJSON(nil)
	assert.ErrorIs(t, err, ErrMissing)

	_, err = FromJSON(json.RawMessage(`null`))
	assert.ErrorIs(t, err, ErrMissing)

	_, err = FromJSON(json.RawMessage(`true`))
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = FromJSON(json.RawMessage(`{"a":1}`))
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestMarshalAsNumber(t *testing.T) {
	out, err := json.Marshal(map[string]Cents{"budget": 95000, "debt": -125})
	require.NoError(t, err)
	assert.JSONEq(t, `{"budget": 950.00, "debt": -1.25}`, string(out))

	var back struct {
		Budget Cents `json:"budget"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"budget": 950.00}`), &back))
	assert.Equal(t, Cents(95000), back.Budget)
}

func TestRepeatedFractionalAddsAreExact(t *testing.T) {
	var total Cents
	step, err := Parse("0.1")
	require.NoError(t, err)

	for range 1000 {
		total += step
	}
	assert.Equal(t, "100.00", total.String())
}
