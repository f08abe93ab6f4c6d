package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipleRange_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    MultipleRange
		wantErr string
	}{
		{"object", `{"low": 8.5, "high": 12}`, MultipleRange{Low: 8.5, High: 12}, ""},
		{"array", `[8.5, 12]`, MultipleRange{Low: 8.5, High: 12}, ""},
		{"array with padding", " [ 1, 2 ] ", MultipleRange{Low: 1, High: 2}, ""},
		{"array too short", `[8.5]`, MultipleRange{}, "needs [low, high]"},
		{"array too long", `[1, 2, 3]`, MultipleRange{}, "got 3 values"},
		{"array of strings", `["a", "b"]`, MultipleRange{}, "decode multiple range array"},
		{"wrong type", `"8-12"`, MultipleRange{}, "decode multiple range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var r MultipleRange
			err := json.Unmarshal([]byte(tt.in), &r)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestPrecedentData_RangeShapes(t *testing.T) {
	t.Parallel()

	raw := `{
		"deals": [{"name": "Alpha / Beta", "ev_ebitda": 10.2}],
		"ev_ebitda_range": [8, 14],
		"ev_revenue_range": {"low": 1.5, "high": 3}
	}`
	var pd PrecedentData
	require.NoError(t, json.Unmarshal([]byte(raw), &pd))

	require.NotNil(t, pd.EVEBITDARange)
	assert.Equal(t, MultipleRange{Low: 8, High: 14}, *pd.EVEBITDARange)
	require.NotNil(t, pd.EVRevenueRange)
	assert.Equal(t, MultipleRange{Low: 1.5, High: 3}, *pd.EVRevenueRange)

	var absent PrecedentData
	require.NoError(t, json.Unmarshal([]byte(`{"deals": [], "ev_ebitda_range": null}`), &absent))
	assert.Nil(t, absent.EVEBITDARange)

	out, err := json.Marshal(pd.EVEBITDARange)
	require.NoError(t, err)
	assert.JSONEq(t, `{"low": 8, "high": 14}`, string(out))
}
