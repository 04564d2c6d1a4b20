package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/sigrelay/internal/generator"
)

func TestRampChannel_Apply(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
		wantMin int
		wantMax int
	}{
		{
			name:    "both fields",
			payload: `{"Value_min": 5, "Value_max": 50}`,
			wantMin: 5,
			wantMax: 50,
		},
		{
			name:    "min only is rejected",
			payload: `{"Value_min": 5}`,
			wantErr: ErrIncompleteRange,
			wantMin: 0,
			wantMax: 20,
		},
		{
			name:    "max only is rejected",
			payload: `{"Value_max": 99}`,
			wantErr: ErrIncompleteRange,
			wantMin: 0,
			wantMax: 20,
		},
		{
			name:    "inverted range accepted",
			payload: `{"Value_min": 30, "Value_max": 10}`,
			wantMin: 30,
			wantMax: 10,
		},
		{
			name:    "fractional values truncate",
			payload: `{"Value_min": 1.9, "Value_max": 8.2}`,
			wantMin: 1,
			wantMax: 8,
		},
		{
			name:    "unparseable payload",
			payload: `{"Value_min": 5,`,
			wantErr: ErrMalformedControl,
			wantMin: 0,
			wantMax: 20,
		},
		{
			name:    "string value",
			payload: `{"Value_min": "5", "Value_max": 50}`,
			wantErr: ErrMalformedControl,
			wantMin: 0,
			wantMax: 20,
		},
		{
			name:    "null value",
			payload: `{"Value_min": null, "Value_max": 50}`,
			wantErr: ErrMalformedControl,
			wantMin: 0,
			wantMax: 20,
		},
		{
			name:    "unrelated fields",
			payload: `{"Frequency": 2}`,
			wantErr: ErrIncompleteRange,
			wantMin: 0,
			wantMax: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := generator.NewRampParams(0, 20)
			ch := NewRampChannel(params)

			change, err := ch.Apply([]byte(tt.payload))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, change.Empty())
			} else {
				require.NoError(t, err)
				require.NotNil(t, change.Min)
				require.NotNil(t, change.Max)
			}

			assert.Equal(t, tt.wantMin, params.Min())
			assert.Equal(t, tt.wantMax, params.Max())
		})
	}
}

func TestSineChannel_Apply(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
		want    generator.SineSnapshot
	}{
		{
			name:    "frequency only",
			payload: `{"Frequency": 2.5}`,
			want:    generator.SineSnapshot{Frequency: 2.5, Min: 0, Max: 20},
		},
		{
			name:    "range only",
			payload: `{"Value_min": -1.5, "Value_max": 1.5}`,
			want:    generator.SineSnapshot{Frequency: 1, Min: -1.5, Max: 1.5},
		},
		{
			name:    "frequency and range",
			payload: `{"Frequency": 4, "Value_min": 2, "Value_max": 3}`,
			want:    generator.SineSnapshot{Frequency: 4, Min: 2, Max: 3},
		},
		{
			name:    "neither",
			payload: `{"other": true}`,
			want:    generator.SineSnapshot{Frequency: 1, Min: 0, Max: 20},
		},
		{
			name:    "lone min ignored",
			payload: `{"Value_min": 7}`,
			want:    generator.SineSnapshot{Frequency: 1, Min: 0, Max: 20},
		},
		{
			name:    "frequency kept when range malformed",
			payload: `{"Frequency": 3, "Value_min": "x", "Value_max": 1}`,
			wantErr: ErrMalformedControl,
			want:    generator.SineSnapshot{Frequency: 3, Min: 0, Max: 20},
		},
		{
			name:    "malformed frequency stops processing",
			payload: `{"Frequency": "fast", "Value_min": 1, "Value_max": 2}`,
			wantErr: ErrMalformedControl,
			want:    generator.SineSnapshot{Frequency: 1, Min: 0, Max: 20},
		},
		{
			name:    "not an object",
			payload: `[1, 2, 3]`,
			wantErr: ErrMalformedControl,
			want:    generator.SineSnapshot{Frequency: 1, Min: 0, Max: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := generator.NewSineParams(1, 0, 20)
			ch := NewSineChannel(params)

			_, err := ch.Apply([]byte(tt.payload))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, params.Snapshot())
		})
	}
}

func TestSineChannel_ChangeReportsFields(t *testing.T) {
	ch := NewSineChannel(generator.NewSineParams(1, 0, 20))

	change, err := ch.Apply([]byte(`{"Frequency": 2}`))
	require.NoError(t, err)

	require.NotNil(t, change.Frequency)
	assert.Equal(t, 2.0, *change.Frequency)
	assert.Nil(t, change.Min)
	assert.Nil(t, change.Max)
	assert.False(t, change.Empty())
}
