package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_Vectors(t *testing.T) {
	assert.Equal(t, domain.Position{X: 0, Y: 1}, domain.North.Vector())
	assert.Equal(t, domain.Position{X: 1, Y: 0}, domain.East.Vector())
	assert.Equal(t, domain.Position{X: 0, Y: -1}, domain.South.Vector())
	assert.Equal(t, domain.Position{X: -1, Y: 0}, domain.West.Vector())
	assert.Equal(t, domain.Position{}, domain.Direction(9).Vector())
}

func TestDirection_Order(t *testing.T) {
	assert.Equal(t,
		[]domain.Direction{domain.North, domain.East, domain.South, domain.West},
		domain.Directions(),
	)

	assert.Equal(t, domain.East, domain.North.Right())
	assert.Equal(t, domain.North, domain.West.Right())
	assert.Equal(t, domain.West, domain.North.Left())
	assert.Equal(t, domain.South, domain.West.Left())
}

func TestDirections_ReturnsCopy(t *testing.T) {
	dirs := domain.Directions()
	dirs[0] = domain.West
	assert.Equal(t, domain.North, domain.Directions()[0])
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Direction
	}{
		{"NORTH", domain.North},
		{"east", domain.East},
		{" South ", domain.South},
		{"wEsT", domain.West},
	}
	for _, tt := range tests {
		got, err := domain.ParseDirection(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "up", "NORTHEAST", "N"} {
		_, err := domain.ParseDirection(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidDirection, bad)
	}
}

func TestDirection_Text(t *testing.T) {
	data, err := json.Marshal(struct {
		F domain.Direction `json:"f"`
	}{domain.South})
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":"SOUTH"}`, string(data))

	var decoded struct {
		F domain.Direction `json:"f"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"f":"west"}`), &decoded))
	assert.Equal(t, domain.West, decoded.F)

	err = json.Unmarshal([]byte(`{"f":"sideways"}`), &decoded)
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)

	_, err = domain.Direction(-1).MarshalText()
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)
	assert.Equal(t, "Direction(-1)", domain.Direction(-1).String())
}
