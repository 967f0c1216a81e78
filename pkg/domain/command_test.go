package domain_test

import (
	"testing"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Outcomes(t *testing.T) {
	r := domain.NewRobot(domain.DefaultGrid())

	steps := []struct {
		cmd     domain.Command
		outcome domain.Outcome
		changed bool
	}{
		{domain.Command{Type: domain.CommandMove}, domain.OutcomeUnplaced, false},
		{domain.Command{Type: domain.CommandLeft}, domain.OutcomeUnplaced, false},
		{domain.Command{Type: domain.CommandReport}, domain.OutcomeUnplaced, false},
		{domain.PlaceCommand(5, 5, domain.North), domain.OutcomeRejected, false},
		{domain.PlaceCommand(0, 0, domain.North), domain.OutcomeSuccess, true},
		{domain.Command{Type: domain.CommandMove}, domain.OutcomeMoved, true},
		{domain.Command{Type: domain.CommandLeft}, domain.OutcomeSuccess, true},
		{domain.Command{Type: domain.CommandMove}, domain.OutcomeIgnored, false},
		{domain.Command{Type: domain.CommandRight}, domain.OutcomeSuccess, true},
		{domain.Command{Type: domain.CommandReport}, domain.OutcomeSuccess, false},
		{domain.Command{Type: "JUMP"}, domain.OutcomeUnknown, false},
	}

	for i, step := range steps {
		res := r.Apply(step.cmd)
		assert.Equal(t, step.cmd.Type, res.Command, "step %d", i)
		assert.Equal(t, step.outcome, res.Outcome, "step %d", i)
		assert.Equal(t, step.changed, res.Changed(), "step %d", i)
	}

	pose, ok := r.Report()
	require.True(t, ok)
	assert.Equal(t, "0,1,NORTH", pose.String())
}

func TestApply_ResultCarriesPose(t *testing.T) {
	r := domain.NewRobot(domain.DefaultGrid())

	res := r.Apply(domain.Command{Type: domain.CommandReport})
	assert.Nil(t, res.Pose)

	res = r.Apply(domain.PlaceCommand(3, 1, domain.West))
	require.NotNil(t, res.Pose)
	assert.Equal(t, domain.Pose{Position: domain.Position{X: 3, Y: 1}, Facing: domain.West}, *res.Pose)

	res = r.Apply(domain.Command{Type: domain.CommandMove})
	require.NotNil(t, res.Pose)
	assert.Equal(t, domain.Position{X: 2, Y: 1}, res.Pose.Position)

	// Result pose is a copy, not a handle into the robot.
	res.Pose.Position.X = 99
	pose, _ := r.Report()
	assert.Equal(t, 2, pose.Position.X)
}
