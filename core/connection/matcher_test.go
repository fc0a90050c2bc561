package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutewatch/core/model"
)

func TestMatch_PairsEachTrain(t *testing.T) {
	res := Match([]int{2, 20}, []int{10, 35}, 5)
	require.True(t, res.Found())
	assert.Equal(t, []model.Connection{
		{TrainTime: 2, BusTime: 10, Wait: 3, TotalJourney: 8},
		{TrainTime: 20, BusTime: 35, Wait: 10, TotalJourney: 15},
	}, res.Candidates)
	assert.Equal(t, 2, res.Optimal.TrainTime)
	assert.Equal(t, 8, res.Optimal.TotalJourney)
	assert.True(t, res.IsOptimal(res.Candidates[0]))
	assert.False(t, res.IsOptimal(res.Candidates[1]))
}

func TestMatch_NoReachableBus(t *testing.T) {
	res := Match([]int{10, 20}, []int{5, 12, 24}, 5)
	assert.False(t, res.Found())
	assert.Empty(t, res.Candidates)
	assert.False(t, res.IsOptimal(model.Connection{}))
}

func TestMatch_EmptyInputs(t *testing.T) {
	assert.False(t, Match(nil, []int{1}, 0).Found())
	assert.False(t, Match([]int{1}, nil, 0).Found())
}

func TestMatch_BoundaryWaitZero(t *testing.T) {
	res := Match([]int{5}, []int{35}, 30)
	require.True(t, res.Found())
	assert.Equal(t, 0, res.Optimal.Wait)
}

func TestMatch_TieOnJourneyKeepsEarliestTrain(t *testing.T) {
	// both trains reach a bus 10 minutes after departing
	res := Match([]int{3, 13}, []int{13, 23}, 5)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 3, res.Optimal.TrainTime)
}

func TestMatch_SharedBus(t *testing.T) {
	res := Match([]int{1, 4}, []int{40}, 30)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 4, res.Optimal.TrainTime)
	assert.Equal(t, 36, res.Optimal.TotalJourney)
}

func TestMatch_UnsortedBusesStillMinimiseWait(t *testing.T) {
	res := Match([]int{0}, []int{50, 31, 40}, 30)
	require.True(t, res.Found())
	assert.Equal(t, 31, res.Optimal.BusTime)
	assert.Equal(t, 1, res.Optimal.Wait)
}

func TestMatch_NeverNegativeWait(t *testing.T) {
	trains := []int{-3, 0, 4, 9, 15, 22, 40}
	buses := []int{-1, 6, 18, 33, 47, 61}
	for transfer := 0; transfer <= 35; transfer += 5 {
		for _, c := range Match(trains, buses, transfer).Candidates {
			assert.GreaterOrEqual(t, c.Wait, 0, "transfer=%d conn=%#v", transfer, c)
			assert.Equal(t, c.BusTime-c.TrainTime, c.TotalJourney)
		}
	}
}
