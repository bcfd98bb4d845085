package budget_test

import (
	"testing"

	"github.com/alexarts74/trip-indo/pkg/budget"
	"github.com/alexarts74/trip-indo/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsAndRemaining(t *testing.T) {
	dests := []models.Destination{
		{ID: "d1", Name: "Bali", Price: 500},
		{ID: "d2", Name: "Lombok", Price: 250},
	}
	acts := []models.Activity{
		{ID: "a1", Name: "Surf lesson", Price: 100},
		{ID: "a2", Name: "Temple tour", Price: 50},
	}

	s := budget.Compute(1000, dests, acts)

	assert.True(t, s.BudgetDefined)
	assert.Equal(t, 750.0, s.DestinationTotal)
	assert.Equal(t, 150.0, s.ActivityTotal)
	assert.Equal(t, 900.0, s.Total)
	assert.Equal(t, 100.0, s.Remaining)
	assert.Equal(t, 90.0, s.UsagePercent)
	assert.False(t, s.OverBudget)
	assert.Equal(t, 2, s.DestinationCount)
}

func TestComputeUsageRoundsToOneDecimal(t *testing.T) {
	dests := []models.Destination{{ID: "d1", Name: "Ubud", Price: 333}}

	s := budget.Compute(1000, dests, nil)

	// 333/1000*100 = 33.3
	assert.Equal(t, 33.3, s.UsagePercent)

	s = budget.Compute(900, dests, nil)
	// 333/900*100 = 37.0
	assert.Equal(t, 37.0, s.UsagePercent)
}

func TestComputeOverBudget(t *testing.T) {
	dests := []models.Destination{{ID: "d1", Name: "Gili", Price: 1200}}

	s := budget.Compute(1000, dests, nil)

	assert.Equal(t, -200.0, s.Remaining)
	assert.Equal(t, 120.0, s.UsagePercent)
	assert.True(t, s.OverBudget)
}

func TestComputeZeroBudget(t *testing.T) {
	dests := []models.Destination{{ID: "d1", Name: "Bali", Price: 500}}

	s := budget.Compute(0, dests, nil)

	assert.False(t, s.BudgetDefined)
	assert.Equal(t, 0.0, s.UsagePercent)
	assert.Equal(t, 500.0, s.Total)
	assert.Equal(t, -500.0, s.Remaining)
	// 没设预算就谈不上超支
	assert.False(t, s.OverBudget)
}

func TestComputeFloatSums(t *testing.T) {
	// 0.1+0.2 类的经典浮点坑
	dests := []models.Destination{
		{ID: "d1", Price: 0.1},
		{ID: "d2", Price: 0.2},
	}

	s := budget.Compute(1, dests, nil)

	assert.Equal(t, 0.3, s.Total)
	assert.Equal(t, 0.7, s.Remaining)
	assert.Equal(t, 30.0, s.UsagePercent)
}

func TestTopItemsOrderingAndCap(t *testing.T) {
	dests := []models.Destination{
		{ID: "d1", Name: "A", Price: 200},
		{ID: "d2", Name: "B", Price: 300},
	}
	acts := []models.Activity{
		{ID: "a1", Name: "C", Price: 200},
		{ID: "a2", Name: "D", Price: 50},
		{ID: "a3", Name: "E", Price: 75},
		{ID: "a4", Name: "F", Price: 10},
	}

	s := budget.Compute(0, dests, acts)

	assert.Len(t, s.TopItems, 5)
	assert.Equal(t, "B", s.TopItems[0].Name)
	// 同价200：目的地 A 稳定排在活动 C 前面
	assert.Equal(t, "A", s.TopItems[1].Name)
	assert.Equal(t, "C", s.TopItems[2].Name)
	assert.Equal(t, "E", s.TopItems[3].Name)
	assert.Equal(t, "D", s.TopItems[4].Name)
}

func TestComputeEmptyTrip(t *testing.T) {
	s := budget.Compute(500, nil, nil)

	assert.True(t, s.BudgetDefined)
	assert.Equal(t, 0.0, s.Total)
	assert.Equal(t, 500.0, s.Remaining)
	assert.Equal(t, 0.0, s.UsagePercent)
	assert.Empty(t, s.TopItems)
}
