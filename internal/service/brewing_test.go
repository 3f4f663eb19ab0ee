package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodsCatalog(t *testing.T) {
	svc := NewBrewingService()

	methods := svc.Methods()
	require.Len(t, methods, 4)

	ids := make([]string, len(methods))
	for i, m := range methods {
		ids[i] = m.ID
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Steps)
	}
	assert.Equal(t, []string{"chemex", "v60", "french-press", "aeropress"}, ids)
}

func TestMethodLookup(t *testing.T) {
	svc := NewBrewingService()

	method, err := svc.Method("v60")
	require.NoError(t, err)
	assert.Equal(t, "V60", method.Name)
	assert.Equal(t, 150, method.TotalSeconds)

	_, err = svc.Method("percolator")
	assert.Error(t, err)
}

func TestDoseScaling(t *testing.T) {
	svc := NewBrewingService()

	dose, err := svc.Dose("chemex", 1)
	require.NoError(t, err)
	assert.Equal(t, 15, dose.CoffeeGrams)
	assert.Equal(t, 250, dose.WaterMilliliters)
	assert.Equal(t, "1:16.7", dose.Ratio)

	dose, err = svc.Dose("chemex", 3)
	require.NoError(t, err)
	assert.Equal(t, 45, dose.CoffeeGrams)
	assert.Equal(t, 750, dose.WaterMilliliters)
	assert.Equal(t, "1:16.7", dose.Ratio, "ratio is serving-independent")

	_, err = svc.Dose("chemex", 0)
	assert.Error(t, err)
	_, err = svc.Dose("chemex", -2)
	assert.Error(t, err)
}

func TestScheduleOffsetsAreCumulative(t *testing.T) {
	svc := NewBrewingService()

	schedule, err := svc.Schedule("v60")
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, 0, schedule[0].StartOffset)
	assert.Equal(t, 30, schedule[1].StartOffset)
	assert.Equal(t, 90, schedule[2].StartOffset)

	_, err = svc.Schedule("percolator")
	assert.Error(t, err)
}
