package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/service"
)

func TestBuildTripInfo_Empty(t *testing.T) {
	got := service.BuildTripInfo(nil)

	assert.Equal(t, domain.TripInfo{}, got)
}

func TestBuildTripInfo_CollapsesRepeatedCities(t *testing.T) {
	ws := []domain.Waypoint{
		wp("1", domain.TypeFlight, "Amsterdam", at(1, 9), 2, 300),
		wp("2", domain.TypeTaxi, "Amsterdam", at(1, 12), 1, 20),
		wp("3", domain.TypeTrain, "Geneva", at(2, 9), 30, 40),
		wp("4", domain.TypeTaxi, "Geneva", at(2, 18), 1, 25),
	}
	ws[1].Offers = []domain.Offer{{Title: "Order Uber", Price: 20, Selected: true}, {Title: "Upgrade", Price: 120}}

	got := service.BuildTripInfo(ws)

	assert.Equal(t, "Amsterdam — Geneva", got.Route)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, at(1, 9), *got.Start)
	// The train ends after the last waypoint starts and ends.
	assert.Equal(t, ws[2].EndTime, *got.End)
	assert.Equal(t, 300+20+20+40+25, got.TotalCost)
}

func TestBuildTripInfo_LongRouteShowsEnds(t *testing.T) {
	ws := []domain.Waypoint{
		wp("1", domain.TypeFlight, "Amsterdam", at(1, 9), 1, 0),
		wp("2", domain.TypeTrain, "Paris", at(2, 9), 1, 0),
		wp("3", domain.TypeTrain, "Geneva", at(3, 9), 1, 0),
		wp("4", domain.TypeDrive, "Chamonix", at(4, 9), 1, 0),
	}

	got := service.BuildTripInfo(ws)

	assert.Equal(t, "Amsterdam — ... — Chamonix", got.Route)
}

func TestBuildTripInfo_ReturnTripKeepsBothEnds(t *testing.T) {
	ws := []domain.Waypoint{
		wp("1", domain.TypeFlight, "Paris", at(1, 9), 1, 0),
		wp("2", domain.TypeTrain, "Geneva", at(2, 9), 1, 0),
		wp("3", domain.TypeTrain, "Paris", at(3, 9), 1, 0),
	}

	got := service.BuildTripInfo(ws)

	assert.Equal(t, "Paris — Geneva — Paris", got.Route)
}

func TestApplyFilter_Empty(t *testing.T) {
	got := service.ApplyFilter(nil, domain.FilterFuture, at(1, 0))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
