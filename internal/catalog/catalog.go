// Package catalog provides the built-in destination and offer reference data
// and seeds it into a catalog store on first start.
package catalog

import (
	"context"
	"fmt"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/repo"
)

// Default returns the built-in catalog used when no database is configured.
func Default() domain.Catalog {
	return domain.NewCatalog(defaultDestinations(), defaultOffers())
}

// Ensure loads the catalog from r and seeds the built-in data when the store
// holds no destinations yet. The seed is written atomically, so a failed
// first start is retried in full on the next one.
func Ensure(ctx context.Context, r repo.CatalogRepo) (domain.Catalog, error) {
	cat, err := r.Load(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog.Ensure: %w", err)
	}
	if len(cat.DestinationNames()) > 0 {
		return cat, nil
	}

	if err := r.Seed(ctx, defaultDestinations(), defaultOffers()); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog.Ensure: %w", err)
	}

	cat, err = r.Load(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog.Ensure: reload: %w", err)
	}
	return cat, nil
}

func defaultDestinations() []domain.Destination {
	return []domain.Destination{
		{
			Name:        "Amsterdam",
			Description: "Amsterdam is the capital of the Netherlands, known for its canals, narrow houses and museums.",
			Photos: []domain.Photo{
				{Src: "img/photos/amsterdam-1.jpg", Caption: "Canal houses"},
				{Src: "img/photos/amsterdam-2.jpg", Caption: "Rijksmuseum"},
			},
		},
		{
			Name:        "Chamonix",
			Description: "Chamonix is a resort at the foot of Mont Blanc, a classic base for skiing and mountaineering.",
			Photos: []domain.Photo{
				{Src: "img/photos/chamonix-1.jpg", Caption: "Aiguille du Midi"},
			},
		},
		{
			Name:        "Geneva",
			Description: "Geneva is a city on Lake Geneva, surrounded by the Alps and the Jura mountains.",
			Photos: []domain.Photo{
				{Src: "img/photos/geneva-1.jpg", Caption: "Jet d'Eau"},
				{Src: "img/photos/geneva-2.jpg", Caption: "Old town"},
			},
		},
		{
			Name:        "Paris",
			Description: "Paris is the capital of France, a centre of art, fashion and gastronomy.",
			Photos: []domain.Photo{
				{Src: "img/photos/paris-1.jpg", Caption: "Eiffel Tower"},
			},
		},
		{
			Name:        "Saint Petersburg",
			Description: "Saint Petersburg is a port city on the Baltic Sea famous for its palaces and white nights.",
			Photos: []domain.Photo{
				{Src: "img/photos/spb-1.jpg", Caption: "Hermitage"},
			},
		},
	}
}

func defaultOffers() map[domain.WaypointType][]domain.OfferTemplate {
	return map[domain.WaypointType][]domain.OfferTemplate{
		domain.TypeTaxi: {
			{Title: "Order Uber", Price: 20},
			{Title: "Upgrade to a business class", Price: 120},
		},
		domain.TypeBus: {
			{Title: "Choose seats", Price: 5},
		},
		domain.TypeTrain: {
			{Title: "Travel by train", Price: 40},
			{Title: "Add meal", Price: 15},
		},
		domain.TypeFlight: {
			{Title: "Add luggage", Price: 30},
			{Title: "Switch to comfort class", Price: 100},
			{Title: "Add meal", Price: 15},
			{Title: "Choose seats", Price: 5},
		},
		domain.TypeDrive: {
			{Title: "Rent a car", Price: 200},
		},
		domain.TypeCheckIn: {
			{Title: "Add breakfast", Price: 50},
		},
		domain.TypeSightseeing: {
			{Title: "Book tickets", Price: 40},
			{Title: "Lunch in city", Price: 30},
		},
		domain.TypeShip:       {},
		domain.TypeTransport:  {},
		domain.TypeRestaurant: {},
	}
}
