package domain

// Destination is a known city with its description and pictures.
type Destination struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Photos      []Photo `json:"photos"`
}

// OfferTemplate is an offer available for a waypoint type.
type OfferTemplate struct {
	Title string `json:"title"`
	Price int    `json:"price"`
}

// Catalog holds the read-only reference data consulted while editing.
// Destinations keep their load order; lookups are exact and case-sensitive.
type Catalog struct {
	destinations []Destination
	byName       map[string]int
	offers       map[WaypointType][]OfferTemplate
}

// NewCatalog builds a Catalog. Later destinations with a duplicate name are ignored.
func NewCatalog(destinations []Destination, offers map[WaypointType][]OfferTemplate) Catalog {
	c := Catalog{
		byName: make(map[string]int, len(destinations)),
		offers: make(map[WaypointType][]OfferTemplate, len(offers)),
	}
	for _, d := range destinations {
		if _, dup := c.byName[d.Name]; dup {
			continue
		}
		c.byName[d.Name] = len(c.destinations)
		c.destinations = append(c.destinations, d)
	}
	for t, list := range offers {
		c.offers[t] = append([]OfferTemplate(nil), list...)
	}
	return c
}

// Destination looks up a destination by its exact name.
func (c Catalog) Destination(name string) (Destination, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Destination{}, false
	}
	d := c.destinations[i]
	d.Photos = append([]Photo(nil), d.Photos...)
	return d, true
}

// DestinationNames returns every destination name in load order.
func (c Catalog) DestinationNames() []string {
	names := make([]string, len(c.destinations))
	for i, d := range c.destinations {
		names[i] = d.Name
	}
	return names
}

// OffersFor returns the offers available for t. Never nil.
func (c Catalog) OffersFor(t WaypointType) []OfferTemplate {
	return append([]OfferTemplate{}, c.offers[t]...)
}
