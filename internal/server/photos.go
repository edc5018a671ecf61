package server

import (
	"errors"
	"log"
	"math/rand"
	"sync"

	"timepin/internal/db"

	"gorm.io/gorm"
)

// Truth is the ground truth for one catalog image.
type Truth struct {
	Year int
	Lat  float64
	Lng  float64
}

// PhotoProvider resolves image IDs to ground truth and deals out image
// sequences for new sessions. It is a read-only lookup as far as the
// coordinator is concerned.
type PhotoProvider interface {
	Sequence(n int) ([]string, error)
	Resolve(imageID string) (Truth, bool)
}

type catalogProvider struct {
	mu     sync.Mutex
	order  []string
	truths map[string]Truth
}

// newCatalogProvider seeds from the built-in catalog and layers any photos
// rows from the database on top.
func newCatalogProvider(conn *gorm.DB) *catalogProvider {
	provider := &catalogProvider{truths: make(map[string]Truth)}
	for _, photo := range defaultCatalog {
		provider.add(photo.ImageID, Truth{Year: photo.Year, Lat: photo.Lat, Lng: photo.Lng})
	}
	if conn != nil {
		var records []db.Photo
		if err := conn.Find(&records).Error; err != nil {
			log.Printf("photo catalog load failed error=%v", err)
		} else {
			for _, record := range records {
				provider.add(record.ImageID, Truth{Year: record.Year, Lat: record.Lat, Lng: record.Lng})
			}
		}
	}
	return provider
}

func (p *catalogProvider) add(imageID string, truth Truth) {
	if _, exists := p.truths[imageID]; !exists {
		p.order = append(p.order, imageID)
	}
	p.truths[imageID] = truth
}

// Sequence picks n distinct images in shuffled order.
func (p *catalogProvider) Sequence(n int) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= 0 || n > len(p.order) {
		return nil, errors.New("not enough photos in the catalog")
	}
	shuffled := make([]string, len(p.order))
	copy(shuffled, p.order)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n], nil
}

func (p *catalogProvider) Resolve(imageID string) (Truth, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	truth, ok := p.truths[imageID]
	return truth, ok
}

type catalogPhoto struct {
	ImageID string
	Year    int
	Lat     float64
	Lng     float64
}

// defaultCatalog keeps the server playable without a database.
var defaultCatalog = []catalogPhoto{
	{ImageID: "wright-flyer-first-flight", Year: 1903, Lat: 36.0171, Lng: -75.6682},
	{ImageID: "golden-gate-under-construction", Year: 1935, Lat: 37.8199, Lng: -122.4783},
	{ImageID: "times-square-vj-day", Year: 1945, Lat: 40.7580, Lng: -73.9855},
	{ImageID: "berlin-wall-going-up", Year: 1961, Lat: 52.5163, Lng: 13.3777},
	{ImageID: "woodstock-crowd", Year: 1969, Lat: 41.7015, Lng: -74.8804},
	{ImageID: "eiffel-tower-exposition", Year: 1889, Lat: 48.8584, Lng: 2.2945},
	{ImageID: "sydney-opera-house-opening", Year: 1973, Lat: -33.8568, Lng: 151.2153},
	{ImageID: "tokyo-olympics-opening", Year: 1964, Lat: 35.6780, Lng: 139.7146},
	{ImageID: "hindenburg-lakehurst", Year: 1937, Lat: 40.0307, Lng: -74.3235},
	{ImageID: "machu-picchu-expedition", Year: 1912, Lat: -13.1631, Lng: -72.5450},
	{ImageID: "trans-siberian-terminus", Year: 1916, Lat: 43.1114, Lng: 131.8823},
	{ImageID: "cape-town-table-mountain-cableway", Year: 1929, Lat: -33.9628, Lng: 18.4098},
}
