package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"timepin/internal/config"
	"timepin/internal/db"

	"github.com/google/uuid"
)

type photoRecord struct {
	ImageID string  `json:"image_id"`
	Title   string  `json:"title"`
	Year    int     `json:"year"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func main() {
	filePath := flag.String("file", "photos.json", "path to photo catalog json")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	records, err := readPhotos(*filePath)
	if err != nil {
		log.Fatalf("failed to read photos: %v", err)
	}

	inserted := 0
	for _, record := range records {
		entry := db.Photo{
			ImageID: record.ImageID,
			Title:   record.Title,
			Year:    record.Year,
			Lat:     record.Lat,
			Lng:     record.Lng,
		}
		if err := conn.FirstOrCreate(&entry, db.Photo{ImageID: entry.ImageID}).Error; err != nil {
			log.Fatalf("failed to upsert photo: %v", err)
		}
		inserted++
	}

	log.Printf("loaded %d photos", inserted)
}

func readPhotos(path string) ([]photoRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []photoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	valid := records[:0]
	for _, record := range records {
		record.Title = strings.TrimSpace(record.Title)
		if record.Title == "" || record.Year == 0 {
			continue
		}
		if record.ImageID == "" {
			record.ImageID = uuid.NewString()
		}
		valid = append(valid, record)
	}
	return valid, nil
}
