package memory

import "github.com/magabrotheeeer/cinestream/internal/models"

func seedContent() []models.Content {
	return []models.Content{
		{
			ID:          "c-001",
			Title:       "The Long Night",
			Description: "A city loses power for a week and its people find each other.",
			Genre:       "drama",
			Year:        2023,
			Language:    "en",
			StreamURL:   "https://stream.cinestream.local/c-001/master.m3u8",
			Rating:      4.6,
			Tags:        []string{"original"},
		},
		{
			ID:          "c-002",
			Title:       "Orbit",
			Description: "Two engineers are stranded on a failing station.",
			Genre:       "sci-fi",
			Year:        2021,
			Language:    "en",
			StreamURL:   "https://stream.cinestream.local/c-002/master.m3u8",
			Rating:      4.2,
		},
		{
			ID:          "c-003",
			Title:       "Monsoon Wedding Diaries",
			Description: "Three families, one wedding, endless rain.",
			Genre:       "comedy",
			Year:        2022,
			Language:    "hi",
			StreamURL:   "https://stream.cinestream.local/c-003/master.m3u8",
			Rating:      3.9,
			Tags:        []string{"original"},
		},
		{
			ID:          "c-004",
			Title:       "Cold Harbour",
			Description: "A harbour master uncovers a smuggling ring.",
			Genre:       "thriller",
			Year:        2019,
			Language:    "en",
			StreamURL:   "https://stream.cinestream.local/c-004/master.m3u8",
			Rating:      4.0,
		},
		{
			ID:          "c-005",
			Title:       "Little Fox",
			Description: "A young fox learns to find her way home.",
			Genre:       "kids",
			Year:        2024,
			Language:    "en",
			StreamURL:   "https://stream.cinestream.local/c-005/master.m3u8",
			Rating:      4.8,
			Tags:        []string{"original", "family"},
		},
		{
			ID:          "c-006",
			Title:       "Las Calles",
			Description: "Street musicians in Madrid chase a record deal.",
			Genre:       "drama",
			Year:        2020,
			Language:    "es",
			StreamURL:   "https://stream.cinestream.local/c-006/master.m3u8",
			Rating:      3.7,
		},
	}
}
