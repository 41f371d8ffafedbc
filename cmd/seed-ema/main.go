// Command seed-ema populates the community wish wall with sample wishes.
// Run manually against a fresh database.
package main

import (
	"context"
	"log"
	"math/rand"

	"github.com/joho/godotenv"

	"github.com/street-spirit/shrine-backend/internal/config"
	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/storage/postgres"
)

var seedWishes = []string{
	"World Peace & Inner Calm in this chaotic digital age.",
	"Health and prosperity for my family this year. May the spirits guide us.",
	"Finding clarity in chaos. Hoping to successfully launch my dream project.",
	"Hoping my cat recovers from her illness. She's my only family in the city.",
	"Praying to pass the bar exam next week. I've given everything to this.",
	"To finally find someone who understands my soul. 10 years of loneliness is enough.",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	// Wishes need an owner; a dedicated anonymous identity keeps the seeds
	// indistinguishable from real guest posts.
	owner, err := store.CreateAnonymousUser(ctx)
	if err != nil {
		log.Fatalf("create seed owner: %v", err)
	}

	for _, content := range seedWishes {
		wish, err := store.PostEma(ctx, models.EmaWish{
			UserID:     owner.ID,
			Content:    content,
			IsPublic:   true,
			LikesCount: rand.Intn(20) + 1,
		})
		if err != nil {
			log.Printf("failed to insert wish: %v", err)
			continue
		}
		log.Printf("inserted wish %s: %.30s...", wish.ID, content)
	}

	log.Println("seeding completed")
}
