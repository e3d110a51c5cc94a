// Command questionseed ingests a YAML question corpus into the question
// repository and the exemplar vector index.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/embedding/hashed"
	embopenai "github.com/fairyhunter13/ai-interviewer/internal/adapter/embedding/openai"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/seedbank"
)

func main() {
	path := flag.String("file", "configs/seed/questions.yaml", "question corpus YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	var emb domain.EmbeddingService
	if cfg.StubAI() {
		emb = hashed.New()
	} else {
		emb = embopenai.New(cfg)
	}

	vectors := qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection, cfg.VectorSize)
	if err := vectors.EnsureCollection(ctx); err != nil {
		log.Printf("qdrant collection setup failed, seeding repository only: %v", err)
	}

	n, err := seedbank.SeedFile(ctx, seedbank.Deps{
		Questions:  postgres.NewQuestionRepo(pool),
		Embeddings: emb,
		Vectors:    vectors,
	}, *path)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("seeded %d questions from %s", n, *path)
}
