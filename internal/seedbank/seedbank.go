// Package seedbank loads a curated question corpus from YAML and ingests it
// into the question repository and the exemplar vector index.
package seedbank

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

type seedFile struct {
	Questions []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	Text        string   `yaml:"text"`
	Type        string   `yaml:"type"`
	Difficulty  string   `yaml:"difficulty"`
	Skills      []string `yaml:"skills"`
	Tags        []string `yaml:"tags"`
	IdealAnswer string   `yaml:"ideal_answer"`
	Rationale   string   `yaml:"rationale"`
}

// Deps bundles the sinks a seed run writes to. Vectors may be nil; the
// corpus then only reaches the repository.
type Deps struct {
	Questions  domain.QuestionRepository
	Embeddings domain.EmbeddingService
	Vectors    domain.VectorIndex
}

// namespace makes seed ids deterministic so re-ingestion upserts instead of
// duplicating points.
var namespace = uuid.MustParse("8f2f9a6e-0b3d-4f4a-9a6b-0d8f2e7c5a11")

// SeedFile ingests one YAML corpus file. Returns the number of questions
// ingested.
func SeedFile(ctx domain.Context, deps Deps, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("op=seedbank.read: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return 0, fmt.Errorf("op=seedbank.parse: %w", err)
	}
	if len(doc.Questions) == 0 {
		return 0, fmt.Errorf("%w: no questions in %s", domain.ErrInvalidArgument, path)
	}

	count := 0
	for i, sq := range doc.Questions {
		q, err := toQuestion(sq)
		if err != nil {
			return count, fmt.Errorf("op=seedbank.validate: entry %d: %w", i, err)
		}
		vec, err := deps.Embeddings.Embed(ctx, q.Text)
		if err != nil {
			return count, fmt.Errorf("op=seedbank.embed: entry %d: %w", i, err)
		}
		q.Embedding = vec

		if _, err := deps.Questions.Create(ctx, q); err != nil {
			return count, fmt.Errorf("op=seedbank.store: entry %d: %w", i, err)
		}
		if deps.Vectors != nil {
			if err := deps.Vectors.UpsertQuestion(ctx, q); err != nil {
				// The repository fallback still serves these as exemplars.
				slog.Warn("seed vector upsert failed", slog.String("question_id", q.ID), slog.Any("error", err))
			}
		}
		count++
	}
	return count, nil
}

func toQuestion(sq seedQuestion) (domain.Question, error) {
	text := strings.TrimSpace(sq.Text)
	if text == "" {
		return domain.Question{}, fmt.Errorf("%w: text is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(sq.IdealAnswer) == "" {
		return domain.Question{}, fmt.Errorf("%w: ideal_answer is required", domain.ErrInvalidArgument)
	}
	qt := domain.QuestionType(strings.ToUpper(strings.TrimSpace(sq.Type)))
	switch qt {
	case domain.QuestionTechnical, domain.QuestionBehavioral, domain.QuestionSituational:
	default:
		return domain.Question{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidArgument, sq.Type)
	}
	d := domain.Difficulty(strings.ToUpper(strings.TrimSpace(sq.Difficulty)))
	switch d {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return domain.Question{}, fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidArgument, sq.Difficulty)
	}
	return domain.Question{
		ID:          uuid.NewSHA1(namespace, []byte(text)).String(),
		Text:        text,
		Type:        qt,
		Difficulty:  d,
		Skills:      sq.Skills,
		Tags:        sq.Tags,
		IdealAnswer: strings.TrimSpace(sq.IdealAnswer),
		Rationale:   strings.TrimSpace(sq.Rationale),
		Version:     1,
	}, nil
}
