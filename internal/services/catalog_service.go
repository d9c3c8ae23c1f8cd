package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
)

// CatalogService serves the read-only symptom and question catalog.
type CatalogService struct {
	DB *gorm.DB
}

// SymptomQuestions is one symptom category with its active questions,
// ordered for presentation.
type SymptomQuestions struct {
	Symptom   domain.Symptom    `json:"symptom"`
	Questions []domain.Question `json:"questions"`
}

// Questions returns the active symptoms of a disease, each paired with its
// active questions. Symptoms without questions are still included so the
// client can render empty categories.
func (s *CatalogService) Questions(ctx context.Context, diseaseID string) ([]SymptomQuestions, error) {
	tracer := otel.Tracer("services/catalog")
	ctx, span := tracer.Start(ctx, "CatalogService.Questions")
	defer span.End()

	if _, err := repo.GetDisease(ctx, s.DB, diseaseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiseaseNotFound
		}
		return nil, err
	}

	symptoms, err := repo.ListActiveSymptoms(ctx, s.DB, diseaseID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		ids = append(ids, sym.ID)
	}
	questions, err := repo.ListActiveQuestions(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	bySymptom := make(map[string][]domain.Question, len(symptoms))
	for _, q := range questions {
		bySymptom[q.SymptomID] = append(bySymptom[q.SymptomID], q)
	}

	out := make([]SymptomQuestions, 0, len(symptoms))
	for _, sym := range symptoms {
		out = append(out, SymptomQuestions{Symptom: sym, Questions: bySymptom[sym.ID]})
	}
	return out, nil
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}
