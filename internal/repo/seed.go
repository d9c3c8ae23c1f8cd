// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file seeds the Diabetes symptom catalog for fresh
// databases: the disease, its symptom groups and one screening question per
// group, mirroring the questionnaire the mobile client renders.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

// seedQuestion is one catalog question to create under a symptom group.
type seedQuestion struct {
	Text    string
	Kind    string
	Options []string
}

// seedSymptom is one symptom group with its questions.
type seedSymptom struct {
	Name        string
	Description string
	Questions   []seedQuestion
}

var yesNo = []string{"Yes", "No"}

// diabetesCatalog is the default screening questionnaire. Symptom group
// names align with the feature-vector slots the risk model consumes.
var diabetesCatalog = []seedSymptom{
	{
		Name:        "General Bio Data",
		Description: "Basic information used to compute baseline risk factors.",
		Questions: []seedQuestion{
			{Text: "What is your age?", Kind: domain.QuestionKindNumber},
			{Text: "What is your gender?", Kind: domain.QuestionKindRadio, Options: []string{"Male", "Female"}},
			{Text: "Are you overweight or obese (BMI over 30)?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Urination Patterns",
		Description: "Frequent urination can indicate excess glucose being flushed by the kidneys.",
		Questions: []seedQuestion{
			{Text: "Do you experience frequent urination (polyuria)?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Thirst and Hydration",
		Description: "Excessive thirst often accompanies fluid loss from frequent urination.",
		Questions: []seedQuestion{
			{Text: "Do you experience excessive thirst (polydipsia)?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Weight Changes",
		Description: "Unexplained weight loss can signal the body burning fat and muscle for energy.",
		Questions: []seedQuestion{
			{Text: "Have you experienced sudden weight loss?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Energy Levels",
		Description: "Cells starved of glucose leave you feeling weak and fatigued.",
		Questions: []seedQuestion{
			{Text: "Do you feel unusually weak or fatigued?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Appetite Changes",
		Description: "Increased hunger despite eating can accompany insulin resistance.",
		Questions: []seedQuestion{
			{Text: "Do you feel increased hunger (polyphagia)?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Infections",
		Description: "Elevated glucose feeds yeast growth and weakens immune response.",
		Questions: []seedQuestion{
			{Text: "Have you noticed any genital yeast infections?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Vision Changes",
		Description: "Fluid shifts in the eye's lens blur vision when sugar levels swing.",
		Questions: []seedQuestion{
			{Text: "Do you experience blurred vision?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Skin Changes",
		Description: "Dry, itchy skin follows poor circulation and fluid loss.",
		Questions: []seedQuestion{
			{Text: "Do you have persistent itching?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Mood Changes",
		Description: "Blood sugar swings affect mood and patience.",
		Questions: []seedQuestion{
			{Text: "Do you feel more irritable than usual?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Wound Healing",
		Description: "Damaged vessels and immune function slow wound closure.",
		Questions: []seedQuestion{
			{Text: "Do your wounds take longer to heal than usual?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Muscle Conditions",
		Description: "Nerve damage and glucose-starved muscles cause weakness and stiffness.",
		Questions: []seedQuestion{
			{Text: "Do you experience muscle weakness?", Kind: domain.QuestionKindRadio, Options: yesNo},
			{Text: "Do you experience muscle stiffness?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
	{
		Name:        "Hair Conditions",
		Description: "Poor circulation and hormonal stress can trigger hair loss.",
		Questions: []seedQuestion{
			{Text: "Have you noticed unusual hair loss?", Kind: domain.QuestionKindRadio, Options: yesNo},
		},
	},
}

// SeedDiabetesCatalog creates the Diabetes disease with its symptom groups
// and questions when the disease does not exist yet. It is idempotent: a
// second call against a seeded database is a no-op.
func SeedDiabetesCatalog(ctx context.Context, db *gorm.DB) (*domain.Disease, error) {
	if d, err := GetDiseaseByName(ctx, db, "Diabetes"); err == nil {
		return d, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	disease := &domain.Disease{
		ID:          uuid.NewString(),
		Name:        "Diabetes",
		Description: "Early-risk screening questionnaire for diabetes mellitus.",
		CreatedAt:   now,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(disease).Error; err != nil {
			return err
		}
		for _, sg := range diabetesCatalog {
			sym := &domain.Symptom{
				ID:          uuid.NewString(),
				DiseaseID:   disease.ID,
				Name:        sg.Name,
				Description: sg.Description,
				CreatedAt:   now,
			}
			if err := tx.Create(sym).Error; err != nil {
				return err
			}
			for _, sq := range sg.Questions {
				q := &domain.Question{
					ID:        uuid.NewString(),
					SymptomID: sym.ID,
					Text:      sq.Text,
					Kind:      sq.Kind,
					CreatedAt: now,
				}
				if len(sq.Options) > 0 {
					opts, err := optionsJSON(sq.Options)
					if err != nil {
						return err
					}
					q.Options = opts
				}
				if err := tx.Create(q).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return disease, nil
}

// optionsJSON marshals option strings into the JSON column type.
func optionsJSON(opts []string) (datatypes.JSON, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
