// Package assessment derives the fixed-schema feature vector the risk model
// consumes from a user's answered questions.
//
// The mapping is a pure function over in-memory rows: no I/O, no errors.
// Unconstrained question text is classified into canonical feature slots by
// an explicit rule table (prompt keywords, then question-text patterns, then
// symptom-group names). The table maps free-text prompts, not a rigid
// schema, so every ambiguity resolves to a documented default rather than a
// failure, and a partially answered set still yields a usable vector.
package assessment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

// FeatureVector is the flat 16-key record sent to the scoring subprocess.
// Keys and their spelling are fixed by the trained model's input schema.
type FeatureVector map[string]float64

// Feature names. Age is an integer count of years; everything else is a
// binary flag.
const (
	FeatureAge     = "Age"
	FeatureGender  = "Gender"
	FeatureObesity = "Obesity"
)

// symptomFeatures are the thirteen binary symptom slots, in the model's
// column order.
var symptomFeatures = []string{
	"Polyuria",
	"Polydipsia",
	"sudden weight loss",
	"weakness",
	"Polyphagia",
	"Genital thrush",
	"visual blurring",
	"Itching",
	"Irritability",
	"delayed healing",
	"partial paresis",
	"muscle stiffness",
	"Alopecia",
}

// Prompt classifiers for the three profile features.
var (
	agePromptRE     = regexp.MustCompile(`(?i)age`)
	genderPromptRE  = regexp.MustCompile(`(?i)gender|sex`)
	obesityPromptRE = regexp.MustCompile(`(?i)obese|obesity|bmi|body mass index|overweight`)
	firstNumberRE   = regexp.MustCompile(`\d+`)
	malRE           = regexp.MustCompile(`(?i)male`)
	yesRE           = regexp.MustCompile(`(?i)yes`)
	noRE            = regexp.MustCompile(`(?i)no`)

	// yesLikeRE interprets affirmative answers for symptom questions.
	yesLikeRE = regexp.MustCompile(`(?i)yes|often|severe|every|frequent|always`)
)

// questionPatterns maps question-text patterns to symptom features. Tried
// before the symptom-group fallback because the question wording is the more
// precise signal.
var questionPatterns = []struct {
	feature  string
	patterns []*regexp.Regexp
}{
	{"Polyuria", compileAll(`(?i)polyuria`, `(?i)frequent urination`)},
	{"Polydipsia", compileAll(`(?i)polydipsia`, `(?i)excessive thirst`)},
	{"sudden weight loss", compileAll(`(?i)sudden weight loss`)},
	{"weakness", compileAll(`(?i)weak|fatigued|fatigue|tired`, `(?i)energy levels?`)},
	{"Polyphagia", compileAll(`(?i)polyphagia`, `(?i)increased hunger|always hungry|very hungry`)},
	{"Genital thrush", compileAll(`(?i)genital thrush`, `(?i)genital.*yeast|yeast infection`)},
	{"visual blurring", compileAll(`(?i)visual blurring`, `(?i)blurred vision|vision changes?`)},
	{"Itching", compileAll(`(?i)itching|itchy`)},
	{"Irritability", compileAll(`(?i)irritable|irritability|mood changes?`)},
	{"delayed healing", compileAll(`(?i)delayed healing`, `(?i)wounds? take longer to heal`, `(?i)slow healing`)},
	{"partial paresis", compileAll(`(?i)partial paresis`, `(?i)muscle weakness`)},
	{"muscle stiffness", compileAll(`(?i)muscle stiffness`)},
	{"Alopecia", compileAll(`(?i)alopecia`, `(?i)hair loss|hair fall`)},
}

// symptomNameFeature maps lowercased symptom-group names to features, for
// questions whose wording matched no pattern. Muscle Conditions is absent on
// purpose: its two questions map to different features and are resolved by
// question text alone.
var symptomNameFeature = map[string]string{
	"polyuria":             "Polyuria",
	"urination patterns":   "Polyuria",
	"polydipsia":           "Polydipsia",
	"thirst and hydration": "Polydipsia",
	"sudden weight loss":   "sudden weight loss",
	"weight changes":       "sudden weight loss",
	"weakness":             "weakness",
	"energy levels":        "weakness",
	"polyphagia":           "Polyphagia",
	"appetite changes":     "Polyphagia",
	"genital thrush":       "Genital thrush",
	"infections":           "Genital thrush",
	"visual blurring":      "visual blurring",
	"vision changes":       "visual blurring",
	"itching":              "Itching",
	"skin changes":         "Itching",
	"irritability":         "Irritability",
	"mood changes":         "Irritability",
	"delayed healing":      "delayed healing",
	"wound healing":        "delayed healing",
	"partial paresis":      "partial paresis",
	"muscle stiffness":     "muscle stiffness",
	"alopecia":             "Alopecia",
	"hair conditions":      "Alopecia",
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// NewFeatureVector returns an all-default vector with every key present.
func NewFeatureVector() FeatureVector {
	fv := FeatureVector{
		FeatureAge:     0,
		FeatureGender:  0,
		FeatureObesity: 0,
	}
	for _, f := range symptomFeatures {
		fv[f] = 0
	}
	return fv
}

// MapFeatures converts a user's active answers (with Question and
// Question.Symptom preloaded) into the 16-key feature vector.
//
// Per answered question, first match wins:
//  1. age prompt   → first integer in the answer text (parse failure keeps 0)
//  2. sex prompt   → 1 when the answer contains "male" (case-insensitive
//     substring, so "Female" also matches)
//  3. obesity/BMI prompt → 1 on "yes", 0 on "no", untouched otherwise
//  4. question-text pattern, else symptom-group name → that feature set to
//     1 when the answer is yes-like, else 0
//
// Untouched features keep their default of 0; all 16 keys are always present.
func MapFeatures(answers []domain.UserAnswer) FeatureVector {
	fv := NewFeatureVector()

	for _, ua := range answers {
		text := strings.TrimSpace(ua.Answer.Text)
		questionText := ua.Question.Text

		if agePromptRE.MatchString(questionText) {
			if m := firstNumberRE.FindString(text); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					fv[FeatureAge] = float64(n)
				}
			}
			continue
		}

		if genderPromptRE.MatchString(questionText) {
			if malRE.MatchString(text) {
				fv[FeatureGender] = 1
			} else {
				fv[FeatureGender] = 0
			}
			continue
		}

		if obesityPromptRE.MatchString(questionText) {
			switch {
			case yesRE.MatchString(text):
				fv[FeatureObesity] = 1
			case noRE.MatchString(text):
				fv[FeatureObesity] = 0
			}
			continue
		}

		feature := ""
		for _, qp := range questionPatterns {
			for _, re := range qp.patterns {
				if re.MatchString(questionText) {
					feature = qp.feature
					break
				}
			}
			if feature != "" {
				break
			}
		}
		if feature == "" {
			name := strings.ToLower(strings.TrimSpace(ua.Question.Symptom.Name))
			feature = symptomNameFeature[name]
		}
		if feature == "" {
			continue
		}

		if yesLikeRE.MatchString(text) {
			fv[feature] = 1
		} else {
			fv[feature] = 0
		}
	}

	return fv
}
