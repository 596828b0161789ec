package ml

import (
	"errors"
	"math/rand"

	"github.com/aanand-mishra/student-dbms/internal/config"
	"github.com/aanand-mishra/student-dbms/internal/types"
)

// Performance labels assigned to students.
const (
	LabelHigh = "High Performer"
	LabelLow  = "Needs Improvement"
)

// ErrInsufficientData is returned when the current records cannot support
// a meaningful fit: too few of them, or every GPA falls on the same side
// of the threshold so only one class exists. Handlers translate it to 422.
var ErrInsufficientData = errors.New("not enough data to train the model")

// splitSeed fixes the train/test shuffle so the same records always
// produce the same report.
const splitSeed = 42

// Predictor derives a binary performance label per student and fits a
// decision tree on [age, gpa] against those labels. The zero value is not
// usable; construct via New.
type Predictor struct {
	threshold  float64
	maxDepth   int
	minSamples int
}

// New builds a Predictor from the ml section of the config.
func New(cfg config.ML) *Predictor {
	return &Predictor{
		threshold:  cfg.GPAThreshold,
		maxDepth:   cfg.MaxDepth,
		minSamples: cfg.MinSamples,
	}
}

// Report is the output of one fit-and-score pass.
//
// Predictions maps student id to the model's label, which can disagree
// with the thresholded label when the tree generalizes over age. Accuracy
// is measured on a held-out fifth of the records; when the set is too
// small to hold anything out, it is measured on the training set itself.
type Report struct {
	Predictions        map[int64]string   `json:"predictions"`
	FeatureImportances map[string]float64 `json:"feature_importances"`
	Accuracy           float64            `json:"accuracy"`
	SampleSize         int                `json:"sample_size"`
}

// Label returns the thresholded performance label for one GPA value.
func (p *Predictor) Label(gpa float64) string {
	if gpa >= p.threshold {
		return LabelHigh
	}
	return LabelLow
}

// Evaluate fits a fresh tree on the given records and scores every one of
// them. Returns ErrInsufficientData when fitting is ill-defined.
func (p *Predictor) Evaluate(students []types.Student) (Report, error) {
	if len(students) < p.minSamples {
		return Report{}, ErrInsufficientData
	}

	X := make([][]float64, len(students))
	y := make([]string, len(students))
	classes := make(map[string]bool)
	for i, s := range students {
		X[i] = []float64{float64(s.Age), s.GPA}
		y[i] = p.Label(s.GPA)
		classes[y[i]] = true
	}
	if len(classes) < 2 {
		return Report{}, ErrInsufficientData
	}

	trainIdx, testIdx := split(len(students))

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]string, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i], trainY[i] = X[idx], y[idx]
	}

	tree := FitTree(trainX, trainY, p.maxDepth)

	report := Report{
		Predictions: make(map[int64]string, len(students)),
		SampleSize:  len(students),
	}
	for i, s := range students {
		report.Predictions[s.ID] = tree.Predict(X[i])
	}

	correct := 0
	for _, idx := range testIdx {
		if tree.Predict(X[idx]) == y[idx] {
			correct++
		}
	}
	report.Accuracy = float64(correct) / float64(len(testIdx))

	imp := tree.FeatureImportances()
	report.FeatureImportances = map[string]float64{
		"age": imp[0],
		"gpa": imp[1],
	}

	return report, nil
}

// split shuffles indices deterministically and holds out a fifth of them
// for accuracy measurement. Sets too small to spare anything train and
// test on all indices.
func split(n int) (train, test []int) {
	testN := n / 5
	if testN == 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, all
	}

	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)
	return perm[testN:], perm[:testN]
}
