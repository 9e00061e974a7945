package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"biaslens/backend/internal/ai"
	"biaslens/backend/internal/match"
	"biaslens/backend/internal/scoring"
	"biaslens/backend/internal/util"
)

// sample is one labeled posting used to exercise the detection pipeline.
type sample struct {
	Text          string `json:"text"`
	Biased        bool   `json:"biased"`
	International bool   `json:"international"`
}

type report struct {
	Samples               int      `json:"samples"`
	Runs                  int      `json:"runs"`
	NLP                   bool     `json:"nlp"`
	Accuracy              float64  `json:"accuracy"`
	Precision             float64  `json:"precision"`
	Recall                float64  `json:"recall"`
	InternationalAccuracy float64  `json:"international_accuracy"`
	MeanLatencyMs         float64  `json:"mean_latency_ms"`
	Misclassified         []string `json:"misclassified,omitempty"`
}

func main() {
	var (
		phrasesPath = flag.String("phrases", filepath.FromSlash("internal/match/bias_phrases.json"), "Path to bias phrase dictionary")
		samplesPath = flag.String("samples", "", "Optional JSON file of labeled samples")
		useNLP      = flag.Bool("nlp", false, "Classify through the zero-shot endpoint from CLASSIFIER_* env")
		runs        = flag.Int("runs", 5, "Analysis passes per sample for latency averaging")
		outputPath  = flag.String("output", "", "Optional path to write the JSON report")
	)
	flag.Parse()

	dictionary, err := match.NewDictionary(*phrasesPath)
	if err != nil {
		logrus.Fatalf("phrase dictionary: %v", err)
	}
	matcher := match.NewMatcher(dictionary)
	keyword := ai.NewKeywordClassifier(matcher)
	engine := scoring.NewEngine(dictionary)

	classifier := ai.Classifier(keyword)
	if *useNLP {
		zeroShot, err := ai.NewZeroShotClient(ai.Config{
			Endpoint: os.Getenv("CLASSIFIER_ENDPOINT"),
			Model:    os.Getenv("CLASSIFIER_MODEL"),
			APIKey:   os.Getenv("CLASSIFIER_API_KEY"),
		})
		if err != nil {
			logrus.Fatalf("zero-shot classifier: %v", err)
		}
		classifier = ai.WithFallback(zeroShot, keyword)
	}

	samples := builtinSamples()
	if *samplesPath != "" {
		samples, err = loadSamples(*samplesPath)
		if err != nil {
			logrus.Fatalf("load samples: %v", err)
		}
	}
	if len(samples) == 0 {
		logrus.Fatal("no samples to evaluate")
	}
	if *runs < 1 {
		*runs = 1
	}

	result := evaluate(matcher, classifier, engine, samples, *runs)
	result.NLP = *useNLP

	logrus.WithFields(logrus.Fields{
		"samples":         result.Samples,
		"nlp":             result.NLP,
		"accuracy":        result.Accuracy,
		"precision":       result.Precision,
		"recall":          result.Recall,
		"intl_accuracy":   result.InternationalAccuracy,
		"mean_latency_ms": result.MeanLatencyMs,
	}).Info("detection check complete")

	for _, text := range result.Misclassified {
		logrus.WithField("text", text).Warn("misclassified sample")
	}

	if *outputPath != "" {
		if err := writeReport(*outputPath, result); err != nil {
			logrus.Fatalf("write report: %v", err)
		}
		logrus.WithField("path", *outputPath).Info("report written")
	}

	if len(result.Misclassified) > 0 {
		os.Exit(1)
	}
}

func evaluate(matcher *match.Matcher, classifier ai.Classifier, engine *scoring.Engine, samples []sample, runs int) report {
	ctx := context.Background()
	var truePos, falsePos, falseNeg, correct, intlCorrect int
	var misclassified []string

	timer := util.StartTimer()
	for run := 0; run < runs; run++ {
		for _, s := range samples {
			analysis := matcher.Match(s.Text)
			classification, err := classifier.Classify(ctx, s.Text)
			if err != nil {
				logrus.Fatalf("classify: %v", err)
			}
			biasScore := engine.BiasScore(analysis, classification)
			intlScore := engine.InternationalScore(analysis)

			if run > 0 {
				continue
			}

			predictedBiased := biasScore > 0
			switch {
			case predictedBiased && s.Biased:
				truePos++
			case predictedBiased && !s.Biased:
				falsePos++
			case !predictedBiased && s.Biased:
				falseNeg++
			}
			if predictedBiased == s.Biased {
				correct++
			} else {
				misclassified = append(misclassified, s.Text)
			}
			if (intlScore > 0) == s.International {
				intlCorrect++
			}
		}
	}
	elapsed := timer.Elapsed()

	total := len(samples)
	return report{
		Samples:               total,
		Runs:                  runs,
		Accuracy:              ratio(correct, total),
		Precision:             ratio(truePos, truePos+falsePos),
		Recall:                ratio(truePos, truePos+falseNeg),
		InternationalAccuracy: ratio(intlCorrect, total),
		MeanLatencyMs:         elapsed.Seconds() * 1000 / float64(runs*total),
		Misclassified:         misclassified,
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func loadSamples(path string) ([]sample, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var samples []sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func writeReport(path string, result report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// builtinSamples covers every detection category plus clean postings, so a
// dictionary edit that silently weakens coverage fails the check.
func builtinSamples() []sample {
	return []sample{
		{Text: "Must be authorized to work in the United States. No visa sponsorship.", Biased: true, International: true},
		{Text: "Native English speaker required for this role.", Biased: true, International: true},
		{Text: "U.S. citizen only. Local experience required.", Biased: true, International: true},
		{Text: "We need a rockstar ninja who will crush it.", Biased: true},
		{Text: "Young and energetic recent graduate wanted.", Biased: true},
		{Text: "Must be able to lift 50 pounds and stand for long periods.", Biased: true},
		{Text: "Looking for someone with a professional appearance, well-groomed and presentable.", Biased: true},
		{Text: "Work hard play hard startup culture with beer fridays.", Biased: true},
		{Text: "We want a nurturing, supportive, caring team member.", Biased: true},
		{Text: "Cultural fit is important to us.", Biased: true},
		{Text: "We welcome applicants from every background.", Biased: false},
		{Text: "Responsibilities include maintaining service reliability and mentoring peers.", Biased: false},
		{Text: "Salary range 90k-120k with flexible hours and remote options.", Biased: false},
	}
}
