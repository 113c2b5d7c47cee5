// Command genmock generates synthetic hazard-curve fixtures and the matching
// resolved-threshold fixtures. It uses the actual domain package so the
// resolved output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -curves-out data/mock/curve_sets.json \
//	  -resolved-out data/mock/resolved_thresholds.json \
//	  -sets 8 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/config"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
)

// mockTime is the fixed clock used for reproducible ResolvedAt timestamps.
// cmd/validate relies on the same instant when it re-resolves the fixtures.
var mockTime = time.Date(2026, time.March, 15, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	curvesOut := flag.String("curves-out", "", "output path for curve-set JSON fixture")
	resolvedOut := flag.String("resolved-out", "", "output path for resolved-threshold JSON fixture")
	profilePath := flag.String("profile", "", "alarm profile YAML (optional, defaults to built-in profile)")
	sets := flag.Int("sets", 8, "number of curve sets to generate")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *curvesOut == "" || *resolvedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -curves-out, -resolved-out")
	}

	profile, err := config.LoadAlarmProfile(*profilePath)
	if err != nil {
		return fmt.Errorf("load alarm profile: %w", err)
	}

	// Fixed clock for reproducible ResolvedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(mockTime))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))

	curveSets := make([]domain.CurveSet, 0, *sets)
	var resolved []domain.ResolvedThresholds

	for i := 0; i < *sets; i++ {
		cs := generateCurveSet(rng, fmt.Sprintf("mock-calc-%03d", i+1))
		curveSets = append(curveSets, cs)

		for _, level := range profile.Levels {
			m, err := domain.Resolve(cs, level.Threshold)
			if err != nil {
				return fmt.Errorf("resolve %s at level %s: %w", cs.CalcID, level.Name, err)
			}
			resolved = append(resolved, domain.NewResolvedThresholds(cs, level.Name, level.Threshold, m))
		}
		log.Printf("%s: %d samples, %d distances, %d classes",
			cs.CalcID, len(cs.Probs), len(cs.DistanceBins), len(cs.VulnerabilityClasses))
	}

	if err := writeJSON(*curvesOut, curveSets); err != nil {
		return fmt.Errorf("writing curve-set fixture: %w", err)
	}
	log.Printf("wrote curve-set fixture: %s", *curvesOut)

	if err := writeJSON(*resolvedOut, resolved); err != nil {
		return fmt.Errorf("writing resolved fixture: %w", err)
	}
	log.Printf("wrote resolved fixture: %s", *resolvedOut)

	printStats(resolved, profile)
	return nil
}

// generateCurveSet builds one synthetic curve set. The probability axis is
// strictly decreasing and the tensor follows an exponential hazard model
// perturbed with noise, so every cell resolves at any threshold within and
// slightly beyond the axis range.
func generateCurveSet(rng *rand.Rand, calcID string) domain.CurveSet {
	samples := 8 + rng.Intn(5)
	distances := 3 + rng.Intn(3)
	classes := 2 + rng.Intn(3)

	// Log-spaced exceedance probabilities from ~0.95 down to ~0.002.
	probs := make([]float64, samples)
	for s := range probs {
		frac := float64(s) / float64(samples-1)
		probs[s] = 0.95 * math.Pow(0.002, frac)
	}

	distanceBins := make([]float64, distances)
	for d := range distanceBins {
		distanceBins[d] = float64(d+1) * 5
	}

	classNames := []string{"A", "B", "C", "D", "E"}[:classes]

	// IVLs grow as exceedance probability falls. Rarer events shake harder.
	ivls := make([][][]float64, samples)
	for s := range ivls {
		ivls[s] = make([][]float64, distances)
		severity := -math.Log(probs[s]) // 0.05 .. 6.2
		for d := range ivls[s] {
			attenuation := 1.0 / (1.0 + 0.15*float64(d))
			row := make([]float64, classes)
			for v := range row {
				classFactor := 1.0 - 0.1*float64(v)
				noise := 1.0 + 0.05*rng.Float64()
				row[v] = 0.08 * severity * attenuation * classFactor * noise
			}
			ivls[s][d] = row
		}
	}

	return domain.CurveSet{
		CalcID:               calcID,
		IMT:                  "PGA",
		InvestigationTime:    1.0,
		Probs:                probs,
		IVLs:                 ivls,
		DistanceBins:         distanceBins,
		VulnerabilityClasses: classNames,
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(resolved []domain.ResolvedThresholds, profile config.AlarmProfile) {
	perLevel := map[string]int{}
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, doc := range resolved {
		perLevel[doc.AlarmLevel]++
		for _, row := range doc.IVLs {
			for _, v := range row {
				minVal = math.Min(minVal, v)
				maxVal = math.Max(maxVal, v)
			}
		}
	}

	log.Printf("resolved documents: %d", len(resolved))
	for _, level := range profile.Levels {
		log.Printf("  %-8s (p=%g): %d", level.Name, level.Threshold, perLevel[level.Name])
	}
	log.Printf("resolved IVL range: [%g, %g]", minVal, maxVal)
}
