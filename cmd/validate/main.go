// Command validate performs integrity checks on hazard fixture files: a
// curve-set JSON fixture and, optionally, the resolved-threshold JSON fixture
// produced from it. It verifies tensor shape, value sanity, resolvability at
// every alarm level, and that resolved outputs match a fresh resolution.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -curves data/mock/curve_sets.json \
//	  -resolved data/mock/resolved_thresholds.json \
//	  -profile config/alarm_profile.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/config"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
)

// mockTime must match genmock so regenerated IDs and timestamps line up.
var mockTime = time.Date(2026, time.March, 15, 6, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	curvesPath := flag.String("curves", "", "path to curve-set JSON fixture")
	resolvedPath := flag.String("resolved", "", "path to resolved-threshold JSON fixture (optional)")
	profilePath := flag.String("profile", "", "path to alarm profile YAML (optional, defaults to built-in profile)")
	flag.Parse()

	if *curvesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*curvesPath, *resolvedPath, *profilePath); code != 0 {
		os.Exit(code)
	}
}

func run(curvesPath, resolvedPath, profilePath string) int {
	// Fixed clock matching genmock for ID and timestamp reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(mockTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Hazard Fixture Integrity Validation ===")
	fmt.Println()

	profile, err := config.LoadAlarmProfile(profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load alarm profile: %v\n", err)
		return 1
	}

	curveSets, err := loadJSON[domain.CurveSet](curvesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load curve sets: %v\n", err)
		return 1
	}

	var resolved []domain.ResolvedThresholds
	if resolvedPath != "" {
		resolved, err = loadJSON[domain.ResolvedThresholds](resolvedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load resolved thresholds: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateShape(curveSets),
		validateValues(curveSets),
		validateResolvability(curveSets, profile),
	}
	if resolvedPath != "" {
		phases = append(phases, validateResolvedParity(curveSets, resolved, profile))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Fixtures: %d curve sets, %d resolved documents, %d alarm levels\n",
		len(curveSets), len(resolved), len(profile.Levels))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Tensor Shape ──
// Validates dimensions, rectangularity, and axis labels of every curve set.

func validateShape(curveSets []domain.CurveSet) *phase {
	p := &phase{name: "Phase 1: Tensor Shape"}

	seen := map[string]bool{}
	for i, cs := range curveSets {
		if cs.CalcID == "" {
			p.errorf("curve set %d: missing calc_id", i)
		} else if seen[cs.CalcID] {
			p.errorf("curve set %d: duplicate calc_id %q", i, cs.CalcID)
		}
		seen[cs.CalcID] = true

		if cs.IsReference() {
			p.errorf("curve set %d (%s): reference document in fixture, expected full tensor", i, cs.CalcID)
			continue
		}
		if _, _, err := cs.Dims(); err != nil {
			p.errorf("curve set %d (%s): %v", i, cs.CalcID, err)
		}
		if len(cs.Probs) < 2 {
			p.errorf("curve set %d (%s): only %d samples, need at least 2", i, cs.CalcID, len(cs.Probs))
		}
	}
	return p
}

// ── Phase 2: Value Sanity ──
// Validates that all values are finite and probabilities lie in [0, 1].

func validateValues(curveSets []domain.CurveSet) *phase {
	p := &phase{name: "Phase 2: Value Sanity"}

	for i, cs := range curveSets {
		for s, pr := range cs.Probs {
			if math.IsNaN(pr) || math.IsInf(pr, 0) {
				p.errorf("curve set %d (%s): probs[%d] is not finite", i, cs.CalcID, s)
			} else if pr < 0 || pr > 1 {
				p.errorf("curve set %d (%s): probs[%d]=%g outside [0, 1]", i, cs.CalcID, s, pr)
			}
		}
		for s := range cs.IVLs {
			for d := range cs.IVLs[s] {
				for v, val := range cs.IVLs[s][d] {
					if math.IsNaN(val) || math.IsInf(val, 0) {
						p.errorf("curve set %d (%s): ivls[%d][%d][%d] is not finite", i, cs.CalcID, s, d, v)
					}
				}
			}
		}
	}
	return p
}

// ── Phase 3: Resolvability ──
// Validates that every curve set resolves at every alarm level and that the
// results respect the positivity floor.

func validateResolvability(curveSets []domain.CurveSet, profile config.AlarmProfile) *phase {
	p := &phase{name: "Phase 3: Resolvability (all alarm levels)"}

	for i, cs := range curveSets {
		if cs.IsReference() {
			continue
		}
		for _, level := range profile.Levels {
			m, err := domain.Resolve(cs, level.Threshold)
			if err != nil {
				p.errorf("curve set %d (%s) level %s: %v", i, cs.CalcID, level.Name, err)
				continue
			}
			for _, val := range m.Vals {
				if val < domain.DefaultFloor {
					p.errorf("curve set %d (%s) level %s: resolved value %g below floor", i, cs.CalcID, level.Name, val)
					break
				}
			}
		}
	}
	return p
}

// ── Phase 4: Resolved Parity ──
// Re-resolves every curve set and compares against the resolved fixture.

func validateResolvedParity(curveSets []domain.CurveSet, resolved []domain.ResolvedThresholds, profile config.AlarmProfile) *phase {
	p := &phase{name: "Phase 4: Resolved Parity (fixture vs fresh run)"}

	byID := map[string]*domain.ResolvedThresholds{}
	for i := range resolved {
		if resolved[i].ID == "" {
			p.errorf("resolved record %d: missing id", i)
			continue
		}
		if _, exists := byID[resolved[i].ID]; exists {
			p.errorf("resolved record %d: duplicate id %q", i, resolved[i].ID)
			continue
		}
		byID[resolved[i].ID] = &resolved[i]
	}

	expectedTotal := len(curveSets) * len(profile.Levels)
	if len(resolved) != expectedTotal {
		p.errorf("document count: expected %d (%d curve sets x %d levels), got %d",
			expectedTotal, len(curveSets), len(profile.Levels), len(resolved))
	}

	for _, cs := range curveSets {
		if cs.IsReference() {
			continue
		}
		for _, level := range profile.Levels {
			m, err := domain.Resolve(cs, level.Threshold)
			if err != nil {
				continue // reported in phase 3
			}
			expected := domain.NewResolvedThresholds(cs, level.Name, level.Threshold, m)

			doc, ok := byID[expected.ID]
			if !ok {
				p.errorf("%s level %s: id %q not found in resolved fixture", cs.CalcID, level.Name, expected.ID)
				continue
			}
			compareDocs(p, expected, doc)
		}
	}
	return p
}

func compareDocs(p *phase, expected domain.ResolvedThresholds, doc *domain.ResolvedThresholds) {
	id := expected.ID

	if doc.CalcID != expected.CalcID {
		p.errorf("id %s: calc_id: expected %q, got %q", id, expected.CalcID, doc.CalcID)
	}
	if doc.AlarmLevel != expected.AlarmLevel {
		p.errorf("id %s: alarm_level: expected %q, got %q", id, expected.AlarmLevel, doc.AlarmLevel)
	}
	if !floatEq(doc.Threshold, expected.Threshold) {
		p.errorf("id %s: threshold: expected %g, got %g", id, expected.Threshold, doc.Threshold)
	}

	if len(doc.IVLs) != len(expected.IVLs) {
		p.errorf("id %s: row count: expected %d, got %d", id, len(expected.IVLs), len(doc.IVLs))
		return
	}
	for d := range expected.IVLs {
		if len(doc.IVLs[d]) != len(expected.IVLs[d]) {
			p.errorf("id %s: row %d length: expected %d, got %d", id, d, len(expected.IVLs[d]), len(doc.IVLs[d]))
			continue
		}
		for v := range expected.IVLs[d] {
			if !floatEq(doc.IVLs[d][v], expected.IVLs[d][v]) {
				p.errorf("id %s: ivls[%d][%d]: expected %g, got %g", id, d, v, expected.IVLs[d][v], doc.IVLs[d][v])
			}
		}
	}

	if doc.ResolvedAt.IsZero() {
		p.errorf("id %s: resolved_at is zero", id)
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
