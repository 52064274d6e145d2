package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"massbal/internal/costing"
	"massbal/internal/engine"
	"massbal/pkg/api"
)

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

type runOutput struct {
	RunID       string            `json:"run_id"`
	ProjectType string            `json:"project_type"`
	Results     *api.Results      `json:"results"`
	Cost        *costing.Estimate `json:"cost,omitempty"`
}

func outputRunJSON(run *engine.Run, est *costing.Estimate) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(runOutput{
		RunID:       run.ID,
		ProjectType: string(run.ProjectType),
		Results:     run.Results,
		Cost:        est,
	})
}

func outputRunTable(run *engine.Run, est *costing.Estimate) error {
	res := run.Results

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Printf("║  MASS BALANCE - %-45s ║\n", strings.ToUpper(string(run.ProjectType)))
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")

	for _, st := range append(append([]api.Stage{}, res.LiquidStages...), res.ADStages...) {
		fmt.Printf("║  %-32s %10.2f → %-10.2f %s ║\n",
			truncate(st.Name, 32), st.Influent.Flow, st.Effluent.Flow,
			fmt.Sprintf("%-4s", st.Influent.FlowUnit))
	}

	if len(res.LiquidStages) > 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		status := "converged"
		if !res.Convergence.Achieved {
			status = "NOT CONVERGED"
		}
		fmt.Printf("║  Recycle loop: %-14s after %2d iterations              ║\n",
			status, res.Convergence.Iterations)
	}

	if len(res.Summary) > 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		fmt.Println("║  SUMMARY                                                      ║")
		for _, k := range sortedKeys(res.Summary) {
			fmt.Printf("║    %-40s %15.2f  ║\n", k, res.Summary[k])
		}
	}

	if len(res.Equipment) > 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		fmt.Printf("║  EQUIPMENT (%2d items)                                         ║\n", len(res.Equipment))
		for _, eq := range res.Equipment {
			fmt.Printf("║    %dx %-54s ║\n", eq.Quantity, truncate(eq.Type, 54))
		}
	}

	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	for _, w := range res.Warnings {
		prefix := "NOTE"
		switch w.Severity {
		case api.SeverityWarning:
			prefix = "WARN"
		case api.SeverityError:
			prefix = "ERROR"
		}
		fmt.Printf("  [%s] %s: %s\n", prefix, w.Field, w.Message)
	}
	if len(res.Assumptions) > 0 {
		fmt.Printf("  %d assumed defaults (run with --format json for details)\n", len(res.Assumptions))
	}

	if est != nil {
		fmt.Println()
		printCostTable(est)
	}
	return nil
}

func printCostTable(est *costing.Estimate) {
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      COST ESTIMATE                            ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Total Capital:         $%-36s ║\n", est.TotalCapital.StringFixed(0))
	fmt.Printf("║  Annual O&M:            $%-36s ║\n", est.TotalAnnualOM.StringFixed(0))
	fmt.Printf("║  Confidence:            %-37s ║\n", fmt.Sprintf("%.0f%%", est.Confidence*100))
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Println("║  TOP COST DRIVERS                                             ║")

	maxDrivers := 5
	if len(est.Drivers) < maxDrivers {
		maxDrivers = len(est.Drivers)
	}
	for i := 0; i < maxDrivers; i++ {
		d := est.Drivers[i]
		fmt.Printf("║    %-37s $%-19s ║\n", truncate(d.Type, 37), d.CapitalCost.StringFixed(0))
	}
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	for _, w := range est.Warnings {
		fmt.Printf("  [WARN] %s\n", w)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
