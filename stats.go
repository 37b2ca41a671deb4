package main

import (
	"fmt"

	"github.com/example/epidemic_sim/telemetry"
)

// PrintSummary writes a human-readable end-of-run report from the final
// frame and the telemetry window.
func PrintSummary(frame *SimulationFrame, window *telemetry.Window) {
	peakInfected, peakStep := 0, 0
	for _, pt := range window.Points() {
		active := pt.Counts.Infected + pt.Counts.Quarantined
		if active > peakInfected {
			peakInfected = active
			peakStep = pt.Step
		}
	}

	total := frame.Counts.Total()
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Steps completed:   %d\n", frame.Step)
	fmt.Printf("Population:        %d\n", total)
	fmt.Printf("Healthy:           %d\n", frame.Counts.Healthy)
	fmt.Printf("Infected:          %d\n", frame.Counts.Infected)
	fmt.Printf("Quarantined:       %d\n", frame.Counts.Quarantined)
	fmt.Printf("Recovered:         %d\n", frame.Counts.Recovered)
	fmt.Printf("Deceased:          %d\n", frame.Counts.Deceased)
	if total > 0 {
		affected := total - frame.Counts.Healthy
		fmt.Printf("Attack rate:       %.1f%%\n", 100*float64(affected)/float64(total))
	}
	fmt.Printf("Peak active cases: %d (step %d)\n", peakInfected, peakStep)

	steps, fallbacks := metrics.Snapshot()
	fmt.Printf("Engine steps:      %d (remote fallbacks %d)\n", steps, fallbacks)
}
