package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"aquawatch/internal/evaluator"
	"aquawatch/internal/models"
)

func printReport(w io.Writer, readings, alerts []models.Reading) {
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "1. Latest readings (%d)\n", len(readings))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-8s %-20s %-16s %8s %10s %12s %-12s\n",
		"id", "timestamp", "device", "ph", "turbidity", "chloramines", "label")
	potable := 0
	for _, r := range readings {
		v := models.NewReadingView(r)
		if r.IsPotable() {
			potable++
		}
		fmt.Fprintf(w, "%-8d %-20s %-16s %8.2f %10.2f %12.2f %-12s\n",
			r.ID, r.Timestamp.UTC().Format(time.DateTime), orDash(r.DeviceID),
			r.PH, r.Turbidity, r.Chloramines, v.PotabilityLabel)
	}
	fmt.Fprintf(w, "potable: %d / %d\n", potable, len(readings))

	classifier := evaluator.NewAlertClassifier()
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "2. Alerts (%d)\n", len(alerts))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-8s %-20s %-16s %-8s %s\n", "id", "timestamp", "device", "severity", "message")
	for _, r := range alerts {
		a := classifier.View(r)
		fmt.Fprintf(w, "%-8d %-20s %-16s %-8s %s\n",
			a.ID, a.Timestamp.UTC().Format(time.DateTime), orDash(a.DeviceID), a.Severity, a.Message)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
