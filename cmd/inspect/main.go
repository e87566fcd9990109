// Command inspect performs integrity checks over a stormsummary output
// directory: summary files present, unique event identifiers in the master
// table, no negative counts or damage figures, months inside the analysis
// window, and deterministic (sorted) group keys.
//
// Usage:
//
//	inspect -dir ./out
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var summaryFiles = []string{
	"events_by_type.csv",
	"fatalities_by_type.csv",
	"fatalities_by_region.csv",
	"fatalities_by_month.csv",
	"damage_by_type.csv",
	"events_master.csv",
	"cleaning_report.csv",
}

func main() {
	dir := flag.String("dir", "", "stormsummary output directory")
	windowStart := flag.String("window-start", "2024-01", "first month of the analysis window (YYYY-MM)")
	windowEnd := flag.String("window-end", "2024-09", "last month of the analysis window (YYYY-MM)")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dir, *windowStart, *windowEnd))
}

func run(dir, windowStart, windowEnd string) int {
	fmt.Println("=== Storm Summary Output Inspection ===")
	fmt.Println()

	phases := []*phase{
		checkFilesPresent(dir),
		checkMaster(dir, windowStart, windowEnd),
		checkSummaryOrdering(dir),
		checkNonNegative(dir),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

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
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nInspection FAILED.")
	return 1
}

func checkFilesPresent(dir string) *phase {
	p := &phase{name: "output files present"}
	for _, name := range summaryFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			p.errorf("%s: %v", name, err)
		}
	}
	return p
}

func checkMaster(dir, windowStart, windowEnd string) *phase {
	p := &phase{name: "master table integrity"}
	rows, header, err := loadCSV(filepath.Join(dir, "events_master.csv"))
	if err != nil {
		p.errorf("load: %v", err)
		return p
	}

	idCol := indexOf(header, "event_id")
	monthCol := indexOf(header, "month")
	if idCol < 0 || monthCol < 0 {
		p.errorf("missing event_id or month column in header %v", header)
		return p
	}

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		id := row[idCol]
		if id == "" {
			p.errorf("row %d: empty event_id", i+2)
			continue
		}
		if seen[id] {
			p.errorf("row %d: duplicate event_id %s", i+2, id)
		}
		seen[id] = true

		month := row[monthCol]
		if month < windowStart || month > windowEnd {
			p.errorf("row %d: month %s outside window %s..%s", i+2, month, windowStart, windowEnd)
		}
	}
	return p
}

func checkSummaryOrdering(dir string) *phase {
	p := &phase{name: "summary group keys sorted"}
	for _, name := range summaryFiles[:5] {
		rows, _, err := loadCSV(filepath.Join(dir, name))
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		keys := make([]string, len(rows))
		for i, row := range rows {
			keys[i] = row[0]
		}
		if !sort.StringsAreSorted(keys) {
			p.errorf("%s: group keys not sorted", name)
		}
	}
	return p
}

func checkNonNegative(dir string) *phase {
	p := &phase{name: "no negative counts or damage"}
	for _, name := range summaryFiles[:5] {
		rows, header, err := loadCSV(filepath.Join(dir, name))
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		for i, row := range rows {
			for col := 1; col < len(row); col++ {
				v, err := strconv.ParseFloat(row[col], 64)
				if err != nil {
					p.errorf("%s row %d: %s %q is not numeric", name, i+2, header[col], row[col])
					continue
				}
				if v < 0 {
					p.errorf("%s row %d: negative %s %v", name, i+2, header[col], v)
				}
			}
		}
	}
	return p
}

func loadCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file %s", path)
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
	}
	return all[1:], header, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
