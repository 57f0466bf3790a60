package processing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
)

// TargetColumn is the label column of the training CSV.
const TargetColumn = "potability"

// Dataset is a feature matrix with NaN marking missing cells.
type Dataset struct {
	FeatureNames []string
	X            [][]float64
	Y            []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Labels converts Y to 0/1 ints. Call after Clean.
func (d *Dataset) Labels() []int {
	out := make([]int, len(d.Y))
	for i, v := range d.Y {
		if v >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

// LoadCSVFile opens path and calls LoadCSV.
func LoadCSVFile(path string, featureNames []string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return LoadCSV(f, featureNames)
}

// LoadCSV reads a CSV with a header row. Columns are matched to featureNames
// and TargetColumn case-insensitively; blank or non-numeric cells become NaN.
func LoadCSV(r io.Reader, featureNames []string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make([]int, len(featureNames))
	var missing []string
	for i, name := range featureNames {
		c, ok := index[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[i] = c
	}
	targetCol, ok := index[TargetColumn]
	if !ok {
		missing = append(missing, TargetColumn)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset missing columns: %s", strings.Join(missing, ", "))
	}

	ds := &Dataset{FeatureNames: append([]string(nil), featureNames...)}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		row := make([]float64, len(cols))
		for i, c := range cols {
			row[i] = cell(record, c)
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, cell(record, targetCol))
	}

	return ds, nil
}

func cell(record []string, col int) float64 {
	if col >= len(record) {
		return math.NaN()
	}
	s := strings.TrimSpace(record[col])
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// CleanReport describes what Clean changed.
type CleanReport struct {
	DroppedRows   int
	FilledCells   map[string]int
	FilledMedians map[string]float64
}

// Clean drops rows without a target and fills missing feature cells with the
// column median of the remaining rows.
func Clean(ds *Dataset) (*Dataset, CleanReport) {
	report := CleanReport{
		FilledCells:   make(map[string]int),
		FilledMedians: make(map[string]float64),
	}
	out := &Dataset{FeatureNames: append([]string(nil), ds.FeatureNames...)}

	for i, row := range ds.X {
		if math.IsNaN(ds.Y[i]) {
			report.DroppedRows++
			continue
		}
		out.X = append(out.X, append([]float64(nil), row...))
		out.Y = append(out.Y, ds.Y[i])
	}

	for c, name := range out.FeatureNames {
		var present []float64
		gaps := 0
		for _, row := range out.X {
			if math.IsNaN(row[c]) {
				gaps++
				continue
			}
			present = append(present, row[c])
		}
		if gaps == 0 {
			continue
		}
		m := median(present)
		for _, row := range out.X {
			if math.IsNaN(row[c]) {
				row[c] = m
			}
		}
		report.FilledCells[name] = gaps
		report.FilledMedians[name] = m
	}

	return out, report
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Split holds a train/test partition.
type Split struct {
	XTrain [][]float64
	YTrain []int
	XTest  [][]float64
	YTest  []int
}

// StratifiedSplit partitions X/y keeping the class ratio in both halves.
// The same seed always yields the same partition.
func StratifiedSplit(X [][]float64, y []int, testFraction float64, seed int64) (Split, error) {
	if len(X) != len(y) {
		return Split{}, fmt.Errorf("rows and labels differ: %d vs %d", len(X), len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	var split Split
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(math.Round(float64(len(idx)) * testFraction))
		for k, i := range idx {
			if k < nTest {
				split.XTest = append(split.XTest, X[i])
				split.YTest = append(split.YTest, y[i])
			} else {
				split.XTrain = append(split.XTrain, X[i])
				split.YTrain = append(split.YTrain, y[i])
			}
		}
	}

	if len(split.XTrain) == 0 || len(split.XTest) == 0 {
		return Split{}, fmt.Errorf("not enough rows to split (%d)", len(X))
	}
	return split, nil
}

// FeatureSummary describes one column.
type FeatureSummary struct {
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Missing int     `json:"missing"`
}

// DatasetSummary is the descriptive overview printed before training.
type DatasetSummary struct {
	TotalRecords    int                       `json:"total_records"`
	PotableCount    int                       `json:"potable_count"`
	NonPotableCount int                       `json:"non_potable_count"`
	MissingTarget   int                       `json:"missing_target"`
	FeatureStats    map[string]FeatureSummary `json:"feature_stats"`
}

// Summarize computes per-feature statistics ignoring NaN cells. Std is the
// sample standard deviation.
func Summarize(ds *Dataset) DatasetSummary {
	s := DatasetSummary{
		TotalRecords: ds.Len(),
		FeatureStats: make(map[string]FeatureSummary, len(ds.FeatureNames)),
	}
	for _, v := range ds.Y {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			s.MissingTarget++
		case v >= 0.5:
			s.PotableCount++
		default:
			s.NonPotableCount++
		}
	}

	for c, name := range ds.FeatureNames {
		fs := FeatureSummary{Min: math.Inf(1), Max: math.Inf(-1)}
		var sum float64
		n := 0
		for _, row := range ds.X {
			v := row[c]
			if math.IsNaN(v) {
				fs.Missing++
				continue
			}
			sum += v
			n++
			fs.Min = math.Min(fs.Min, v)
			fs.Max = math.Max(fs.Max, v)
		}
		if n == 0 {
			fs.Min, fs.Max = 0, 0
			s.FeatureStats[name] = fs
			continue
		}
		fs.Mean = sum / float64(n)
		if n > 1 {
			var sq float64
			for _, row := range ds.X {
				if !math.IsNaN(row[c]) {
					d := row[c] - fs.Mean
					sq += d * d
				}
			}
			fs.Std = math.Sqrt(sq / float64(n-1))
		}
		s.FeatureStats[name] = fs
	}
	return s
}
