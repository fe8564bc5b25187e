// Package stub is a local stand-in for the inference backend. It speaks the
// same HTTP contract as the real service and derives deterministic
// predictions and heatmaps from an uploaded coverage table. It is not a model.
package stub

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Autosomes is the number of chromosomes laid out in the coverage matrix.
const Autosomes = 22

// Bin is one row of a coverage table.
type Bin struct {
	Chrom int
	Start int64
	End   int64
	Cov   float64
}

// Arm is one chromosome arm in genome coordinates.
type Arm struct {
	Chrom int
	Name  string // "1p", "1q", ...
	Start int64
	End   int64
}

func (a Arm) Len() int64 { return a.End - a.Start }

// chromosome length and approximate centromere midpoint, GRCh38.
var grch38 = [Autosomes][2]int64{
	{248956422, 123400000}, {242193529, 93900000}, {198295559, 90900000},
	{190214555, 50000000}, {181538259, 48800000}, {170805979, 59800000},
	{159345973, 60100000}, {145138636, 45200000}, {138394717, 43000000},
	{133797422, 39800000}, {135086622, 53400000}, {133275309, 35500000},
	{114364328, 17700000}, {107043718, 17200000}, {101991189, 19000000},
	{90338345, 36800000}, {83257441, 25100000}, {80373285, 18500000},
	{58617616, 26200000}, {64444167, 28100000}, {46709983, 12000000},
	{50818468, 15000000},
}

// Arms returns the p and q arms of chromosomes 1-22 in order.
func Arms() []Arm {
	out := make([]Arm, 0, 2*Autosomes)
	for i, c := range grch38 {
		chrom := i + 1
		out = append(out,
			Arm{Chrom: chrom, Name: fmt.Sprintf("%dp", chrom), Start: 0, End: c[1]},
			Arm{Chrom: chrom, Name: fmt.Sprintf("%dq", chrom), Start: c[1], End: c[0]},
		)
	}
	return out
}

// ErrNoData is returned for a table without usable autosome rows.
var ErrNoData = errors.New("coverage table has no autosome rows")

var requiredColumns = []string{"chrom", "start", "end", "corrected_cov"}

// ParseCoverage reads a tab-separated table with a header naming at least
// chrom, start, end and corrected_cov. Sex chromosomes and unknown contigs
// are skipped; rows with NaN coverage are kept as missing.
func ParseCoverage(r io.Reader) ([]Bin, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty coverage table")
	}
	idx, err := headerIndex(sc.Text())
	if err != nil {
		return nil, err
	}
	var bins []Bin
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) <= idx[3] || len(fields) <= idx[0] || len(fields) <= idx[1] || len(fields) <= idx[2] {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(requiredColumns), len(fields))
		}
		chrom, ok := parseChrom(fields[idx[0]])
		if !ok {
			continue
		}
		start, err := strconv.ParseInt(strings.TrimSpace(fields[idx[1]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", line, err)
		}
		end, err := strconv.ParseInt(strings.TrimSpace(fields[idx[2]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: end: %w", line, err)
		}
		cov, err := strconv.ParseFloat(strings.TrimSpace(fields[idx[3]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: corrected_cov: %w", line, err)
		}
		bins = append(bins, Bin{Chrom: chrom, Start: start, End: end, Cov: cov})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, ErrNoData
	}
	return bins, nil
}

func headerIndex(header string) ([4]int, error) {
	var idx [4]int
	cols := strings.Split(strings.TrimRight(header, "\r"), "\t")
	for i, want := range requiredColumns {
		idx[i] = -1
		for j, c := range cols {
			if strings.EqualFold(strings.TrimSpace(c), want) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return idx, fmt.Errorf("missing column %q", want)
		}
	}
	return idx, nil
}

func parseChrom(s string) (int, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "chr")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > Autosomes {
		return 0, false
	}
	return n, true
}

// BestWindowSize picks the window in [min, max] (stepping by step) that
// leaves the smallest remainder when dividing length. Ties keep the smaller window.
func BestWindowSize(length, min, max, step int64) int64 {
	if step <= 0 || min <= 0 || max < min {
		return min
	}
	best, bestRem := min, int64(math.MaxInt64)
	for w := min; w <= max; w += step {
		if rem := length % w; rem < bestRem {
			best, bestRem = w, rem
		}
	}
	return best
}

// WindowOptions bounds the smoothing window search.
type WindowOptions struct {
	Min  int64
	Max  int64
	Step int64
}

// DefaultWindows suits whole-genome tables binned at ~100 kb.
var DefaultWindows = WindowOptions{Min: 1_000_000, Max: 5_000_000, Step: 500_000}

// Smooth takes the median coverage of the bins fully inside each window of
// each arm. Windows without bins are NaN; an incomplete trailing window is dropped.
func Smooth(bins []Bin, w WindowOptions) map[string][]float64 {
	byChrom := make(map[int][]Bin)
	for _, b := range bins {
		byChrom[b.Chrom] = append(byChrom[b.Chrom], b)
	}
	out := make(map[string][]float64)
	for _, arm := range Arms() {
		data := byChrom[arm.Chrom]
		if len(data) == 0 {
			continue
		}
		size := BestWindowSize(arm.Len(), w.Min, w.Max, w.Step)
		if size <= 0 {
			continue
		}
		n := arm.Len() / size // full windows only
		vals := make([]float64, 0, n)
		for i := int64(0); i < n; i++ {
			ws := arm.Start + i*size
			we := ws + size
			var window []float64
			for _, b := range data {
				if b.Start >= ws && b.End <= we && !math.IsNaN(b.Cov) {
					window = append(window, b.Cov)
				}
			}
			vals = append(vals, median(window))
		}
		out[arm.Name] = vals
	}
	return out
}

// Matrix lays smoothed arms out as 22 rows by 2*maxBins columns: p arms
// right-aligned against the centre line, q arms left-aligned after it.
// Chromosomes missing either arm stay NaN.
func Matrix(smoothed map[string][]float64) [][]float64 {
	maxBins := 0
	for _, v := range smoothed {
		if len(v) > maxBins {
			maxBins = len(v)
		}
	}
	m := make([][]float64, Autosomes)
	for i := range m {
		row := make([]float64, 2*maxBins)
		for j := range row {
			row[j] = math.NaN()
		}
		p, okP := smoothed[fmt.Sprintf("%dp", i+1)]
		q, okQ := smoothed[fmt.Sprintf("%dq", i+1)]
		if okP && okQ {
			copy(row[maxBins-len(p):maxBins], p)
			copy(row[maxBins:], q)
		}
		m[i] = row
	}
	return m
}

// Score is the median of the finite, non-zero cells of m.
func Score(m [][]float64) float64 {
	var vals []float64
	for _, row := range m {
		for _, v := range row {
			if !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0 {
				vals = append(vals, v)
			}
		}
	}
	return median(vals)
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
