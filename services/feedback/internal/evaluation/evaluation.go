// Package evaluation measures rating-prediction quality over a labelled
// review dataset, one report per prompting approach.
package evaluation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// Dataset column names. Yelp review exports use these.
const (
	ColumnText  = "text"
	ColumnStars = "stars"
)

// Sample is one labelled review.
type Sample struct {
	Text  string
	Stars int
}

// Predictor is satisfied by service.PredictionService.
type Predictor interface {
	Predict(ctx context.Context, reviewText string, approach domain.Approach) (domain.PredictionResult, error)
}

// Row is the outcome of one prediction.
type Row struct {
	Index     int
	Approach  domain.Approach
	Actual    int
	Predicted int
	JSONValid bool
	Reason    string
}

// Report aggregates the rows of one approach.
type Report struct {
	Approach  domain.Approach
	Total     int
	Exact     int
	OffByOne  int
	ValidJSON int

	// Confusion[actual-1][predicted-1] counts predictions.
	Confusion [domain.MaxRating][domain.MaxRating]int
}

// Accuracy is the share of exact predictions.
func (r *Report) Accuracy() float64 { return ratio(r.Exact, r.Total) }

// OffByOneAccuracy is the share of predictions within one star.
func (r *Report) OffByOneAccuracy() float64 { return ratio(r.OffByOne, r.Total) }

// JSONValidityRate is the share of replies that parsed as a valid result.
func (r *Report) JSONValidityRate() float64 { return ratio(r.ValidJSON, r.Total) }

func (r *Report) add(row Row) {
	r.Total++
	if row.Actual == row.Predicted {
		r.Exact++
	}
	if d := row.Actual - row.Predicted; d >= -1 && d <= 1 {
		r.OffByOne++
	}
	if row.JSONValid {
		r.ValidJSON++
	}
	if domain.IsValidRating(row.Actual) && domain.IsValidRating(row.Predicted) {
		r.Confusion[row.Actual-1][row.Predicted-1]++
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// LoadDataset reads samples from a CSV with a header containing "text" and
// "stars" columns, in any order and case. Rows whose stars are not a rating
// in 1..5 are skipped. limit > 0 stops after that many samples.
func LoadDataset(r io.Reader, limit int) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	textCol, starsCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case ColumnText:
			textCol = i
		case ColumnStars:
			starsCol = i
		}
	}
	if textCol < 0 || starsCol < 0 {
		return nil, fmt.Errorf("dataset header must contain %q and %q columns", ColumnText, ColumnStars)
	}

	var samples []Sample
	for limit <= 0 || len(samples) < limit {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		if textCol >= len(rec) || starsCol >= len(rec) {
			continue
		}

		stars, err := parseStars(rec[starsCol])
		if err != nil || !domain.IsValidRating(stars) {
			continue
		}
		text := strings.TrimSpace(rec[textCol])
		if text == "" {
			continue
		}
		samples = append(samples, Sample{Text: text, Stars: stars})
	}
	return samples, nil
}

// parseStars accepts "4" and "4.0".
func parseStars(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("stars %q is not a whole number", s)
	}
	return int(f), nil
}

// Run predicts every sample with every approach and returns one report per
// approach in the given order. onRow, when non-nil, sees each row as it is
// produced. A canceled context stops the run with its error.
func Run(ctx context.Context, p Predictor, samples []Sample, approaches []domain.Approach, onRow func(Row)) ([]Report, error) {
	reports := make([]Report, len(approaches))
	for i, a := range approaches {
		reports[i].Approach = a
		for j, s := range samples {
			if err := ctx.Err(); err != nil {
				return reports, err
			}

			res, err := p.Predict(ctx, s.Text, a)
			if err != nil {
				return reports, fmt.Errorf("predict sample %d with %s: %w", j, a, err)
			}

			row := Row{
				Index:     j,
				Approach:  a,
				Actual:    s.Stars,
				Predicted: res.PredictedStars,
				JSONValid: res.JSONValid,
				Reason:    res.Explanation,
			}
			reports[i].add(row)
			if onRow != nil {
				onRow(row)
			}
		}
	}
	return reports, nil
}

// RowWriter writes rows as CSV.
type RowWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewRowWriter creates a RowWriter over w.
func NewRowWriter(w io.Writer) *RowWriter {
	return &RowWriter{w: csv.NewWriter(w)}
}

// Write appends one row, writing the header first.
func (rw *RowWriter) Write(row Row) error {
	if !rw.wroteHeader {
		if err := rw.w.Write([]string{"index", "approach", "actual_stars", "predicted_stars", "json_valid", "explanation"}); err != nil {
			return err
		}
		rw.wroteHeader = true
	}
	return rw.w.Write([]string{
		strconv.Itoa(row.Index),
		string(row.Approach),
		strconv.Itoa(row.Actual),
		strconv.Itoa(row.Predicted),
		strconv.FormatBool(row.JSONValid),
		row.Reason,
	})
}

// Flush flushes buffered rows and reports any write error.
func (rw *RowWriter) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
