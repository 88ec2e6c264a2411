package evaluation

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// WriteSummary prints a comparison table of the reports followed by one
// confusion matrix per approach.
func WriteSummary(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "APPROACH\tSAMPLES\tACCURACY\tOFF-BY-ONE\tJSON VALID")
	for i := range reports {
		r := &reports[i]
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%.1f%%\t%.1f%%\n",
			r.Approach, r.Total, 100*r.Accuracy(), 100*r.OffByOneAccuracy(), 100*r.JSONValidityRate())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for i := range reports {
		if _, err := fmt.Fprintf(w, "\n%s confusion (rows: actual, columns: predicted)\n", reports[i].Approach); err != nil {
			return err
		}
		if err := writeConfusion(w, &reports[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeConfusion(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	cols := make([]string, 0, domain.MaxRating)
	for p := domain.MinRating; p <= domain.MaxRating; p++ {
		cols = append(cols, fmt.Sprintf("%d", p))
	}
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(cols, "\t"))
	for a := domain.MinRating; a <= domain.MaxRating; a++ {
		fmt.Fprintf(tw, "%d", a)
		for p := domain.MinRating; p <= domain.MaxRating; p++ {
			fmt.Fprintf(tw, "\t%d", r.Confusion[a-1][p-1])
		}
		fmt.Fprint(tw, "\t\n")
	}
	return tw.Flush()
}
