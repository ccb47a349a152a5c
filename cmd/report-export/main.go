package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/models/reports"
	"github.com/mmdatafocus/billing_backend/utils"
)

// report-export writes the financial report of one business to an xlsx file,
// and optionally uploads it to GCS.
//
//   go run ./cmd/report-export -business-id=... -from=2024-03-01 -to=2024-03-31 -out=march.xlsx
//   go run ./cmd/report-export -business-id=... -gcs-bucket=reports -gcs-object=biz/march.xlsx
func main() {
	businessID := flag.String("business-id", "", "Required: business id (uuid)")
	fromStr := flag.String("from", "", "Window start YYYY-MM-DD (default: first day of this month)")
	toStr := flag.String("to", "", "Window end YYYY-MM-DD, inclusive (default: last day of this month)")
	out := flag.String("out", "", "Write the xlsx to this path")
	bucket := flag.String("gcs-bucket", "", "Upload to this bucket (falls back to GCS_BUCKET when -gcs-object is set)")
	object := flag.String("gcs-object", "", "Object name for the upload")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "--business-id is required")
		os.Exit(1)
	}
	if *out == "" && *object == "" {
		fmt.Fprintln(os.Stderr, "set --out and/or --gcs-object")
		os.Exit(1)
	}
	from, err := parseDate(*fromStr, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --from: %v\n", err)
		os.Exit(1)
	}
	to, err := parseDate(*toStr, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --to: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	ctx := utils.SetBusinessIdInContext(context.Background(), strings.TrimSpace(*businessID))

	report, err := reports.GetFinancialReport(ctx, models.NewGormStore(db), from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
	f, err := reports.ExportFinancialReport(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if *out != "" {
		if err := f.SaveAs(*out); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *out)
	}
	if *object != "" {
		buf, err := f.WriteToBuffer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
			os.Exit(1)
		}
		if err := utils.UploadBytesToGCS(ctx, *bucket, *object, buf.Bytes(), utils.ContentTypeXlsx); err != nil {
			fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("uploaded %s\n", *object)
	}
	fmt.Printf("net profit %s from %s to %s\n", report.Financials.NetProfit.StringFixed(2),
		report.FromDate.Format("2006-01-02"), report.ToDate.Format("2006-01-02"))
}

func parseDate(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, utils.ReportLocation())
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = utils.EndOfDay(t)
	}
	return &t, nil
}
