package store

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/kitreq/internal/model"
)

// InventoryCSVHeader is the first line of an inventory export.
const InventoryCSVHeader = "Item Name,Requested,On Hand,Received,Missing,Custodian,Location,Email,Phone,Expendable,Status"

// InventoryExportFilename names an inventory export taken at t.
func InventoryExportFilename(t time.Time) string {
	return "inventory_export_" + t.UTC().Format("2006-01-02") + ".csv"
}

// SurveyExportFilename names a survey export taken at t.
func SurveyExportFilename(t time.Time) string {
	return "survey_export_" + t.UTC().Format("2006-01-02") + ".csv"
}

// quoteCSV always wraps s in double quotes, doubling any quotes inside.
func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteInventoryCSV writes items as CSV. Text columns are always quoted,
// numeric and Yes/No columns never are.
func WriteInventoryCSV(w io.Writer, items []model.InventoryItem) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(InventoryCSVHeader + "\n")

	for _, it := range items {
		fields := []string{
			quoteCSV(it.ItemName),
			strconv.Itoa(it.Requested),
			strconv.Itoa(it.OnHand),
			strconv.Itoa(it.Received),
			strconv.Itoa(it.Missing),
			quoteCSV(it.Custodian),
			quoteCSV(it.Location),
			quoteCSV(it.Email),
			quoteCSV(it.Phone),
			yesNo(it.Expendable),
			quoteCSV(string(it.Status())),
		}
		bw.WriteString(strings.Join(fields, ",") + "\n")
	}
	return bw.Flush()
}

// ExportInventory writes the items passing filter as CSV.
func ExportInventory(ctx context.Context, db *sql.DB, w io.Writer, filter model.Filter) error {
	items, err := ListInventory(ctx, db)
	if err != nil {
		return err
	}
	if err := WriteInventoryCSV(w, filter.Apply(items)); err != nil {
		return fmt.Errorf("writing inventory csv: %w", err)
	}
	return nil
}

// WriteSurveysCSV writes survey responses as CSV.
func WriteSurveysCSV(w io.Writer, surveys []model.SurveyResponse) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Submitted", "User Type", "Would Use Again", "Prefer Over Excel", "Feedback"})
	for _, s := range surveys {
		cw.Write([]string{
			s.CreatedAt.UTC().Format(time.RFC3339),
			s.UserType,
			s.WouldUseAgain,
			s.PreferOverExcel,
			s.Feedback,
		})
	}
	cw.Flush()
	return cw.Error()
}

// ExportSurveys writes every survey response as CSV.
func ExportSurveys(ctx context.Context, db *sql.DB, w io.Writer) error {
	surveys, err := ListSurveys(ctx, db)
	if err != nil {
		return err
	}
	if err := WriteSurveysCSV(w, surveys); err != nil {
		return fmt.Errorf("writing survey csv: %w", err)
	}
	return nil
}
