package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"outingpass/internal/booking"
)

const Sheet = "Outings"

type Record struct {
	booking.Booking
	Overdue bool
}

var headers = []string{
	"Name", "Email", "Hostel", "Room", "Out date", "Out time", "In date", "In time",
	"Reason", "Parent email", "Parent phone", "Status", "Overdue", "Handled by", "Rejection reason",
}

// Workbook renders records into a single-sheet workbook. The caller closes it.
func Workbook(records []Record) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(Sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(Sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(Sheet, "A1", last, style)
	}

	overdueStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	if err != nil {
		overdueStyle = 0
	}

	for i, rec := range records {
		row := i + 2
		overdue := ""
		if rec.Overdue {
			overdue = "yes"
		}
		values := []any{
			rec.Name, rec.Email, rec.HostelName, rec.RoomNumber, rec.OutDate, rec.OutTime, rec.InDate, rec.InTime,
			rec.Reason, rec.ParentEmail, rec.ParentPhone, string(rec.Status), overdue, rec.HandledBy, rec.RejectionReason,
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(Sheet, start, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if rec.Overdue && overdueStyle != 0 {
			end, _ := excelize.CoordinatesToCellName(len(headers), row)
			f.SetCellStyle(Sheet, start, end, overdueStyle)
		}
	}

	f.SetColWidth(Sheet, "A", "B", 28)
	f.SetColWidth(Sheet, "I", "J", 32)
	return f, nil
}
