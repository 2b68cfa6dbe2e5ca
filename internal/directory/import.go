package directory

import (
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowError points at a spreadsheet row that could not be imported.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

var studentColumns = map[string]string{
	"email":        "email",
	"name":         "name",
	"hostel":       "hostel",
	"hostel_name":  "hostel",
	"room":         "room",
	"room_number":  "room",
	"parent_email": "parent_email",
	"parent_phone": "parent_phone",
}

// ParseStudentSheet reads the first sheet of an .xlsx workbook. The first row
// is a header naming the columns; order does not matter.
func ParseStudentSheet(r io.Reader, emailDomain string) ([]Student, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet is empty")
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if col, ok := studentColumns[key]; ok {
			idx[col] = i
		}
	}
	if _, ok := idx["email"]; !ok {
		return nil, nil, fmt.Errorf("header row must contain an email column")
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Student
	var bad []RowError
	for n, row := range rows[1:] {
		rowNum := n + 2
		email := strings.ToLower(cell(row, "email"))
		if email == "" {
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			bad = append(bad, RowError{Row: rowNum, Message: "invalid email"})
			continue
		}
		if emailDomain != "" && !strings.HasSuffix(email, strings.ToLower(emailDomain)) {
			bad = append(bad, RowError{Row: rowNum, Message: "email outside allowed domain"})
			continue
		}
		out = append(out, Student{
			Email:       email,
			Name:        cell(row, "name"),
			HostelName:  cell(row, "hostel"),
			RoomNumber:  cell(row, "room"),
			ParentEmail: strings.ToLower(cell(row, "parent_email")),
			ParentPhone: cell(row, "parent_phone"),
		})
	}
	return out, bad, nil
}
