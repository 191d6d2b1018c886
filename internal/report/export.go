package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Cuộc họp"
	XLSXContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilePattern = "cuoc-hop-%s.xlsx"
)

var exportHeader = []interface{}{
	"Số cuộc họp", "Nội dung", "Ngày", "Giờ", "Chủ trì", "Địa điểm", "Trạng thái",
}

// ExportMeetings writes every meeting matching f to an xlsx workbook, in
// list order. It returns the workbook and a suggested file name.
func (s *Service) ExportMeetings(ctx context.Context, f meeting.Filter) (*bytes.Buffer, string, error) {
	all, err := s.collect(ctx, f)
	if err != nil {
		return nil, "", err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	idx, err := wb.NewSheet(exportSheet)
	if err != nil {
		return nil, "", err
	}
	wb.SetActiveSheet(idx)
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", err
	}

	if err := wb.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, "", err
	}
	last, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := wb.SetCellStyle(exportSheet, "A1", last+"1", headerStyle); err != nil {
		return nil, "", err
	}

	for i, m := range all {
		location := ""
		if m.Location != nil {
			location = *m.Location
		}
		row := []interface{}{
			m.MeetingNumber,
			m.Title,
			m.Date.Format("02/01/2006"),
			m.TimeString(),
			m.HostName,
			location,
			m.Status.Label(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := wb.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, "", err
		}
	}

	_ = wb.SetColWidth(exportSheet, "A", "A", 16)
	_ = wb.SetColWidth(exportSheet, "B", "B", 48)
	_ = wb.SetColWidth(exportSheet, "C", "G", 16)

	buf := new(bytes.Buffer)
	if err := wb.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("meetings exported", "rows", len(all))
	return buf, fmt.Sprintf(exportFilePattern, time.Now().Format("20060102")), nil
}

// collect pages through the whole result set.
func (s *Service) collect(ctx context.Context, f meeting.Filter) ([]*meeting.Meeting, error) {
	f.Limit = meeting.MaxPageSize
	f.Offset = 0

	var all []*meeting.Meeting
	for {
		page, total, err := s.meetings.ListMeetings(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < f.Limit || int64(len(all)) >= total {
			return all, nil
		}
		f.Offset += len(page)
	}
}
