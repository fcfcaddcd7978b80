package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/shrimpsizemoose/roster/internal/models"
)

const SheetName = "SinhVien"

var Headers = []string{
	"Mã SV", "Họ tên", "Ngày sinh", "Giới tính", "Khoa", "Khóa",
	"Chương trình", "Địa chỉ", "Email", "Số điện thoại", "Trạng thái",
}

// WriteXLSX writes students as a single-sheet workbook, header row first.
func WriteXLSX(w io.Writer, students []models.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.ID,
			s.Name,
			s.DOB.String(),
			s.Gender,
			s.Faculty,
			string(s.SchoolYear),
			s.Program,
			s.Address,
			s.Email,
			s.Phone,
			s.Status,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", s.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
