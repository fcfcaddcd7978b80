package console

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/roster/internal/models"
)

type field struct {
	label string
	get   func(*models.Student) string
	set   func(*models.Student, string) error
}

var formFields = []field{
	{"Mã SV", func(s *models.Student) string { return s.ID }, func(s *models.Student, v string) error { s.ID = v; return nil }},
	{"Họ tên", func(s *models.Student) string { return s.Name }, func(s *models.Student, v string) error { s.Name = v; return nil }},
	{"Ngày sinh (YYYY-MM-DD)", func(s *models.Student) string { return s.DOB.String() }, setDOB},
	{"Giới tính", func(s *models.Student) string { return s.Gender }, func(s *models.Student, v string) error { s.Gender = v; return nil }},
	{"Khoa", func(s *models.Student) string { return s.Faculty }, func(s *models.Student, v string) error { s.Faculty = v; return nil }},
	{"Khóa", func(s *models.Student) string { return string(s.SchoolYear) }, func(s *models.Student, v string) error { s.SchoolYear = models.SchoolYear(v); return nil }},
	{"Chương trình", func(s *models.Student) string { return s.Program }, func(s *models.Student, v string) error { s.Program = v; return nil }},
	{"Địa chỉ", func(s *models.Student) string { return s.Address }, func(s *models.Student, v string) error { s.Address = v; return nil }},
	{"Email", func(s *models.Student) string { return s.Email }, func(s *models.Student, v string) error { s.Email = v; return nil }},
	{"Số điện thoại", func(s *models.Student) string { return s.Phone }, func(s *models.Student, v string) error { s.Phone = v; return nil }},
	{"Trạng thái", func(s *models.Student) string { return s.Status }, func(s *models.Student, v string) error { s.Status = v; return nil }},
}

func setDOB(s *models.Student, v string) error {
	d, err := models.ParseDate(v)
	if err != nil {
		return err
	}
	s.DOB = d
	return nil
}

// fillForm prompts for every field, keeping the current value on an empty
// answer. The identifier is shown but not asked for when locked.
func (c *Console) fillForm(current models.Student, idLocked bool) (models.Student, error) {
	form := current
	for i, f := range formFields {
		if i == 0 && idLocked {
			fmt.Fprintf(c.out, "%s: %s (không thể sửa)\n", f.label, f.get(&form))
			continue
		}

		for {
			value := f.get(&form)
			if value != "" {
				fmt.Fprintf(c.out, "%s [%s]: ", f.label, value)
			} else {
				fmt.Fprintf(c.out, "%s: ", f.label)
			}

			line, err := c.readLine()
			if err != nil {
				return form, err
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			if err := f.set(&form, line); err != nil {
				fmt.Fprintf(c.out, "Giá trị không hợp lệ: %v\n", err)
				continue
			}
			break
		}
	}
	return form, nil
}
