package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/roster"
)

const EmptyPlaceholder = "Không có sinh viên nào"

var Columns = []string{"Mã SV", "Họ tên", "Ngày sinh", "Giới tính", "Khoa", "Khóa", "Trạng thái"}

// Table prints the view-state as an aligned text table.
type Table struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTable(out io.Writer) *Table {
	return &Table{out: out}
}

func (t *Table) Render(view roster.ViewState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := Write(t.out, view); err != nil {
		fmt.Fprintf(t.out, "render failed: %v\n", err)
	}
}

func Write(out io.Writer, view roster.ViewState) error {
	switch view.Kind {
	case roster.ViewSearch:
		fmt.Fprintf(out, "Kết quả tìm kiếm %q\n", view.Query)
	default:
		fmt.Fprintln(out, "Danh sách sinh viên")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(Columns, "\t"))

	if view.Empty() {
		// single row across all columns
		fmt.Fprintln(tw, EmptyPlaceholder)
		return tw.Flush()
	}

	for _, s := range view.Students {
		fmt.Fprintln(tw, strings.Join(Row(s), "\t"))
	}
	return tw.Flush()
}

func Row(s models.Student) []string {
	return []string{
		s.ID,
		s.Name,
		s.DOB.Display(),
		s.Gender,
		s.Faculty,
		string(s.SchoolYear),
		s.Status,
	}
}
