package console

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/notify"
	"github.com/shrimpsizemoose/roster/internal/render"
	"github.com/shrimpsizemoose/roster/internal/roster"
)

type memoryGateway struct {
	students map[string]models.Student
	creates  int
}

func newMemoryGateway(students ...models.Student) *memoryGateway {
	g := &memoryGateway{students: map[string]models.Student{}}
	for _, s := range students {
		g.students[s.ID] = s
	}
	return g
}

func (g *memoryGateway) sorted() []models.Student {
	out := []models.Student{}
	for _, s := range g.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *memoryGateway) List(context.Context) ([]models.Student, error) {
	return g.sorted(), nil
}

func (g *memoryGateway) Get(_ context.Context, id string) (*models.Student, error) {
	s, ok := g.students[id]
	if !ok {
		return nil, fmt.Errorf("student %s not found", id)
	}
	return &s, nil
}

func (g *memoryGateway) Create(_ context.Context, s *models.Student) (*models.Student, error) {
	g.creates++
	g.students[s.ID] = *s
	return s, nil
}

func (g *memoryGateway) Update(_ context.Context, id string, s *models.Student) (*models.Student, error) {
	g.students[id] = *s
	return s, nil
}

func (g *memoryGateway) Delete(_ context.Context, id string) error {
	delete(g.students, id)
	return nil
}

func (g *memoryGateway) Search(_ context.Context, q string) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range g.sorted() {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(q)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func run(t *testing.T, gw roster.Gateway, script string) string {
	var out bytes.Buffer
	c := New(strings.NewReader(script), &out)
	ctrl := roster.NewController(gw, roster.Options{
		Renderer:  render.NewTable(&out),
		Notifier:  notify.NewBanner(&out, 0),
		Confirmer: c,
	})
	c.Attach(ctrl)

	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func existing() models.Student {
	return models.Student{ID: "sv001", Name: "Nguyen Van A", Email: "a@b.com", Phone: "0912345678", Status: "Đang học"}
}

func TestConsole_ListAndSearch(t *testing.T) {
	out := run(t, newMemoryGateway(existing()), "list\nsearch nguyen\nsearch tran\nquit\n")

	assert.Contains(t, out, "Danh sách sinh viên")
	assert.Contains(t, out, "Nguyen Van A")
	assert.Contains(t, out, "[success] Đã tìm thấy 1 kết quả.")
	assert.Contains(t, out, render.EmptyPlaceholder)
	assert.Contains(t, out, "[info] "+roster.MsgNoResults)
}

func TestConsole_AddWithRetryAfterValidation(t *testing.T) {
	gw := newMemoryGateway()
	script := strings.Join([]string{
		"add",
		"sv002", "Trần Thị B", "2003-02-01", "Nữ", "CNTT", "2021", "", "", "b@c.vn", "123456", "",
		"y",
		"", "", "", "", "", "", "", "", "", "0987654321", "",
		"quit",
	}, "\n") + "\n"

	out := run(t, gw, script)

	assert.Contains(t, out, "[error] "+models.MsgInvalidPhone)
	assert.Contains(t, out, "[success] "+roster.MsgCreated)
	assert.Equal(t, 1, gw.creates)
	require.Contains(t, gw.students, "sv002")
	assert.Equal(t, "0987654321", gw.students["sv002"].Phone)
	assert.Equal(t, "2003-02-01", gw.students["sv002"].DOB.String())
}

func TestConsole_DeleteNeedsConfirmation(t *testing.T) {
	gw := newMemoryGateway(existing())

	run(t, gw, "delete sv001\nn\nquit\n")
	assert.Contains(t, gw.students, "sv001")

	out := run(t, gw, "delete sv001\ny\n")
	assert.NotContains(t, gw.students, "sv001")
	assert.Contains(t, out, roster.MsgDeleted)
}

func TestConsole_EditLocksID(t *testing.T) {
	gw := newMemoryGateway(existing())
	script := "edit sv001\nNguyen Van An\n\n\n\n\n\n\n\n\nBảo lưu\n"

	out := run(t, gw, script)

	assert.Contains(t, out, "Mã SV: sv001 (không thể sửa)")
	assert.Equal(t, "Nguyen Van An", gw.students["sv001"].Name)
	assert.Equal(t, "Bảo lưu", gw.students["sv001"].Status)
	assert.Len(t, gw.students, 1)
}

func TestConsole_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.xlsx")
	out := run(t, newMemoryGateway(existing()), "list\nexport "+path+"\n")

	assert.Contains(t, out, "Đã xuất 1 sinh viên")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestConsole_UnknownCommand(t *testing.T) {
	out := run(t, newMemoryGateway(), "frobnicate\n")
	assert.Contains(t, out, "Lệnh không hợp lệ: frobnicate")
}
