package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/export"
	"github.com/shrimpsizemoose/roster/internal/roster"
)

const help = `Các lệnh:
list                 - Hiển thị toàn bộ sinh viên
search <từ khóa>     - Tìm kiếm sinh viên
add                  - Thêm sinh viên mới
edit <mã SV>         - Sửa thông tin sinh viên
delete <mã SV>       - Xóa sinh viên
export <file.xlsx>   - Xuất danh sách đang hiển thị ra Excel
help                 - Hiển thị hướng dẫn này
quit                 - Thoát`

var errQuit = errors.New("quit")

type commandHandler func(ctx context.Context, args []string) error

// Console is a line-oriented front end for the roster controller.
type Console struct {
	ctrl *roster.Controller
	in   *bufio.Reader
	out  io.Writer
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Attach binds the controller. The console is created first because the
// controller needs it as its Confirmer.
func (c *Console) Attach(ctrl *roster.Controller) {
	c.ctrl = ctrl
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s (y/N): ", prompt)
	line, err := c.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "c", "có":
		return true
	default:
		return false
	}
}

func (c *Console) routeCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"list":   c.handleList,
		"search": c.handleSearch,
		"add":    c.handleAdd,
		"edit":   c.handleEdit,
		"delete": c.handleDelete,
		"export": c.handleExport,
		"help":   c.handleHelp,
		"quit":   c.handleQuit,
		"exit":   c.handleQuit,
	}
	handler, found := commands[cmd]
	return handler, found
}

// Run reads commands until quit or end of input.
func (c *Console) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		handler, ok := c.routeCommands(strings.ToLower(fields[0]))
		if !ok {
			fmt.Fprintf(c.out, "Lệnh không hợp lệ: %s. Gõ help để xem danh sách lệnh.\n", fields[0])
			continue
		}

		err = handler(ctx, fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			logger.Debug.Printf("Command %s failed: %v", fields[0], err)
		}
	}
}

func (c *Console) handleHelp(context.Context, []string) error {
	fmt.Fprintln(c.out, help)
	return nil
}

func (c *Console) handleQuit(context.Context, []string) error {
	return errQuit
}

func (c *Console) handleList(ctx context.Context, _ []string) error {
	return c.ctrl.List(ctx)
}

func (c *Console) handleSearch(ctx context.Context, args []string) error {
	return c.ctrl.Search(ctx, strings.Join(args, " "))
}

func (c *Console) handleDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Sử dụng: delete <mã SV>")
		return nil
	}
	return c.ctrl.Delete(ctx, args[0])
}

func (c *Console) handleAdd(ctx context.Context, _ []string) error {
	if err := c.ctrl.OpenCreate(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Thêm sinh viên mới")
	return c.editLoop(ctx)
}

func (c *Console) handleEdit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Sử dụng: edit <mã SV>")
		return nil
	}
	if err := c.ctrl.OpenEdit(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Sửa thông tin sinh viên %s\n", args[0])
	return c.editLoop(ctx)
}

// editLoop keeps the form open until it is saved or the user gives up.
func (c *Console) editLoop(ctx context.Context) error {
	for {
		form, err := c.fillForm(c.ctrl.Form(), c.ctrl.Modal().IDLocked())
		if err != nil {
			c.ctrl.Close()
			return err
		}
		if err := c.ctrl.SetForm(form); err != nil {
			return err
		}

		err = c.ctrl.Save(ctx)
		if err == nil {
			return nil
		}
		if !c.Confirm("Lưu không thành công. Sửa lại?") {
			c.ctrl.Close()
			return err
		}
	}
}

func (c *Console) handleExport(_ context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Sử dụng: export <file.xlsx>")
		return nil
	}

	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Không thể tạo file %s: %v\n", args[0], err)
		return err
	}
	defer f.Close()

	view := c.ctrl.View()
	if err := export.WriteXLSX(f, view.Students); err != nil {
		fmt.Fprintf(c.out, "Xuất file thất bại: %v\n", err)
		return err
	}
	fmt.Fprintf(c.out, "Đã xuất %d sinh viên ra %s\n", len(view.Students), args[0])
	return nil
}
