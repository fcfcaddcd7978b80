package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/metrics"
	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/notify"
)

const (
	MsgCreated       = "Sinh viên mới đã được thêm thành công!"
	MsgCreateFailed  = "Có lỗi xảy ra khi thêm sinh viên mới!"
	MsgUpdated       = "Thông tin sinh viên đã được cập nhật thành công!"
	MsgUpdateFailed  = "Có lỗi xảy ra khi cập nhật thông tin sinh viên!"
	MsgDeleted       = "Sinh viên đã được xóa thành công!"
	MsgDeleteFailed  = "Có lỗi xảy ra khi xóa sinh viên!"
	MsgSearchFailed  = "Có lỗi xảy ra khi tìm kiếm!"
	MsgNoResults     = "Không tìm thấy kết quả nào phù hợp."
	MsgFoundTpl      = "Đã tìm thấy %d kết quả."
	MsgListFailed    = "Có lỗi xảy ra khi tải danh sách sinh viên!"
	MsgLoadFailedTpl = "Không thể tải thông tin sinh viên %s!"
	ConfirmDelete    = "Bạn có chắc muốn xóa sinh viên này?"

	DefaultReloadDelay = 2 * time.Second
)

var (
	ErrModalOpen   = errors.New("a form is already open")
	ErrModalClosed = errors.New("no form is open")
)

type Gateway interface {
	List(ctx context.Context) ([]models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, s *models.Student) (*models.Student, error)
	Update(ctx context.Context, id string, s *models.Student) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Student, error)
}

type Renderer interface {
	Render(view ViewState)
}

type Notifier interface {
	Notify(severity notify.Severity, message string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type SnapshotCache interface {
	Save(ctx context.Context, students []models.Student) error
	Load(ctx context.Context) ([]models.Student, error)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type Options struct {
	Renderer  Renderer
	Notifier  Notifier
	Confirmer Confirmer
	Scheduler Scheduler
	Cache     SnapshotCache

	// ReloadDelay is how long the list refresh waits after an update so the
	// success message is seen first. Zero reloads immediately.
	ReloadDelay time.Duration
}

// Controller owns the rendered view-state and the add/edit form. State is
// only changed through its methods; readers get copies.
type Controller struct {
	gw        Gateway
	renderer  Renderer
	notifier  Notifier
	confirmer Confirmer
	scheduler Scheduler
	cache     SnapshotCache
	delay     time.Duration

	// renderMu keeps renders in the order their views were applied.
	renderMu sync.Mutex

	mu      sync.Mutex
	view    ViewState
	modal   Modal
	form    models.Student
	issued  uint64
	applied uint64
}

func NewController(gw Gateway, opts Options) *Controller {
	c := &Controller{
		gw:        gw,
		renderer:  opts.Renderer,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		scheduler: opts.Scheduler,
		cache:     opts.Cache,
		delay:     opts.ReloadDelay,
		view:      allView(nil),
		modal:     closedModal(),
	}
	if c.scheduler == nil {
		c.scheduler = timerScheduler{}
	}
	return c
}

func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

func (c *Controller) Form() models.Student {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetForm replaces the form fields. While editing, the identifier stays
// locked to the record being edited.
func (c *Controller) SetForm(s models.Student) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modal.Open() {
		return ErrModalClosed
	}
	if c.modal.IDLocked() {
		s.ID = c.modal.EditingID
	}
	c.form = s
	return nil
}

// Validate is the pure pre-write check on the form fields.
func (c *Controller) Validate(form models.Student) error {
	return form.Validate()
}

func (c *Controller) nextTicket() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// apply replaces the view-state unless a newer list or search has been
// issued since ticket was drawn.
func (c *Controller) apply(op string, ticket uint64, view ViewState) bool {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if ticket != c.issued {
		latest := c.issued
		c.mu.Unlock()
		logger.Debug.Printf("Dropping stale %s response (ticket %d, latest %d)", op, ticket, latest)
		metrics.StaleResponsesTotal.WithLabelValues(op).Inc()
		return false
	}
	c.view = view
	c.applied = ticket
	c.mu.Unlock()

	c.render(view)
	return true
}

// render is called with renderMu held and mu released, so renderers may
// read the controller.
func (c *Controller) render(view ViewState) {
	if c.renderer != nil {
		c.renderer.Render(view.clone())
	}
}

func (c *Controller) isCurrent(ticket uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ticket == c.issued
}

func (c *Controller) notify(severity notify.Severity, message string) {
	if c.notifier != nil {
		c.notifier.Notify(severity, message)
	}
}

// List fetches the whole collection and shows it.
func (c *Controller) List(ctx context.Context) error {
	ticket := c.nextTicket()

	students, err := c.gw.List(ctx)
	if err != nil {
		if !c.isCurrent(ticket) {
			return nil
		}
		logger.Error.Printf("Failed to load students: %v", err)
		c.notify(notify.Error, MsgListFailed)
		return err
	}

	if !c.apply("list", ticket, allView(students)) {
		return nil
	}

	if c.cache != nil {
		if err := c.cache.Save(ctx, students); err != nil {
			logger.Error.Printf("Failed to cache student list: %v", err)
		}
	}
	return nil
}

// Search shows the students matching query. A blank query is a List.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.List(ctx)
	}

	ticket := c.nextTicket()

	results, err := c.gw.Search(ctx, query)
	if err != nil {
		if !c.isCurrent(ticket) {
			return nil
		}
		logger.Error.Printf("Search for %q failed: %v", query, err)
		c.notify(notify.Error, MsgSearchFailed)
		if lerr := c.List(ctx); lerr != nil {
			return errors.Join(err, lerr)
		}
		return err
	}

	if !c.apply("search", ticket, searchView(query, results)) {
		return nil
	}

	if len(results) == 0 {
		c.notify(notify.Info, MsgNoResults)
	} else {
		c.notify(notify.Success, fmt.Sprintf(MsgFoundTpl, len(results)))
	}
	return nil
}

// Restore shows the cached snapshot, unless a real response already
// arrived.
func (c *Controller) Restore(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	students, err := c.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cached students: %w", err)
	}
	if students == nil {
		return nil
	}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	view := allView(students)
	c.mu.Lock()
	if c.applied != 0 {
		c.mu.Unlock()
		return nil
	}
	c.view = view
	c.mu.Unlock()

	c.render(view)
	return nil
}

func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal.Open() {
		return ErrModalOpen
	}
	c.form = models.Student{}
	c.modal = creatingModal()
	return nil
}

// OpenEdit loads the record and opens the form with its identifier locked.
// A failed load leaves the modal as it was.
func (c *Controller) OpenEdit(ctx context.Context, id string) error {
	if c.Modal().Open() {
		return ErrModalOpen
	}

	student, err := c.gw.Get(ctx, id)
	if err != nil {
		logger.Error.Printf("Failed to load student %s: %v", id, err)
		c.notify(notify.Error, fmt.Sprintf(MsgLoadFailedTpl, id))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal.Open() {
		return ErrModalOpen
	}
	c.form = *student
	c.form.ID = id
	c.modal = editingModal(id)
	return nil
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = closedModal()
}

func (c *Controller) closeIf(expected Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal == expected {
		c.modal = closedModal()
	}
}

// Save validates the form and writes it. On any failure the form stays
// open so the user can correct and resubmit.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	modal := c.modal
	form := c.form
	c.mu.Unlock()

	if !modal.Open() {
		return ErrModalClosed
	}

	if err := form.ValidateForWrite(); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.notify(notify.Error, verr.Message)
		} else {
			c.notify(notify.Error, err.Error())
		}
		return err
	}

	switch modal.Mode {
	case ModalCreating:
		if _, err := c.gw.Create(ctx, &form); err != nil {
			logger.Error.Printf("Failed to create student %s: %v", form.ID, err)
			c.notify(notify.Error, MsgCreateFailed)
			return err
		}
		c.notify(notify.Success, MsgCreated)
		if err := c.List(ctx); err != nil {
			logger.Debug.Printf("Reload after creating %s failed: %v", form.ID, err)
		}
		c.closeIf(modal)
		return nil

	case ModalEditing:
		form.ID = modal.EditingID
		if _, err := c.gw.Update(ctx, modal.EditingID, &form); err != nil {
			logger.Error.Printf("Failed to update student %s: %v", modal.EditingID, err)
			c.notify(notify.Error, MsgUpdateFailed)
			return err
		}
		c.notify(notify.Success, MsgUpdated)
		c.closeIf(modal)

		if c.delay <= 0 {
			if err := c.List(ctx); err != nil {
				logger.Debug.Printf("Reload after updating %s failed: %v", modal.EditingID, err)
			}
			return nil
		}
		reloadCtx := context.WithoutCancel(ctx)
		c.scheduler.AfterFunc(c.delay, func() {
			c.List(reloadCtx)
		})
		return nil
	}

	return fmt.Errorf("unexpected modal mode %s", modal.Mode)
}

// Delete removes the student after the user confirms. Declining is a
// no-op and returns nil.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if c.confirmer == nil || !c.confirmer.Confirm(ConfirmDelete) {
		logger.Debug.Printf("Deletion of %s cancelled", id)
		return nil
	}

	if err := c.gw.Delete(ctx, id); err != nil {
		logger.Error.Printf("Failed to delete student %s: %v", id, err)
		c.notify(notify.Error, MsgDeleteFailed)
		return err
	}

	c.notify(notify.Success, MsgDeleted)
	if err := c.List(ctx); err != nil {
		logger.Debug.Printf("Reload after deleting %s failed: %v", id, err)
	}
	return nil
}
