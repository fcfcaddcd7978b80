package roster

import (
	"fmt"

	"github.com/shrimpsizemoose/roster/internal/models"
)

type ViewKind int

const (
	ViewAll ViewKind = iota
	ViewSearch
)

func (k ViewKind) String() string {
	switch k {
	case ViewAll:
		return "all"
	case ViewSearch:
		return "search"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(k))
	}
}

// ViewState is the student list currently rendered. It is replaced as a
// whole on every load or search, never patched.
type ViewState struct {
	Kind     ViewKind
	Query    string
	Students []models.Student
}

func allView(students []models.Student) ViewState {
	return ViewState{Kind: ViewAll, Students: students}
}

func searchView(query string, students []models.Student) ViewState {
	return ViewState{Kind: ViewSearch, Query: query, Students: students}
}

func (v ViewState) clone() ViewState {
	out := v
	if v.Students != nil {
		out.Students = make([]models.Student, len(v.Students))
		copy(out.Students, v.Students)
	}
	return out
}

func (v ViewState) Empty() bool {
	return len(v.Students) == 0
}

type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalCreating
	ModalEditing
)

func (m ModalMode) String() string {
	switch m {
	case ModalClosed:
		return "closed"
	case ModalCreating:
		return "creating"
	case ModalEditing:
		return "editing"
	default:
		return fmt.Sprintf("ModalMode(%d)", int(m))
	}
}

// Modal is {Closed, Creating, Editing(id)}. EditingID is set only in
// ModalEditing, so there is no "editing nothing" state.
type Modal struct {
	Mode      ModalMode
	EditingID string
}

func closedModal() Modal {
	return Modal{Mode: ModalClosed}
}

func creatingModal() Modal {
	return Modal{Mode: ModalCreating}
}

func editingModal(id string) Modal {
	return Modal{Mode: ModalEditing, EditingID: id}
}

func (m Modal) IDLocked() bool {
	return m.Mode == ModalEditing
}

func (m Modal) Open() bool {
	return m.Mode != ModalClosed
}
