package main

import (
	"context"
	"errors"
)

type Mode int

const (
	ModeLoading Mode = iota
	ModeView
	ModeEdit
	ModeNotFound
	ModeFailed
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeView:
		return "view"
	case ModeEdit:
		return "edit"
	case ModeNotFound:
		return "not_found"
	case ModeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal modes accept no further transitions.
func (m Mode) Terminal() bool {
	return m == ModeNotFound || m == ModeFailed
}

var (
	ErrSaveInFlight = errors.New("save already in progress")
	ErrNotEditing   = errors.New("not in edit mode")
)

type StatusLine struct {
	Text string
	Err  bool
}

func okStatus(text string) StatusLine  { return StatusLine{Text: text} }
func errStatus(text string) StatusLine { return StatusLine{Text: text, Err: true} }

// Detail holds one link's view/edit state. The canonical link only changes
// after the store confirms a save.
type Detail struct {
	id      string
	mode    Mode
	current Link
	draft   Fields
	saving  bool
	status  StatusLine
}

func NewDetail(id string) *Detail {
	return &Detail{id: id, mode: ModeLoading, status: okStatus("Loading…")}
}

func (d *Detail) ID() string         { return d.id }
func (d *Detail) Mode() Mode         { return d.mode }
func (d *Detail) Status() StatusLine { return d.status }
func (d *Detail) Saving() bool       { return d.saving }
func (d *Detail) Current() Link      { return d.current.clone() }

// Draft exposes the editable copy. It is nil outside edit mode.
func (d *Detail) Draft() *Fields {
	if d.mode != ModeEdit {
		return nil
	}
	return &d.draft
}

// Open locates the link and resolves the initial mode.
func (d *Detail) Open(ctx context.Context, locator *Locator) {
	link, err := locator.Find(ctx, d.id)
	d.Resolve(link, err)
}

func (d *Detail) Resolve(link Link, err error) {
	if d.mode != ModeLoading {
		return
	}
	switch {
	case err == nil:
		d.current = link.clone()
		d.mode = ModeView
		d.status = okStatus("")
	case errors.Is(err, ErrNotFound):
		d.mode = ModeNotFound
		d.status = errStatus("Link not found.")
	case IsValidation(err):
		d.mode = ModeFailed
		d.status = errStatus("No id provided.")
	default:
		d.mode = ModeFailed
		d.status = errStatus("Failed to load: " + err.Error())
	}
}

func (d *Detail) Edit() bool {
	if d.mode != ModeView {
		return false
	}
	d.draft = FieldsFromLink(d.current)
	d.mode = ModeEdit
	d.status = okStatus("")
	return true
}

func (d *Detail) Cancel() bool {
	if d.mode != ModeEdit || d.saving {
		return false
	}
	d.draft = Fields{}
	d.mode = ModeView
	d.status = okStatus("Edit canceled.")
	return true
}

// BeginSave validates the draft and marks a save in flight. A validation
// failure leaves the machine in edit mode with the message as status.
func (d *Detail) BeginSave() (Fields, error) {
	if d.mode != ModeEdit {
		return Fields{}, ErrNotEditing
	}
	if d.saving {
		return Fields{}, ErrSaveInFlight
	}
	fields := d.draft
	fields.ID = d.current.ID
	if err := Validate(fields); err != nil {
		d.status = errStatus(err.Error())
		return Fields{}, err
	}
	d.saving = true
	d.status = okStatus("Saving…")
	return fields, nil
}

// FinishSave applies the store's answer. The date is not editable and is
// carried over from the previous snapshot.
func (d *Detail) FinishSave(saved Link, err error) {
	if !d.saving {
		return
	}
	d.saving = false
	if err != nil {
		d.status = errStatus("Failed to save: " + err.Error())
		return
	}
	next := saved.clone()
	next.ID = d.current.ID
	next.Date = d.current.Date
	if next.Tags == nil {
		next.Tags = []string{}
	}
	d.current = next
	d.draft = Fields{}
	d.mode = ModeView
	d.status = okStatus("Saved ✓")
}

func (d *Detail) Save(ctx context.Context, sub *Submitter) error {
	fields, err := d.BeginSave()
	if err != nil {
		return err
	}
	link, err := sub.Submit(ctx, fields)
	d.FinishSave(link, err)
	return err
}
