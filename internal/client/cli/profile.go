package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/services"
)

var errSaving = errors.New("profile update already in progress")

type profileForm struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,simpleemail"`
	Role     string
}

func formFromUser(u *models.User) profileForm {
	if u == nil {
		return profileForm{}
	}
	return profileForm{Username: u.Username, Email: u.Email, Role: u.Role}
}

// profileView is the local state of the profile page: edit mode, the form
// and its field errors.
type profileView struct {
	session services.SessionService

	mu      sync.Mutex
	editing bool
	saving  bool
	form    profileForm
	errors  map[string]string
}

func newProfileView(session services.SessionService) *profileView {
	return &profileView{session: session}
}

func (p *profileView) isEditing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing
}

// startEdit enters edit mode with the form reset to the current user.
// A form left in edit mode by a failed submission is kept as is.
func (p *profileView) startEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.editing {
		return
	}
	p.editing = true
	p.form = formFromUser(p.session.Session().User)
	p.errors = nil
}

// reset leaves edit mode and discards the form.
func (p *profileView) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editing = false
	p.form = formFromUser(p.session.Session().User)
	p.errors = nil
}

// setField updates one form field and clears its error.
func (p *profileView) setField(name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var field *string
	switch name {
	case "username":
		field = &p.form.Username
	case "email":
		field = &p.form.Email
	case "role":
		field = &p.form.Role
	default:
		return
	}
	if *field != value {
		*field = value
		delete(p.errors, name)
	}
}

// submit validates the form and, if it passes, sends the update. Field
// errors keep edit mode and skip the network call.
func (p *profileView) submit(ctx context.Context) error {

	p.mu.Lock()
	if p.saving {
		p.mu.Unlock()
		return errSaving
	}
	form := p.form
	if errs := validateForm(form); len(errs) > 0 {
		p.errors = errs
		p.mu.Unlock()
		printFieldErrors(errs, "username", "email")
		return nil
	}
	p.errors = nil
	p.saving = true
	p.mu.Unlock()

	printlnFn("Saving...")
	err := p.session.UpdateUser(ctx, models.UserUpdate{
		Username: &form.Username,
		Email:    &form.Email,
		Role:     &form.Role,
	})

	p.mu.Lock()
	p.saving = false
	if err == nil {
		p.editing = false
	}
	p.mu.Unlock()

	if err != nil {
		toast("Update failed", errorDescription(err, "Failed to update profile. Please try again."))
		return err
	}
	toast("Profile updated", "Your profile has been updated successfully.")
	return nil
}

func (p *profileView) render() {

	u := p.session.Session().User
	if u == nil {
		return
	}

	p.mu.Lock()
	editing, form := p.editing, p.form
	errs := make(map[string]string, len(p.errors))
	for k, v := range p.errors {
		errs[k] = v
	}
	p.mu.Unlock()

	printlnFn("Profile")
	printlnFn("Manage your account settings and personal information")
	printlnFn()
	printlnFn("Personal Information")
	if editing {
		printField("Username", form.Username, errs["username"])
		printField("Email", form.Email, errs["email"])
		printField("Role", form.Role, "")
		printlnFn("Type 'edit' to change the values or 'cancel' to discard.")
	} else {
		printField("Username", u.Username, "")
		printField("Email", u.Email, "")
		printField("Role", capitalize(u.Role), "")
		printlnFn("Type 'edit' to edit your profile.")
	}
	printlnFn()
	printlnFn("Account Summary")
	printField("User ID", fmt.Sprintf("#%d", u.ID), "")
	printField("Status", "Active", "")
	printField("Role", capitalize(u.Role), "")
}

func printField(label, value, errMsg string) {
	line := fmt.Sprintf("  %-9s %s", label+":", value)
	if errMsg != "" {
		line += "    ! " + errMsg
	}
	printlnFn(line)
}

// Profile shows the profile page.
func (a *App) Profile(ctx context.Context) error {
	return a.nav.Navigate(ctx, RouteProfile)
}

func (a *App) renderProfile(context.Context) error {
	a.profile.render()
	return nil
}

// EditProfile enters edit mode (if needed), prompts for each field with the
// current form value as default and submits.
func (a *App) EditProfile(ctx context.Context) error {

	if a.nav.Current() != RouteProfile || !a.isLoggedIn() {
		if err := a.nav.Navigate(ctx, RouteProfile); err != nil {
			return err
		}
		if a.nav.Current() != RouteProfile {
			return nil
		}
	}

	a.profile.startEdit()

	a.profile.mu.Lock()
	form := a.profile.form
	a.profile.mu.Unlock()

	fields := []struct {
		name  string
		label string
		value string
	}{
		{"username", "Username", form.Username},
		{"email", "Email", form.Email},
		{"role", "Role", form.Role},
	}
	for _, f := range fields {
		v, err := getTextWithDefault(a.reader, f.label, f.value, os.Stdout)
		if err != nil {
			return err
		}
		a.profile.setField(f.name, v)
	}

	return a.profile.submit(ctx)
}

// CancelEdit leaves edit mode without saving.
func (a *App) CancelEdit(ctx context.Context) error {
	if !a.profile.isEditing() {
		printlnFn("Nothing to cancel")
		return nil
	}
	a.profile.reset()
	return a.nav.Navigate(ctx, RouteProfile)
}
