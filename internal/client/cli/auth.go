package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/common"
)

// getSimpleText, getTextWithDefault and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getTextWithDefault = GetTextWithDefault
var getPassword = GetPassword

var errIncomplete = errors.New("incomplete input")

// registerForm is validated before any network call.
type registerForm struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,simpleemail"`
	Password string `validate:"required"`
}

// Login prompts for email and password and signs in. On success the
// dashboard is shown.
func (a *App) Login(ctx context.Context) error {

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if email == "" || len(password) == 0 {
		printlnFn("Email and password are required")
		return errIncomplete
	}

	creds := models.LoginCredentials{Email: email, Password: string(password)}
	if err := a.session.Login(ctx, creds); err != nil {
		toast("Login failed", errorDescription(err, "Invalid email or password."))
		return err
	}

	if u := a.session.Session().User; u != nil {
		toast("Welcome back!", "Signed in as "+u.Username)
	}
	return a.nav.Navigate(ctx, RouteDashboard)
}

// Register prompts for username, email and password, creates the account
// and signs in.
func (a *App) Register(ctx context.Context) error {

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := registerForm{Username: username, Email: email, Password: string(password)}
	if errs := validateForm(form); len(errs) > 0 {
		printFieldErrors(errs, "username", "email", "password")
		return errIncomplete
	}

	data := models.RegisterData{Username: username, Email: email, Password: form.Password}
	if err := a.session.Register(ctx, data); err != nil {
		toast("Registration failed", errorDescription(err, "Failed to create account. Please try again."))
		return err
	}

	toast("Account created", "Welcome, "+username+"!")
	return a.nav.Navigate(ctx, RouteDashboard)
}

// Logout ends the session and shows the login view.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Signed out.")
	return a.nav.Navigate(ctx, RouteLogin)
}

// WhoAmI prints the signed-in user and, for JWT tokens, when the session
// expires.
func (a *App) WhoAmI(ctx context.Context) error {

	s := a.session.Session()
	if !s.IsAuthenticated() {
		printlnFn("Not logged in")
		return nil
	}

	u := s.User
	printlnFn(fmt.Sprintf("#%d %s <%s> role=%s", u.ID, u.Username, u.Email, u.Role))
	if exp, ok := a.session.TokenExpiry(ctx); ok {
		printlnFn("Token expires:", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *App) renderLogin(context.Context) error {
	if u := a.session.Session().User; u != nil {
		printlnFn(fmt.Sprintf("Signed in as %s. Type 'dashboard' to continue.", u.Username))
		return nil
	}
	printlnFn("Sign in to your account")
	printlnFn("Type 'login' to sign in or 'register' to create an account.")
	return nil
}

func (a *App) renderRegister(context.Context) error {
	printlnFn("Create an account")
	printlnFn("Type 'register' to sign up or 'login' if you already have an account.")
	return nil
}
