package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/moodstream/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, name, and password and creates the
// account. The username must be free; registration over an existing profile
// would overwrite it.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}

	exists, err := a.session.Repository().UserExists(ctx, username)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	if exists {
		printlnFn("Username already taken")
		return nil
	}

	firstName, err := getSimpleText(a.reader, "First name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Repository().RegisterUser(ctx, username, string(password), firstName, lastName); err != nil {
		fmt.Println("Error:", err)
		return err
	}

	printlnFn("Success!")
	return nil
}

// Login prompts for credentials, authenticates, and opens the live views for
// the new session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Login(ctx, username, string(password))
	if err != nil {
		// The session is already logged out on this path.
		a.closeSubscriptions()
		fmt.Println("Error:", err)
		return err
	}
	if user == nil {
		// A rejected login keeps the previous session and its views.
		printlnFn("Invalid username or password")
		return nil
	}

	a.closeSubscriptions()
	if err := a.openSubscriptions(ctx, *user); err != nil {
		fmt.Println("Error:", err)
		a.session.Logout()
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s %s!", user.FirstName, user.LastName))
	return nil
}

// Logout closes the live views and clears the session.
func (a *App) Logout(ctx context.Context) error {
	a.closeSubscriptions()
	a.session.Logout()
	printlnFn("Logged out")
	return nil
}
