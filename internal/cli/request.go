package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/moodstream/internal/models"
)

// Follow prompts for a username and sends a follow request.
func (a *App) Follow(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	target, err := getSimpleText(a.reader, "Whom do you want to follow?", os.Stdout)
	if err != nil {
		return err
	}
	if target == user.Username {
		printlnFn("That would be you")
		return nil
	}

	exists, err := a.session.Repository().UserExists(ctx, target)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	if !exists {
		printlnFn("No such user:", target)
		return nil
	}

	following, err := a.session.FollowingList()
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	for _, f := range following {
		if f == target {
			printlnFn("Already following", target)
			return nil
		}
	}

	request, err := models.NewRequest(user.Username, target)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	if err := a.session.Repository().CreateRequest(ctx, request); err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printlnFn("Request sent to", target)
	return nil
}

// Requests prints the pending follow requests addressed to the current user.
func (a *App) Requests(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}

	requests := a.pendingRequests()
	if len(requests) == 0 {
		printlnFn("No pending requests")
		return nil
	}
	for i, r := range requests {
		printlnFn(fmt.Sprintf("%3d. %s wants to follow you", i+1, r.From))
	}
	return nil
}

// Accept resolves a pending request, granting the sender access.
func (a *App) Accept(ctx context.Context) error {
	return a.resolveRequest(ctx, true)
}

// Decline resolves a pending request without granting anything.
func (a *App) Decline(ctx context.Context) error {
	return a.resolveRequest(ctx, false)
}

func (a *App) resolveRequest(ctx context.Context, accept bool) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}

	requests := a.pendingRequests()
	if len(requests) == 0 {
		printlnFn("No pending requests")
		return nil
	}
	for i, r := range requests {
		printlnFn(fmt.Sprintf("%3d. %s", i+1, r.From))
	}

	text, err := getSimpleText(a.reader, "Which one? (number)", os.Stdout)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(requests) {
		printlnFn("No such request:", text)
		return nil
	}
	request := requests[n-1]

	if accept {
		err = a.session.Repository().AcceptRequest(ctx, request)
	} else {
		err = a.session.Repository().DeclineRequest(ctx, request)
	}
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}

	if accept {
		printlnFn(request.From, "now follows you")
	} else {
		printlnFn("Declined")
	}
	return nil
}

func (a *App) pendingRequests() []models.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Request, len(a.requests))
	copy(out, a.requests)
	return out
}
