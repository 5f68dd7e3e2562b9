package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls     []string
	filterArg string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) AddMood(ctx context.Context) error {
	f.calls = append(f.calls, "addmood")
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Filter(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "filter")
	f.filterArg = arg
	return nil
}
func (f *fakeExec) Feed(ctx context.Context) error { f.calls = append(f.calls, "feed"); return nil }
func (f *fakeExec) EditMood(ctx context.Context) error {
	f.calls = append(f.calls, "edit")
	return nil
}
func (f *fakeExec) DeleteMood(ctx context.Context) error {
	f.calls = append(f.calls, "delete")
	return nil
}
func (f *fakeExec) Follow(ctx context.Context) error {
	f.calls = append(f.calls, "follow")
	return nil
}
func (f *fakeExec) Requests(ctx context.Context) error {
	f.calls = append(f.calls, "requests")
	return nil
}
func (f *fakeExec) Accept(ctx context.Context) error {
	f.calls = append(f.calls, "accept")
	return nil
}
func (f *fakeExec) Decline(ctx context.Context) error {
	f.calls = append(f.calls, "decline")
	return nil
}
func (f *fakeExec) AttachPhoto(ctx context.Context) error {
	f.calls = append(f.calls, "photo")
	return nil
}
func (f *fakeExec) ShowPhoto(ctx context.Context) error {
	f.calls = append(f.calls, "showphoto")
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"addmood",
		"list",
		"filter Happy",
		"feed",
		"edit",
		"requests",
		"accept",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	want := []string{"login", "addmood", "list", "filter", "feed", "edit", "requests", "accept", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, exec.calls[i], want[i])
		}
	}
	if exec.filterArg != "Happy" {
		t.Fatalf("filter arg = %q, want Happy", exec.filterArg)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader("list\n"))
	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "list" {
		t.Fatalf("calls = %v", exec.calls)
	}
}

func TestRunREPL_BlankLinesAreIgnored(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader("\n   \nquit\n"))
	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("calls = %v, want none", exec.calls)
	}
}
