package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error  { return f.record("register", nil) }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) LoginGoogle(context.Context) error    { return f.record("google", nil) }
func (f *fakeExec) ForgotPassword(context.Context) error { return f.record("forgot", nil) }
func (f *fakeExec) Ping(context.Context) error           { return f.record("ping", nil) }
func (f *fakeExec) WhoAmI(context.Context) error         { return f.record("whoami", nil) }
func (f *fakeExec) Reload(context.Context) error         { return f.record("reload", nil) }
func (f *fakeExec) List(_ context.Context, args []string) error {
	return f.record("list", args)
}
func (f *fakeExec) Show(_ context.Context, args []string) error {
	return f.record("show", args)
}
func (f *fakeExec) Delete(_ context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) AddEvent(context.Context) error { return f.record("addevent", nil) }
func (f *fakeExec) AddBlog(context.Context) error  { return f.record("addblog", nil) }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) LogoutAll(context.Context) error { return f.record("logoutall", nil) }

func silence(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"addevent",
		"list events",
		"show blogs 123",
		"delete orders 9",
		"whoami",
		"foobar",
		"logoutall",
		"exit",
		"ping",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "addevent", "list", "show", "delete", "whoami", "logoutall"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := strings.Join(exec.args[3], " "); got != "blogs 123" {
		t.Fatalf("show args = %q", got)
	}
	if got := strings.Join(exec.args[4], " "); got != "orders 9" {
		t.Fatalf("delete args = %q", got)
	}
}

func TestRunREPL_UnknownAndQuit(t *testing.T) {
	lines := silence(t)

	input := strings.NewReader("get\n\nquit\nlogin\n")
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	found := false
	for _, l := range *lines {
		if l == "Unknown command: get" {
			found = true
		}
	}
	if !found {
		t.Fatalf("unknown command not reported: %v", *lines)
	}
}

func TestRunREPL_EOFEnds(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("register\ngoogle\nforgot")))

	if strings.Join(exec.calls, ",") != "register,google,forgot" {
		t.Fatalf("calls = %v", exec.calls)
	}
}
