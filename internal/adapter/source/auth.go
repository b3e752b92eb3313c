package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/domain"
)

// AuthResult is a verified session
type AuthResult struct {
	SessData string
	BiliJct  string
	Account  domain.Account
}

// AuthFlow asks for the browser session cookies and verifies them against
// the nav endpoint. The cookie value is read without echo when stdin is a
// terminal.
type AuthFlow struct {
	logger *slog.Logger
	in     *bufio.Reader
	out    io.Writer

	// readSecret reads one line without echo
	readSecret func() (string, error)
}

// NewAuthFlow creates a login flow on stdin/stdout
func NewAuthFlow(logger *slog.Logger) *AuthFlow {
	f := NewAuthFlowIO(os.Stdin, os.Stdout, logger)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		f.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(f.out) // newline after hidden input
			return string(b), err
		}
	}
	return f
}

// NewAuthFlowIO creates a login flow over explicit streams
func NewAuthFlowIO(in io.Reader, out io.Writer, logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	f := &AuthFlow{logger: logger, in: bufio.NewReader(in), out: out}
	f.readSecret = f.readLine
	return f
}

// Run prompts for the cookies and returns the verified session. cfg
// supplies the endpoints; its auth section is not modified.
func (f *AuthFlow) Run(ctx context.Context, cfg *adapter.Config) (*AuthResult, error) {
	fmt.Fprintln(f.out, "Bilibili Login")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━")
	fmt.Fprintln(f.out, "Copy the SESSDATA and bili_jct cookies from a logged-in browser.")

	fmt.Fprint(f.out, "SESSDATA: ")
	sessData, err := f.readSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to read SESSDATA: %w", err)
	}
	sessData = strings.TrimSpace(sessData)
	if sessData == "" {
		return nil, fmt.Errorf("SESSDATA cannot be empty")
	}

	fmt.Fprint(f.out, "bili_jct (optional): ")
	biliJct, err := f.readLine()
	if err != nil {
		return nil, fmt.Errorf("failed to read bili_jct: %w", err)
	}

	fmt.Fprintln(f.out, "Verifying...")

	probe := *cfg
	probe.Auth.SessData = sessData
	probe.Auth.BiliJct = strings.TrimSpace(biliJct)
	client, err := NewClientFromConfig(&probe, f.logger)
	if err != nil {
		return nil, err
	}

	account, err := client.GetNav(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	if !account.LoggedIn {
		return nil, domain.ErrAuthRequired
	}

	f.logger.Info("login verified", "mid", account.Mid)
	fmt.Fprintf(f.out, "Logged in as %s (%d)\n", account.Uname, account.Mid)

	return &AuthResult{
		SessData: probe.Auth.SessData,
		BiliJct:  probe.Auth.BiliJct,
		Account:  *account,
	}, nil
}

func (f *AuthFlow) readLine() (string, error) {
	line, err := f.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
