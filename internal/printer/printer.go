// Package printer renders human-facing CLI messages.
//
// Command output (tables, confirmations) goes to Out; diagnostics and
// notices go to Err so that piping stdout stays clean.
package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

var (
	// Out receives command output. Tests may swap it.
	Out io.Writer = os.Stdout

	// Err receives errors and notices. Tests may swap it.
	Err io.Writer = os.Stderr
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Success prints a confirmation in green with a checkmark.
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(Out, msg)
}

// Info prints an uncoloured message to Out.
func Info(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}

// Warning prints a yellow warning to Err.
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(Err, msg)
}

// Notice reports a non-fatal failure: the command carries on (or exits
// cleanly) after printing it. Used for rejected cart mutations and the like.
func Notice(title, detail string) {
	yellow.Fprintf(Err, "%s\n", title)
	if detail != "" {
		fmt.Fprintf(Err, "  %s\n", detail)
	}
}

// Hint prints a dim follow-up line, e.g. what to run next.
func Hint(format string, a ...any) {
	faint.Fprintf(Out, format, a...)
}

// Step prints a step in a multi-step operation.
func Step(format string, a ...any) {
	cyan.Fprintf(Out, "→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain line to Out.
func Println(a ...any) {
	fmt.Fprintln(Out, a...)
}

// Printf prints plain formatted output to Out.
func Printf(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}

// Error prints a titled error with explanation and suggestions to Err and
// returns an error carrying only the title, for cobra (which is silenced).
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with key/value details, printed in key order.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(Err, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Err, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(Err)
		for _, k := range keys {
			fmt.Fprintf(Err, "  %s: %s\n", k, context[k])
		}
	}

	printSuggestions(suggestions)

	return fmt.Errorf("%s", title)
}

func printSuggestions(suggestions []string) {
	switch len(suggestions) {
	case 0:
		return
	case 1:
		fmt.Fprintf(Err, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(Err, "\nEither:\n")
		for i, s := range suggestions {
			fmt.Fprintf(Err, "  %d. %s\n", i+1, s)
		}
	}
}

// SignInRequired is the standard error for commands that need an identity.
func SignInRequired(admin bool) error {
	if admin {
		return Error("seller sign in required",
			"This command acts on the admin panel and needs a seller session.",
			[]string{"Run: storefront admin signin --seller-id <id> --login <email-or-phone> --password <password>"})
	}
	return Error("sign in required",
		"This command acts on your account and needs you to be signed in.",
		[]string{"Run: storefront signin --email <email> --password <password>"})
}
