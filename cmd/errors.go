package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/ui"
	"github.com/josephgoksu/chorepay/store"
	"github.com/spf13/viper"
)

// errOut receives the messages of failed commands.
var errOut io.Writer = os.Stderr

// HandleFatalError reports err and exits with status 1.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}

// PrintError prints userMsg. With --verbose the underlying error is appended.
func PrintError(userMsg string, technicalErr error) {
	msg := userMsg
	if viper.GetBool("verbose") && technicalErr != nil && technicalErr.Error() != userMsg {
		msg = fmt.Sprintf("%s (%v)", userMsg, technicalErr)
	}
	fmt.Fprintln(errOut, ui.Icon("✖", ui.StyleError)+" "+msg)
}

// LogError records a failure the command can live with. It shows up with --verbose.
func LogError(msg string, err error) {
	if err == nil {
		slog.Debug(msg)
		return
	}
	slog.Debug(msg, "error", err)
}

// friendlyError turns service errors into the message shown to the user.
func friendlyError(action string, err error) error {
	switch {
	case errors.Is(err, chores.ErrNotFound):
		return fmt.Errorf("%s: no such task (%w)", action, err)
	case errors.Is(err, chores.ErrValidation):
		return fmt.Errorf("%s: %w", action, err)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%s: the task list was changed by someone else, try again: %w", action, err)
	case errors.Is(err, store.ErrChecksum):
		return fmt.Errorf("%s: the task file failed its integrity check, restore a backup: %w", action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
