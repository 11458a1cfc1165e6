package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// repl runs the interactive shell until exit, end of input or interrupt.
// A failing command is reported and the prompt comes back.
func (a *app) repl(ctx context.Context) {
	scanner := a.prompt.Scanner()
	fmt.Fprintln(a.out, "TrueFit shell. Type 'help' for a list of commands.")
	for ctx.Err() == nil {
		fmt.Fprintf(a.out, "truefit:%s> ", a.router.Location())
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if err := a.store.Touch(ctx); err != nil {
			a.log.Warn("failed to refresh session", zap.Error(err))
		}
		err := a.run(ctx, args)
		switch {
		case errors.Is(err, errExit):
			fmt.Fprintln(a.out, "Bye")
			return
		case errors.Is(err, io.EOF):
			return
		case err != nil:
			a.notify.Error("Error", err)
		}
	}
}
