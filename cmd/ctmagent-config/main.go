package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sardine-ai/ctmagent-config/manager"
	"github.com/sardine-ai/ctmagent-config/schema"
)

const (
	exitError      = 1
	exitValidation = 2
	exitRead       = 3
	exitApply      = 4
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var verr *schema.ValidationError
	var rerr *manager.ReadError
	var aerr *manager.ApplyError
	// A ReadError wraps the ValidationError of an undecodable stored value.
	switch {
	case errors.As(err, &rerr):
		return exitRead
	case errors.As(err, &aerr):
		return exitApply
	case errors.As(err, &verr):
		return exitValidation
	default:
		return exitError
	}
}
