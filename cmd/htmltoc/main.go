package main

import (
	"fmt"
	"io"
	"os"

	"github.com/open-cli-collective/htmltoc/internal/cmd/cmdutil"
	"github.com/open-cli-collective/htmltoc/internal/cmd/root"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if p := recover(); p != nil {
			err := cmdutil.PanicError(p)
			fmt.Fprintln(stderr, err.Error())
			code = err.Code
		}
	}()

	cmd := root.NewCmdRoot()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !cmdutil.Reported(err) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return cmdutil.ExitCode(err)
	}
	return cmdutil.ExitOK
}
