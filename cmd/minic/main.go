// Command minic compiles one MiniC source file to assembly (spec.md
// §6): `minic <input.mc> [<output.s>]`, default output stdout, exit
// code 0 on success and 1 on any diagnostic or I/O error.
package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minic-lang/minic"
)

func main() {
	app := &cli.Command{
		Name:        "minic",
		Description: "minic compiles a MiniC source file to RISC-V-like assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) error {
	if len(c.Args) < 1 {
		return errors.New("usage: minic <input.mc> [<output.s>]")
	}

	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	obj, err := minic.CompileFile(ctx, c.Args[0])
	if err != nil {
		return errors.Wrap(err, "compile %v", c.Args[0])
	}

	if len(c.Args) < 2 {
		fmt.Printf("%s", obj)
		return nil
	}

	if err := os.WriteFile(c.Args[1], obj, 0o644); err != nil {
		return errors.Wrap(err, "write %v", c.Args[1])
	}

	return nil
}
