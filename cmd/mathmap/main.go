// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"nikand.dev/go/cli"
)

func main() {
	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print the lowered and typed statement tree",
		Action:      irAct,
		Args:        cli.Args{},
		Flags:       commonFlags(),
	}

	cCmd := &cli.Command{
		Name:        "c",
		Description: "print the C source the native backend would compile",
		Action:      cAct,
		Args:        cli.Args{},
		Flags:       commonFlags(),
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "evaluate an expression at one pixel and print the result tuple",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: append(commonFlags(),
			cli.NewFlag("col", 0, "pixel column"),
			cli.NewFlag("row", 0, "pixel row"),
			cli.NewFlag("width,W", 256, "image width"),
			cli.NewFlag("height,H", 256, "image height"),
			cli.NewFlag("image,i", "", "comma separated input images"),
		),
	}

	renderCmd := &cli.Command{
		Name:        "render",
		Description: "evaluate an expression over a whole image",
		Action:      renderAct,
		Args:        cli.Args{},
		Flags: append(commonFlags(),
			cli.NewFlag("output,o", "out.png", "output image; the extension picks the format"),
			cli.NewFlag("width,W", 256, "image width"),
			cli.NewFlag("height,H", 256, "image height"),
			cli.NewFlag("workers,j", 0, "rows evaluated concurrently, 0 for one per CPU"),
			cli.NewFlag("image,i", "", "comma separated input images"),
		),
	}

	app := &cli.Command{
		Name:        "mathmap",
		Description: "mathmap compiles expression trees to native per-pixel functions",
		Flags: []*cli.Flag{
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			irCmd,
			cCmd,
			runCmd,
			renderCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func commonFlags() []*cli.Flag {
	return []*cli.Flag{
		cli.NewFlag("config,c", "", "YAML configuration file"),
		cli.NewFlag("backend,b", "", "native or interp, overrides the configuration"),
		cli.NewFlag("time,t", "", "value of the t internal, overrides the configuration"),
		cli.NewFlag("verbosity,v", -1, "log verbosity, overrides the configuration"),
		cli.HelpFlag,
	}
}
