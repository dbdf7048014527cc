// main.go - command-line entry point.
//
// Grounded on _examples/IntuitionAmiga-IntuitionEngine/cmd/ie32to64/main.go's
// flag-based CLI idiom (one required positional argument, -o-style flags,
// a flag.Usage override with worked examples).
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
)

func main() {
	input := flag.String("i", "", "Input MML source file")
	listChips := flag.Bool("L", false, "List supported sound chips and exit")
	configPath := flag.String("config", "", "Project config file (YAML: title, game, system, composer, notes, rate)")
	verbose := flag.Bool("v", false, "Verbose diagnostic logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mmlvgm -i input.mml [options] output.vgm\n\nCompiles an MML score into a VGM file.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mmlvgm -i song.mml song.vgm\n")
		fmt.Fprintf(os.Stderr, "  mmlvgm -i song.mml -config song.yaml song.vgm\n")
		fmt.Fprintf(os.Stderr, "  mmlvgm -L\n")
	}
	flag.Parse()

	if *listChips {
		names := ListChips()
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	outputPath := flag.Arg(0)

	logger := newLogger(*verbose)

	compiler := NewCompiler(logger)
	if *configPath != "" {
		cfg, err := LoadProjectConfig(*configPath)
		if err != nil {
			logger.Error("loading config", "err", err)
			os.Exit(1)
		}
		compiler.ApplyConfig(cfg)
	}

	var err error
	if *input != "" {
		err = compiler.CompileFile(*input, outputPath)
	} else {
		err = compiler.Compile(os.Stdin, outputPath)
	}
	if err != nil {
		logger.Error("compile failed", "err", err)
		os.Exit(1)
	}

	logger.Info("wrote VGM", "path", outputPath)
}
