package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/assembler"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/objectWriter"
	"golang.org/x/term"
)

// buildFailed is returned once the failure has already been reported to the user.
type buildFailed struct{}

func (buildFailed) Error() string { return "build failed" }

var assembleCmd = &cobra.Command{
	Use:   "assemble sourceFile",
	Short: "Assemble one source file",
	Long: `Assemble reads one AVR assembly source file and assembles it in two passes.

Use --bin and --hex to write the program as a flat binary image or as Intel
HEX, and --listing to print each instruction with its address and encoding.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().String("bin", "", "write a flat binary image to this path")
	assembleCmd.Flags().String("hex", "", "write an Intel HEX file to this path")
	assembleCmd.Flags().Bool("listing", false, "print the address and encoding of every instruction")
	assembleCmd.Flags().Bool("verbose", false, "dump the symbol table and encoded lines")
	assembleCmd.Flags().String("config", "", "JSON assembler config file")
	assembleCmd.Flags().Int("workers", 0, "pass 2 workers, overrides the config file")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	config := assembler.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		c, err := assembler.LoadConfig(path)
		if err != nil {
			return err
		}
		config = c
	}
	if workers, _ := flags.GetInt("workers"); workers > 0 {
		config.Workers = workers
	}
	assembler.SetConfig(config)

	b, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("could not read file %s: %w", args[0], err)
	}
	source := string(b)

	lines, err := assembler.Assemble(source)
	if err != nil {
		reportFailure(os.Stderr, err)
		return buildFailed{}
	}
	glog.V(1).Infof("Assembled %d instructions from %s", len(lines), args[0])

	if verbose, _ := flags.GetBool("verbose"); verbose {
		res := assembler.AssembleListing(source)
		printer := pp.New()
		printer.SetOutput(os.Stderr)
		printer.SetColoringEnabled(term.IsTerminal(int(os.Stderr.Fd())))
		printer.Println(res.Symbols.Sorted())
		printer.Println(lines)
	}
	if listing, _ := flags.GetBool("listing"); listing {
		writeListing(os.Stdout, source, lines)
	}
	if path, _ := flags.GetString("bin"); path != "" {
		if err := writeObject(path, lines, objectWriter.WriteBinary); err != nil {
			return err
		}
	}
	if path, _ := flags.GetString("hex"); path != "" {
		if err := writeObject(path, lines, objectWriter.WriteIntelHex); err != nil {
			return err
		}
	}
	return nil
}

func reportFailure(w io.Writer, err error) {
	if asmErr, ok := assembler.AsAssemblyError(err); ok && asmErr.Line > 0 {
		fmt.Fprintf(w, "Error on line %d: %s\n", asmErr.Line, asmErr.Message())
		fmt.Fprintln(w, asmErr.Text)
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	fmt.Fprintln(w, "Build failed. Exiting")
}

func writeListing(w io.Writer, source string, lines []assembler.EncodedLine) {
	raw := strings.Split(source, "\n")
	for _, l := range lines {
		words := make([]string, 0, 2)
		for _, word := range l.Words() {
			words = append(words, fmt.Sprintf("%04X", word))
		}
		text := ""
		if l.Line <= len(raw) {
			text = strings.TrimSpace(strings.TrimRight(raw[l.Line-1], "\r"))
		}
		fmt.Fprintf(w, "%04X  %-9s  %4d  %s\n", l.Address, strings.Join(words, " "), l.Line, text)
	}
}

func writeObject(path string, lines []assembler.EncodedLine, write func(io.Writer, []assembler.EncodedLine) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, lines); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
