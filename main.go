package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/assemblyServer"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/languageServer"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/util"
)

var rootCmd = &cobra.Command{
	Use:   "avrasm",
	Short: "Two-pass assembler for AVR microcontrollers",
	Long: `avrasm assembles AVR assembly source into program memory words.

Run with no command to start the language server in TCP mode so it can be
debugged remotely.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return languageServer.ListenAndServeTCP(":2035")
	},
}

var languageServerCmd = &cobra.Command{
	Use:   "languageServer [debug]",
	Short: "Serve the language server protocol over stdin and stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && args[0] == "debug" {
			util.LoggingEnabled = true
		}
		if addr, _ := cmd.Flags().GetString("tcp"); addr != "" {
			return languageServer.ListenAndServeTCP(addr)
		}
		languageServer.ListenAndServe()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser assembler over HTTP and websockets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		util.LoggingEnabled = true
		addr, _ := cmd.Flags().GetString("addr")
		return assemblyServer.RunWebserver(addr)
	},
}

func init() {
	// glog registers its flags on the standard flag set
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	flag.Set("logtostderr", "true")

	languageServerCmd.Flags().String("tcp", "", "listen for clients on this TCP address instead of stdio")
	serveCmd.Flags().String("addr", ":2035", "address to listen on")

	rootCmd.AddCommand(assembleCmd, languageServerCmd, serveCmd)
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(buildFailed); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		glog.Flush()
		os.Exit(1)
	}
}
