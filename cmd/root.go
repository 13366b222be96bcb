package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trikv-io/triKV/cmd/kv"
	"github.com/trikv-io/triKV/cmd/serve"
	"github.com/trikv-io/triKV/cmd/util"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "trikv",
		Short: "column family key-value store",
		Long: fmt.Sprintf(`triKV (v%s)

A key-value store with a fixed set of column families, built for
dictionary and index workloads. Stores are served over RPC and
addressed through handles.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of triKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("triKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
