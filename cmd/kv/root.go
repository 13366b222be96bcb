package kv

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trikv-io/triKV/cmd/util"
	"github.com/trikv-io/triKV/rpc/client"
)

var (
	// rpcClient and remoteStore are shared by all kv subcommands. They are
	// set up once per invocation by setupKVClient.
	rpcClient   *client.Client
	remoteStore *client.RemoteStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform operations on a store of a triKV server",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: teardownKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	// Path of the store to operate on
	KeyValueCommands.PersistentFlags().String("store", "", util.WrapString("Path of the store on the server. Relative paths are resolved below the server's data directory"))

	// Add subcommands
	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(existsCmd)
	KeyValueCommands.AddCommand(batchCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(closeCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient connects to the server and opens the configured store
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	path := util.GetStorePath()
	if path == "" {
		return fmt.Errorf("no store path given (use --store)")
	}

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Connect and open the store
	rpcClient, err = client.NewRPCClient(*util.GetClientConfig(), t, s)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}

	remoteStore, err = rpcClient.Open(path)
	if err != nil {
		_ = rpcClient.Close()
		return fmt.Errorf("failed to open store %s: %v", path, err)
	}

	return nil
}

// teardownKVClient closes the transport. The store stays open on the server
// unless the close subcommand released its handle.
func teardownKVClient(_ *cobra.Command, _ []string) error {
	if rpcClient != nil {
		return rpcClient.Close()
	}
	return nil
}
