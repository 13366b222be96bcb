package kv

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trikv-io/triKV/rpc/common"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [family] [key] [value]",
		Short: "Stores the value for a key in a column family",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			family := args[0]
			key := args[1]
			value := args[2]
			if err := remoteStore.Put(family, []byte(key), []byte(value)); err != nil {
				return err
			} else {
				fmt.Println("put successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [family] [key]",
		Short: "Reads the value for a key from a column family",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			family := args[0]
			key := args[1]
			if resp, ok, err := remoteStore.Get(family, []byte(key)); err != nil {
				return err
			} else {
				fmt.Printf("family=%s, key=%s, found=%v, resp=%s\n", family, key, ok, resp)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [family] [key]",
		Short: "Deletes a key value pair from a column family",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			family := args[0]
			key := args[1]
			if err := remoteStore.Delete(family, []byte(key)); err != nil {
				return err
			} else {
				fmt.Println("delete successfully")
			}
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [family] [key]",
		Short: "Checks if a key exists in a column family",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			family := args[0]
			key := args[1]
			if found, err := remoteStore.Exists(family, []byte(key)); err != nil {
				return err
			} else {
				fmt.Printf("family=%s, key=%s, found=%t\n", family, key, found)
			}
			return nil
		},
	}
	batchCmd = &cobra.Command{
		Use:   "batch [op]...",
		Short: "Applies multiple operations as one atomic batch",
		Long: "Applies multiple operations as one atomic batch.\n" +
			"Each op has the form put:family:key:value or del:family:key.\n" +
			"If any op is invalid, none is applied.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := make([]common.BatchOp, 0, len(args))
			for _, arg := range args {
				op, err := parseBatchOp(arg)
				if err != nil {
					return err
				}
				ops = append(ops, op)
			}
			if err := remoteStore.Apply(ops); err != nil {
				return err
			} else {
				fmt.Printf("batch of %d ops applied successfully\n", len(ops))
			}
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Shows path and column families of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := remoteStore.Path()
			if err != nil {
				return err
			}
			families, err := remoteStore.Families()
			if err != nil {
				return err
			}
			fmt.Printf("handle=%d\n", remoteStore.StoreID())
			fmt.Printf("path=%s\n", path)
			fmt.Printf("families=%s\n", strings.Join(families, ","))
			return nil
		},
	}
	closeCmd = &cobra.Command{
		Use:   "close",
		Short: "Closes the store on the server and releases its handle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := remoteStore.Close(); err != nil {
				return err
			} else {
				fmt.Println("store closed")
			}
			return nil
		},
	}
)

// parseBatchOp parses a single batch op spec of the form
// put:family:key:value or del:family:key
func parseBatchOp(spec string) (common.BatchOp, error) {
	parts := strings.SplitN(spec, ":", 4)

	switch parts[0] {
	case "put":
		if len(parts) != 4 {
			return common.BatchOp{}, fmt.Errorf("invalid op %q: want put:family:key:value", spec)
		}
		return common.BatchOp{
			Op:     common.OpPut,
			Family: parts[1],
			Key:    []byte(parts[2]),
			Value:  []byte(parts[3]),
		}, nil
	case "del":
		if len(parts) != 3 {
			return common.BatchOp{}, fmt.Errorf("invalid op %q: want del:family:key", spec)
		}
		return common.BatchOp{
			Op:     common.OpDelete,
			Family: parts[1],
			Key:    []byte(parts[2]),
		}, nil
	default:
		return common.BatchOp{}, fmt.Errorf("invalid op %q: must start with put: or del:", spec)
	}
}
