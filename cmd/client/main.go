// cmd/client is the CLI entry-point built with Cobra, speaking the
// cmd=VERB&key=... protocol used by STORE and COORDINATOR nodes.
//
// Usage:
//
//	kvcli set mykey "hello world"   --server localhost:6000
//	kvcli get mykey                 --server localhost:6000
//	kvcli delete mykey               --server localhost:6000
//	kvcli cluster add 127.0.0.1 7001 --weight 3 --server localhost:5000
//	kvcli cluster remove 127.0.0.1 7001 --server localhost:5000
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dkvring/internal/wireclient"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "kvcli",
		Short: "CLI client for the STORE/COORDINATOR wire protocol",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"localhost:6000", "STORE or COORDINATOR address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"request timeout")

	root.AddCommand(setCmd(), getCmd(), deleteCmd(), clusterCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := wireclient.New(serverAddr, timeout)
			if err := c.Set(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve a value by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := wireclient.New(serverAddr, timeout)
			value, err := c.Get(context.Background(), args[0])
			if err == wireclient.ErrNotFound {
				fmt.Printf("key %q not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := wireclient.New(serverAddr, timeout)
			if err := c.Delete(context.Background(), args[0]); err != nil {
				if err == wireclient.ErrNotFound {
					fmt.Printf("key %q not found\n", args[0])
					return nil
				}
				return err
			}
			fmt.Printf("deleted %q\n", args[0])
			return nil
		},
	}
}

func clusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "COORDINATOR ring management commands",
	}

	var weight int
	addCmd := &cobra.Command{
		Use:   "add <ip> <port>",
		Short: "Add a STORE to the coordinator's ring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}
			c := wireclient.New(serverAddr, timeout)
			if err := c.AddServer(context.Background(), args[0], port, weight); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
	addCmd.Flags().IntVar(&weight, "weight", 3, "virtual node count for the new store")

	removeCmd := &cobra.Command{
		Use:   "remove <ip> <port>",
		Short: "Remove a STORE from the coordinator's ring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}
			c := wireclient.New(serverAddr, timeout)
			return c.RemoveServer(context.Background(), args[0], port)
		},
	}

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}
