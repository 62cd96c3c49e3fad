package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/flatmsg/cmd/catalog"
	"github.com/ValentinKolb/flatmsg/cmd/codec"
	"github.com/ValentinKolb/flatmsg/cmd/serve"
	"github.com/ValentinKolb/flatmsg/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "flatmsg",
		Short: "flat key/value serialization engine",
		Long: fmt.Sprintf(`flatmsg (v%s)

A serialization engine that maps object graphs onto flat, url-encoded
key/value messages, with an RPC server and client built on top of it.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of flatmsg",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flatmsg v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(catalog.CatalogCommands)
	RootCmd.AddCommand(codec.CodecCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (url, binary, json, bson, gob, yaml)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (http, tcp, unix, rest - rest is server only)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
