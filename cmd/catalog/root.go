package catalog

import (
	"github.com/ValentinKolb/flatmsg/cmd/util"
	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient  *client.RPCClient
	rpcCatalog catalog.IStore

	// CatalogCommands represents the catalog command group
	CatalogCommands = &cobra.Command{
		Use:               "catalog",
		Short:             "Perform catalog operations on a flatmsg server",
		PersistentPreRunE: setupCatalogClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the catalog command
	util.SetupRPCClientFlags(CatalogCommands)

	// Add subcommands
	CatalogCommands.AddCommand(putCmd)
	CatalogCommands.AddCommand(getCmd)
	CatalogCommands.AddCommand(delCmd)
	CatalogCommands.AddCommand(hasCmd)
	CatalogCommands.AddCommand(listCmd)
	CatalogCommands.AddCommand(perfTestCmd)
}

// setupCatalogClient initializes the RPC catalog client
func setupCatalogClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcClient, err = client.NewRPCClient(*config, t, s, marshal.New(marshal.Options{}))
	if err != nil {
		return err
	}

	rpcCatalog, err = client.NewRPCCatalog(rpcClient)
	return err
}
