package catalog

import (
	"fmt"

	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [item]",
		Short: "Stores an item given in the flat wire format",
		Long:  "Stores an item given in the flat wire format, e.g. 'name=desk&price=99.5&tags[0]=oak&stock[berlin]=3'. A missing id is generated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := parseItem(rpcClient.Engine(), args[0])
			if err != nil {
				return err
			}
			if err := rpcCatalog.Put(cmd.Context(), item); err != nil {
				return err
			}
			fmt.Printf("put successfully, id=%s\n", item.ID)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Reads an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("id must be a uuid: %w", err)
			}
			item, ok, err := rpcCatalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("id=%s, found=false\n", id)
				return nil
			}
			return printItem(rpcClient.Engine(), item)
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [id]",
		Short: "Deletes an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("id must be a uuid: %w", err)
			}
			if err := rpcCatalog.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [id]",
		Short: "Checks if an item exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("id must be a uuid: %w", err)
			}
			ok, err := rpcCatalog.Has(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("id=%s, found=%v\n", id, ok)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := rpcCatalog.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := printItem(rpcClient.Engine(), item); err != nil {
					return err
				}
			}
			fmt.Printf("%d items\n", len(items))
			return nil
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseItem decodes an item from its wire form and assigns an id if it has none
func parseItem(e *marshal.Engine, raw string) (catalog.Item, error) {
	msg, err := urlmsg.Parse(raw, urlmsg.DefaultSeparator)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("invalid item: %w", err)
	}
	item, err := catalog.Decode(e, msg)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("invalid item: %w", err)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return item, nil
}

// printItem writes the wire form of an item
func printItem(e *marshal.Engine, item catalog.Item) error {
	msg, err := catalog.Encode(e, item)
	if err != nil {
		return err
	}
	fmt.Println(msg.String())
	return nil
}
