package codec

import (
	"encoding/base64"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ValentinKolb/flatmsg/cmd/util"
	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ValentinKolb/flatmsg/rpc/serializer"
	"github.com/ValentinKolb/flatmsg/rpc/transport/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ugorji "github.com/ugorji/go/codec"
)

var (
	// CodecCommands work on flat messages locally, without a server
	CodecCommands = &cobra.Command{
		Use:   "codec",
		Short: "Inspect and convert flat messages",

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
	}

	keysCmd = &cobra.Command{
		Use:   "keys [message]",
		Short: "Prints the pairs of a message, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := urlmsg.Parse(args[0], urlmsg.DefaultSeparator)
			if err != nil {
				return err
			}
			return writeKeys(cmd.OutOrStdout(), msg)
		},
	}

	treeCmd = &cobra.Command{
		Use:   "tree [message]",
		Short: "Prints the nested structure of a message as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := urlmsg.Parse(args[0], urlmsg.DefaultSeparator)
			if err != nil {
				return err
			}
			return writeTree(cmd.OutOrStdout(), msg)
		},
	}

	envelopeCmd = &cobra.Command{
		Use:   "envelope [message]",
		Short: "Prints a message in the envelope format of --serializer (base64 for binary formats)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := urlmsg.Parse(args[0], urlmsg.DefaultSeparator)
			if err != nil {
				return err
			}
			s, err := serializer.ByName(viper.GetString("serializer"))
			if err != nil {
				return err
			}
			return writeEnvelope(cmd.OutOrStdout(), s, msg)
		},
	}

	itemCmd = &cobra.Command{
		Use:   "item [message]",
		Short: "Decodes a catalog item and prints its canonical wire form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeItem(cmd.OutOrStdout(), args[0])
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	CodecCommands.AddCommand(keysCmd)
	CodecCommands.AddCommand(treeCmd)
	CodecCommands.AddCommand(envelopeCmd)
	CodecCommands.AddCommand(itemCmd)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func writeKeys(w io.Writer, msg *urlmsg.Message) error {
	if msg.Command != "" {
		if _, err := fmt.Fprintf(w, "command: %s\n", msg.Command); err != nil {
			return err
		}
	}
	for _, p := range msg.Pairs() {
		if _, err := fmt.Fprintf(w, "%s = %s\n", p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeTree(w io.Writer, msg *urlmsg.Message) error {
	h := &ugorji.JsonHandle{}
	h.Indent = 2
	h.Canonical = true

	var out []byte
	if err := ugorji.NewEncoderBytes(&out, h).Encode(rest.Tree(msg)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, string(out))
	return err
}

func writeEnvelope(w io.Writer, s serializer.IRPCSerializer, msg *urlmsg.Message) error {
	data, err := s.Serialize(msg)
	if err != nil {
		return err
	}

	text := string(data)
	if !utf8.Valid(data) || containsControl(text) {
		text = base64.StdEncoding.EncodeToString(data)
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

// containsControl reports control characters other than whitespace
func containsControl(s string) bool {
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return true
		}
	}
	return false
}

func writeItem(w io.Writer, raw string) error {
	e := marshal.New(marshal.Options{})
	if err := catalog.Register(e); err != nil {
		return err
	}

	msg, err := urlmsg.Parse(raw, urlmsg.DefaultSeparator)
	if err != nil {
		return err
	}
	item, err := catalog.Decode(e, msg)
	if err != nil {
		return err
	}
	out, err := catalog.Encode(e, item)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\ntotal stock: %d\n", out.String(), item.TotalStock())
	return err
}
