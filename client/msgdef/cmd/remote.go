package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/client/msgdef/util"
	"github.com/wkalt/msgdef/routes"
)

var (
	typesMD5     bool
	changesSince string
)

// typesCmd lists the types of the server registry, or prints the definition
// of one of them.
var typesCmd = &cobra.Command{
	Use:   "types [type]",
	Short: "List registered types or show the definition of one",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		c := newClient()
		if len(args) == 0 {
			names, err := c.Types(ctx)
			if err != nil {
				bail("error listing types", err)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return
		}
		def, err := c.Definition(ctx, args[0])
		if err != nil {
			bail("error getting definition", err)
		}
		if typesMD5 {
			fmt.Println(def.MD5Sum)
			return
		}
		fmt.Print(def.Text)
	},
}

// storeCmd submits a concatenated definition to the server.
var storeCmd = &cobra.Command{
	Use:   "store type [file]",
	Short: "Submit a concatenated definition to the server",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		data, err := readInput(args[1:])
		if err != nil {
			bailf("error reading input: %s", err)
		}
		resp, err := newClient().PutDefinition(ctx, args[0], string(data))
		if err != nil {
			bail("error storing definition", err)
		}
		status := "unchanged"
		if resp.Created {
			status = "new"
		}
		util.PrintTable(os.Stdout,
			[]string{"Type", "Fingerprint", "MD5 Sum", "Status"},
			[][]string{{resp.Name, resp.Fingerprint, resp.MD5Sum, status}},
		)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history type",
	Short: "List the recorded definitions of a type",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := newClient().History(context.Background(), args[0])
		if err != nil {
			bail("error getting history", err)
		}
		printEntries(os.Stdout, entries)
	},
}

// changesCmd lists the definitions first seen after a point in time.
var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "List definitions first seen since a time",
	Run: func(cmd *cobra.Command, args []string) {
		since, err := iso8601.ParseString(changesSince)
		if err != nil {
			bailf("error parsing since: %s", err)
		}
		changes, err := newClient().Changes(context.Background(), since)
		if err != nil {
			bail("error getting changes", err)
		}
		printChanges(os.Stdout, changes)
	},
}

func printEntries(w io.Writer, entries []catalog.Entry) {
	data := make([][]string, 0, len(entries))
	for _, entry := range entries {
		data = append(data, []string{
			entry.Name,
			entry.Fingerprint,
			entry.MD5Sum,
			entry.FirstSeen.Format(time.RFC3339),
		})
	}
	util.PrintTable(w, []string{"Type", "Fingerprint", "MD5 Sum", "First Seen"}, data)
}

func printChanges(w io.Writer, changes []routes.TypeChanges) {
	entries := []catalog.Entry{}
	for _, change := range changes {
		entries = append(entries, change.Definitions...)
	}
	printEntries(w, entries)
}

func init() {
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(changesCmd)

	typesCmd.PersistentFlags().BoolVarP(&typesMD5, "md5", "", false, "print only the MD5 sum")
	changesCmd.PersistentFlags().StringVarP(&changesSince, "since", "s", "1970-01-01T00:00:00Z", "ISO8601 timestamp")
}
