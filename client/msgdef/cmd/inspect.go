package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/client/msgdef/util"
	"github.com/wkalt/msgdef/mcap"
	mutil "github.com/wkalt/msgdef/util"
)

var inspectSchemas bool

// inspectCmd summarizes the topics of an MCAP file and optionally prints the
// structure of each schema it carries.
var inspectCmd = &cobra.Command{
	Use:   "inspect file.mcap",
	Short: "Summarize the topics and schemas of an MCAP file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			bailf("error opening file: %s", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			bailf("error reading file: %s", err)
		}
		topics, err := mcap.Topics(f)
		if err != nil {
			bailf("error reading topics: %s", err)
		}
		fmt.Printf("%s (%s)\n\n", args[0], mutil.HumanBytes(uint64(info.Size())))
		data := make([][]string, 0, len(topics))
		for _, topic := range topics {
			data = append(data, []string{
				topic.Topic,
				topic.SchemaName,
				strconv.FormatUint(topic.MessageCount, 10),
			})
		}
		util.PrintTable(os.Stdout, []string{"Topic", "Schema", "Messages"}, data)
		if !inspectSchemas {
			return
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			bailf("error rewinding file: %s", err)
		}
		schemas, err := mcap.Schemas(f)
		if err != nil {
			bailf("error reading schemas: %s", err)
		}
		for _, record := range schemas {
			fmt.Println()
			described, err := mcap.Describe(record)
			if err != nil {
				if errors.Is(err, mcap.UnsupportedEncodingError{}) {
					fmt.Printf("%s: %s\n", record.Name, err)
					continue
				}
				bailf("error describing %s: %s", record.Name, err)
			}
			fmt.Printf("[%s] ", record.Encoding)
			if err := described.Fprint(os.Stdout); err != nil {
				bailf("error writing output: %s", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.PersistentFlags().BoolVarP(&inspectSchemas, "schemas", "s", false, "print schema structure")
}
