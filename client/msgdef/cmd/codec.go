package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/client/msgdef/util"
	"github.com/wkalt/msgdef/util/ros1msg"
)

var (
	decodeJSON    bool
	decodeLenient bool
	md5sumLenient bool
)

// encodeCmd renders a JSON sequence as canonical text.
var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a JSON definition sequence as concatenated text",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readInput(args)
		if err != nil {
			bailf("error reading input: %s", err)
		}
		seq := ros1msg.Sequence{}
		if err := json.Unmarshal(data, &seq); err != nil {
			bailf("error parsing sequence: %s", err)
		}
		text, err := ros1msg.Encode(seq)
		if err != nil {
			bail("error encoding sequence", err)
		}
		fmt.Print(text)
	},
}

// decodeCmd parses concatenated text and prints it back, either as JSON or
// highlighted canonical text.
var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode concatenated definition text",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readInput(args)
		if err != nil {
			bailf("error reading input: %s", err)
		}
		seq, err := decodeText(data, decodeLenient)
		if err != nil {
			bail("error decoding text", err)
		}
		if decodeJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(seq); err != nil {
				bailf("error writing output: %s", err)
			}
			return
		}
		if err := util.PrintSequence(os.Stdout, seq); err != nil {
			bailf("error writing output: %s", err)
		}
	},
}

var md5sumCmd = &cobra.Command{
	Use:   "md5sum type [file]",
	Short: "Compute the ROS MD5 sum of a type from its concatenated definition",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readInput(args[1:])
		if err != nil {
			bailf("error reading input: %s", err)
		}
		seq, err := decodeText(data, md5sumLenient)
		if err != nil {
			bail("error decoding text", err)
		}
		sum, err := ros1msg.MD5Sum(args[0], seq)
		if err != nil {
			bail("error computing md5sum", err)
		}
		fmt.Println(sum)
	},
}

func decodeText(data []byte, lenient bool) (ros1msg.Sequence, error) {
	if lenient {
		return ros1msg.ParseMessageDefinition(data)
	}
	return ros1msg.Decode(string(data))
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(md5sumCmd)

	decodeCmd.PersistentFlags().BoolVarP(&decodeJSON, "json", "", false, "output the sequence as JSON")
	decodeCmd.PersistentFlags().BoolVarP(&decodeLenient, "lenient", "l", false, "accept human-authored text")
	md5sumCmd.PersistentFlags().BoolVarP(&md5sumLenient, "lenient", "l", false, "accept human-authored text")
}
