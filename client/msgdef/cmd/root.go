package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/client/msgdef/client"
	"github.com/wkalt/msgdef/util/log"
)

var (
	serverURL string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "msgdef",
	Short: "ROS1 message definition tools and registry server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		return log.Setup(os.Stderr, level, "text")
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func bailf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// bail prints err, with its detail line if it has one, and exits.
func bail(msg string, err error) {
	if d, ok := err.(interface{ Detail() string }); ok && d.Detail() != "" {
		bailf("%s: %s (%s)", msg, err, d.Detail())
	}
	bailf("%s: %s", msg, err)
}

func newClient() *client.Client {
	return client.New(serverURL)
}

// readInput reads the file named by the first argument, or stdin if there is
// none or it is "-".
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server-url", "", "http://localhost:8089", "server URL")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "warn", "log level")
}
