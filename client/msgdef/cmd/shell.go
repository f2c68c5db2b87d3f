package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/client/msgdef/client"
	"github.com/wkalt/msgdef/client/msgdef/util"
)

const (
	shellPrompt      = "msgdef # "
	shellContinue    = "...... # "
	shellHistoryFile = "msgdef-history.tmp"
)

var shellHelp = map[string]string{
	"": `The msgdef shell is an interactive client for a msgdef server.

Input that does not start with a backslash is read as message definition
text, which may span multiple lines. A line containing only a semicolon ends
the definition; the server then decodes it and the canonical text is printed.

The supported slash commands are:

  \h [topic]         print help text for a topic
  \types             list registered types
  \def type          print the concatenated definition of a type
  \md5 type          print the MD5 sum of a type
  \history type      list the recorded definitions of a type
  \changes since     list definitions first seen after an ISO8601 time

Available help topics are:
  text: Explain definition text input.`,

	"text": `Definition text is decoded leniently, so comments and loose
spacing are accepted. For example:

  uint8 DEBUG=1 # a constant
  std_msgs/Header header
  float64[3] position
  ;

Dependencies may follow the primary definition, each introduced by a line of
80 "=" characters and a "MSG: package/Name" line.`,
}

type shell struct {
	ctx    context.Context
	client *client.Client
	out    io.Writer
}

func (s *shell) handleCommand(line string) error {
	command, arg, _ := strings.Cut(strings.TrimPrefix(line, `\`), " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "h", "help":
		text, ok := shellHelp[arg]
		if !ok {
			return fmt.Errorf("unrecognized help topic: %s", arg)
		}
		fmt.Fprintln(s.out, text)
		return nil
	case "types":
		names, err := s.client.Types(s.ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(s.out, name)
		}
		return nil
	case "def", "md5":
		if arg == "" {
			return errors.New("missing type")
		}
		def, err := s.client.Definition(s.ctx, arg)
		if err != nil {
			return err
		}
		if command == "md5" {
			fmt.Fprintln(s.out, def.MD5Sum)
			return nil
		}
		fmt.Fprint(s.out, def.Text)
		return nil
	case "history":
		if arg == "" {
			return errors.New("missing type")
		}
		entries, err := s.client.History(s.ctx, arg)
		if err != nil {
			return err
		}
		printEntries(s.out, entries)
		return nil
	case "changes":
		since, err := iso8601.ParseString(arg)
		if err != nil {
			return fmt.Errorf("failed to parse since: %w", err)
		}
		changes, err := s.client.Changes(s.ctx, since)
		if err != nil {
			return err
		}
		printChanges(s.out, changes)
		return nil
	default:
		return fmt.Errorf("unrecognized command: %s", line)
	}
}

func (s *shell) handleText(text string) error {
	seq, err := s.client.Decode(s.ctx, text, true)
	if err != nil {
		return err
	}
	return util.PrintSequence(s.out, seq)
}

func printShellError(w io.Writer, err error) {
	apiErr := client.APIError{}
	if errors.As(err, &apiErr) && apiErr.Detail() != "" {
		fmt.Fprintf(w, "ERROR: %s\nDETAIL: %s\n", apiErr.Message, apiErr.Detail())
		return
	}
	fmt.Fprintf(w, "ERROR: %s\n", err)
}

func runShell(ctx context.Context) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     filepath.Join(os.TempDir(), shellHistoryFile),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	s := &shell{ctx: ctx, client: newClient(), out: l.Stdout()}
	fmt.Fprintln(s.out, `Type "\h" for help.`)

	lines := []string{}
	for {
		line, err := l.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				lines = lines[:0]
				l.SetPrompt(shellPrompt)
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case len(lines) == 0 && trimmed == "":
			continue
		case len(lines) == 0 && strings.HasPrefix(trimmed, `\`):
			if err := s.handleCommand(trimmed); err != nil {
				printShellError(s.out, err)
			}
			continue
		case trimmed == ";":
			text := strings.Join(lines, "\n") + "\n"
			lines = lines[:0]
			l.SetPrompt(shellPrompt)
			if err := s.handleText(text); err != nil {
				printShellError(s.out, err)
			}
			continue
		}
		lines = append(lines, line)
		l.SetPrompt(shellContinue)
	}
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive msgdef client",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShell(context.Background()); err != nil {
			bailf("error running shell: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
