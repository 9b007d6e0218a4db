package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BetterCallFirewall/Cryptoscope/internal/config"
	"github.com/BetterCallFirewall/Cryptoscope/internal/jsonvalue"
	"github.com/BetterCallFirewall/Cryptoscope/internal/view"
	"github.com/BetterCallFirewall/Cryptoscope/internal/web"
)

var flagFields []string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.har>",
	Short: "Import a HAR file and print the decrypted fields of every exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fields, err := parseFields(flagFields)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open HAR file: %w", err)
		}
		defer f.Close()

		return inspect(cmd, cfg, f, fields)
	},
}

func init() {
	inspectCmd.Flags().StringSliceVarP(&flagFields, "field", "f", nil, "fields to decrypt: headers, params, payload, response (default all)")
}

func parseFields(names []string) ([]view.Field, error) {
	if len(names) == 0 {
		return view.Fields, nil
	}
	out := make([]view.Field, 0, len(names))
	for _, name := range names {
		f, ok := view.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}

func inspect(cmd *cobra.Command, cfg *config.Config, src io.Reader, fields []view.Field) error {
	session, err := web.NewSession(cfg)
	if err != nil {
		return err
	}
	if flagEnv != "" && !session.Keys.SetEnvironment(flagEnv) {
		return fmt.Errorf("unknown environment %q", flagEnv)
	}

	res, err := session.Recorder.ImportHAR(cmd.Context(), src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d exchanges captured, %d skipped\n", res.Captured, res.Skipped)

	for _, e := range session.Store.All() {
		session.Store.Select(e.ID)

		status := "-"
		if e.HasStatus() {
			status = fmt.Sprint(e.Status)
		}
		fmt.Fprintf(out, "\n=== %s %s %s\n", e.Method, status, e.ShortURL)

		for _, field := range fields {
			if !session.View.Decryptable(field) {
				continue
			}
			p := session.View.Toggle(field)
			fmt.Fprintf(out, "--- %s", field)
			if p.Fallback {
				fmt.Fprint(out, " (not unwrapped)")
			}
			fmt.Fprintln(out)
			writePresentation(out, p)
		}
	}
	return nil
}

func writePresentation(w io.Writer, p view.Presentation) {
	if p.Notice != "" {
		fmt.Fprintf(w, "# %s\n", p.Notice)
	}
	if p.Tree != nil {
		writeNode(w, *p.Tree, 0)
		return
	}
	if p.Text != "" {
		fmt.Fprintln(w, p.Text)
	}
}

func writeNode(w io.Writer, n jsonvalue.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	key := ""
	if n.Key != nil {
		key = *n.Key + ": "
	}

	if n.Kind == jsonvalue.KindObject || n.Kind == jsonvalue.KindArray {
		fmt.Fprintf(w, "%s%s%s\n", indent, key, n.Label)
		for _, child := range n.Children {
			writeNode(w, child, depth+1)
		}
		return
	}

	value := n.Value
	if n.Kind == jsonvalue.KindString {
		value = fmt.Sprintf("%q", n.Value)
	}
	fmt.Fprintf(w, "%s%s%s\n", indent, key, value)
}
