// Command hcl2-to-json converts HCL2 configuration to JSON (spec.md §6): it
// reads a file argument or stdin, forward-transforms it, and prints the
// tagged value tree as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hcl2go/hcl2/hcl2"
	"github.com/hcl2go/hcl2/value"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hcl2-to-json: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var withMeta bool

	cmd := &cobra.Command{
		Use:           "hcl2-to-json [path]",
		Short:         "Convert HCL2 configuration to JSON",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []hcl2.Option
			if withMeta {
				opts = append(opts, hcl2.WithMeta())
			}

			var m *value.Map
			var err error
			if len(args) == 1 {
				m, err = hcl2.LoadFile(args[0], opts...)
			} else {
				m, err = hcl2.Load(cmd.InOrStdin(), opts...)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
	cmd.Flags().BoolVar(&withMeta, "with-meta", false, "include __start_line__/__end_line__ metadata")
	return cmd
}
