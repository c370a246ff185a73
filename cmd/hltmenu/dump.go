package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/akave-ai/hltmenu/internal/menu/hlt75e33"
	"github.com/akave-ai/hltmenu/internal/pset"
)

func newDumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump <label>",
		Short: "Print a built-in module record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctor, ok := hlt75e33.All()[args[0]]
			if !ok {
				return fmt.Errorf("unknown module %q (known: %s)", args[0], strings.Join(builtinLabels(), ", "))
			}
			out, err := encode(ctor(), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "cfi", "output format: cfi, json or yaml")
	return cmd
}

func builtinLabels() []string {
	all := hlt75e33.All()
	labels := make([]string, 0, len(all))
	for label := range all {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func encode(mod *pset.Module, format string) ([]byte, error) {
	switch format {
	case "cfi":
		return mod.Serialize(), nil
	case "json":
		out, err := json.MarshalIndent(mod, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case "yaml":
		return yaml.Marshal(mod)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
