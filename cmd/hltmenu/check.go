package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akave-ai/hltmenu/internal/infrastructure/modules"
	_ "github.com/akave-ai/hltmenu/internal/infrastructure/modules/quadeta"
	"github.com/akave-ai/hltmenu/internal/menu"
	"github.com/akave-ai/hltmenu/internal/menu/hlt75e33"
)

func newCheckCmd() *cobra.Command {
	var (
		external []string
		builtin  bool
	)
	cmd := &cobra.Command{
		Use:   "check <file...>",
		Short: "Parse, validate and resolve configuration fragments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			m := menu.New(hlt75e33.MenuName, external...)
			if builtin {
				for _, mod := range menu.Default().Modules() {
					_ = m.Add(mod)
				}
			}

			var errs []error
			for _, path := range args {
				mod, err := menu.LoadFile(path)
				if err != nil {
					errs = append(errs, err)
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				if err := modules.GlobalRegistry.Validate(mod); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				if err := m.Add(mod); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s %s %s\n", path, mod.Label(), mod.ID())
			}
			for _, u := range m.Unresolved() {
				fmt.Fprintf(out, "unresolved %s.%s -> %s\n", u.Module, u.Parameter, u.Label)
			}
			if err := m.Resolve(); err != nil {
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringSliceVar(&external, "external", hlt75e33.External, "labels produced outside the checked files")
	cmd.Flags().BoolVar(&builtin, "builtin", false, "check against the built-in menu as well")
	return cmd
}
