package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diewo77/bizdesk/i18n"
)

var errNoMatch = errors.New("no command matched")

func (a *app) matchCmd() *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "match <text...>",
		Short: "Resolve a spoken phrase to a navigation command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.matcher()
			if err != nil {
				return err
			}
			if locale == "" {
				locale = m.DefaultLocale()
			}
			res, ok := m.Match(strings.Join(args, " "), locale)
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T(i18n.Normalize(locale), "voice_fallback"))
				return errNoMatch
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.2f\n", res.Action, res.Response, res.Kind, res.Score)
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "response locale (default: voice.default_locale)")
	return cmd
}
