// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/ui/styles"
)

func newPersonasCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List the personas the service offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			personas, err := a.client.ListPersonas(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writePersonasJSON(cmd.OutOrStdout(), personas)
			}
			writePersonas(cmd.OutOrStdout(), personas, a.cfg.Chat.DefaultPersona)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writePersonas(w io.Writer, personas []api.Persona, defaultID string) {
	if len(personas) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("The service offers no personas."))
		return
	}
	for _, p := range personas {
		marker := " "
		if p.ID == defaultID {
			marker = "*"
		}
		title := p.Title
		if title == "" {
			title = styles.PaletteFor(p.ID).Tagline
		}
		fmt.Fprintf(w, "%s %s %s  %s\n", marker, LabelStyle.Render(p.ID), personaStyle(p.ID).Render(p.Name), MutedStyle.Render(title))
	}
}

func writePersonasJSON(w io.Writer, personas []api.Persona) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(personas)
}
