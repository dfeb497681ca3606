package main

import (
	"fmt"
	"strconv"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/i2y/bridle/models"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models [family...]",
		Short: "List the model catalog of each family",
		RunE: func(cmd *cobra.Command, args []string) error {
			families := models.Families()
			if len(args) > 0 {
				families = families[:0]
				for _, arg := range args {
					families = append(families, models.Family(arg))
				}
			}

			for i, family := range families {
				c, ok := models.Lookup(family)
				if !ok {
					return fmt.Errorf("unknown family %q", family)
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (default %s)\n%s\n", family, c.Default, catalogTable(c))
			}
			return nil
		},
	}
}

func catalogTable(c models.Catalog) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 48
	table.AddRow("MODEL", "MAX OUT", "CONTEXT", "IMAGES", "CACHE", "THINKING", "IN $/M", "OUT $/M")
	for _, id := range c.IDs() {
		info := c.Models[id]
		name := id
		if id == c.Default {
			name += " *"
		}
		table.AddRow(name,
			strconv.Itoa(info.MaxTokens),
			strconv.Itoa(info.ContextWindow),
			yesNo(info.SupportsImages),
			yesNo(info.SupportsPromptCache),
			yesNo(info.SupportsThinking),
			strconv.FormatFloat(info.InputPrice, 'f', -1, 64),
			strconv.FormatFloat(info.OutputPrice, 'f', -1, 64),
		)
	}
	return table
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
