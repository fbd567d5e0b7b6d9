package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"modelhub/internal/catalog"
	"modelhub/internal/registry"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed artifacts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			return printInstalled(cmd.OutOrStdout(), store)
		},
	}
}

func printInstalled(out io.Writer, store *registry.Store) error {
	models, err := store.Models()
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Fprintf(out, "no models installed in %s\n", store.Root())
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%s\n", m.Name, humanize.Bytes(uint64(m.SizeBytes)))
	}
	return tw.Flush()
}

func newCatalogCmd(a *app) *cobra.Command {
	var kinds string
	cmd := &cobra.Command{
		Use:     "catalog",
		Short:   "List downloadable artifacts",
		Example: "  modelhub catalog --kind image",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			cat, err := a.resolver()
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), cat, store, splitCSV(kinds))
		},
	}
	cmd.Flags().StringVar(&kinds, "kind", "", "Comma-separated kinds to show (text,image)")
	return cmd
}

func printCatalog(out io.Writer, cat *catalog.Resolver, store *registry.Store, kinds []string) error {
	names, err := store.ListInstalled()
	if err != nil {
		return err
	}
	installed := make(map[string]bool, len(names))
	for _, n := range names {
		installed[strings.ToLower(n)] = true
	}
	want := make(map[catalog.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[catalog.Kind(strings.ToLower(k))] = true
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSIZE\tINSTALLED\tNAME")
	for _, d := range cat.All() {
		if len(want) > 0 && !want[d.Kind] {
			continue
		}
		mark := ""
		if installed[strings.ToLower(d.Filename)] {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Kind, humanize.Bytes(uint64(d.ExpectedSizeBytes)), mark, d.Name)
	}
	return tw.Flush()
}
