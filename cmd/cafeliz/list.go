package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vbonduro/cafeliz/internal/catalog"
	"github.com/vbonduro/cafeliz/internal/domain"
	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/sales"
	"github.com/vbonduro/cafeliz/internal/store"
)

func newMenuCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "menu", Short: "Inspect the menu"}
	var format string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print every menu item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd.Context(), func(b kv.Backend) error {
				s := catalog.NewStore(b, a.storeOptions())
				if err := s.Load(cmd.Context()); err != nil {
					return err
				}
				return printMenu(cmd.OutOrStdout(), format, s.Items())
			})
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|yaml")
	cmd.AddCommand(list)
	return cmd
}

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Inspect customer orders"}
	var format string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print every order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd.Context(), func(b kv.Backend) error {
				s := sales.NewStore(b, a.storeOptions())
				if err := s.Load(cmd.Context()); err != nil {
					return err
				}
				return printOrders(cmd.OutOrStdout(), format, s.Items())
			})
		},
	}
	list.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|yaml")
	cmd.AddCommand(list)
	return cmd
}

func newLocationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "location",
		Short: "Print the device location string",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), newReporter(a.cfg, a.logger).Report(cmd.Context()))
			return err
		},
	}
}

func (a *app) storeOptions() store.Options {
	return store.Options{Notifier: notify.NewLog(a.logger), Logger: a.logger}
}

func (a *app) withBackend(ctx context.Context, fn func(kv.Backend) error) error {
	b, err := openBackend(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			a.logger.Error("failed to close storage", "error", err)
		}
	}()
	return fn(b)
}

func printMenu(w io.Writer, format string, items []domain.MenuItem) error {
	if format != "table" {
		return encode(w, format, items)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTÍTULO\tPREÇO\tDESCRIÇÃO")
	for _, m := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, m.Title, catalog.PriceLabel(m.Price), m.Description)
	}
	return tw.Flush()
}

func printOrders(w io.Writer, format string, orders []domain.Order) error {
	if format != "table" {
		return encode(w, format, orders)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENTE\tPEDIDO\tQUANTIDADE")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.Customer, o.Item, o.Quantity)
	}
	return tw.Flush()
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

