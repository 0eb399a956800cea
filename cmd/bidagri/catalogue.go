package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

func (a *app) productsCommand() *command {
	var id int64
	return &command{
		name:    "products",
		summary: "List catalogue products, or show one with --id",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("products", pflag.ContinueOnError)
			flagSet.Int64Var(&id, "id", 0, "show a single product")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSTART\tEND\tUNIT")
			if id > 0 {
				p, err := a.client.Product(a.ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%s\n", p.ID, p.Name, p.Category.ID, p.StartPrice, p.EndPrice, p.Unit)
				return tw.Flush()
			}

			list, err := a.client.Products(a.ctx)
			if err != nil {
				return err
			}
			for _, p := range list {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%s\n", p.ID, p.Name, p.Category.ID, p.StartPrice, p.EndPrice, p.Unit)
			}
			return tw.Flush()
		},
	}
}

func (a *app) categoriesCommand() *command {
	var id int64
	return &command{
		name:    "categories",
		summary: "List product categories, or show one with --id",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("categories", pflag.ContinueOnError)
			flagSet.Int64Var(&id, "id", 0, "show a single category")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPARENT")
			if id > 0 {
				c, err := a.client.Category(a.ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, parentName(c.ParentID))
				return tw.Flush()
			}

			list, err := a.client.Categories(a.ctx)
			if err != nil {
				return err
			}
			for _, c := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, parentName(c.ParentID))
			}
			return tw.Flush()
		},
	}
}

func parentName(parentID *int64) string {
	if parentID == nil {
		return "-"
	}
	return fmt.Sprint(*parentID)
}
