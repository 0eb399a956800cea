package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/jrsteele09/go-bidagri-client/api"
	"github.com/jrsteele09/go-bidagri-client/auth"
	"github.com/jrsteele09/go-bidagri-client/lot"
	"github.com/jrsteele09/go-bidagri-client/products"
	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func (a *app) lotCommand() *command {
	return &command{
		name:    "lot",
		summary: "Manage the products staged for the next lot",
		subcommands: []*command{
			a.lotListCommand(),
			a.lotAddCommand(),
			a.lotRemoveCommand(),
			a.lotSetCommand(),
			a.lotClearCommand(),
			a.lotTotalCommand(),
			a.lotSubmitCommand(),
			a.lotSweepCommand(),
			a.lotPurgeCommand(),
		},
	}
}

func (a *app) lotListCommand() *command {
	return &command{
		name:    "list",
		summary: "List the staged products",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			a.printEntries(a.lots.List())
			return nil
		},
	}
}

func (a *app) lotAddCommand() *command {
	return &command{
		name:    "add",
		summary: "Add one unit of a catalogue product",
		usage:   "bidagri lot add PRODUCT_ID",
		run: func(args []string) error {
			productID, err := productIDArg("lot add", args)
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			if !a.cfg.GetAnonymousLot() {
				if _, err := a.requireUser(); err != nil {
					if errors.Is(err, auth.ErrSessionNotFound) {
						return errors.Wrap(lot.ErrUnauthenticatedWrite, loginPrompt)
					}
					return err
				}
			}
			product, err := a.client.Product(a.ctx, productID)
			if err != nil {
				return errors.Wrapf(err, "fetching product %d", productID)
			}
			entries, err := a.lots.Add(*product)
			if err != nil {
				return err
			}
			a.printEntries(entries)
			return nil
		},
	}
}

func (a *app) lotRemoveCommand() *command {
	return &command{
		name:    "remove",
		summary: "Remove a product from the lot",
		usage:   "bidagri lot remove PRODUCT_ID",
		run: func(args []string) error {
			productID, err := productIDArg("lot remove", args)
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			entries, err := a.lots.Remove(productID)
			if err != nil {
				return err
			}
			a.printEntries(entries)
			return nil
		},
	}
}

func (a *app) lotSetCommand() *command {
	return &command{
		name:    "set",
		summary: "Set a product's quantity; zero or less removes it",
		usage:   "bidagri lot set PRODUCT_ID QUANTITY",
		run: func(args []string) error {
			if len(args) != 2 {
				return errors.New("lot set: expected PRODUCT_ID and QUANTITY")
			}
			productID, err := productIDArg("lot set", args[:1])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("lot set: invalid quantity %q", args[1])
			}
			if err := a.open(); err != nil {
				return err
			}
			entries, err := a.lots.SetQuantity(productID, quantity)
			if err != nil {
				return err
			}
			a.printEntries(entries)
			return nil
		},
	}
}

func (a *app) lotClearCommand() *command {
	return &command{
		name:    "clear",
		summary: "Empty the lot",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.lots.Clear(); err != nil {
				return err
			}
			a.printf("Lot cleared\n")
			return nil
		},
	}
}

func (a *app) lotTotalCommand() *command {
	field := string(products.StartPrice)
	return &command{
		name:    "total",
		summary: "Sum quantity times price over the lot",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("total", pflag.ContinueOnError)
			flagSet.StringVar(&field, "field", field, "price column: startPrice or endPrice")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			total, err := a.lots.Total(products.PriceField(field))
			if err != nil {
				return err
			}
			a.printf("%d item(s), %s total %.2f\n", a.lots.Count(), field, total)
			return nil
		},
	}
}

func (a *app) lotSubmitCommand() *command {
	var farmerID int64
	return &command{
		name:    "submit",
		summary: "Submit the lot to the marketplace and clear it",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("submit", pflag.ContinueOnError)
			flagSet.Int64Var(&farmerID, "farmer-id", 0, "farmer id (defaults to the signed-in user id)")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			user, err := a.requireUser(users.RoleSystemUser)
			if err != nil {
				return err
			}
			if farmerID == 0 {
				if farmerID, err = strconv.ParseInt(user.ID, 10, 64); err != nil {
					return errors.Errorf("lot submit: user id %q is not numeric, pass --farmer-id", user.ID)
				}
			}

			entries := a.lots.List()
			saved, err := a.client.SaveLot(a.ctx, api.NewLot(farmerID, entries))
			if err != nil {
				return err
			}
			if err := a.lots.Clear(); err != nil {
				return err
			}
			for _, l := range saved {
				a.printf("Submitted lot %d (%s) with %d product(s)\n", l.ID, l.Status, len(l.Products))
			}
			if len(saved) == 0 {
				a.printf("Submitted %d product(s)\n", len(entries))
			}
			return nil
		},
	}
}

func (a *app) lotSweepCommand() *command {
	return &command{
		name:    "sweep",
		summary: "Summarise every lot kept in local storage",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if _, err := a.requireUser(users.RoleTenantAdmin); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OWNER\tPRODUCTS\tQUANTITY")
			for _, s := range a.lots.Sweep() {
				owner := s.OwnerID
				if s.Anonymous {
					owner = "(anonymous)"
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\n", owner, s.Entries, s.Quantity)
			}
			return tw.Flush()
		},
	}
}

func (a *app) lotPurgeCommand() *command {
	return &command{
		name:    "purge",
		summary: "Delete every lot kept in local storage",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if _, err := a.requireUser(users.RoleTenantAdmin); err != nil {
				return err
			}
			if err := a.lots.Purge(); err != nil {
				return err
			}
			a.printf("All lots deleted\n")
			return nil
		},
	}
}

func (a *app) printEntries(entries []lot.Entry) {
	if len(entries) == 0 {
		a.printf("Lot is empty\n")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tSTART\tEND")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\n", e.Product.ID, e.Product.Name, e.Quantity, e.Product.StartPrice, e.Product.EndPrice)
	}
	tw.Flush()
}

func productIDArg(name string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.Errorf("%s: expected exactly one PRODUCT_ID argument", name)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("%s: invalid product id %q", name, args[0])
	}
	return id, nil
}
