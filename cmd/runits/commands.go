package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/edoardob90/runits/internal/audit"
	"github.com/edoardob90/runits/internal/customunit"
	"github.com/edoardob90/runits/internal/registry"
	"github.com/edoardob90/runits/internal/units"
)

// withApp runs fn against a bootstrapped app and closes it afterwards.
func withApp(cmd *cobra.Command, configPath func() string, fn func(a *app) error) error {
	a, err := bootstrap(cmd.Context(), configPath())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read-mostly database
	return fn(a)
}

func newConvertCmd(configPath func() string) *cobra.Command {
	var systemName string

	cmd := &cobra.Command{
		Use:   "convert QUANTITY [TARGET]",
		Short: "Convert a quantity to a unit or a unit system",
		Example: `  runits convert "3 ft" m
  runits convert "9.81 m/s^2" ft/s^2
  runits convert "1 N" --system imperial`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 && systemName != "" {
				return &usageError{"a target unit and --system are mutually exclusive"}
			}
			return withApp(cmd, configPath, func(a *app) error {
				q, err := a.catalog.Parser().Parse(args[0])
				if err != nil {
					return err
				}
				var result units.Quantity
				switch {
				case len(args) == 2:
					result, err = a.engine.ConvertText(q, args[1])
				case systemName != "":
					result, err = a.engine.ToSystem(q, systemName)
				default:
					result, err = a.engine.ToActiveSystem(q)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", q, result)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&systemName, "system", "s", "", "convert into the base units of this system")
	return cmd
}

func newParseCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse EXPRESSION",
		Short: "Parse a quantity and show its dimension and scale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				q, err := a.catalog.Parser().Parse(args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "quantity:\t%s\n", q)
				fmt.Fprintf(w, "dimension:\t%s\n", q.Unit.Dims())
				fmt.Fprintf(w, "scale:\t%s\n", formatFloat(q.Unit.Scale()))
				if q.Unit.IsAffine() {
					fmt.Fprintf(w, "offset:\t%s\n", formatFloat(q.Unit.Offset()))
				}
				return w.Flush()
			})
		},
	}
}

func newUnitsCmd(configPath func() string) *cobra.Command {
	var dimension string

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List registered units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				reg := a.catalog.Store().Load()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tDIMENSION\tSCALE\tALIASES")
				for _, name := range reg.ListUnits() {
					u, err := reg.Resolve(name)
					if err != nil {
						continue
					}
					dims := u.Dims().String()
					if dimension != "" && dims != dimension {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, dims, formatFloat(u.Scale()), strings.Join(u.Aliases(), ", "))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&dimension, "dimension", "d", "", "only list units of this dimension (e.g. length/time)")
	return cmd
}

func newPrefixesCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "prefixes",
		Short: "List unit prefixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SYMBOL\tMULTIPLIER")
				for _, p := range a.catalog.Store().Load().ListPrefixes() {
					fmt.Fprintf(w, "%s\t%s\n", p.Symbol, formatFloat(p.Multiplier))
				}
				return w.Flush()
			})
		},
	}
}

func newSystemsCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List unit systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				manager := a.catalog.Systems()
				active, _ := manager.Active()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "\tNAME\tDESCRIPTION")
				for _, name := range manager.List() {
					sys, err := manager.Get(name)
					if err != nil {
						return err
					}
					marker := ""
					if sys.Name == active.Name {
						marker = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", marker, sys.Name, sys.Description)
				}
				return w.Flush()
			})
		},
	}
}

func newDefineCmd(configPath func() string) *cobra.Command {
	var (
		def         registry.CustomDefinition
		kind        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "define NAME",
		Short: "Store a custom unit",
		Example: `  runits define furlong --kind simple --scale 220 --base yd
  runits define degRe --kind linear --scale 1.25 --offset 273.15 --base K
  runits define dBm --kind functional --base mW --expression "10^(x/10)" --inverse "10*log10(x)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def.Name = args[0]
			def.Kind = registry.Kind(kind)
			u := customunit.New(def)
			u.Description = description

			return withApp(cmd, configPath, func(a *app) error {
				if err := a.catalog.Define(audit.WithSource(cmd.Context(), audit.SourceCLI), u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "defined %s (%s, id %s)\n", u.Name, u.Kind, u.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "kind", string(registry.KindSimple), "simple, linear or functional")
	f.Float64Var(&def.Scale, "scale", 1, "factor relative to the base unit")
	f.Float64Var(&def.Offset, "offset", 0, "offset added after scaling (linear units)")
	f.StringVar(&def.Base, "base", "", "unit expression the definition is relative to")
	f.StringVar(&def.Expression, "expression", "", "formula in x mapping to the base unit (functional units)")
	f.StringVar(&def.Inverse, "inverse", "", "formula in x mapping back from the base unit (functional units)")
	f.StringSliceVar(&def.Aliases, "alias", nil, "alternative name (repeatable)")
	f.StringVar(&description, "description", "", "free-form description")
	return cmd
}

func newRemoveCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a stored custom unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				if err := a.catalog.Remove(audit.WithSource(cmd.Context(), audit.SourceCLI), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newHistoryCmd(configPath func() string) *cobra.Command {
	var filter audit.Filter

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the registry change trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				res, err := a.catalog.Audit().List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tACTION\tUNIT\tSOURCE")
				for _, e := range res.Entries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Action, e.Unit, e.Source)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter.Action, "action", "", "only show this action (define, redefine, remove, reload)")
	cmd.Flags().StringVar(&filter.Unit, "unit", "", "only show changes to this unit")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "maximum number of entries")
	return cmd
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
