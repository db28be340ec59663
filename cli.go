package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/giygas/vetdose/dosing"
	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/validation"
	"github.com/spf13/cobra"
)

// doseCmd evaluates one drug row offline, the way POST /dose does
func doseCmd() *cobra.Command {
	var (
		catalogPath  string
		drugID       string
		species      string
		weight       string
		unit         string
		dose         string
		presentation int
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "dose",
		Short: "Compute the administered quantity for one drug",
		Example: `  vetdose dose --drug ket --species cat --weight 4 --unit kg
  vetdose dose --drug marop --weight 35 --presentation 1 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := formulary.Source{Path: catalogPath}.LoadCatalog()
			if err != nil {
				return err
			}

			validator := validation.NewCatalogValidator()
			sp, err := validator.ValidateSpecies(species)
			if err != nil {
				return err
			}
			wu, err := validator.ValidateUnit(unit)
			if err != nil {
				return err
			}

			drug, err := catalog.Drug(drugID)
			if err != nil {
				return err
			}

			row := dosing.NewRowState(drug, sp)
			if cmd.Flags().Changed("dose") {
				row.SetDose(dose)
			}
			if cmd.Flags().Changed("presentation") {
				row.SelectPresentation(drug, presentation)
			}

			kg := dosing.ToKilograms(dosing.ParseWeight(dosing.NormalizeOnCommit(weight, dosing.InputDecimals)), wu)
			res := dosing.Evaluate(drug, sp, kg, row)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}

			doseText := res.DoseInput
			if doseText == "" {
				doseText = "-"
			}
			fmt.Fprintf(out, "%s (%s, %s kg)\n", drug.Name, sp, dosing.FormatNumber(dosing.Round(kg, 2)))
			fmt.Fprintf(out, "  dose:   %s %s\n", doseText, res.UnitLabel)
			if res.Presentation != nil {
				fmt.Fprintf(out, "  form:   %s\n", res.Presentation.Label)
			}
			fmt.Fprintf(out, "  result: %s\n", res.Result.Text)
			if res.OutOfRange {
				fmt.Fprintf(out, "  warning: dose outside %s-%s %s\n",
					dosing.FormatNumber(res.Range.Min), dosing.FormatNumber(res.Range.Max), res.UnitLabel)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog YAML file (defaults to the embedded seed)")
	cmd.Flags().StringVar(&drugID, "drug", "", "drug id")
	cmd.Flags().StringVar(&species, "species", "dog", "patient species")
	cmd.Flags().StringVar(&weight, "weight", "", "patient weight")
	cmd.Flags().StringVar(&unit, "unit", "lb", "weight unit (kg or lb)")
	cmd.Flags().StringVar(&dose, "dose", "", "dose per kg (defaults to the range midpoint)")
	cmd.Flags().IntVar(&presentation, "presentation", 0, "presentation index")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full row evaluation as JSON")
	_ = cmd.MarkFlagRequired("drug")

	return cmd
}

// catalogCmd lists the filtered formulary, as a tab of the calculator shows it
func catalogCmd() *cobra.Command {
	var (
		catalogPath string
		tab         string
		query       string
		species     string
		allSpecies  bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the drug catalog, filtered like the calculator",
		Example: `  vetdose catalog --tab inject --species cat
  vetdose catalog --query opioid --all-species
  vetdose catalog validate --catalog ./clinic.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := formulary.Source{Path: catalogPath}.LoadCatalog()
			if err != nil {
				return err
			}

			validator := validation.NewCatalogValidator()
			sp, err := validator.ValidateSpecies(species)
			if err != nil {
				return err
			}
			if query != "" {
				if err := validator.ValidateInput(query); err != nil {
					return err
				}
			}

			drugs, err := catalog.Search(tab, query, !allSpecies, sp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range drugs {
				fmt.Fprintf(out, "%-12s %-32s %-16s %s\n", d.ID, d.Name, d.Category, d.DoseUnit())
			}
			if len(drugs) == 0 {
				fmt.Fprintln(out, "no drugs match")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog YAML file (defaults to the embedded seed)")
	cmd.Flags().StringVar(&tab, "tab", "", "tab id (empty lists the whole catalog)")
	cmd.Flags().StringVar(&query, "query", "", "name or category search; searches every tab")
	cmd.Flags().StringVar(&species, "species", "dog", "patient species")
	cmd.Flags().BoolVar(&allSpecies, "all-species", false, "include drugs not listed for the species")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the catalog and report entries that cannot produce a quantity",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := formulary.Source{Path: catalogPath}.LoadCatalog()
			if err != nil {
				return err
			}

			validator := validation.NewCatalogValidator()
			if err := validator.ValidateCatalog(catalog); err != nil {
				return err
			}
			report := validator.ReportCatalogQuality(catalog)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog ok: %d drugs in %d tabs\n", len(catalog.Drugs()), len(catalog.Tabs()))
			printList(out, "without presentations", report.DrugsWithoutPresentations)
			printList(out, "without dose range", report.DrugsWithoutRange)
			printList(out, "unset concentrations", report.UnsetConcentrations)
			printList(out, "overrides for unlisted species", report.OverridesForUnlisted)
			return nil
		},
	})

	return cmd
}

func printList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, strings.Join(items, ", "))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
