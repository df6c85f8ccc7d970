// Command envcalc evaluates building envelope models from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Envolvente/internal/calc/check"
	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/premium/batch"
	"Envolvente/internal/calc/premium/importer"
	"Envolvente/internal/calc/premium/recommend"
	"Envolvente/internal/calc/report"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
	"Envolvente/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	verbose bool
	asJSON  bool
	log     *zap.Logger
}

func (o *options) observer() diag.Observer {
	if o.log == nil {
		return diag.Nop
	}
	return o.log.Sugar()
}

func rootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "envcalc",
		Short:         "Building envelope thermal indicators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			o.log, err = logger.Verbose(o.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.log != nil {
				o.log.Sync()
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Log intermediate quantities of each computation")
	cmd.PersistentFlags().BoolVar(&o.asJSON, "json", false, "Print JSON instead of a table")

	cmd.AddCommand(uvaluesCmd(o), indicatorsCmd(o), checkCmd(o), limitsCmd(o), reportCmd(o), exportCmd(o))
	return cmd
}

func uvaluesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "uvalues MODEL",
		Short: "Thermal transmittance of every opaque element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			res, err := uvalue.Calculate(m, o.observer())
			if err != nil {
				return err
			}
			if o.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBOUNDS\tTILT\tORIENT\tAREA m²\tU W/m²K\tCASE")
			for _, r := range res.Walls {
				u := "-"
				if r.OK {
					u = fmt.Sprintf("%.3f", r.U)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
					r.ID, r.Name, r.Bounds, r.Tilt, r.Orientation, r.AreaM2, u, r.Case)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Notes)
			return nil
		},
	}
}

func indicatorsCmd(o *options) *cobra.Command {
	var irradiance map[string]string
	var concurrency int
	cmd := &cobra.Command{
		Use:   "indicators MODEL...",
		Short: "K, n50, C_o, compacity and q_sol;jul of one or more models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rad, err := parseIrradiance(irradiance)
			if err != nil {
				return err
			}
			in := batch.Input{Concurrency: concurrency}
			for _, path := range args {
				m, err := loadModel(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				in.Items = append(in.Items, indicators.Input{Model: *m, IrradianceJul: rad})
			}
			res, err := batch.Calculate(context.Background(), in, o.observer())
			if err != nil {
				return err
			}
			if o.asJSON {
				if len(res.Results) == 1 {
					return writeJSON(cmd.OutOrStdout(), res.Results[0])
				}
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tA_REF m²\tV/A\tK W/m²K\tN50 1/h\tC_O m³/h·m²\tQ_SOL;JUL\tWARNINGS")
			for i, s := range res.Results {
				q := "-"
				if s.QSolJul != nil {
					q = fmt.Sprintf("%.2f", *s.QSolJul)
				}
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%d\n",
					args[i], s.ARef, s.Compacity, s.K.K, s.N50, s.Co, q, len(s.Warnings))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringToStringVar(&irradiance, "irradiance", nil, "July irradiance per orientation, kWh/m² (e.g. S=200,SE=180)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Models evaluated at the same time (0 = GOMAXPROCS)")
	return cmd
}

func checkCmd(o *options) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check MODEL",
		Short: "Report dangling references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			res, err := check.Calculate(m, nil)
			if err != nil {
				return err
			}
			if o.asJSON {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				for _, w := range res.Warnings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", w.Level, w.Msg)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Notes)
			}
			if strict && len(res.Warnings) > 0 {
				return fmt.Errorf("%d dangling references", len(res.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a reference is dangling")
	return cmd
}

func limitsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "limits MODEL",
		Short: "Compare element transmittances with the DB-HE 2019 limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			res, err := recommend.Envelope(m, o.observer())
			if err != nil {
				return err
			}
			if o.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFAMILY\tU\tU_LIM\tOK\tADD mm")
			for _, it := range res.Items {
				add := "-"
				if it.Insulation != nil {
					add = fmt.Sprintf("%.0f", it.Insulation.BoardThickness*1000)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.2f\t%t\t%s\n", it.ID, it.Name, it.Family, it.U, it.ULim, it.OK, add)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Notes)
			return nil
		},
	}
}

func reportCmd(o *options) *cobra.Command {
	var out string
	var h report.Header
	cmd := &cobra.Command{
		Use:   "report MODEL",
		Short: "Write a PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			f, err := createOutput(out)
			if err != nil {
				return err
			}
			defer f.Close()
			obs := o.observer()
			if err := report.Write(f, h, uvalue.Table(m, obs), indicators.Summarize(m, nil, obs)); err != nil {
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "PDF file to write")
	cmd.Flags().StringVar(&h.Project, "project", "", "Project name")
	cmd.Flags().StringVar(&h.Author, "author", "", "Author")
	cmd.Flags().StringVar(&h.Title, "title", "", "Report title")
	return cmd
}

func exportCmd(o *options) *cobra.Command {
	var out string
	var results bool
	cmd := &cobra.Command{
		Use:   "export MODEL",
		Short: "Write the model, or its results, as an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			f, err := createOutput(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if results {
				obs := o.observer()
				err = importer.WriteResults(f, uvalue.Table(m, obs), indicators.Summarize(m, nil, obs))
			} else {
				err = importer.WriteModel(f, m)
			}
			if err != nil {
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "xlsx file to write")
	cmd.Flags().BoolVar(&results, "results", false, "Write U-values and indicators instead of the model")
	return cmd
}
