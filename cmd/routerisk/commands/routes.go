package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/route-risk-service/internal/adapter/csvexport"
	"github.com/couchcryptid/route-risk-service/internal/domain"
	"github.com/couchcryptid/route-risk-service/internal/observability"
)

func routesCmd(e *env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print every route with its risk classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := e.newRepository(observability.NewUnregisteredMetrics())
			if err != nil {
				return err
			}
			assessments := domain.AssessAll(repo.ListRoutes(cmd.Context()))
			return writeAssessments(cmd.OutOrStdout(), format, assessments)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json, or csv")
	return cmd
}

func writeAssessments(w io.Writer, format string, assessments []domain.RouteAssessment) error {
	switch format {
	case "table":
		return writeTable(w, assessments)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(assessments)
	case "csv":
		return csvexport.Write(w, assessments)
	default:
		return fmt.Errorf("unknown format %q (want table, json, or csv)", format)
	}
}

func writeTable(w io.Writer, assessments []domain.RouteAssessment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRISK\tTIER\tRECOMMENDATION")
	for _, a := range assessments {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			a.Route.ID, a.Route.Name, a.Route.RiskLevel, a.Risk.Tier.Label(), a.Risk.Recommendation)
	}
	return tw.Flush()
}
