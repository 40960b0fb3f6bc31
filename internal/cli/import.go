package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tiagotdas/calendario-fiscal/internal/application/orchestrators"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create obligations from a YAML file",
		Long: `Create one obligation per entry of the file's "obligations" list.

Entries without a title or a YYYY-MM-DD date are skipped and reported; the
rest are written in file order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rt, release := startRuntime(cmd.Context(), cfg, nil)
			defer release()
			if err := requireLive(cfg, rt, "import"); err != nil {
				return err
			}

			res, err := orchestrators.ExecuteImportObligations(cmd.Context(),
				orchestrators.ImportObligationsInput{Reader: f, DryRun: dryRun},
				orchestrators.ImportObligationsDeps{Obligations: rt.Feed})
			out := cmd.OutOrStdout()
			for _, rowErr := range res.Errors {
				fmt.Fprintf(out, "entry %d: %s\n", rowErr.Entry, rowErr.Message)
			}
			if err != nil {
				return err
			}
			verb := "created"
			if res.DryRun {
				verb = "would create"
			}
			fmt.Fprintf(out, "%s %d of %d obligations (%d skipped)\n", verb, res.Created, res.Total, res.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	return cmd
}
