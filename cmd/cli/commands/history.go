package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dbmodels "github.com/appian-deploy/appian-deploy/internal/db/models"
)

const (
	flagLimit  = "limit"
	flagOffset = "offset"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit   int
		offset  int
		rawKind string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List operations submitted or tracked from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.history == nil {
				return usageErrorf("operation history is disabled; set [history] enabled = true or APPIAN_HISTORY_ENABLED=true")
			}

			opts := &dbmodels.ListOptions{Limit: limit, Offset: offset}
			if rawKind != "" {
				kind, err := parseKind(rawKind)
				if err != nil {
					return err
				}
				opts.Kind = kind.String()
			}

			ops, err := c.history.List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("error listing history: %w", err)
			}
			return c.render(cmd, ops, func(w io.Writer) {
				printHistory(w, ops)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, flagLimit, "l", 20, "Maximum number of operations to list")
	cmd.Flags().IntVar(&offset, flagOffset, 0, "Number of operations to skip")
	cmd.Flags().StringVar(&rawKind, flagKind, "", "Only list operations of this kind")
	return cmd
}
