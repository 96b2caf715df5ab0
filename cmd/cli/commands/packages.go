package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
)

const flagAppUUID = "app-uuid"

func newGetPackagesCmd(c *cli) *cobra.Command {
	var appUUIDs []string

	cmd := &cobra.Command{
		Use:   "get-packages",
		Short: "List packages for applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ids []string
			for _, id := range appUUIDs {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				return missingFlag(flagAppUUID)
			}

			api, err := c.api()
			if err != nil {
				return err
			}

			logger.Infof("Listing packages for %d application(s)", len(ids))
			resp, err := api.GetPackages(cmd.Context(), ids)
			if err != nil {
				return fmt.Errorf("error fetching packages: %w", err)
			}
			return c.render(cmd, resp, func(w io.Writer) {
				printPackages(w, resp)
			})
		},
	}

	cmd.Flags().StringSliceVar(&appUUIDs, flagAppUUID, nil, "Application UUID (repeatable)")
	return cmd
}
