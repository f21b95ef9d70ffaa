package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-simulator/internal/server"
)

func newTokenCmd(a *app) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API server",
		Long:  "Issue an HS256 token signed with server.jwt_secret. The subject becomes the userId of every simulation made with it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jwtConfig, err := a.cfg.Server.JWT()
			if err != nil {
				return fmt.Errorf("invalid JWT configuration: %w", err)
			}
			if jwtConfig == nil {
				return fmt.Errorf("server.jwt_secret is not set (ATS_SERVER_JWT_SECRET)")
			}
			token, err := server.NewJWTService(jwtConfig).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "User ID to issue the token for (required)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
