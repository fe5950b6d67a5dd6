package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long:  "Signs an access token with JWT_SECRET_KEY for the given user id, or a fresh one when --user is omitted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(logger.Nop(), configPath(cmd))
		if err != nil {
			return err
		}

		userID := uuid.New()
		if raw, _ := cmd.Flags().GetString("user"); raw != "" {
			if userID, err = uuid.Parse(raw); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")

		auth := services.NewAuthService(logger.Nop(), cfg.JWTSecretKey, cfg.AccessTokenTTL)
		tok, err := auth.MintToken(userID, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\n%s\n", userID, tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User id to embed as the token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to ACCESS_TOKEN_TTL)")
}
