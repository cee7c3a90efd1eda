package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/fundscope/internal/utils"
	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/storage"
)

// loginCmd implements: fundscope login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the back office and store the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email := viper.GetString("acgfund.email")
		password := viper.GetString("acgfund.password")

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		db, err := openSessionDB()
		if err != nil {
			return err
		}
		defer db.Close()

		// A refused login comes back as an *acgfund.AuthError carrying the
		// server's message, which Execute prints before exiting non-zero.
		sess, err := runLogin(cmd.Context(), client, db, email, password)
		if err != nil {
			return err
		}

		name := sess.DisplayName()
		if name == "" {
			name = sess.Email
		}
		fmt.Printf("Logged in as %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("email", "e", "", "Back office email")
	loginCmd.Flags().StringP("password", "p", "", "Back office password")
	viper.BindPFlag("acgfund.email", loginCmd.Flags().Lookup("email"))
	viper.BindPFlag("acgfund.password", loginCmd.Flags().Lookup("password"))
}

// runLogin authenticates and, only on success, replaces the stored session.
func runLogin(ctx context.Context, client *acgfund.Client, db *storage.DB, email, password string) (storage.Session, error) {
	res, err := client.Login(ctx, email, password)
	if err != nil {
		return storage.Session{}, err
	}
	utils.Log.Debugf("Login succeeded for user %s (roles: %v)", res.UserID, res.Roles)

	sess := storage.Session{
		Token:     res.BearerToken,
		UserID:    res.UserID,
		Email:     res.Email,
		FirstName: res.FirstName,
		LastName:  res.LastName,
	}
	if sess.Email == "" {
		sess.Email = email
	}
	if err := db.SaveSession(ctx, sess); err != nil {
		return storage.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}
