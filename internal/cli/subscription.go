package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubscriptionCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Subscription status and payment results",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireLogin(); err != nil {
				return err
			}
			st, err := r.env.API.SubscriptionStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			plan := st.PlanName
			if plan == "" {
				plan = "-"
			}
			fmt.Fprintf(out, "Plan:   %s\n", plan)
			fmt.Fprintf(out, "Status: %s\n", st.Status)
			if st.RenewsAt != "" {
				fmt.Fprintf(out, "Renews: %s\n", st.RenewsAt)
			}
			return nil
		},
	}

	var sessionID, result string
	paymentResult := &cobra.Command{
		Use:   "payment-result",
		Short: "Report the payment gateway result for a checkout session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireLogin(); err != nil {
				return err
			}
			params := map[string]string{"session_id": sessionID}
			if result != "" {
				params["status"] = result
			}
			res, err := r.env.API.HandlePaymentResult(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment %s\n", res.Status)
			return nil
		},
	}
	paymentResult.Flags().StringVar(&sessionID, "session-id", "", "checkout session id")
	paymentResult.Flags().StringVar(&result, "status", "", "gateway status: success, pending, failed")
	_ = paymentResult.MarkFlagRequired("session-id")

	cmd.AddCommand(status, paymentResult)
	return cmd
}
