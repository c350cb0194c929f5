package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/neomorfeo/leadflow/internal/app"
	"github.com/neomorfeo/leadflow/internal/domain"
)

type cancellationRow struct {
	LeadID          string `json:"leadId"`
	ServiceType     string `json:"serviceType"`
	PartnerID       string `json:"partnerId"`
	AssignmentID    string `json:"assignmentId"`
	Reason          string `json:"reason"`
	RequestedAt     string `json:"requestedAt"`
	RequestStatus   string `json:"requestStatus"`
	DecidedAt       string `json:"decidedAt,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

func (c *cli) cancellationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cancellations", Short: "Review partner cancellation requests"}
	cmd.AddCommand(c.cancellationsListCmd())
	cmd.AddCommand(c.cancellationsApproveCmd())
	cmd.AddCommand(c.cancellationsRejectCmd())
	return cmd
}

func (c *cli) cancellationsListCmd() *cobra.Command {
	var status, partnerID, service string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cancellation requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				requests, err := svc.ListCancellationRequests(ctx, domain.CancellationFilter{
					Status:      domain.RequestStatus(status),
					PartnerID:   partnerID,
					ServiceType: domain.ServiceType(service),
				})
				if err != nil {
					return err
				}

				rows := make([]cancellationRow, len(requests))
				for i, r := range requests {
					rows[i] = cancellationRow{
						LeadID:          r.LeadID,
						ServiceType:     string(r.ServiceType),
						PartnerID:       r.PartnerID,
						AssignmentID:    r.AssignmentID,
						Reason:          r.Reason,
						RequestedAt:     r.RequestedAt.Format(time.RFC3339),
						RequestStatus:   string(r.RequestStatus),
						RejectionReason: r.RejectionReason,
					}
					if r.DecidedAt != nil {
						rows[i].DecidedAt = r.DecidedAt.Format(time.RFC3339)
					}
				}
				if c.jsonOutput() {
					return c.printJSON(rows)
				}
				tw := c.table(table.Row{"Lead", "Service", "Partner", "Reason", "Requested", "Status", "Decided"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.LeadID, r.ServiceType, r.PartnerID, r.Reason, r.RequestedAt, r.RequestStatus, r.DecidedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, cancellation_approved or cancellation_rejected")
	cmd.Flags().StringVar(&partnerID, "partner", "", "partner filter")
	cmd.Flags().StringVar(&service, "service", "", "service filter")
	return cmd
}

func (c *cli) cancellationsApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <leadId> <partnerId>",
		Short: "Approve a partner's cancellation request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				lead, err := svc.ApproveCancellation(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "cancellation approved; %s is now %s\n", lead.LeadID, lead.Status)
				return nil
			})
		},
	}
}

func (c *cli) cancellationsRejectCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <leadId> <partnerId>",
		Short: "Refuse a partner's cancellation request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				a, err := svc.RejectCancellation(ctx, args[0], args[1], reason)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "cancellation rejected; assignment %s stays %s\n", a.ID, a.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the request is refused")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
