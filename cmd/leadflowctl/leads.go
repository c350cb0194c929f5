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

type leadRow struct {
	LeadID      string `json:"leadId"`
	ServiceType string `json:"serviceType"`
	Status      string `json:"status"`
	Customer    string `json:"customer"`
	Assignments int    `json:"assignments"`
	CreatedAt   string `json:"createdAt"`
}

type candidateRow struct {
	Tab         string `json:"tab"`
	PartnerID   string `json:"partnerId"`
	CompanyName string `json:"companyName"`
	PartnerType string `json:"partnerType"`
	Current     int    `json:"current"`
	Limit       int    `json:"limit"`
	Assigned    bool   `json:"hasExistingAssignment"`
}

func (c *cli) leadsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "leads", Short: "Inspect and complete leads"}
	cmd.AddCommand(c.leadsListCmd())
	cmd.AddCommand(c.leadsEligibleCmd())
	cmd.AddCommand(c.leadsCompleteCmd())
	return cmd
}

func (c *cli) leadsListCmd() *cobra.Command {
	var (
		status, service, partnerID string
		limit                      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				filter := domain.LeadFilter{
					ServiceType: domain.ServiceType(service),
					PartnerID:   partnerID,
					Limit:       limit,
				}
				if status != "" {
					s := domain.LeadStatus(status)
					filter.Status = &s
				}
				leads, err := svc.ListLeads(ctx, filter)
				if err != nil {
					return err
				}

				rows := make([]leadRow, len(leads))
				for i, l := range leads {
					rows[i] = leadRow{
						LeadID:      l.LeadID,
						ServiceType: string(l.ServiceType),
						Status:      string(l.Status),
						Customer:    l.Customer.Name,
						Assignments: len(l.Assignments),
						CreatedAt:   l.CreatedAt.Format(time.RFC3339),
					}
				}
				if c.jsonOutput() {
					return c.printJSON(rows)
				}
				tw := c.table(table.Row{"Lead", "Service", "Status", "Customer", "Assignments", "Created"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.LeadID, r.ServiceType, r.Status, r.Customer, r.Assignments, r.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&service, "service", "", "service filter")
	cmd.Flags().StringVar(&partnerID, "partner", "", "only leads assigned to this partner")
	cmd.Flags().IntVar(&limit, "limit", 50, "max results")
	return cmd
}

func (c *cli) leadsEligibleCmd() *cobra.Command {
	var search, partnerType string
	cmd := &cobra.Command{
		Use:   "eligible <leadId>",
		Short: "List partners that can take a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				eligible, err := svc.ListEligiblePartners(ctx, args[0], domain.EligibilityQuery{
					Search:      search,
					PartnerType: domain.PartnerType(partnerType),
				})
				if err != nil {
					return err
				}

				var rows []candidateRow
				for _, tab := range []struct {
					name       string
					candidates []domain.Candidate
				}{
					{"basic", eligible.Basic},
					{"exclusive", eligible.Exclusive},
					{"search", eligible.Search},
				} {
					for _, cand := range tab.candidates {
						rows = append(rows, candidateRow{
							Tab:         tab.name,
							PartnerID:   cand.Partner.ID,
							CompanyName: cand.Partner.CompanyName,
							PartnerType: string(cand.Partner.PartnerType),
							Current:     cand.Capacity.Current,
							Limit:       cand.Capacity.Limit,
							Assigned:    cand.HasExistingAssignment,
						})
					}
				}
				if c.jsonOutput() {
					return c.printJSON(rows)
				}
				tw := c.table(table.Row{"Tab", "Partner", "Company", "Type", "This Week", "Assigned"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.Tab, r.PartnerID, r.CompanyName, r.PartnerType, fmt.Sprintf("%d/%d", r.Current, r.Limit), r.Assigned})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "free-text partner search")
	cmd.Flags().StringVar(&partnerType, "type", "", "restrict the search tab to basic or exclusive")
	return cmd
}

func (c *cli) leadsCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <leadId>",
		Short: "Mark an accepted lead as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				lead, err := svc.CompleteLead(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s is now %s\n", lead.LeadID, lead.Status)
				return nil
			})
		},
	}
}
