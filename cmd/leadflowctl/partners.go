package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neomorfeo/leadflow/internal/app"
	"github.com/neomorfeo/leadflow/internal/domain"
)

// partnerFile is the YAML layout accepted by "partners import":
//
//	partners:
//	  - partnerId: p-100
//	    companyName: Umzug Schmidt
//	    partnerType: exclusive
//	    services: [moving]
type partnerFile struct {
	Partners []partnerEntry `yaml:"partners"`
}

type partnerEntry struct {
	PartnerID          string   `yaml:"partnerId" json:"partnerId"`
	CompanyName        string   `yaml:"companyName" json:"companyName"`
	ContactFirstName   string   `yaml:"contactFirstName,omitempty" json:"contactFirstName,omitempty"`
	ContactLastName    string   `yaml:"contactLastName,omitempty" json:"contactLastName,omitempty"`
	Email              string   `yaml:"email,omitempty" json:"email,omitempty"`
	PartnerType        string   `yaml:"partnerType" json:"partnerType"`
	Services           []string `yaml:"services,omitempty" json:"services,omitempty"`
	ServiceType        string   `yaml:"serviceType,omitempty" json:"serviceType,omitempty"`
	Status             string   `yaml:"status,omitempty" json:"status"`
	CustomLeadsPerWeek int      `yaml:"customLeadsPerWeek,omitempty" json:"customLeadsPerWeek,omitempty"`
}

func (e partnerEntry) toDomain() domain.Partner {
	services := make([]domain.ServiceType, len(e.Services))
	for i, s := range e.Services {
		services[i] = domain.ServiceType(s)
	}
	return domain.Partner{
		ID:                 e.PartnerID,
		CompanyName:        e.CompanyName,
		ContactFirstName:   e.ContactFirstName,
		ContactLastName:    e.ContactLastName,
		Email:              e.Email,
		PartnerType:        domain.PartnerType(e.PartnerType),
		Services:           services,
		LegacyServiceType:  domain.ServiceType(e.ServiceType),
		Status:             domain.PartnerStatus(e.Status),
		CustomLeadsPerWeek: e.CustomLeadsPerWeek,
	}
}

func fromDomainPartner(p domain.Partner) partnerEntry {
	services := make([]string, len(p.Services))
	for i, s := range p.Services {
		services[i] = string(s)
	}
	return partnerEntry{
		PartnerID:          p.ID,
		CompanyName:        p.CompanyName,
		ContactFirstName:   p.ContactFirstName,
		ContactLastName:    p.ContactLastName,
		Email:              p.Email,
		PartnerType:        string(p.PartnerType),
		Services:           services,
		ServiceType:        string(p.LegacyServiceType),
		Status:             string(p.Status),
		CustomLeadsPerWeek: p.CustomLeadsPerWeek,
	}
}

// readPartnerFile decodes the import file, rejecting unknown keys.
func readPartnerFile(path string) ([]partnerEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening partner file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var doc partnerFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing partner file: %w", err)
	}
	return doc.Partners, nil
}

func (c *cli) partnersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "partners", Short: "Manage partners"}
	cmd.AddCommand(c.partnersImportCmd())
	cmd.AddCommand(c.partnersListCmd())
	return cmd
}

func (c *cli) partnersImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create or replace partners from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readPartnerFile(file)
			if err != nil {
				return err
			}
			// Validate everything before touching the store.
			for i, e := range entries {
				p := e.toDomain()
				if p.Status == "" {
					p.Status = domain.PartnerActive
				}
				if err := p.Validate(); err != nil {
					return fmt.Errorf("partner #%d (%s): %w", i+1, e.PartnerID, err)
				}
			}
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				for _, e := range entries {
					if _, err := svc.SavePartner(ctx, e.toDomain()); err != nil {
						return fmt.Errorf("saving partner %s: %w", e.PartnerID, err)
					}
				}
				fmt.Fprintf(c.out, "imported %d partners\n", len(entries))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "partner YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) partnersListCmd() *cobra.Command {
	var status, partnerType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List partners",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				filter := domain.PartnerFilter{PartnerType: domain.PartnerType(partnerType)}
				if status != "" {
					s := domain.PartnerStatus(status)
					filter.Status = &s
				}
				partners, err := svc.ListPartners(ctx, filter)
				if err != nil {
					return err
				}

				if c.jsonOutput() {
					rows := make([]partnerEntry, len(partners))
					for i, p := range partners {
						rows[i] = fromDomainPartner(p)
					}
					return c.printJSON(rows)
				}
				tw := c.table(table.Row{"ID", "Company", "Type", "Status", "Services", "Custom/Week"})
				for _, p := range partners {
					e := fromDomainPartner(p)
					services := strings.Join(e.Services, ",")
					if services == "" {
						services = e.ServiceType
					}
					tw.AppendRow(table.Row{e.PartnerID, e.CompanyName, e.PartnerType, e.Status, services, e.CustomLeadsPerWeek})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&partnerType, "type", "", "partner type filter (basic or exclusive)")
	return cmd
}

func (c *cli) capacityCmd() *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "capacity <partnerId>",
		Short: "Show a partner's weekly quota usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := serviceFlag(service)
			if err != nil {
				return err
			}
			return c.withWorkflow(cmd.Context(), func(ctx context.Context, svc *app.Workflow) error {
				capacity, err := svc.GetCapacity(ctx, args[0], st)
				if err != nil {
					return err
				}
				if c.jsonOutput() {
					return c.printJSON(map[string]any{
						"partnerId":   args[0],
						"serviceType": st,
						"current":     capacity.Current,
						"limit":       capacity.Limit,
						"hasCapacity": capacity.HasCapacity(),
					})
				}
				tw := c.table(table.Row{"Partner", "Service", "Current", "Limit", "Has Capacity"})
				tw.AppendRow(table.Row{args[0], st, capacity.Current, capacity.Limit, capacity.HasCapacity()})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&service, "service", "moving", "service type (moving or cleaning)")
	return cmd
}
