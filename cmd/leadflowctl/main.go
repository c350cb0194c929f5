package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neomorfeo/leadflow/internal/adapter/fsm"
	riveradapter "github.com/neomorfeo/leadflow/internal/adapter/river"
	"github.com/neomorfeo/leadflow/internal/adapter/settings"
	"github.com/neomorfeo/leadflow/internal/adapter/sqlite"
	"github.com/neomorfeo/leadflow/internal/app"
	"github.com/neomorfeo/leadflow/internal/domain"
	"github.com/neomorfeo/leadflow/internal/logger"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli carries the configuration and output shared by every subcommand.
type cli struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:   "leadflowctl",
		Short: "Administer the leadflow lead store",
		Long: `leadflowctl works directly on the leadflow SQLite database.
It imports partners, inspects weekly quotas and eligible partners, and
decides partner cancellation requests. Every flag can also be set through
the environment with the LEADFLOW_ prefix, e.g. LEADFLOW_DB.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(c.v.GetString("log-level"), "text")
		},
	}
	root.SetOut(out)

	c.v.SetEnvPrefix("LEADFLOW")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.String("db", "leadflow.db", "path to the SQLite database")
	flags.String("settings", "", "admin settings YAML file (built-in quotas when empty)")
	flags.String("actor", "leadflowctl", "actor recorded in audit records")
	flags.Bool("json", false, "output JSON")
	flags.String("log-level", "warn", "log level")
	for _, name := range []string{"db", "settings", "actor", "json", "log-level"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(c.partnersCmd())
	root.AddCommand(c.capacityCmd())
	root.AddCommand(c.leadsCmd())
	root.AddCommand(c.cancellationsCmd())
	return root
}

// withWorkflow opens the store, wires the workflow the way the server does,
// and runs fn with the configured actor on the context.
func (c *cli) withWorkflow(ctx context.Context, fn func(context.Context, *app.Workflow) error) error {
	store, err := sqlite.New(c.v.GetString("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	// Insert-only client: jobs are worked by the server.
	client, err := riveradapter.Setup(ctx, store.DB(), 1)
	if err != nil {
		return err
	}

	var reader domain.SettingsReader = settings.Static{}
	if path := c.v.GetString("settings"); path != "" {
		reader = settings.NewFileReader(path)
	}

	svc := app.NewWorkflow(store.Leads(), store.Partners(), reader, riveradapter.NewAuditSink(client), fsm.New())
	return fn(domain.WithActor(ctx, c.v.GetString("actor")), svc)
}

func (c *cli) jsonOutput() bool {
	return c.v.GetBool("json")
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) table(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(c.out)
	tw.AppendHeader(header)
	return tw
}

// serviceFlag validates a --service value.
func serviceFlag(s string) (domain.ServiceType, error) {
	switch st := domain.ServiceType(s); st {
	case domain.ServiceMoving, domain.ServiceCleaning:
		return st, nil
	default:
		return "", fmt.Errorf("unknown service %q (want moving or cleaning)", s)
	}
}
