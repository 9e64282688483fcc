package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	mimecast "github.com/gh-tking/mimecast-sdk"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Manage registered domains",
}

var domainsPendingCmd = &cobra.Command{
	Use:   "pending [domain]",
	Short: "List domains awaiting verification",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		domains, err := client.GetPendingDomains(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Println("no pending domains")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Domain", "Status", "Method", "Record", "Value"})
		for _, d := range domains {
			if len(d.Methods) == 0 {
				t.AppendRow(table.Row{d.Domain, d.VerificationStatus, "-", "-", "-"})
				continue
			}
			for _, m := range d.Methods {
				t.AppendRow(table.Row{d.Domain, d.VerificationStatus, m.Type, m.Record, m.Value})
			}
		}
		t.Render()
		return nil
	},
}

var (
	domainAddVerifyTXT bool
	domainAddVerifyMX  bool
	domainAddVerifySPF bool
)

var domainsAddCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Register a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		domain, err := client.CreateDomain(cmd.Context(), &mimecast.CreateDomainRequest{
			Domain:      args[0],
			VerifyByTXT: domainAddVerifyTXT,
			VerifyByMX:  domainAddVerifyMX,
			VerifyBySPF: domainAddVerifySPF,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", domain.Domain, domain.VerificationStatus)
		for _, m := range domain.Methods {
			fmt.Printf("  %s: %s = %s\n", m.Type, m.Record, m.Value)
		}
		return nil
	},
}

func init() {
	domainsAddCmd.Flags().BoolVar(&domainAddVerifyTXT, "txt", true, "verify via DNS TXT record")
	domainsAddCmd.Flags().BoolVar(&domainAddVerifyMX, "mx", false, "verify via MX records")
	domainsAddCmd.Flags().BoolVar(&domainAddVerifySPF, "spf", false, "verify via SPF record")
	domainsCmd.AddCommand(domainsPendingCmd)
	domainsCmd.AddCommand(domainsAddCmd)
	rootCmd.AddCommand(domainsCmd)
}
