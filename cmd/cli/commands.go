package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/infrastructure/auth"
)

func entityCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "entity", Short: "Entity operations"}

	var name, jurisdiction, parent string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"name": name, "jurisdiction": jurisdiction}
			if parent != "" {
				body["parent_id"] = parent
			}
			return callAndPrint(http.MethodPost, "/api/v1/entities", body)
		},
	}
	create.Flags().StringVar(&name, "name", "", "Entity name")
	create.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Jurisdiction code")
	create.Flags().StringVar(&parent, "parent", "", "Parent entity ID")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(
		create,
		getCmd("get", "Show an entity", "/api/v1/entities/%s"),
		getCmd("balance-sheet", "Show an entity balance sheet", "/api/v1/entities/%s/balance-sheet"),
	)

	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "account", Short: "Account operations"}

	var entityID, name, accountType, currency string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, "/api/v1/accounts", map[string]any{
				"entity_id": entityID,
				"name":      name,
				"type":      accountType,
				"currency":  currency,
			})
		},
	}
	create.Flags().StringVar(&entityID, "entity", "", "Owning entity ID")
	create.Flags().StringVar(&name, "name", "", "Account name")
	create.Flags().StringVar(&accountType, "type", string(domain.AccountTypeAsset), "ASSET, LIABILITY, EQUITY, REVENUE or EXPENSE")
	create.Flags().StringVar(&currency, "currency", "IDR", "ISO currency code")
	_ = create.MarkFlagRequired("entity")
	_ = create.MarkFlagRequired("name")

	deactivate := &cobra.Command{
		Use:   "deactivate [id]",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/deactivate", args[0]), nil)
		},
	}

	cmd.AddCommand(
		create,
		deactivate,
		getCmd("get", "Show an account", "/api/v1/accounts/%s"),
		getCmd("balance", "Show an account balance", "/api/v1/accounts/%s/balance"),
	)

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "ledger", Short: "Ledger operations"}

	var entityID, start, end string
	open := &cobra.Command{
		Use:   "open",
		Short: "Open a ledger period",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			to, err := time.Parse(time.DateOnly, end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			return callAndPrint(http.MethodPost, "/api/v1/ledgers", map[string]any{
				"entity_id":    entityID,
				"period_start": from,
				"period_end":   to,
			})
		},
	}
	open.Flags().StringVar(&entityID, "entity", "", "Entity ID")
	open.Flags().StringVar(&start, "start", "", "Period start (YYYY-MM-DD)")
	open.Flags().StringVar(&end, "end", "", "Period end (YYYY-MM-DD)")
	_ = open.MarkFlagRequired("entity")

	lock := &cobra.Command{
		Use:   "lock [id]",
		Short: "Lock a ledger period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, fmt.Sprintf("/api/v1/ledgers/%s/lock", args[0]), nil)
		},
	}

	var limit, offset int
	entries := &cobra.Command{
		Use:   "entries [id]",
		Short: "List journal entries in posting order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []journalEntrySummary
			path := fmt.Sprintf("/api/v1/ledgers/%s/entries?limit=%d&offset=%d", args[0], limit, offset)
			if err := call(http.MethodGet, path, nil, &out); err != nil {
				return err
			}
			printEntries(out)
			return nil
		},
	}
	entries.Flags().IntVar(&limit, "limit", 50, "Page size")
	entries.Flags().IntVar(&offset, "offset", 0, "Page offset")

	verify := &cobra.Command{
		Use:   "verify [id]",
		Short: "Verify the ledger event hash chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out chainVerification
			if err := call(http.MethodGet, fmt.Sprintf("/api/v1/ledgers/%s/verify", args[0]), nil, &out); err != nil {
				return err
			}
			if !out.Valid {
				fmt.Printf("Chain verification FAILED at event %s: %s\n", out.FailedEventID, out.Reason)
				os.Exit(1)
			}
			fmt.Printf("Chain verification PASSED\n")
			fmt.Printf("Events: %d\n", out.Events)
			fmt.Printf("Head:   %s\n", truncate(out.HeadHash, 19))
			return nil
		},
	}

	cmd.AddCommand(open, lock, entries, verify, getCmd("get", "Show a ledger", "/api/v1/ledgers/%s"))

	return cmd
}

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "journal", Short: "Direct journal postings"}

	var file string
	post := &cobra.Command{
		Use:   "post",
		Short: "Post a capital injection or adjustment from a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readJSONFile(file)
			if err != nil {
				return err
			}
			return callAndPrint(http.MethodPost, "/api/v1/journal-entries", doc)
		},
	}
	post.Flags().StringVarP(&file, "file", "f", "-", "JSON document, - for stdin")

	reverse := &cobra.Command{
		Use:   "reverse [id]",
		Short: "Reverse a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, fmt.Sprintf("/api/v1/journal-entries/%s/reverse", args[0]), nil)
		},
	}

	cmd.AddCommand(post, reverse, getCmd("get", "Show a journal entry", "/api/v1/journal-entries/%s"))

	return cmd
}

func proposalCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "proposal", Short: "Governed capital movements"}

	var file string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a proposal through the gate chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readJSONFile(file)
			if err != nil {
				return err
			}
			return callAndPrint(http.MethodPost, "/api/v1/proposals", doc)
		},
	}
	submit.Flags().StringVarP(&file, "file", "f", "-", "JSON document, - for stdin")

	evaluate := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a proposal without posting",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readJSONFile(file)
			if err != nil {
				return err
			}
			return callAndPrint(http.MethodPost, "/api/v1/proposals/evaluate", doc)
		},
	}
	evaluate.Flags().StringVarP(&file, "file", "f", "-", "JSON document, - for stdin")

	cmd.AddCommand(submit, evaluate)

	return cmd
}

func vaultCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "vault", Short: "Multi-signature vault"}

	var title, amount, destination string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a signature proposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, "/api/v1/vault/proposals", map[string]any{
				"title":       title,
				"amount":      amount,
				"destination": destination,
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "Proposal title")
	create.Flags().StringVar(&amount, "amount", "", "Amount")
	create.Flags().StringVar(&destination, "destination", "", "Destination")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("amount")

	var signer, credential string
	sign := &cobra.Command{
		Use:   "sign [id]",
		Short: "Sign a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, fmt.Sprintf("/api/v1/vault/proposals/%s/signatures", args[0]), map[string]any{
				"signer":     signer,
				"credential": credential,
			})
		},
	}
	sign.Flags().StringVar(&signer, "signer", "", "Signer identity (defaults to the token subject)")
	sign.Flags().StringVar(&credential, "credential", os.Getenv("GOVLEDGER_CREDENTIAL"), "Signer credential")

	cmd.AddCommand(create, sign, getCmd("get", "Show a signature proposal", "/api/v1/vault/proposals/%s"))

	return cmd
}

func escrowCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "escrow", Short: "Milestone escrow"}

	var project, budget, ledgerID, funding, payout string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open an escrow contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, "/api/v1/escrows", map[string]any{
				"project_name":       project,
				"total_budget":       budget,
				"ledger_id":          ledgerID,
				"funding_account_id": funding,
				"payout_account_id":  payout,
			})
		},
	}
	create.Flags().StringVar(&project, "project", "", "Project name")
	create.Flags().StringVar(&budget, "budget", "", "Total budget")
	create.Flags().StringVar(&ledgerID, "ledger", "", "Ledger ID")
	create.Flags().StringVar(&funding, "funding-account", "", "Account funding the escrow")
	create.Flags().StringVar(&payout, "payout-account", "", "Account receiving releases")

	var phase, percentage string
	milestone := &cobra.Command{
		Use:   "milestone [id]",
		Short: "Define a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, fmt.Sprintf("/api/v1/escrows/%s/milestones", args[0]), map[string]any{
				"phase":      phase,
				"percentage": percentage,
			})
		},
	}
	milestone.Flags().StringVar(&phase, "phase", "", "Phase name")
	milestone.Flags().StringVar(&percentage, "percentage", "", "Share of the budget, 0-100")

	var proof, vaultProposal string
	release := &cobra.Command{
		Use:   "release [id] [index]",
		Short: "Verify and release a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid milestone index %q", args[1])
			}
			return callAndPrint(http.MethodPost, fmt.Sprintf("/api/v1/escrows/%s/milestones/%s/release", args[0], args[1]), map[string]any{
				"proof_hash":        proof,
				"vault_proposal_id": vaultProposal,
			})
		},
	}
	release.Flags().StringVar(&proof, "proof", "", "Audit proof hash")
	release.Flags().StringVar(&vaultProposal, "vault-proposal", "", "Vault proposal authorizing the payout")

	cmd.AddCommand(create, milestone, release, getCmd("get", "Show an escrow contract", "/api/v1/escrows/%s"))

	return cmd
}

func hashCredentialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-credential [credential]",
		Short: "Print the bcrypt hash for a vault signer credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashCredential(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func issueTokenCmd() *cobra.Command {
	var secret, id, name, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue an operator bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			tok, err := auth.NewJWTManager(secret, ttl).Generate(&domain.Operator{ID: id, Name: name, Role: domain.Role(role)})
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&id, "id", "", "Operator ID")
	cmd.Flags().StringVar(&name, "name", "", "Operator display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleViewer), "admin, treasurer, signer, auditor or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// getCmd builds a command that GETs pathFormat with the single argument.
func getCmd(use, short, pathFormat string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodGet, fmt.Sprintf(pathFormat, args[0]), nil)
		},
	}
}

type journalEntrySummary struct {
	ID              string `json:"id"`
	EventID         string `json:"event_id"`
	TransactionType string `json:"transaction_type"`
	TotalDebit      string `json:"total_debit"`
	CreatedBy       string `json:"created_by"`
	ReversalOf      string `json:"reversal_of"`
}

type chainVerification struct {
	LedgerID      string `json:"ledger_id"`
	Events        int    `json:"events"`
	HeadHash      string `json:"head_hash"`
	Valid         bool   `json:"valid"`
	FailedEventID string `json:"failed_event_id"`
	Reason        string `json:"reason"`
}

func printEntries(entries []journalEntrySummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tAMOUNT\tCREATED BY\tREVERSAL OF")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(e.ID, 12), e.TransactionType, e.TotalDebit, e.CreatedBy, truncate(e.ReversalOf, 12))
	}
	_ = w.Flush()
}
