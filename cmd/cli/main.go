package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	postgresRepo "github.com/iho/creditledger/internal/adapter/repository/postgres"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/logger"
	"github.com/iho/creditledger/internal/infrastructure/postgres"
	"github.com/iho/creditledger/internal/usecase"
)

// ledger is the subset of the ledger service the CLI drives.
type ledger interface {
	DefaultCurrency() string
	GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error)
	AddCredit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)
	DeductCredit(ctx context.Context, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)
	TransferWithHold(ctx context.Context, input usecase.TransferWithHoldInput) (string, error)
	ReleaseHold(ctx context.Context, holdID string) error
	VoidHold(ctx context.Context, holdID string) error
	GetHold(ctx context.Context, holdID string) (*domain.Hold, error)
}

type cli struct {
	databaseURL string
	timeout     time.Duration
	currency    string
	out         io.Writer

	openLedger func(ctx context.Context, databaseURL string) (ledger, func(), error)
	migrate    migrator
}

type migrator struct {
	up      func(databaseURL string) error
	down    func(databaseURL string) error
	version func(databaseURL string) (uint, bool, error)
}

func main() {
	if err := newRootCmd(newCLI(os.Stdout)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI(out io.Writer) *cli {
	return &cli{
		out:        out,
		openLedger: openPostgresLedger,
		migrate: migrator{
			up:      postgres.RunMigrations,
			down:    postgres.RunMigrationsDown,
			version: postgres.MigrationVersion,
		},
	}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "creditledger admin tool",
		Long:          `Operate a creditledger database directly: run migrations, inspect balances and resolve holds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Operation timeout")

	rootCmd.AddCommand(c.migrateCmd(), c.balanceCmd(), c.creditCmd(), c.deductCmd(), c.holdCmd())
	return rootCmd
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.migrate.up(c.databaseURL); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.migrate.down(c.databaseURL); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "migrations rolled back")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				version, dirty, err := c.migrate.version(c.databaseURL)
				if err != nil {
					return err
				}
				return printJSON(c.out, map[string]any{"version": version, "dirty": dirty})
			},
		},
	)
	return cmd
}

func (c *cli) balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(ctx context.Context, l ledger) error {
				currency := c.currencyOr(l)
				balance, err := l.GetBalance(ctx, args[0], currency)
				if err != nil {
					return err
				}
				return printJSON(c.out, dto.BalanceResponse{UserID: args[0], Currency: currency, Balance: balance})
			})
		},
	}
	cmd.Flags().StringVar(&c.currency, "currency", "", "Currency code (defaults to the ledger default)")
	return cmd
}

func (c *cli) creditCmd() *cobra.Command {
	return c.amountCmd("credit <user-id> <amount>", "Add credit to a user", func(ctx context.Context, l ledger, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
		return l.AddCredit(ctx, userID, amount, currency)
	})
}

func (c *cli) deductCmd() *cobra.Command {
	return c.amountCmd("deduct <user-id> <amount>", "Deduct credit from a user", func(ctx context.Context, l ledger, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
		return l.DeductCredit(ctx, userID, amount, currency)
	})
}

type amountFunc func(ctx context.Context, l ledger, userID string, amount decimal.Decimal, currency string) (decimal.Decimal, error)

func (c *cli) amountCmd(use, short string, apply amountFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return c.withLedger(cmd.Context(), func(ctx context.Context, l ledger) error {
				currency := c.currencyOr(l)
				balance, err := apply(ctx, l, args[0], amount, currency)
				if err != nil {
					return err
				}
				return printJSON(c.out, dto.BalanceResponse{UserID: args[0], Currency: currency, Balance: balance})
			})
		},
	}
	cmd.Flags().StringVar(&c.currency, "currency", "", "Currency code (defaults to the ledger default)")
	return cmd
}

func (c *cli) holdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hold",
		Short: "Escrow hold operations",
	}

	var reason string
	createCmd := &cobra.Command{
		Use:   "create <payer-id> <payee-id> <amount>",
		Short: "Move funds from a payer into a pending hold",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			input := usecase.TransferWithHoldInput{
				PayerID: args[0],
				PayeeID: args[1],
				Amount:  amount,
			}
			if reason != "" {
				input.Reason = &reason
			}
			return c.withLedger(cmd.Context(), func(ctx context.Context, l ledger) error {
				input.Currency = c.currencyOr(l)
				holdID, err := l.TransferWithHold(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(c.out, dto.HoldCreatedResponse{HoldID: holdID, Status: string(domain.HoldStatusPending)})
			})
		},
	}
	createCmd.Flags().StringVar(&reason, "reason", "", "Free-form reason recorded on the hold")
	createCmd.Flags().StringVar(&c.currency, "currency", "", "Currency code (defaults to the ledger default)")

	showCmd := &cobra.Command{
		Use:   "show <hold-id>",
		Short: "Show a hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(ctx context.Context, l ledger) error {
				hold, err := l.GetHold(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(c.out, dto.HoldFromDomain(hold))
			})
		},
	}

	cmd.AddCommand(
		createCmd,
		showCmd,
		c.resolveCmd("release <hold-id>", "Capture a hold", domain.HoldStatusCaptured, ledger.ReleaseHold),
		c.resolveCmd("void <hold-id>", "Void a hold and refund the payer", domain.HoldStatusVoid, ledger.VoidHold),
	)
	return cmd
}

func (c *cli) resolveCmd(use, short string, status domain.HoldStatus, resolve func(ledger, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(ctx context.Context, l ledger) error {
				if err := resolve(l, ctx, args[0]); err != nil {
					return err
				}
				return printJSON(c.out, dto.HoldStatusResponse{HoldID: args[0], Status: string(status)})
			})
		},
	}
}

func (c *cli) withLedger(parent context.Context, fn func(ctx context.Context, l ledger) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	l, closeFn, err := c.openLedger(ctx, c.databaseURL)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, l)
}

func (c *cli) currencyOr(l ledger) string {
	if c.currency != "" {
		return c.currency
	}
	return l.DefaultCurrency()
}

func openPostgresLedger(ctx context.Context, databaseURL string) (ledger, func(), error) {
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("database URL is required (--database-url or DATABASE_URL)")
	}

	pool, err := postgres.NewPool(ctx, databaseURL, 2, 1)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{Level: "warn", Format: "console", Service: "ledgerctl", Output: os.Stderr})
	svc := usecase.NewLedgerService(
		postgresRepo.NewTxManager(pool),
		postgresRepo.NewBalanceRepository(pool),
		postgresRepo.NewHoldRepository(pool),
		postgresRepo.NewOutboxRepository(pool),
		postgresRepo.NewULIDGenerator(),
		usecase.WithDefaultCurrency(envOr("LEDGER_DEFAULT_CURRENCY", usecase.DefaultCurrency)),
		usecase.WithLogger(log),
	)
	return svc, pool.Close, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return amount, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
