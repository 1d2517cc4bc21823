package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/amirasaad/bank/infra"
	"github.com/amirasaad/bank/infra/initializer"
	"github.com/amirasaad/bank/internal/migrations"
	"github.com/amirasaad/bank/pkg/app"
	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/service/auth"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]

Commands:
  migrate up|down|version
  token <user_id> [ttl]
  create <user_id> <currency>
  balance <user_id>
  deposit <user_id> <value>
  withdraw <user_id> <value>
  transfer <user_id> <receiver_email> <value>
  convert <symbols> <amount>`

var errUsage = errors.New(usage)

func main() {
	color.NoColor = color.NoColor || !term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch args[0] {
	case "migrate":
		return runMigrate(cfg, args[1:], out)
	case "token":
		return runToken(cfg, args[1:], out)
	}

	res, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer res.Close()
	return runCommand(ctx, app.New(&res.Deps, cfg), args, out)
}

func runCommand(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	switch args[0] {
	case "create":
		if len(args) != 3 {
			return errUsage
		}
		userID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		acc, err := a.AccountService.CreateAccount(ctx, userID, args[2])
		if err != nil {
			return err
		}
		success(out, "Account created: ID=%s Currency=%s", acc.ID, acc.Currency)
		return nil
	case "balance":
		if len(args) != 2 {
			return errUsage
		}
		userID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		acc, err := a.AccountService.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		printAccount(out, acc)
		return nil
	case "deposit", "withdraw":
		if len(args) != 3 {
			return errUsage
		}
		userID, value, err := parseUserAndValue(args[1], args[2])
		if err != nil {
			return err
		}
		op, label := a.AccountService.Deposit, "Deposit"
		if args[0] == "withdraw" {
			op, label = a.AccountService.Withdraw, "Withdrawal"
		}
		acc, err := op(ctx, userID, value)
		if err != nil {
			return err
		}
		success(out, "%s of %s done", label, value)
		printAccount(out, acc)
		return nil
	case "transfer":
		if len(args) != 4 {
			return errUsage
		}
		userID, value, err := parseUserAndValue(args[1], args[3])
		if err != nil {
			return err
		}
		res, err := a.TransferService.Transfer(ctx, userID, args[2], value)
		if err != nil {
			return err
		}
		success(out, "Transferred %s %s to %s (%s)", res.TransferredValue, res.SenderCurrency, res.ReceiverName, res.ReceiverEmail)
		if res.ConvertedAmount != nil {
			fmt.Fprintf(out, "Credited %s %s\n", res.ConvertedAmount, res.ReceiverCurrency)
		}
		fmt.Fprintf(out, "Balance: %s %s\n", highlight(res.SenderBalance.StringFixed(2)), res.SenderCurrency)
		return nil
	case "convert":
		if len(args) != 3 {
			return errUsage
		}
		if a.CurrencyService == nil {
			return errors.New("convert needs CONVERTER_MODE=local")
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		conv, err := a.CurrencyService.ConvertSymbols(ctx, args[1], amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s = %s (rate %s at %s)\n",
			conv.Symbols, conv.Amount, highlight(conv.ConvertedAmount.StringFixed(2)),
			conv.ExchangeRate, conv.Timestamp.Format(time.RFC3339))
		return nil
	default:
		return errUsage
	}
}

func runMigrate(cfg *config.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	switch args[0] {
	case "up":
		if err := migrations.Up(sqlDB); err != nil {
			return err
		}
		success(out, "Migrations applied")
	case "down":
		if err := migrations.Down(sqlDB); err != nil {
			return err
		}
		success(out, "Rolled back one migration")
	case "version":
		version, dirty, err := migrations.Version(sqlDB)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Version: %d dirty: %t\n", version, dirty)
	default:
		return errUsage
	}
	return nil
}

func runToken(cfg *config.App, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	ttl := time.Hour
	if len(args) == 2 {
		if ttl, err = time.ParseDuration(args[1]); err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
	}
	svc := auth.NewWithJWT(cfg.Auth.Jwt, slog.Default())
	token, err := svc.GenerateToken(userID, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func parseUserAndValue(rawUser, rawValue string) (uuid.UUID, decimal.Decimal, error) {
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, decimal.Zero, fmt.Errorf("invalid user id: %w", err)
	}
	value, err := decimal.NewFromString(rawValue)
	if err != nil {
		return uuid.Nil, decimal.Zero, fmt.Errorf("invalid value: %w", err)
	}
	return userID, value, nil
}

func printAccount(out io.Writer, acc *account.Account) {
	fmt.Fprintf(out, "Account %s (%s)\n", acc.ID, acc.Email)
	fmt.Fprintf(out, "Balance: %s %s\n", highlight(acc.Balance.StringFixed(2)), acc.Currency)
}

func success(out io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(out, format+"\n", args...)
}

func highlight(s string) string {
	return color.New(color.Bold, color.FgCyan).Sprint(s)
}
