package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/appetiteclub/pos/cmd/posctl/internal/commands"
	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/internal/config"
	"github.com/aquamarinepk/aqm"
	"github.com/joho/godotenv"
)

const (
	appName    = "posctl"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	command := os.Args[1]
	args, flags := splitArgs(os.Args[2:])

	watch := hasFlag(flags, "--watch")
	cfg, err := aqm.LoadConfig("POSCTL", withoutFlag(flags, "--watch"))
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	settings := config.Load(cfg, nil)
	logger := aqm.NewLogger(settings.LogLevel)
	env := commands.NewEnv(settings, logger, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "login":
		if len(args) != 1 {
			log.Fatalf("Usage: %s login <token>", appName)
		}
		err = commands.Login(env, args[0])

	case "logout":
		err = commands.Logout(env)

	case "orders":
		err = commands.Orders(ctx, env)

	case "kitchen":
		err = commands.Kitchen(ctx, env, watch)

	case "reports":
		timeframe := ""
		if len(args) > 0 {
			timeframe = args[0]
		}
		err = commands.Reports(ctx, env, timeframe)

	case "stock":
		err = commands.Stock(ctx, env)

	case "staff":
		err = commands.Staff(ctx, env)

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s %s failed: %s", appName, command, api.Message(err))
	}
}

// boolFlags take no value.
var boolFlags = map[string]bool{"--watch": true}

// splitArgs separates positional arguments from --flags, which go to the
// config loader. Both --key=value and --key value are accepted; the second
// form is joined into the first.
func splitArgs(raw []string) (args, flags []string) {
	for i := 0; i < len(raw); i++ {
		a := raw[i]
		if len(a) < 2 || a[0] != '-' {
			args = append(args, a)
			continue
		}
		if !strings.Contains(a, "=") && !boolFlags[a] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			a += "=" + raw[i+1]
			i++
		}
		flags = append(flags, a)
	}
	return args, flags
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

func withoutFlag(flags []string, name string) []string {
	var out []string
	for _, f := range flags {
		if f != name {
			out = append(out, f)
		}
	}
	return out
}

func printUsage() {
	fmt.Printf(`%s - Appetite POS operator commands

Usage:
  %s <command> [arguments] [--flags]

Commands:
  login <token>        Store the bearer token used for backend calls
  logout               Remove the stored token
  orders               List open orders
  kitchen [--watch]    Print the kitchen queue, optionally refreshing it
  reports [timeframe]  Print a report (today, yesterday, week, month)
  stock                Print stock levels and alerts
  staff                Print staff payroll balances
  version              Print version information
  help                 Show this help message

Environment Variables:
  POSCTL_API_URL       Backend base URL (default: %s)
  POSCTL_API_TOKEN     Bearer token overriding the stored one
  POSCTL_LOG_LEVEL     Log level: debug, info, error (default: info)

Examples:
  %s login eyJhbGciOi...
  %s reports week
  %s kitchen --watch
  %s orders --api.url http://localhost:3000/api

`, appName, appName, config.DefaultAPIURL, appName, appName, appName, appName)
}
