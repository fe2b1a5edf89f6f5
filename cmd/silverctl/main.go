package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	backendapi "github.com/pcreem/silver-ESG/internal/backend"
	cartapp "github.com/pcreem/silver-ESG/internal/cart/app"
	chatapp "github.com/pcreem/silver-ESG/internal/chat/app"
	checkoutapp "github.com/pcreem/silver-ESG/internal/checkout/app"
	dashboardapp "github.com/pcreem/silver-ESG/internal/dashboard/app"
	"github.com/pcreem/silver-ESG/internal/identity"
	profileapp "github.com/pcreem/silver-ESG/internal/profile/app"
	sessionapp "github.com/pcreem/silver-ESG/internal/session/app"
	"github.com/pcreem/silver-ESG/internal/storage"
	"github.com/pcreem/silver-ESG/pkg/config"
	"github.com/pcreem/silver-ESG/pkg/logger"
	"github.com/pcreem/silver-ESG/pkg/shutdown"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{Service: "silverctl", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, friendly(err))
		os.Exit(1)
	}
}

// app is the wired object graph every command runs against.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	store    storage.Store
	provider *identity.Client
	api      *backendapi.Client
	session  *sessionapp.Cache
	cart     *cartapp.Store
	profiles *profileapp.Cache
	checkout *checkoutapp.Service
	chat     *chatapp.Conversation
	dash     *dashboardapp.Service

	closeStore func() error
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if cfg.RedisAddr != "" {
		rs, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis state store: %w", err)
		}
		a.store = rs
		a.closeStore = rs.Close
	} else {
		fs, err := storage.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("state dir: %w", err)
		}
		a.store = fs
	}

	a.api = backendapi.NewClient(cfg.APIBaseURL, log)
	a.provider = identity.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, a.store, log)

	a.session = sessionapp.NewCache(a.provider, a.api, a.store, log)
	if err := a.session.Initialize(ctx); err != nil {
		// A dead identity provider shouldn't brick browsing; commands that
		// need auth will fail on their own terms.
		log.Warn("session initialize failed", slog.Any("err", err))
	}

	a.cart = cartapp.NewStore(a.store, log)
	a.profiles = profileapp.NewCache(a.api)
	a.checkout = checkoutapp.NewService(a.cart, a.session, a.api)
	a.chat = chatapp.NewConversation(a.api, a.session)
	a.dash = dashboardapp.NewService(a.api)

	return a, nil
}

func (a *app) close() {
	a.session.Close()
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			a.log.Warn("state store close failed", slog.Any("err", err))
		}
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		if len(args) == 0 {
			return errors.New("no command given")
		}
		return nil
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "menu":
		return a.cmdMenu(ctx, rest)
	case "cart":
		return a.cmdCart(ctx, rest)
	case "checkout":
		return a.cmdCheckout(ctx, rest)
	case "chat":
		return a.cmdChat(ctx, rest)
	case "profiles":
		return a.cmdProfiles(ctx, rest)
	case "orders":
		return a.cmdOrders(ctx, rest)
	case "dashboard":
		return a.cmdDashboard(ctx, rest)
	case "donate":
		return a.cmdDonate(ctx, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `silverctl - elder meal service client

usage: silverctl <command> [flags]

account
  login      sign in with email and password
  register   create an account
  logout     sign out
  whoami     show the signed-in user

ordering
  menu       list menu items, or show one: menu <id>
  cart       show | add | remove | qty | clear
  checkout   review the quote and place the order
  orders     list orders, or show one: orders show <id>

care
  profiles   list | show | create | update | delete
  dashboard  weekly meals and nutrition for a recipient
  chat       talk to the nutrition assistant
  donate     support the meal fund
`)
}

// friendly rewrites well-known errors into instructions instead of stack noise.
func friendly(err error) string {
	switch {
	case errors.Is(err, checkoutapp.ErrNotAuthenticated),
		errors.Is(err, chatapp.ErrNotAuthenticated),
		backendapi.IsUnauthorized(err):
		return "sign in required: run 'silverctl login' and try again"
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return "your cart is empty: add meals with 'silverctl cart add'"
	case errors.Is(err, checkoutapp.ErrNoProfile), errors.Is(err, dashboardapp.ErrNoProfile):
		return "no recipient profile: create one with 'silverctl profiles create'"
	}
	return "silverctl: " + err.Error()
}
