package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pcreem/silver-ESG/internal/backend"
	cartdomain "github.com/pcreem/silver-ESG/internal/cart/domain"
	checkoutapp "github.com/pcreem/silver-ESG/internal/checkout/app"
	"github.com/pcreem/silver-ESG/internal/money"
	profiledomain "github.com/pcreem/silver-ESG/internal/profile/domain"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		*email = prompt("email: ")
	}
	if *password == "" {
		*password = prompt("password: ")
	}

	s, err := a.provider.SignInWithPassword(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s\n", s.User.DisplayName())
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		*email = prompt("email: ")
	}
	if *password == "" {
		*password = prompt("password: ")
	}
	if *name == "" {
		*name = prompt("full name: ")
	}

	s, err := a.provider.SignUp(ctx, *email, *password, *name)
	if err != nil {
		return err
	}

	if s == nil {
		fmt.Println("account created: check your email to confirm, then run 'silverctl login'")
		return nil
	}

	fmt.Printf("welcome, %s\n", s.User.DisplayName())
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.provider.SignOut(ctx); err != nil {
		// Local state is already cleared; the server revoke failing is not
		// worth failing the command over.
		a.log.Warn("server-side sign-out failed", slog.Any("err", err))
	}
	fmt.Println("signed out")
	return nil
}

func (a *app) cmdWhoami() error {
	u, ok := a.session.User()
	if !ok {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	return nil
}

func (a *app) cmdMenu(ctx context.Context, args []string) error {
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("menu id must be a number, got %q", args[0])
		}
		item, err := a.api.GetMenuItem(ctx, id)
		if err != nil {
			return err
		}
		printMenuItem(item)
		return nil
	}

	items, err := a.api.GetMenu(ctx)
	if err != nil {
		return err
	}

	for _, it := range items {
		mark := " "
		if !it.Available {
			mark = "x"
		}
		fmt.Printf("%s %4d  %-30s %10s  %s\n", mark, it.ID, it.Name, money.Display(it.Price), it.Category)
	}
	return nil
}

func printMenuItem(it backend.MenuItem) {
	fmt.Printf("%s (#%d)  %s\n", it.Name, it.ID, money.Display(it.Price))
	if it.Description != "" {
		fmt.Println(it.Description)
	}
	if len(it.SuitableFor) > 0 {
		fmt.Printf("suitable for: %s\n", strings.Join(it.SuitableFor, ", "))
	}
	if len(it.Ingredients) > 0 {
		fmt.Printf("ingredients:  %s\n", strings.Join(it.Ingredients, ", "))
	}
	for k, v := range it.Nutrition {
		fmt.Printf("  %-12s %.1f\n", k, v)
	}
	if !it.Available {
		fmt.Println("currently unavailable")
	}
}

func (a *app) cmdCart(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "show":
		return a.printCart()

	case "add":
		fs := flag.NewFlagSet("cart add", flag.ContinueOnError)
		id := fs.Int64("id", 0, "menu item id")
		qty := fs.Int64("qty", 1, "quantity")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *id == 0 {
			return errors.New("cart add needs -id")
		}

		item, err := a.api.GetMenuItem(ctx, *id)
		if err != nil {
			return err
		}

		a.cart.AddItem(cartdomain.Item{
			ID:        strconv.FormatInt(item.ID, 10),
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  *qty,
			Image:     item.ImageURL,
		})
		return a.printCart()

	case "remove":
		if len(args) == 0 {
			return errors.New("cart remove needs an item id")
		}
		a.cart.RemoveItem(args[0])
		return a.printCart()

	case "qty":
		fs := flag.NewFlagSet("cart qty", flag.ContinueOnError)
		id := fs.String("id", "", "menu item id")
		qty := fs.Int64("qty", 0, "new quantity; 0 removes the line")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("cart qty needs -id")
		}
		a.cart.UpdateQuantity(*id, *qty)
		return a.printCart()

	case "clear":
		a.cart.ClearCart()
		fmt.Println("cart cleared")
		return nil

	default:
		return fmt.Errorf("unknown cart subcommand %q (show|add|remove|qty|clear)", sub)
	}
}

func (a *app) printCart() error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}

	for _, it := range items {
		fmt.Printf("%4s  %-30s x%-3d %10s\n", it.ID, it.Name, it.Quantity, money.Display(it.UnitPrice*it.Quantity))
	}
	fmt.Printf("%41s %10s\n", "total", money.Display(a.cart.Total()))
	return nil
}

func (a *app) cmdCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	profileID := fs.String("profile", "", "recipient profile id (defaults to the first profile)")
	note := fs.String("note", "", "delivery note")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	quote, err := a.checkout.Quote()
	if err != nil {
		return err
	}

	for _, l := range quote.Lines {
		fmt.Printf("%-30s x%-3d %10s\n", l.Name, l.Quantity, money.Display(l.LineTotal))
	}
	fmt.Printf("%35s %10s\n", "subtotal", money.Display(quote.Subtotal))
	if quote.DeliveryFee == 0 {
		fmt.Printf("%35s %10s\n", "delivery", "free")
	} else {
		fmt.Printf("%35s %10s\n", "delivery", money.Display(quote.DeliveryFee))
	}
	fmt.Printf("%35s %10s\n", "total", money.Display(quote.Total))

	pid, err := a.resolveProfile(ctx, *profileID)
	if err != nil {
		return err
	}

	if !*yes {
		if answer := prompt("place order? [y/N] "); !strings.EqualFold(answer, "y") {
			fmt.Println("cancelled")
			return nil
		}
	}

	res, err := a.checkout.Checkout(ctx, checkoutapp.Params{ProfileID: pid, Instructions: *note})
	if err != nil {
		return err
	}

	if res.CheckoutURL != "" {
		fmt.Printf("complete payment at:\n%s\n", res.CheckoutURL)
		fmt.Println("your cart is kept until payment goes through")
		return nil
	}

	fmt.Println("order placed, cart cleared")
	return nil
}

// resolveProfile falls back to the first recipient profile when none was
// named, refreshing the cache as needed.
func (a *app) resolveProfile(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}

	if _, err := a.profiles.Refresh(ctx); err != nil {
		return "", err
	}

	first, ok := a.profiles.First()
	if !ok {
		return "", checkoutapp.ErrNoProfile
	}
	return first.ID.String(), nil
}

func (a *app) cmdProfiles(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		profiles, err := a.profiles.Refresh(ctx)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("no recipient profiles yet: 'silverctl profiles create'")
			return nil
		}
		for _, p := range profiles {
			fmt.Printf("%-36s  %-20s age %-3d %s\n", p.ID, p.Name, p.Age, p.Gender)
		}
		return nil

	case "show":
		if len(args) == 0 {
			return errors.New("profiles show needs a profile id")
		}
		p, err := a.api.GetProfile(ctx, args[0])
		if err != nil {
			return err
		}
		printProfile(p)
		return nil

	case "create":
		params, err := parseProfileFlags(args, backend.ProfileParams{})
		if err != nil {
			return err
		}
		if params.Name == "" {
			return errors.New("profiles create needs -name")
		}
		p, err := a.api.CreateProfile(ctx, params)
		if err != nil {
			return err
		}
		fmt.Printf("created profile %s (%s)\n", p.Name, p.ID)
		return nil

	case "update":
		if len(args) == 0 {
			return errors.New("profiles update needs a profile id")
		}
		id, rest := args[0], args[1:]

		existing, err := a.api.GetProfile(ctx, id)
		if err != nil {
			return err
		}
		params, err := parseProfileFlags(rest, writableFields(existing))
		if err != nil {
			return err
		}
		p, err := a.api.UpdateProfile(ctx, id, params)
		if err != nil {
			return err
		}
		fmt.Printf("updated profile %s\n", p.Name)
		return nil

	case "delete":
		if len(args) == 0 {
			return errors.New("profiles delete needs a profile id")
		}
		if err := a.api.DeleteProfile(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("profile deleted")
		return nil

	default:
		return fmt.Errorf("unknown profiles subcommand %q (list|show|create|update|delete)", sub)
	}
}

// parseProfileFlags overlays the given flags onto base, so update only
// touches the fields the caller named.
func parseProfileFlags(args []string, base backend.ProfileParams) (backend.ProfileParams, error) {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", base.Name, "recipient name")
	age := fs.Int("age", base.Age, "age in years")
	gender := fs.String("gender", base.Gender, "gender")
	height := fs.Float64("height", base.Height, "height in cm")
	weight := fs.Float64("weight", base.Weight, "weight in kg")
	diseases := fs.String("diseases", strings.Join(base.ChronicDiseases, ","), "chronic diseases, comma separated")
	restrictions := fs.String("restrictions", strings.Join(base.DietaryRestrictions, ","), "dietary restrictions, comma separated")
	chewing := fs.String("chewing", base.ChewingAbility, "chewing ability: normal|soft|pureed")
	avatar := fs.String("avatar", base.AvatarURL, "avatar image url")

	if err := fs.Parse(args); err != nil {
		return backend.ProfileParams{}, err
	}

	return backend.ProfileParams{
		Name:                *name,
		Age:                 *age,
		Gender:              *gender,
		Height:              *height,
		Weight:              *weight,
		ChronicDiseases:     splitCSV(*diseases),
		DietaryRestrictions: splitCSV(*restrictions),
		ChewingAbility:      *chewing,
		AvatarURL:           *avatar,
	}, nil
}

func writableFields(p backend.Profile) backend.ProfileParams {
	return backend.ProfileParams{
		Name:                p.Name,
		Age:                 p.Age,
		Gender:              p.Gender,
		Height:              p.Height,
		Weight:              p.Weight,
		ChronicDiseases:     p.ChronicDiseases,
		DietaryRestrictions: p.DietaryRestrictions,
		ChewingAbility:      p.ChewingAbility,
		AvatarURL:           p.AvatarURL,
	}
}

func printProfile(p backend.Profile) {
	fmt.Printf("%s (%s)\n", p.Name, p.ID)
	fmt.Printf("  age %d, %s\n", p.Age, p.Gender)
	if p.Height > 0 && p.Weight > 0 {
		fmt.Printf("  %.0f cm, %.1f kg (BMI %.1f)\n", p.Height, p.Weight, profiledomain.BMI(p.Weight, p.Height))
	}
	if len(p.ChronicDiseases) > 0 {
		fmt.Printf("  chronic: %s\n", strings.Join(p.ChronicDiseases, ", "))
	}
	if len(p.DietaryRestrictions) > 0 {
		fmt.Printf("  avoid:   %s\n", strings.Join(p.DietaryRestrictions, ", "))
	}
	if p.ChewingAbility != "" {
		fmt.Printf("  chewing: %s\n", p.ChewingAbility)
	}
}

func (a *app) cmdOrders(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "show" {
		if len(args) < 2 {
			return errors.New("orders show needs an order id")
		}
		o, err := a.api.GetOrder(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("order %s  %s  %s\n", o.ID, o.Status, money.Display(o.TotalAmount))
		for _, it := range o.Items {
			fmt.Printf("  item #%d x%d\n", it.MenuItemID, it.Quantity)
		}
		return nil
	}

	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	profileID := fs.String("profile", "", "recipient profile id (defaults to the first profile)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pid, err := a.resolveProfile(ctx, *profileID)
	if err != nil {
		return err
	}

	orders, err := a.api.GetOrders(ctx, pid)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}

	for _, o := range orders {
		fmt.Printf("%-36s  %-10s %10s  %s\n", o.ID, o.Status, money.Display(o.TotalAmount), o.CreatedAt)
	}
	return nil
}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	profileID := fs.String("profile", "", "recipient profile id (defaults to the first profile)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pid, err := a.resolveProfile(ctx, *profileID)
	if err != nil {
		return err
	}

	view, err := a.dash.Load(ctx, pid)
	if err != nil {
		return err
	}

	if p, ok := a.profiles.ByID(pid); ok {
		printProfile(p)
		fmt.Println()
	}

	fmt.Println("meals this week")
	for _, day := range view.Dashboard.WeeklyHeatmap {
		fmt.Printf("  %s  %s\n", day.Date, strings.Repeat("#", day.Count))
	}

	fmt.Println("nutrition coverage")
	for _, stat := range view.Dashboard.NutritionStats {
		fmt.Printf("  %-15s %5.1f%%\n", stat.Category, stat.Percentage)
	}

	if len(view.RecentOrders) > 0 {
		fmt.Println("recent orders")
		for i, o := range view.RecentOrders {
			if i == 5 {
				break
			}
			fmt.Printf("  %-36s %-10s %10s\n", o.ID, o.Status, money.Display(o.TotalAmount))
		}
	}
	return nil
}

func (a *app) cmdDonate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("donate", flag.ContinueOnError)
	amount := fs.String("amount", "", "donation amount, e.g. $25.00")
	name := fs.String("name", "", "donor name (optional)")
	message := fs.String("message", "", "message (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *amount == "" {
		*amount = prompt("amount: ")
	}

	res, err := a.api.CreateDonation(ctx, *amount, *name, *message)
	if err != nil {
		if errors.Is(err, money.ErrInvalidAmount) {
			return fmt.Errorf("%q is not an amount; try something like $25.00", *amount)
		}
		return err
	}

	if res.CheckoutURL != "" {
		fmt.Printf("complete your donation at:\n%s\n", res.CheckoutURL)
		return nil
	}
	fmt.Println("thank you for your donation")
	return nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}
