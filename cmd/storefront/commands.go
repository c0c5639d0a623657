package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/example/storefront/internal/app"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/session"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("invalid usage")

type command struct {
	usage string
	run   func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"products":     {"products [-q term] [-category c] [-nav c] [-max-price n] [-sort key] [-in-stock]", runProducts},
	"product":      {"product <id>", runProduct},
	"categories":   {"categories", runCategories},
	"featured":     {"featured", runFeatured},
	"reviews":      {"reviews <product-id>", runReviews},
	"review":       {"review <product-id> -rating n [-comment text]", runReview},
	"cart":         {"cart [show | add <id> [qty] | remove <id> | set <id> <qty> | clear]", runCart},
	"login":        {"login -email e [-password p]", runLogin},
	"register":     {"register -name n -email e [-password p]", runRegister},
	"logout":       {"logout", runLogout},
	"whoami":       {"whoami", runWhoami},
	"profile":      {"profile [show | update -name n -email e ...]", runProfile},
	"checkout":     {"checkout -phone p -address a -city c -state s -zip z -country c -card-name n -card-number n -card-expiry MM/YY -card-cvv n", runCheckout},
	"orders":       {"orders [-tab all|processing|delivered|cancelled] [-page n] [-size n]", runOrders},
	"order":        {"order <id>", runOrder},
	"order-status": {"order-status <id>", runOrderStatus},
	"cancel":       {"cancel <id>", runCancel},
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: storefront <command> [arguments]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func run(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return cmd.run(ctx, a, args[1:], out)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseID(args []string, name string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%w: %s id is required", errUsage, name)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s id %q", errUsage, name, args[0])
	}
	return id, nil
}

func requireArg(args []string, name string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		return "", fmt.Errorf("%w: %s is required", errUsage, name)
	}
	return args[0], nil
}

// passwordOr falls back to STOREFRONT_PASSWORD so secrets stay out of shell history
func passwordOr(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("STOREFRONT_PASSWORD")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func printProducts(out io.Writer, products []catalog.Product) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, money(p.Price), stock)
	}
	tw.Flush()
}

// ============================================
// Catalog
// ============================================

func runProducts(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("products")
	search := fs.String("q", "", "search term")
	category := fs.String("category", "", "category id or name")
	nav := fs.String("nav", "", "navigation category id or name")
	maxPrice := fs.String("max-price", catalog.DefaultPriceCeiling.String(), "price ceiling")
	sortKey := fs.String("sort", string(catalog.SortNewest), "newest, price-low, price-high, popular or rating")
	inStock := fs.Bool("in-stock", false, "only products in stock")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	ceiling, err := decimal.NewFromString(*maxPrice)
	if err != nil {
		return fmt.Errorf("%w: invalid max price %q", errUsage, *maxPrice)
	}
	key, err := catalog.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}

	listing, err := a.Browse(ctx, catalog.Criteria{
		Search:       *search,
		Category:     *category,
		NavCategory:  *nav,
		PriceCeiling: ceiling,
		Sort:         key,
		InStockOnly:  *inStock,
	})
	if err != nil {
		return err
	}

	if len(listing.Products) == 0 {
		fmt.Fprintln(out, "No products found")
		return nil
	}
	printProducts(out, listing.Products)
	fmt.Fprintf(out, "\n%d product(s)\n", len(listing.Products))
	return nil
}

func runProduct(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := parseID(args, "product")
	if err != nil {
		return err
	}
	p, err := a.Catalog.Product(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(out, "Category: %s\n", p.Category)
	fmt.Fprintf(out, "Price:    %s\n", money(p.Price))
	fmt.Fprintf(out, "In stock: %t\n", p.InStock)
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	if line, ok := a.Cart.Line(p.ID); ok {
		fmt.Fprintf(out, "\nIn your cart: %d\n", line.Quantity)
	}
	return nil
}

func runCategories(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	categories, err := a.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Fprintf(out, "%d\t%s\n", c.ID, c.Name)
	}
	return nil
}

func runFeatured(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	products, err := a.Catalog.Featured(ctx)
	if err != nil {
		return err
	}
	printProducts(out, products)
	return nil
}

func runReviews(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := parseID(args, "product")
	if err != nil {
		return err
	}
	reviews, err := a.Catalog.Reviews(ctx, id)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews yet")
		return nil
	}
	for _, r := range reviews {
		fmt.Fprintf(out, "%d/5 by %s on %s\n  %s\n", r.Rating, r.UserName, r.CreatedAt, r.Comment)
	}
	return nil
}

func runReview(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := parseID(args, "product")
	if err != nil {
		return err
	}
	fs := newFlagSet("review")
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	comment := fs.String("comment", "", "review text")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if !a.Session.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}

	r, err := a.Catalog.CreateReview(ctx, id, catalog.ReviewInput{Rating: *rating, Comment: *comment})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Review %s posted\n", r.ID)
	return nil
}

// ============================================
// Cart
// ============================================

func runCart(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	action := "show"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	switch action {
	case "show":
	case "add":
		id, err := parseID(args, "product")
		if err != nil {
			return err
		}
		qty := 1
		if len(args) > 1 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("%w: invalid quantity %q", errUsage, args[1])
			}
		}
		p, err := a.AddToCart(ctx, id, qty)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %d x %s\n", qty, p.Name)
	case "remove":
		id, err := parseID(args, "product")
		if err != nil {
			return err
		}
		a.Cart.Remove(ctx, id)
	case "set":
		id, err := parseID(args, "product")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return fmt.Errorf("%w: quantity is required", errUsage)
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: invalid quantity %q", errUsage, args[1])
		}
		a.Cart.SetQuantity(ctx, id, qty)
	case "clear":
		a.Cart.Clear(ctx)
	default:
		return fmt.Errorf("%w: unknown cart action %q", errUsage, action)
	}

	printCart(out, a)
	return nil
}

func printCart(out io.Writer, a *app.App) {
	lines := a.Cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Quantity, money(l.Price), money(l.Subtotal()))
	}
	tw.Flush()

	s := a.Checkout.Summary()
	fmt.Fprintf(out, "\nItems:    %d\n", a.Cart.ItemCount())
	fmt.Fprintf(out, "Subtotal: %s\n", money(s.Subtotal))
	fmt.Fprintf(out, "Shipping: Free\n")
	fmt.Fprintf(out, "Tax:      %s\n", money(s.Tax))
	fmt.Fprintf(out, "Total:    %s\n", money(s.Total))
}

// ============================================
// Session
// ============================================

func runLogin(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (or STOREFRONT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	u, err := a.Session.Login(ctx, *email, passwordOr(*password))
	if err != nil {
		return errors.New(session.Message(err, "Login failed"))
	}
	fmt.Fprintf(out, "Welcome back, %s\n", u.Name)
	return nil
}

func runRegister(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (or STOREFRONT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	pw := passwordOr(*password)
	u, err := a.Session.Register(ctx, session.Registration{
		Name:            *name,
		Email:           *email,
		Password:        pw,
		ConfirmPassword: pw,
	})
	if err != nil {
		return errors.New(session.Message(err, "Registration failed"))
	}
	fmt.Fprintf(out, "Welcome, %s\n", u.Name)
	return nil
}

func runLogout(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if err := a.Session.Logout(ctx); err != nil {
		fmt.Fprintf(out, "Signed out locally (%s)\n", session.Message(err, "Logout failed"))
		return nil
	}
	fmt.Fprintln(out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	u, ok := a.Session.User()
	if !ok {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}
	fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
	if claims, ok := a.Session.Claims(ctx); ok && claims.ExpiresAt != nil {
		fmt.Fprintf(out, "Session expires %s\n", claims.ExpiresAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runProfile(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	action := "show"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	var (
		u   session.User
		err error
	)
	switch action {
	case "show":
		u, err = a.Session.Profile(ctx)
	case "update":
		current, ok := a.Session.User()
		if !ok {
			return session.ErrNotAuthenticated
		}
		fs := newFlagSet("profile")
		update := session.ProfileUpdate{}
		fs.StringVar(&update.Name, "name", current.Name, "full name")
		fs.StringVar(&update.Email, "email", current.Email, "email")
		fs.StringVar(&update.Phone, "phone", current.Phone, "phone")
		fs.StringVar(&update.Address, "address", current.Address, "street address")
		fs.StringVar(&update.City, "city", current.City, "city")
		fs.StringVar(&update.State, "state", current.State, "state")
		fs.StringVar(&update.ZipCode, "zip", current.ZipCode, "zip code")
		fs.StringVar(&update.Country, "country", current.Country, "country")
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		u, err = a.Session.UpdateProfile(ctx, update)
	default:
		return fmt.Errorf("%w: unknown profile action %q", errUsage, action)
	}
	if err != nil {
		return errors.New(session.Message(err, "Profile request failed"))
	}

	fmt.Fprintf(out, "Name:    %s\n", u.Name)
	fmt.Fprintf(out, "Email:   %s\n", u.Email)
	fmt.Fprintf(out, "Phone:   %s\n", u.Phone)
	fmt.Fprintf(out, "Address: %s, %s, %s %s, %s\n", u.Address, u.City, u.State, u.ZipCode, u.Country)
	return nil
}

// ============================================
// Checkout and orders
// ============================================

func runCheckout(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	u, ok := a.Session.User()
	if !ok {
		return session.ErrNotAuthenticated
	}

	f := checkout.NewForm(u.Name, u.Email)
	billing := ""
	fs := newFlagSet("checkout")
	fs.StringVar(&f.FirstName, "first-name", f.FirstName, "")
	fs.StringVar(&f.LastName, "last-name", f.LastName, "")
	fs.StringVar(&f.Email, "email", f.Email, "")
	fs.StringVar(&f.Phone, "phone", u.Phone, "")
	fs.StringVar(&f.Address, "address", u.Address, "")
	fs.StringVar(&f.City, "city", u.City, "")
	fs.StringVar(&f.State, "state", u.State, "")
	fs.StringVar(&f.ZipCode, "zip", u.ZipCode, "")
	fs.StringVar(&f.Country, "country", u.Country, "")
	fs.StringVar(&billing, "billing", "", "separate billing address as first|last|address|city|state|zip|country")
	fs.StringVar(&f.CardName, "card-name", u.Name, "")
	fs.StringVar(&f.CardNumber, "card-number", "", "")
	fs.StringVar(&f.CardExpiry, "card-expiry", "", "MM/YY")
	fs.StringVar(&f.CardCVV, "card-cvv", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if billing != "" {
		if err := setBilling(&f, billing); err != nil {
			return err
		}
	}

	summary := a.Checkout.Summary()
	conf, err := a.Checkout.Place(ctx, f)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			return err
		}
		return errors.New(session.Message(err, "Failed to place order. Please try again."))
	}

	fmt.Fprintf(out, "Order %s placed (%s)\n", conf.ID, conf.Status)
	fmt.Fprintf(out, "Total charged: %s\n", money(summary.Total))
	if conf.Message != "" {
		fmt.Fprintln(out, conf.Message)
	}
	return nil
}

func setBilling(f *checkout.Form, value string) error {
	parts := strings.Split(value, "|")
	if len(parts) != 7 {
		return fmt.Errorf("%w: billing needs 7 fields separated by |", errUsage)
	}
	f.SameAsShipping = false
	f.BillingFirstName, f.BillingLastName = parts[0], parts[1]
	f.BillingAddress, f.BillingCity = parts[2], parts[3]
	f.BillingState, f.BillingZipCode, f.BillingCountry = parts[4], parts[5], parts[6]
	return nil
}

func runOrders(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("orders")
	tabName := fs.String("tab", string(orders.TabAll), "status tab")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	tab, err := orders.ParseTab(*tabName)
	if err != nil {
		return err
	}

	result, err := a.Orders.List(ctx, *page, *size)
	if err != nil {
		return errors.New(session.Message(err, "Failed to load orders"))
	}

	counts := orders.Counts(result.Orders)
	for _, t := range orders.Tabs {
		fmt.Fprintf(out, "%s (%d)  ", t, counts[t])
	}
	fmt.Fprintln(out)

	visible := orders.Filter(result.Orders, tab)
	if len(visible) == 0 {
		fmt.Fprintln(out, "No orders")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range visible {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.Date, o.Status, o.Items, money(o.Total))
	}
	tw.Flush()
	return nil
}

func runOrder(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := requireArg(args, "order id")
	if err != nil {
		return err
	}
	o, err := a.Orders.Get(ctx, id)
	if err != nil {
		return err
	}
	printOrder(out, o)
	return nil
}

func printOrder(out io.Writer, o orders.Order) {
	fmt.Fprintf(out, "Order %s placed %s\n", o.ID, o.Date)
	fmt.Fprintf(out, "Status: %s\n", o.Status)
	if o.EstimatedDelivery != "" {
		fmt.Fprintf(out, "Estimated delivery: %s\n", o.EstimatedDelivery)
	}
	if o.TrackingNumber != "" {
		fmt.Fprintf(out, "Tracking: %s\n", o.TrackingNumber)
	}
	for _, item := range o.Products {
		fmt.Fprintf(out, "  %d x %s @ %s\n", item.Quantity, item.Name, money(item.Price))
	}
	fmt.Fprintf(out, "Total: %s\n", money(o.Total))
}

func runOrderStatus(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := requireArg(args, "order id")
	if err != nil {
		return err
	}
	info, err := a.Orders.Status(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s", info.ID, info.Status)
	if info.TrackingNumber != "" {
		fmt.Fprintf(out, " (tracking %s)", info.TrackingNumber)
	}
	fmt.Fprintln(out)
	return nil
}

func runCancel(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := requireArg(args, "order id")
	if err != nil {
		return err
	}
	o, err := a.Orders.Cancel(ctx, id)
	if err != nil {
		if errors.Is(err, orders.ErrNotCancellable) || errors.Is(err, orders.ErrOrderNotFound) {
			return err
		}
		return errors.New(session.Message(err, "Failed to cancel order"))
	}
	fmt.Fprintf(out, "Order %s is now %s\n", o.ID, o.Status)
	return nil
}
