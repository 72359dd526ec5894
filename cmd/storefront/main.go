package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/example/frozenfresh/internal/cart"
	"github.com/example/frozenfresh/internal/checkout"
	"github.com/example/frozenfresh/internal/client"
	"github.com/example/frozenfresh/internal/config"
	"github.com/example/frozenfresh/internal/localstore"
	"github.com/example/frozenfresh/internal/session"
)

const usage = `FrozenFresh storefront

Usage:
  storefront products                      List the catalog
  storefront product <id>                  Show one product
  storefront register <name> <email> <password>
  storefront login <email> <password>      Sign in (use --admin for admin login)
  storefront logout                        Sign out and clear local state
  storefront whoami                        Show the signed-in user
  storefront cart show                     Show the cart
  storefront cart add <product-id> [qty]   Add a product to the cart
  storefront cart set <product-id> <qty>   Set a line quantity (0 removes)
  storefront cart rm <product-id>          Remove a line
  storefront cart clear                    Empty the cart
  storefront wishlist show                 Show the wishlist
  storefront wishlist add <product-id>     Save a product for later
  storefront wishlist rm <product-id>      Remove from the wishlist
  storefront checkout                      Place an order from the cart
  storefront orders                        List your past orders

Config is read from ~/.frozenfresh/config.yaml; FROZENFRESH_API_URL and
FROZENFRESH_STORAGE_PATH override it.`

type app struct {
	api      *client.Client
	cart     *cart.Container
	session  *session.Manager
	checkout *checkout.Orchestrator
}

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("storefront: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o700); err != nil {
		log.Fatalf("storefront: %v", err)
	}
	store, err := localstore.Open(cfg.StoragePath)
	if err != nil {
		log.Fatalf("storefront: %v", err)
	}
	defer store.Close()

	cartContainer := cart.NewContainer(store, cfg.PricingRules())
	cartContainer.Load()

	var sess *session.Manager
	api := client.New(cfg.APIBaseURL, func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	})
	sess = session.NewManager(api, store, cartContainer)
	sess.Restore()

	a := &app{
		api:      api,
		cart:     cartContainer,
		session:  sess,
		checkout: checkout.New(cartContainer, sess, api),
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("storefront: %v", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "products":
		return a.listProducts(ctx)
	case "product":
		if len(args) < 1 {
			return errors.New("usage: product <id>")
		}
		return a.showProduct(ctx, args[0])
	case "register":
		if len(args) < 3 {
			return errors.New("usage: register <name> <email> <password>")
		}
		return a.register(ctx, args[0], args[1], args[2])
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.session.Logout()
		fmt.Println("Signed out.")
		return nil
	case "whoami":
		return a.whoami()
	case "cart":
		return a.cartCommand(ctx, args)
	case "wishlist":
		return a.wishlistCommand(ctx, args)
	case "checkout":
		return a.placeOrder(ctx)
	case "orders":
		return a.listOrders(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try: storefront help)", command)
	}
}

// Catalog commands

func (a *app) listProducts(ctx context.Context) error {
	products, err := a.api.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("No products available.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t₹%d\t%s\n", p.ID, p.Name, p.Category, p.Price, stock)
	}
	return w.Flush()
}

func (a *app) showProduct(ctx context.Context, id string) error {
	p, err := a.api.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	fmt.Printf("  Price: ₹%d  Category: %s  Stock: %d\n", p.Price, p.Category, p.Stock)
	if a.cart.InWishlist(p.ID) {
		fmt.Println("  (on your wishlist)")
	}
	return nil
}

// Session commands

func (a *app) register(ctx context.Context, name, email, password string) error {
	user, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s! You are signed in as %s.\n", user.Name, user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	role := ""
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--admin" {
			role = "admin"
			continue
		}
		rest = append(rest, arg)
	}
	if len(rest) < 2 {
		return errors.New("usage: login <email> <password> [--admin]")
	}

	user, err := a.session.Login(ctx, rest[0], rest[1], role)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s).\n", user.Name, user.Role)
	return nil
}

func (a *app) whoami() error {
	user, ok := a.session.Current()
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	return nil
}

// Cart commands

func (a *app) cartCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "show":
		return a.showCart()
	case "add":
		if len(args) < 2 {
			return errors.New("usage: cart add <product-id> [qty]")
		}
		qty := 1
		if len(args) >= 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			qty = n
		}
		product, err := a.api.GetProduct(ctx, args[1])
		if err != nil {
			return err
		}
		if !product.InStock {
			return fmt.Errorf("%s is out of stock", product.Name)
		}
		if err := a.cart.AddToCart(*product, qty); err != nil {
			return err
		}
		fmt.Printf("Added %s to cart.\n", product.Name)
		return nil
	case "set":
		if len(args) < 3 {
			return errors.New("usage: cart set <product-id> <qty>")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		return a.cart.UpdateQuantity(args[1], qty)
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: cart rm <product-id>")
		}
		return a.cart.RemoveFromCart(args[1])
	case "clear":
		return a.cart.ClearCart()
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *app) showCart() error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tLINE TOTAL")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t₹%d\t₹%d\n", item.ID, item.Name, item.Quantity, item.Price, item.Price*item.Quantity)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nSubtotal: ₹%d\n", a.cart.Subtotal())
	if fee := a.cart.DeliveryFee(); fee == 0 {
		fmt.Println("Delivery: free")
	} else {
		fmt.Printf("Delivery: ₹%d\n", fee)
	}
	fmt.Printf("Total:    ₹%d\n", a.cart.Total())
	return nil
}

// Wishlist commands

func (a *app) wishlistCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "show":
		items := a.cart.WishlistItems()
		if len(items) == 0 {
			fmt.Println("Your wishlist is empty.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE")
		for _, p := range items {
			fmt.Fprintf(w, "%s\t%s\t₹%d\n", p.ID, p.Name, p.Price)
		}
		return w.Flush()
	case "add":
		if len(args) < 2 {
			return errors.New("usage: wishlist add <product-id>")
		}
		product, err := a.api.GetProduct(ctx, args[1])
		if err != nil {
			return err
		}
		if err := a.cart.AddToWishlist(*product); err != nil {
			return err
		}
		fmt.Printf("Saved %s for later.\n", product.Name)
		return nil
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: wishlist rm <product-id>")
		}
		return a.cart.RemoveFromWishlist(args[1])
	default:
		return fmt.Errorf("unknown wishlist command %q", args[0])
	}
}

// Checkout and orders

func (a *app) placeOrder(ctx context.Context) error {
	order, err := a.checkout.PlaceOrder(ctx)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			return errors.New("your cart is empty")
		case errors.Is(err, checkout.ErrNotSignedIn):
			return errors.New("sign in before checking out")
		default:
			return err
		}
	}

	fmt.Println("Order placed!")
	fmt.Printf("  Order ID: %s\n", order.ID)
	fmt.Printf("  Total:    ₹%d (%s)\n", order.Total, order.PaymentMethod)
	fmt.Printf("  Status:   %s\n", order.Status)
	return nil
}

func (a *app) listOrders(ctx context.Context) error {
	orders, err := a.api.MyOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLACED\tITEMS\tTOTAL\tSTATUS")
	for _, o := range orders {
		names := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			names = append(names, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t₹%d\t%s\n",
			o.ID, o.CreatedAt.Format("2006-01-02 15:04"), strings.Join(names, ", "), o.Total, o.Status)
	}
	return w.Flush()
}
