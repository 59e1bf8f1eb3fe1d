// cartctl is an interactive client for the cart API. It keeps a local
// cart on disk, works fully offline as a guest, and reconciles with the
// server when an identity logs in.
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/loomwear/cartcore/internal/apiclient"
	"github.com/loomwear/cartcore/internal/cartsync"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/kv"
	"github.com/loomwear/cartcore/internal/localcart"
	"github.com/loomwear/cartcore/internal/pricing"
	"github.com/loomwear/cartcore/internal/session"
	"github.com/shopspring/decimal"
)

func main() {
	apiURL := getEnv("CART_API_URL", "http://localhost:8080")
	storePath := getEnv("CART_STORE_PATH", "cartctl.db")

	storage, err := kv.NewSQLiteStore(storePath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer storage.Close()

	local := localcart.NewStore(storage)
	sessions := session.NewManager()
	remote := apiclient.New(apiURL, &http.Client{Timeout: 10 * time.Second})
	syncer := cartsync.New(local, remote, sessions, nil)
	defer syncer.Wait()

	fmt.Println("commands: add <product> <qty> [size] [color] | qty <line> <n> | rm <line> | ls | total | clear | login <user> | logout | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "add":
			runAdd(syncer, args[1:])
		case "qty":
			runQty(syncer, args[1:])
		case "rm":
			if len(args) != 2 {
				fmt.Println("usage: rm <line>")
				continue
			}
			syncer.RemoveItem(args[1])
			fmt.Println("Removed from cart")
		case "ls":
			printItems(local.Items())
		case "total":
			printBreakdown(local.Items())
		case "clear":
			syncer.Clear()
			fmt.Println("Cart cleared")
		case "login":
			if len(args) != 2 {
				fmt.Println("usage: login <user>")
				continue
			}
			sessions.Login(args[1])
			fmt.Printf("Signed in as %s\n", args[1])
			printItems(local.Items())
		case "logout":
			sessions.Logout()
			fmt.Println("Signed out")
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", args[0])
		}
	}
}

func runAdd(syncer *cartsync.Syncer, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: add <product> <qty> [size] [color]")
		return
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil || qty <= 0 {
		fmt.Println("quantity must be a positive number")
		return
	}

	item := domain.LineItem{
		ProductID: args[0],
		Name:      args[0],
		UnitPrice: decimal.Zero,
		Quantity:  qty,
	}
	if len(args) > 2 {
		item.Size = args[2]
	}
	if len(args) > 3 {
		item.Color = args[3]
	}

	_, outcome := syncer.AddItem(item)
	if outcome == localcart.OutcomeQuantityUpdated {
		fmt.Println("Quantity updated in cart")
	} else {
		fmt.Println("Added to cart")
	}
}

func runQty(syncer *cartsync.Syncer, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: qty <line> <n>")
		return
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("quantity must be a number")
		return
	}
	syncer.UpdateQuantity(args[0], qty)
}

func printItems(items []domain.LineItem) {
	if len(items) == 0 {
		fmt.Println("(cart is empty)")
		return
	}
	for _, item := range items {
		variant := ""
		if item.Size != "" || item.Color != "" {
			variant = fmt.Sprintf(" [%s %s]", item.Size, item.Color)
		}
		fmt.Printf("%s  %s%s  x%d  @%s\n", item.ID, item.Name, variant, item.Quantity, item.UnitPrice.StringFixed(2))
	}
}

func printBreakdown(items []domain.LineItem) {
	b := pricing.ComputeBreakdown(items, pricing.DefaultPolicy(), nil)
	fmt.Printf("subtotal %s  shipping %s  tax %s  total %s\n",
		b.Subtotal.StringFixed(2), b.Shipping.StringFixed(2), b.Tax.StringFixed(2), b.Total.StringFixed(2))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
