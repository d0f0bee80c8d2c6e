package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prianik/storefront/internal/cart"
	"github.com/prianik/storefront/internal/checkout"
	"github.com/prianik/storefront/pkg/api"
	"github.com/prianik/storefront/pkg/config"
	"github.com/prianik/storefront/pkg/types"
)

const usage = `commands:
  categories                 list catalog categories
  products [page] [search]   list products
  product <id>               show one product
  related <id>               show related products
  gallery [category-id]      list gallery items
  add <id> [qty]             fetch a product and add it to the cart
  qty <id> <n>               set a line's quantity (0 removes)
  rm <id>                    remove a line
  cart                       show the cart
  clear                      empty the cart
  lang <en|es|ru>            switch catalog language
  checkout                   submit the cart as an order
  contact                    send a contact message
  quit                       leave`

type session struct {
	api      *api.Client
	ledger   *cart.Ledger
	checkout *checkout.Service
	language string
	out      io.Writer
	in       io.Reader
}

func (s *session) run(ctx context.Context) {
	fmt.Fprintln(s.out, usage)
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		s.dispatch(ctx, scanner, fields[0], fields[1:])
	}
}

func (s *session) dispatch(ctx context.Context, scanner *bufio.Scanner, cmd string, args []string) {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, usage)
	case "categories":
		s.showCategories(ctx)
	case "products":
		s.showProducts(ctx, args)
	case "product":
		s.showProduct(ctx, args)
	case "related":
		s.showRelated(ctx, args)
	case "gallery":
		s.showGallery(ctx, args)
	case "add":
		s.addToCart(ctx, args)
	case "qty":
		s.setQuantity(ctx, args)
	case "rm":
		s.removeLine(ctx, args)
	case "cart":
		s.showCart()
	case "clear":
		s.ledger.Clear(ctx)
		fmt.Fprintln(s.out, "cart cleared")
	case "lang":
		s.switchLanguage(args)
	case "checkout":
		s.submitOrder(ctx, scanner)
	case "contact":
		s.submitContact(ctx, scanner)
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", cmd)
	}
}

func (s *session) showCategories(ctx context.Context) {
	resp := s.api.Categories(ctx, s.language)
	if !resp.Success {
		fmt.Fprintln(s.out, "error:", resp.Error)
		return
	}
	for _, category := range resp.Data {
		fmt.Fprintf(s.out, "%4d  %s\n", category.ID, category.Name)
		for _, sub := range category.Subcategories {
			fmt.Fprintf(s.out, "      %4d  %s\n", sub.ID, sub.Name)
		}
	}
}

func (s *session) showProducts(ctx context.Context, args []string) {
	query := api.ProductQuery{}
	if len(args) > 0 {
		if page, err := strconv.Atoi(args[0]); err == nil {
			query.Page = page
			args = args[1:]
		}
	}
	if len(args) > 0 {
		query.Search = strings.Join(args, " ")
	}

	resp := s.api.Products(ctx, query, s.language)
	if !resp.Success {
		fmt.Fprintln(s.out, "error:", resp.Error)
		return
	}
	for _, product := range resp.Data.Items {
		fmt.Fprintf(s.out, "%4d  %-30s %10.2f %s\n", product.ID, product.Name, product.Price, product.Currency)
	}
	fmt.Fprintf(s.out, "%d item(s) total\n", resp.Data.TotalItems)
}

func (s *session) showProduct(ctx context.Context, args []string) {
	id, ok := parseID(s.out, args, "product <id>")
	if !ok {
		return
	}
	resp := s.api.ProductByID(ctx, id, s.language)
	if !resp.Success {
		fmt.Fprintln(s.out, "error:", resp.Error)
		return
	}
	product := resp.Data
	fmt.Fprintf(s.out, "%d  %s — %.2f %s\n%s\n", product.ID, product.Name, product.Price, product.Currency, product.Description)
	for key, value := range product.Characteristics {
		fmt.Fprintf(s.out, "  %s: %s\n", key, value)
	}
}

func (s *session) showRelated(ctx context.Context, args []string) {
	id, ok := parseID(s.out, args, "related <id>")
	if !ok {
		return
	}
	resp := s.api.RelatedProducts(ctx, id, api.DefaultRelatedLimit, s.language)
	if !resp.Success {
		fmt.Fprintln(s.out, "error:", resp.Error)
		return
	}
	for _, product := range resp.Data {
		fmt.Fprintf(s.out, "%4d  %-30s %10.2f %s\n", product.ID, product.Name, product.Price, product.Currency)
	}
}

func (s *session) showGallery(ctx context.Context, args []string) {
	var categoryID int64
	if len(args) > 0 {
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			categoryID = id
		}
	}
	resp := s.api.GalleryItems(ctx, categoryID, s.language)
	if !resp.Success {
		fmt.Fprintln(s.out, "error:", resp.Error)
		return
	}
	for _, item := range resp.Data {
		fmt.Fprintf(s.out, "%4d  %-30s %s\n", item.ID, item.Title, item.Category)
	}
}

// addToCart resolves the product through the catalog so the line
// carries the name and price shown to the shopper at add time.
func (s *session) addToCart(ctx context.Context, args []string) {
	id, ok := parseID(s.out, args, "add <id> [qty]")
	if !ok {
		return
	}
	quantity := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			quantity = n
		}
	}

	resp := s.api.ProductByID(ctx, id, s.language)
	if !resp.Success {
		fmt.Fprintln(s.out, "error:", resp.Error)
		return
	}
	product := resp.Data

	imageRef := ""
	if len(product.Images) > 0 {
		imageRef = product.Images[0]
	}
	s.ledger.Add(ctx, cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Currency:  product.Currency,
		ImageRef:  imageRef,
	}, quantity)
	fmt.Fprintf(s.out, "added %s; cart now holds %d item(s)\n", product.Name, s.ledger.ItemCount())
}

func (s *session) setQuantity(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: qty <id> <n>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(s.out, "usage: qty <id> <n>")
		return
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(s.out, "usage: qty <id> <n>")
		return
	}
	s.ledger.SetQuantity(ctx, id, quantity)
	s.showCart()
}

func (s *session) removeLine(ctx context.Context, args []string) {
	id, ok := parseID(s.out, args, "rm <id>")
	if !ok {
		return
	}
	s.ledger.Remove(ctx, id)
	s.showCart()
}

func (s *session) showCart() {
	lines := s.ledger.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(s.out, "%4d  %-30s %3d x %10.2f %s\n",
			line.ProductID, line.Name, line.Quantity, line.UnitPrice, line.Currency)
	}
	fmt.Fprintf(s.out, "total: %.2f (%d item(s))\n", s.ledger.Total(), s.ledger.ItemCount())
}

func (s *session) switchLanguage(args []string) {
	if len(args) != 1 || !config.LanguageSupported(args[0]) {
		fmt.Fprintf(s.out, "usage: lang <%s>\n", strings.Join(config.SupportedLanguages, "|"))
		return
	}
	s.language = args[0]
	fmt.Fprintln(s.out, "language set to", s.language)
}

func (s *session) submitOrder(ctx context.Context, scanner *bufio.Scanner) {
	if s.ledger.ItemCount() == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}

	info := checkout.ContactInfo{
		Name:           s.prompt(scanner, "name"),
		Email:          s.prompt(scanner, "email"),
		Phone:          s.prompt(scanner, "phone"),
		Comment:        s.prompt(scanner, "comment (optional)"),
		Language:       s.language,
		RecaptchaToken: s.prompt(scanner, "captcha token"),
	}

	resp := s.checkout.SubmitOrder(ctx, info)
	if !resp.Success {
		s.printFailure(resp.Error, resp.ValidationErrors)
		return
	}

	// The submission flow leaves clearing to its caller; this session
	// clears once the order is acknowledged.
	s.ledger.Clear(ctx)
	fmt.Fprintf(s.out, "order %d accepted: %s\n", resp.Data.OrderID, resp.Data.Message)
}

func (s *session) submitContact(ctx context.Context, scanner *bufio.Scanner) {
	msg := checkout.ContactMessage{
		Name:           s.prompt(scanner, "name"),
		Email:          s.prompt(scanner, "email"),
		Phone:          s.prompt(scanner, "phone"),
		Message:        s.prompt(scanner, "message"),
		Language:       s.language,
		RecaptchaToken: s.prompt(scanner, "captcha token"),
	}

	resp := s.checkout.SubmitContact(ctx, msg)
	if !resp.Success {
		s.printFailure(resp.Error, resp.ValidationErrors)
		return
	}
	fmt.Fprintln(s.out, resp.Data.Message)
}

func (s *session) prompt(scanner *bufio.Scanner, label string) string {
	fmt.Fprintf(s.out, "%s: ", label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func (s *session) printFailure(summary string, fields []types.FieldError) {
	fmt.Fprintln(s.out, "error:", summary)
	for _, field := range fields {
		fmt.Fprintf(s.out, "  %s %s\n", field.Field, field.Message)
	}
}

func parseID(out io.Writer, args []string, usage string) (int64, bool) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage:", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		fmt.Fprintln(out, "usage:", usage)
		return 0, false
	}
	return id, true
}
