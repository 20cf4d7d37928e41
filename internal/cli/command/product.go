package command

import (
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/store"
)

// ProductCommand returns the product subcommand group.
func ProductCommand() *cli.Command {
	return &cli.Command{
		Name:    "product",
		Aliases: []string{"products", "p"},
		Usage:   "Front desk products and sales",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List products",
				Flags:  listFlags(),
				Action: productList,
			},
			{
				Name:      "get",
				Usage:     "Show one product",
				ArgsUsage: "PRODUCT_ID",
				Action:    productGet,
			},
			{
				Name:   "create",
				Usage:  "Add a product",
				Flags:  productInputFlags(true),
				Action: productCreate,
			},
			{
				Name:      "update",
				Usage:     "Change a product; unset flags keep their value",
				ArgsUsage: "PRODUCT_ID",
				Flags:     productInputFlags(false),
				Action:    productUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Remove a product",
				ArgsUsage: "PRODUCT_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
				},
				Action: productDelete,
			},
			{
				Name:      "sale",
				Usage:     "Record a sale",
				ArgsUsage: "PRODUCT_ID",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "quantity", Aliases: []string{"n"}, Value: 1, Usage: "Units sold"},
					&cli.Float64Flag{Name: "unit-price", Usage: "Price per unit (default: catalog price)"},
					&cli.StringFlag{Name: "payment", Value: "cash", Usage: "Payment method"},
					&cli.StringFlag{Name: "member", Usage: "Member ID the sale is charged to"},
				},
				Action: productSale,
			},
			{
				Name:   "categories",
				Usage:  "List product categories",
				Action: productCategories,
			},
			{
				Name:  "low-stock",
				Usage: "Products at or below a stock threshold",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "threshold", Value: 5, Usage: "Stock threshold"},
				},
				Action: productLowStock,
			},
			{
				Name:      "stats",
				Usage:     "Sales reports: monthly, weekly, analytics, top-selling",
				ArgsUsage: "[KIND]",
				Action:    productStats,
			},
			{
				Name:   "browse",
				Usage:  "Search products interactively",
				Action: productBrowse,
			},
		},
	}
}

func productInputFlags(create bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Product name", Required: create},
		&cli.StringFlag{Name: "category", Usage: "Category", Required: create},
		&cli.Float64Flag{Name: "price", Usage: "Unit price"},
		&cli.IntFlag{Name: "stock", Usage: "Units in stock"},
		&cli.StringFlag{Name: "sku", Usage: "Stock keeping unit"},
		&cli.StringFlag{Name: "description", Usage: "Description"},
		&cli.StringFlag{Name: "image-url", Usage: "Image URL"},
		&cli.StringFlag{Name: "status", Usage: "Product status"},
	}
}

func applyProductFlags(c *cli.Context, in *domain.ProductInput) {
	strs := []struct {
		flag string
		dst  *string
	}{
		{"name", &in.Name},
		{"category", &in.Category},
		{"sku", &in.SKU},
		{"description", &in.Description},
		{"image-url", &in.ImageURL},
		{"status", &in.Status},
	}
	for _, f := range strs {
		if c.IsSet(f.flag) {
			*f.dst = c.String(f.flag)
		}
	}
	if c.IsSet("price") {
		in.Price = c.Float64("price")
	}
	if c.IsSet("stock") {
		in.Stock = c.Int("stock")
	}
}

func products(s *store.Set) *store.Collection[domain.Product] {
	return s.Products.Collection
}

func productList(c *cli.Context) error {
	return runList(c, products, "products")
}

func productBrowse(c *cli.Context) error {
	return runBrowse(c, products, "products")
}

func productGet(c *cli.Context) error {
	id, err := idArg(c, "product ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	p, err := rt.Stores.Products.FetchOne(ctx, id)
	if err != nil {
		return err
	}
	return rt.Render(p)
}

func productCreate(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	var in domain.ProductInput
	applyProductFlags(c, &in)
	p, err := rt.Stores.Products.Create(ctx, in)
	if err != nil {
		return err
	}
	rt.Printf("Product %s created.\n", p.ID)
	return rt.Render(p)
}

func productUpdate(c *cli.Context) error {
	id, err := idArg(c, "product ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	cur, err := rt.Stores.Products.FetchOne(ctx, id)
	if err != nil {
		return err
	}
	in := domain.ProductInput{
		Name:        cur.Name,
		Category:    cur.Category,
		Price:       cur.Price,
		Stock:       cur.Stock,
		SKU:         cur.SKU,
		Description: cur.Description,
		ImageURL:    cur.ImageURL,
		Status:      cur.Status,
	}
	applyProductFlags(c, &in)

	p, err := rt.Stores.Products.Update(ctx, id, in)
	if err != nil {
		return err
	}
	rt.Printf("Product %s updated.\n", p.ID)
	return rt.Render(p)
}

func productDelete(c *cli.Context) error {
	id, err := idArg(c, "product ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	if !c.Bool("force") && !rt.Confirm("Delete product %s?", id) {
		rt.Printf("Cancelled.\n")
		return nil
	}

	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}
	if err := rt.Stores.Products.Delete(ctx, id); err != nil {
		return informational(rt, err, "product %s was not deleted", id)
	}
	rt.Printf("Product %s deleted.\n", id)
	return nil
}

func productSale(c *cli.Context) error {
	id, err := idArg(c, "product ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	// Loading the product first lets the sale be checked against its stock.
	p, err := rt.Stores.Products.FetchOne(ctx, id)
	if err != nil {
		return err
	}
	in := domain.SaleInput{
		Quantity:      c.Int("quantity"),
		UnitPrice:     p.Price,
		PaymentMethod: c.String("payment"),
		MemberID:      c.String("member"),
	}
	if c.IsSet("unit-price") {
		in.UnitPrice = c.Float64("unit-price")
	}

	sale, err := rt.Stores.Products.RecordSale(ctx, id, in)
	if err != nil {
		return err
	}
	left := p.Stock - in.Quantity
	if sale.RemainingStock != nil {
		left = *sale.RemainingStock
	}
	rt.Printf("Sold %d x %s, %d left in stock.\n", in.Quantity, p.Name, left)
	return rt.Render(sale)
}

func productCategories(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	cats, err := rt.Stores.Products.Categories(ctx)
	if err != nil {
		return err
	}
	sort.Strings(cats)
	return rt.Render(nonNil(cats))
}

func productLowStock(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	list, err := rt.Stores.Products.LowStock(ctx, c.Int("threshold"))
	if err != nil {
		return err
	}
	return rt.Render(nonNil(list))
}

func productStats(c *cli.Context) error {
	kind := domain.ProductStatsMonthly
	if arg := c.Args().First(); arg != "" {
		k, err := domain.ParseProductStatsKind(arg)
		if err != nil {
			return err
		}
		kind = k
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	st, err := rt.Stores.Products.Stats(ctx, kind)
	if err != nil {
		return err
	}
	return rt.Render(st)
}
