// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"vendra/internal/core/id"
	"vendra/internal/core/types"
	"vendra/internal/infrastructure/storage/postgres"
	"vendra/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@vendra.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, is_admin)
		VALUES ($1, $2, $3, true)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Sellers
	sellers := []struct {
		name      string
		email     string
		rating    string
		followers int64
		credit    string
	}{
		{"Northwind Electronics", "northwind@vendra.io", "4.70", 12840, "92.50"},
		{"Juniper Home Goods", "juniper@vendra.io", "4.30", 3150, "78.00"},
		{"Atlas Outdoor Supply", "atlas@vendra.io", "3.90", 870, "64.25"},
	}

	sellerIDs := make([]id.ID, 0, len(sellers))
	for _, s := range sellers {
		sid := id.New()
		commandTag, err := pool.Exec(ctx, `
			INSERT INTO sellers (id, name, email, rating, followers_count, credit_score)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO NOTHING
		`, sid, s.name, s.email, types.MustMoney(s.rating), s.followers, types.MustMoney(s.credit))
		if err != nil {
			return fmt.Errorf("seed seller %s: %w", s.name, err)
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.QueryRow(ctx,
				`SELECT id FROM sellers WHERE email = $1`, s.email,
			).Scan(&sid)
			if err != nil {
				return fmt.Errorf("fetch existing seller %s: %w", s.name, err)
			}
		}
		sellerIDs = append(sellerIDs, sid)
	}

	// 2. Seller logins, one per seller
	password, err := bcrypt.GenerateFromPassword([]byte("Seller123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seller password: %w", err)
	}
	for i, s := range sellers {
		email := fmt.Sprintf("login-%s", s.email)
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, is_admin, seller_id)
			VALUES ($1, $2, $3, false, $4)
			ON CONFLICT (email) DO NOTHING
		`, id.New(), email, string(password), sellerIDs[i])
		if err != nil {
			return fmt.Errorf("seed seller login %s: %w", email, err)
		}
	}

	// 3. Products
	products := []struct {
		name  string
		price string
		stock int64
	}{
		{"Wireless Earbuds Pro", "129.99", 500},
		{"USB-C Charging Hub", "45.50", 1200},
		{"Ceramic Pour-Over Set", "38.00", 300},
		{"Insulated Trail Bottle 1L", "24.95", 2000},
		{"Folding Camp Lantern", "19.99", 850},
		{"Merino Wool Throw", "89.00", 150},
	}

	productIDs := make([]id.ID, 0, len(products))
	for _, p := range products {
		pid := id.New()
		commandTag, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, price, warehouse_stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, pid, p.name, types.MustMoney(p.price), p.stock)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.QueryRow(ctx,
				`SELECT id FROM products WHERE name = $1`, p.name,
			).Scan(&pid)
			if err != nil {
				return fmt.Errorf("fetch existing product %s: %w", p.name, err)
			}
		}
		productIDs = append(productIDs, pid)
	}

	// 4. Orders spread over the last 35 days so every resolution window
	// has data. Deterministic, no RNG, so repeated runs stay comparable.
	now := time.Now().UTC()
	orderCount := 0
	for si, sellerID := range sellerIDs {
		for day := 0; day < 35; day++ {
			// Seller 0 is busiest, seller 2 quietest.
			ordersToday := 3 - si
			if ordersToday <= 0 {
				ordersToday = 1
			}
			for n := 0; n < ordersToday; n++ {
				quantity := int64(1 + (day+n)%4)
				unitPrice := types.MustMoney(products[(day+n)%len(products)].price)
				total := unitPrice.Mul(decimal.NewFromInt(quantity))
				profit := total.Mul(types.MustMoney("0.18"))
				customerID := sellerIDs[si] // stable per-seller repeat customer
				if n > 0 {
					customerID = id.New()
				}

				_, err := pool.Exec(ctx, `
					INSERT INTO orders (id, seller_id, customer_id, quantity, total_amount, profit, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
				`, id.New(), sellerID, customerID, quantity, total, profit,
					now.AddDate(0, 0, -day).Add(-time.Duration(n)*time.Hour))
				if err != nil {
					return fmt.Errorf("seed order: %w", err)
				}
				orderCount++
			}
		}
	}
	log.Infow("orders seeded", "count", orderCount)

	// 5. Visits
	visitCount := 0
	for _, sellerID := range sellerIDs {
		for day := 0; day < 35; day++ {
			for n := 0; n < 5; n++ {
				_, err := pool.Exec(ctx, `
					INSERT INTO seller_visits (seller_id, visitor_id, visited_at)
					VALUES ($1, $2, $3)
				`, sellerID, id.New(), now.AddDate(0, 0, -day).Add(-time.Duration(n)*time.Minute))
				if err != nil {
					return fmt.Errorf("seed visit: %w", err)
				}
				visitCount++
			}
		}
	}
	log.Infow("visits seeded", "count", visitCount)

	// 6. Distributions, two products per seller
	for si, sellerID := range sellerIDs {
		for n := 0; n < 2; n++ {
			p := products[(si*2+n)%len(products)]
			pid := productIDs[(si*2+n)%len(productIDs)]
			markup := types.MustMoney("5.00")
			finalPrice := types.MustMoney(p.price).Add(markup)

			_, err := pool.Exec(ctx, `
				INSERT INTO distributions (
					id, seller_id, product_id, markup, final_price,
					allocated_stock, commission_rate
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (seller_id, product_id) DO NOTHING
			`, id.New(), sellerID, pid, markup, finalPrice, p.stock/10, types.MustMoney("0.05"))
			if err != nil {
				return fmt.Errorf("seed distribution: %w", err)
			}
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
