// Idempotent sample-data loader. Safe to run against a non-empty
// database: rows are matched by name and never overwritten.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/config"
	"github.com/retailcore/storefront/internal/database"
)

type categorySeed struct {
	name        string
	description string
}

type productSeed struct {
	name        string
	category    string
	price       string
	stock       int
	description string
}

var categorySeeds = []categorySeed{
	{"Electronics", "Latest electronic gadgets and devices"},
	{"Clothing", "Fashion and apparel for all ages"},
	{"Home & Garden", "Everything for your home and garden"},
	{"Sports", "Sports equipment and fitness gear"},
	{"Books", "Books and educational materials"},
	{"Beauty", "Beauty and personal care products"},
}

var productSeeds = []productSeed{
	{"Smartphone Pro Max", "Electronics", "999.99", 50, "Latest smartphone with advanced features and premium camera system."},
	{"Wireless Headphones", "Electronics", "199.99", 100, "High-quality wireless headphones with noise cancellation."},
	{"Laptop Ultra", "Electronics", "1299.99", 25, "Powerful laptop for work and gaming with long battery life."},
	{"Smart Watch", "Electronics", "299.99", 75, "Fitness tracking smartwatch with health monitoring features."},

	{"Cotton T-Shirt", "Clothing", "24.99", 200, "Comfortable cotton t-shirt in various colors and sizes."},
	{"Denim Jeans", "Clothing", "79.99", 150, "Classic denim jeans with perfect fit and durability."},
	{"Winter Jacket", "Clothing", "149.99", 80, "Warm winter jacket with water-resistant material."},
	{"Running Shoes", "Clothing", "89.99", 120, "Comfortable running shoes with excellent cushioning."},

	{"Coffee Maker", "Home & Garden", "89.99", 60, "Automatic coffee maker for perfect morning brew."},
	{"Garden Tools Set", "Home & Garden", "49.99", 90, "Complete set of garden tools for all your gardening needs."},
	{"LED Desk Lamp", "Home & Garden", "39.99", 110, "Adjustable LED desk lamp with multiple brightness levels."},
	{"Plant Pot Set", "Home & Garden", "29.99", 200, "Set of decorative plant pots for indoor plants."},

	{"Yoga Mat", "Sports", "34.99", 80, "Non-slip yoga mat for comfortable workouts."},
	{"Dumbbell Set", "Sports", "79.99", 40, "Adjustable dumbbell set for home fitness."},
	{"Basketball", "Sports", "24.99", 100, "Official size basketball for indoor and outdoor play."},
	{"Tennis Racket", "Sports", "89.99", 50, "Professional tennis racket for all skill levels."},

	{"Programming Guide", "Books", "49.99", 75, "Comprehensive guide to modern programming languages."},
	{"Cookbook Collection", "Books", "29.99", 120, "Collection of delicious recipes from around the world."},
	{"History Book", "Books", "19.99", 90, "Fascinating journey through world history."},
	{"Science Fiction Novel", "Books", "14.99", 150, "Award-winning science fiction novel."},

	{"Skincare Set", "Beauty", "59.99", 100, "Complete skincare routine set for all skin types."},
	{"Makeup Kit", "Beauty", "79.99", 80, "Professional makeup kit with all essential products."},
	{"Hair Care Bundle", "Beauty", "39.99", 120, "Premium hair care products for healthy hair."},
	{"Perfume Collection", "Beauty", "99.99", 60, "Luxury perfume collection with multiple fragrances."},
}

func main() {
	cfg := config.Load()

	db, err := database.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[seed] database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("[seed] migrate: %v", err)
	}

	repo := catalog.NewPGRepo(db.Pool())
	ctx := context.Background()

	catIDs := make(map[string]string, len(categorySeeds))
	newCats := 0
	for _, c := range categorySeeds {
		existing, err := repo.GetCategoryByName(ctx, c.name)
		if err == nil {
			catIDs[c.name] = existing.ID
			continue
		}
		if !errors.Is(err, catalog.ErrCategoryNotFound) {
			log.Fatalf("[seed] lookup category %q: %v", c.name, err)
		}

		fresh := &catalog.Category{ID: uuid.NewString(), Name: c.name, Description: c.description}
		if err := repo.CreateCategory(ctx, fresh); err != nil {
			log.Fatalf("[seed] create category %q: %v", c.name, err)
		}
		catIDs[c.name] = fresh.ID
		newCats++
		log.Printf("[seed] created category %s", c.name)
	}

	newProds := 0
	for _, p := range productSeeds {
		if _, err := repo.GetProductByName(ctx, p.name); err == nil {
			continue
		} else if !errors.Is(err, catalog.ErrProductNotFound) {
			log.Fatalf("[seed] lookup product %q: %v", p.name, err)
		}

		price, err := decimal.NewFromString(p.price)
		if err != nil {
			log.Fatalf("[seed] bad price for %q: %v", p.name, err)
		}
		fresh := &catalog.Product{
			ID:          uuid.NewString(),
			CategoryID:  catIDs[p.category],
			Name:        p.name,
			Description: p.description,
			Price:       price,
			Stock:       p.stock,
			Active:      true,
		}
		if err := repo.CreateProduct(ctx, fresh); err != nil {
			log.Fatalf("[seed] create product %q: %v", p.name, err)
		}
		newProds++
		log.Printf("[seed] created product %s", p.name)
	}

	log.Printf("[seed] done: %d new categories, %d new products", newCats, newProds)
}
