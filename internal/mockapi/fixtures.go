package mockapi

import (
	"github.com/shopspring/decimal"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

const (
	DemoUsername = "demo"
	DemoPassword = "123456"
)

var categories = map[int64]string{
	1: "Bags",
	2: "Jewelry",
	3: "Toys",
}

func categoryName(id int64) string {
	if n, ok := categories[id]; ok {
		return n
	}
	return "Uncategorized"
}

// Seed adds the demo seller and its three products.
func (s *Store) Seed() error {
	u, err := s.AddSeller(sellerapi.SignupPayload{
		Username:    DemoUsername,
		Email:       "demo@example.com",
		Password:    DemoPassword,
		ShopName:    "Demo Atelier",
		Location:    "Istanbul",
		PhoneNumber: "+90 555 000 0000",
	})
	if err != nil {
		return err
	}

	seed := []struct {
		title    string
		price    int64
		stock    int
		category int64
		status   sellerapi.Status
		image    string
	}{
		{"Handmade Bag", 120, 8, 1, sellerapi.StatusActive, "/mock/bag.jpg"},
		{"Silver Ring", 45, 30, 2, sellerapi.StatusActive, "/mock/ring.jpg"},
		{"Wooden Toy", 25, 0, 3, sellerapi.StatusInactive, ""},
	}
	for _, p := range seed {
		created := s.Create(u.ID, sellerapi.CreateProductPayload{
			Title:         p.title,
			Price:         sellerapi.NewAmount(decimal.NewFromInt(p.price)),
			StockQuantity: p.stock,
			Currency:      "EUR",
			CategoryID:    p.category,
			Status:        p.status,
			IsHandmade:    true,
		})
		if p.image != "" {
			if _, err := s.AddImage(u.ID, created.ID, p.image, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
