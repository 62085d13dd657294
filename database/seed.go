package database

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls what Seed inserts.
type SeedOptions struct {
	BaseURL       string
	Tables        int
	AdminEmail    string
	AdminPassword string
}

type seedProduct struct {
	name     string
	category string
	price    float64
	variable bool
}

var starterCatalog = []seedProduct{
	{"Água Mineral", "Bebidas", 5.00, false},
	{"Refrigerante Lata", "Bebidas", 7.00, false},
	{"Suco Natural", "Bebidas", 8.50, false},
	{"Cerveja Long Neck", "Bebidas", 12.00, false},
	{"Caipirinha", "Drinks", 22.00, false},
	{"Batata Frita", "Porções", 28.00, false},
	{"Isca de Peixe", "Porções", 42.00, false},
	{"Pastel (6 un.)", "Porções", 30.00, false},
	{"Filé à Parmegiana", "Pratos", 68.00, false},
	{"Peixe do Dia", "Pratos", 0, true},
	{"Pudim", "Sobremesas", 14.00, false},
}

// Seed fills an empty database with tables, a starter catalog and an admin
// user. Existing rows are left alone so Seed is safe to run on every start.
func Seed(db *gorm.DB, opts SeedOptions) error {
	if err := seedTables(db, opts.BaseURL, opts.Tables); err != nil {
		return err
	}
	if err := seedProducts(db); err != nil {
		return err
	}
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := seedAdmin(db, opts.AdminEmail, opts.AdminPassword); err != nil {
			return err
		}
	}
	return nil
}

func seedTables(db *gorm.DB, baseURL string, count int) error {
	for n := 1; n <= count; n++ {
		var existing int64
		if err := db.Model(&models.Table{}).Where("table_number = ?", n).Count(&existing).Error; err != nil {
			return fmt.Errorf("count table %d: %w", n, err)
		}
		if existing > 0 {
			continue
		}

		qrData := utils.TableOrderURL(baseURL, n)
		qrImage, err := utils.QRCodeDataURL(qrData)
		if err != nil {
			return fmt.Errorf("qr code for table %d: %w", n, err)
		}

		table := models.Table{
			TableNumber: n,
			Status:      models.TableStatusAvailable,
			QRCodeData:  qrData,
			QRCodeImage: qrImage,
		}
		if err := db.Create(&table).Error; err != nil {
			return fmt.Errorf("create table %d: %w", n, err)
		}
	}
	utils.InfoLogger.Printf("Seeded tables 1..%d", count)
	return nil
}

func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := make([]models.Product, 0, len(starterCatalog))
	for _, sp := range starterCatalog {
		p := models.Product{
			Name:            sp.name,
			Category:        sp.category,
			IsVariablePrice: sp.variable,
			Available:       true,
		}
		if !sp.variable {
			price := sp.price
			p.Price = &price
		}
		products = append(products, p)
	}

	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("create products: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d products", len(products))
	return nil
}

// seedAdmin stores the email the way login looks it up.
func seedAdmin(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Name:     "Admin",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	utils.InfoLogger.Printf("Seeded admin user %s", email)
	return nil
}
