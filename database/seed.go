package database

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/utils"
)

var seedCategories = []string{"Burgers", "Pizza", "Japanese", "Brazilian", "Desserts", "Healthy"}

var seedDishes = []string{
	"Cheeseburger", "Bacon Burger", "Margherita", "Pepperoni", "Sushi Combo",
	"Temaki", "Feijoada", "Pastel", "Acai Bowl", "Brigadeiro", "Caesar Salad",
	"Poke", "Lasagna", "Fries", "Onion Rings", "Brownie",
}

type SeedOptions struct {
	Restaurants           int
	ProductsPerRestaurant int
	Clients               int
	Password              string
	Seed                  int64
	// Progress receives the progress bar; nil discards it.
	Progress io.Writer
}

// SeedResult counts the rows created by Seed.
type SeedResult struct {
	Categories  int
	Restaurants int
	Products    int
	Clients     int
}

func restaurantEmail(i int) string { return fmt.Sprintf("restaurant%d@delivery.test", i) }
func clientEmail(i int) string     { return fmt.Sprintf("client%d@delivery.test", i) }

// Seed fills a database with demo data. Accounts are addressed by
// deterministic emails, so running it twice only adds what is missing.
// Every seeded restaurant opens 08:00-23:00 all week.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	if opts.Password == "" {
		opts.Password = "secret123"
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	fake := faker.NewWithSeed(rand.NewSource(opts.Seed))

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return res, err
	}

	bar := progressbar.NewOptions(opts.Restaurants+opts.Clients,
		progressbar.OptionSetWriter(opts.Progress),
		progressbar.OptionSetDescription("seeding"),
		progressbar.OptionShowCount(),
	)
	defer bar.Finish()

	db = db.WithContext(ctx)
	categories := make([]models.Category, 0, len(seedCategories))
	for _, name := range seedCategories {
		category := models.Category{Name: name}
		tx := db.Where(models.Category{Name: name}).FirstOrCreate(&category)
		if tx.Error != nil {
			return res, tx.Error
		}
		res.Categories += int(tx.RowsAffected)
		categories = append(categories, category)
	}

	for i := 1; i <= opts.Restaurants; i++ {
		created, products, err := seedRestaurant(db, fake, i, string(hashed), categories, opts.ProductsPerRestaurant)
		if err != nil {
			return res, err
		}
		if created {
			res.Restaurants++
			res.Products += products
		}
		bar.Add(1)
	}

	for i := 1; i <= opts.Clients; i++ {
		created, err := seedClient(db, fake, i, string(hashed))
		if err != nil {
			return res, err
		}
		if created {
			res.Clients++
		}
		bar.Add(1)
	}

	utils.InfoLogger.Printf("Seed completed: %d restaurants, %d products, %d clients", res.Restaurants, res.Products, res.Clients)
	return res, nil
}

func exists(db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func seedRestaurant(db *gorm.DB, fake faker.Faker, i int, password string, categories []models.Category, products int) (bool, int, error) {
	email := restaurantEmail(i)
	found, err := exists(db, email)
	if err != nil || found {
		return false, 0, err
	}

	count := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Name:     fake.Person().Name(),
			Email:    email,
			Phone:    fake.Phone().Number(),
			Password: password,
			Role:     models.RoleRestaurant,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		restaurant := models.Restaurant{
			AdminID:      admin.ID,
			CategoryID:   categories[fake.IntBetween(0, len(categories)-1)].ID,
			Name:         fake.Company().Name(),
			Description:  fake.Lorem().Sentence(8),
			DeliveryTime: fake.IntBetween(20, 60),
			Tax:          decimal.New(int64(fake.IntBetween(0, 1200)), -2),
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}

		week := make([]models.Hour, 0, 7)
		for day := 0; day < 7; day++ {
			week = append(week, models.Hour{RestaurantID: restaurant.ID, Weekday: day, Open: true, OpenedAt: 8 * 60, ClosedAt: 23 * 60})
		}
		if err := tx.Create(&week).Error; err != nil {
			return err
		}

		for p := 0; p < products; p++ {
			product := models.Product{
				RestaurantID: restaurant.ID,
				Name:         fake.RandomStringElement(seedDishes),
				Description:  fake.Lorem().Sentence(6),
				Price:        decimal.New(int64(fake.IntBetween(500, 8000)), -2),
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return err == nil, count, err
}

func seedClient(db *gorm.DB, fake faker.Faker, i int, password string) (bool, error) {
	email := clientEmail(i)
	found, err := exists(db, email)
	if err != nil || found {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		client := models.User{
			Name:     fake.Person().Name(),
			Email:    email,
			Phone:    fake.Phone().Number(),
			Password: password,
			Role:     models.RoleClient,
		}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		addr := fake.Address()
		return tx.Create(&models.Address{
			ClientID: client.ID,
			Street:   addr.StreetName(),
			Number:   addr.BuildingNumber(),
			District: addr.City(),
			City:     addr.City(),
			State:    addr.StateAbbr(),
			ZipCode:  addr.PostCode(),
		}).Error
	})
	return err == nil, err
}
