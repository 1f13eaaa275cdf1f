// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"elfatih/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a demo-data seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumDevices  int
	ShouldClean bool
}

// Seeder populates the database with demo data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// builtIn describes the accounts that must always exist.
var builtIn = []struct {
	Username string
	Email    string
	FullName string
	Password string
	UserType models.UserType
}{
	{"admin", "admin@elfatih.local", "System Administrator", "admin123", models.UserTypeAdmin},
	{"testuser", "testuser@elfatih.local", "Test User", "user123", models.UserTypeUser},
}

// BuiltInUsers ensures the bootstrap admin and test accounts exist. Existing
// accounts are left untouched so operators can change their passwords.
func BuiltInUsers(db *gorm.DB) error {
	for _, acct := range builtIn {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", acct.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("check built-in user %s: %w", acct.Username, err)
		}
		if count > 0 {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash built-in password: %w", err)
		}
		user := models.User{
			Username: acct.Username,
			Email:    acct.Email,
			FullName: acct.FullName,
			Password: string(hashed),
			UserType: acct.UserType,
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("create built-in user %s: %w", acct.Username, err)
		}
		log.Printf("✓ Built-in account %q created", acct.Username)
	}
	return nil
}

// ClearAll removes seeded data in dependency order.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.PostFeedback{},
		&models.PostSection{},
		&models.Post{},
		&models.Device{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	log.Println("✓ Existing data cleared")
	return nil
}

// Seed populates users, posts with sections and feedback, and devices.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("🌱 Seeding %d users, %d posts, %d devices...",
		opts.NumUsers, opts.NumPosts, opts.NumDevices)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	if err := BuiltInUsers(s.db); err != nil {
		return err
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	log.Printf("✓ %d demo users created", len(users))

	posts, err := s.seedPosts(opts.NumPosts)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	log.Printf("✓ %d demo posts created", len(posts))

	if err := s.seedFeedback(users, posts); err != nil {
		return fmt.Errorf("seed feedback: %w", err)
	}
	log.Println("✓ Demo feedback recorded")

	if err := s.seedDevices(opts.NumDevices); err != nil {
		return fmt.Errorf("seed devices: %w", err)
	}
	log.Printf("✓ %d demo devices created", opts.NumDevices)

	return nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	// One shared hash keeps seeding fast; every demo account gets the
	// same password.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, i))
		phone := fmt.Sprintf("+1%d", 2000000000+rand.Int63n(7999999999))

		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			FullName: first + " " + last,
			Phone:    &phone,
			Password: string(hashed),
			UserType: models.UserTypeUser,
			IsActive: rand.Intn(10) > 0,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(n int) ([]models.Post, error) {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := models.Post{
			Header:      gofakeit.Sentence(4),
			Description: gofakeit.Paragraph(1, 3, 12, " "),
			IsActive:    rand.Intn(10) > 1,
		}

		sectionCount := rand.Intn(4)
		for idx := 0; idx < sectionCount; idx++ {
			section := models.PostSection{
				SectionType: models.SectionTypeText,
				OrderIndex:  idx,
				TextContent: gofakeit.Paragraph(1, 2, 10, " "),
			}
			if rand.Intn(4) == 0 {
				section.SectionType = models.SectionTypeVideo
				section.TextContent = ""
				section.VideoURL = gofakeit.URL()
			}
			post.Sections = append(post.Sections, section)
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedFeedback(users []models.User, posts []models.Post) error {
	for pi := range posts {
		post := &posts[pi]
		voters := rand.Intn(len(users) + 1)
		positive, negative := 0, 0

		for ui := 0; ui < voters; ui++ {
			feedbackType := models.FeedbackPositive
			if rand.Intn(3) == 0 {
				feedbackType = models.FeedbackNegative
			}
			fb := models.PostFeedback{
				PostID:       post.ID,
				UserID:       users[ui].ID,
				FeedbackType: feedbackType,
			}
			if err := s.db.Create(&fb).Error; err != nil {
				return err
			}
			if feedbackType == models.FeedbackPositive {
				positive++
			} else {
				negative++
			}
		}

		if positive == 0 && negative == 0 {
			continue
		}
		err := s.db.Model(post).Updates(map[string]any{
			"positive_count": positive,
			"negative_count": negative,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedDevices(n int) error {
	for i := 0; i < n; i++ {
		desc := gofakeit.Sentence(8)
		device := models.Device{
			DeviceName:  fmt.Sprintf("%s %s %d", gofakeit.AdjectiveDescriptive(), gofakeit.NounConcrete(), i),
			Version:     fmt.Sprintf("v%d.%d.%d", rand.Intn(5)+1, rand.Intn(10), rand.Intn(10)),
			Description: &desc,
			IsActive:    rand.Intn(10) > 0,
		}
		// QR codes are generated on first request.
		if err := s.db.Create(&device).Error; err != nil {
			return err
		}
	}
	return nil
}
