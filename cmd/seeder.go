package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/meeting-manager/internal/core/datamodel"
	"github.com/frahmantamala/meeting-manager/internal/department"
	"github.com/frahmantamala/meeting-manager/internal/organization"
	"github.com/frahmantamala/meeting-manager/internal/user"
	"github.com/frahmantamala/meeting-manager/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		ctx := context.Background()
		app, err := newApplication(ctx, cfg, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init app: %v", err)
		}
		defer app.Close()

		if clearData {
			if err := clearTables(app.DB.Gorm); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(ctx, app); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		fmt.Println("Sample data seeded successfully")
	},
}

var (
	seedDepartments = []string{"Khoa Nội", "Khoa Ngoại", "Phòng Kế hoạch tổng hợp", "Phòng Tổ chức cán bộ"}
	seedOrgs        = []string{"Công đoàn", "Đoàn thanh niên", "Hội đồng khoa học"}
	seedUsers       = []struct {
		Username, First, Last, Role, Department, Org string
	}{
		{"admin", "Quản trị", "Hệ thống", "", "", ""},
		{"nguyenan", "An", "Nguyễn", "Trưởng khoa", "Khoa Nội", ""},
		{"tranbinh", "Bình", "Trần", "Điều dưỡng trưởng", "Khoa Ngoại", "Công đoàn"},
		{"lecuong", "Cường", "Lê", "Chuyên viên", "Phòng Kế hoạch tổng hợp", "Đoàn thanh niên"},
	}
)

const seedPassword = "password123"

func seed(ctx context.Context, app *application) error {
	departments := map[string]int64{}
	for _, name := range seedDepartments {
		d, err := app.Departments.Create(ctx, department.DepartmentDTO{Name: name})
		if errors.Is(err, department.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return fmt.Errorf("department %s: %w", name, err)
		}
		fmt.Println("Seeded department:", name)
		departments[name] = d.ID
	}
	if existing, err := app.Departments.List(ctx); err == nil {
		for _, d := range existing {
			departments[d.Name] = d.ID
		}
	}

	orgs := map[string]int64{}
	for _, name := range seedOrgs {
		o, err := app.Organizations.Create(ctx, organization.OrganizationDTO{Name: name})
		if errors.Is(err, organization.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return fmt.Errorf("organization %s: %w", name, err)
		}
		fmt.Println("Seeded organization:", name)
		orgs[name] = o.ID
	}
	if existing, err := app.Organizations.List(ctx); err == nil {
		for _, o := range existing {
			orgs[o.Name] = o.ID
		}
	}

	for _, su := range seedUsers {
		u, err := app.Users.Create(ctx, user.CreateUserDTO{
			Username:  su.Username,
			FirstName: su.First,
			LastName:  su.Last,
			Password:  seedPassword,
		})
		if errors.Is(err, user.ErrDuplicateUsername) {
			fmt.Println("user already exists:", su.Username)
			continue
		}
		if err != nil {
			return fmt.Errorf("user %s: %w", su.Username, err)
		}
		fmt.Println("Seeded user:", su.Username)

		if su.Department == "" && su.Org == "" {
			continue
		}
		dto := user.AffiliationDTO{}
		if id, ok := departments[su.Department]; ok {
			dto.DepartmentID = &id
		}
		if id, ok := orgs[su.Org]; ok {
			dto.OrganizationID = &id
		}
		if su.Role != "" {
			role := su.Role
			dto.Role = &role
		}
		if _, err := app.Users.AddAffiliation(ctx, u.ID, dto); err != nil {
			return fmt.Errorf("affiliation for %s: %w", su.Username, err)
		}
	}
	return nil
}

// clearTables empties every table, children first.
func clearTables(db *gorm.DB) error {
	models := datamodel.Models()
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(models) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
