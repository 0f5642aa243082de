package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qainatsaeed/BlackBox-LLM/internal/model"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/database"
)

// Seeds a small demo account with a roster, one week of shifts and sales.
// Safe to re-run: employees upsert on code, shifts and sales are wiped for
// the demo account first.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	const account = "acct_demo"

	seedEmployees(db, account)
	seedShifts(db, account)
	seedSales(db, account)

	log.Println("✅ Seed complete")
}

func seedEmployees(db *gorm.DB, account string) {
	employees := []model.Employee{
		{Code: "emp001", Name: "Maria Lopez", Position: "manager", HourlyRate: 32.50, AccountId: account, LocationId: "loc_downtown"},
		{Code: "emp002", Name: "James Chen", Position: "supervisor", HourlyRate: 24.00, AccountId: account, LocationId: "loc_downtown", SupervisorCode: "emp001"},
		{Code: "emp003", Name: "Aisha Okafor", Position: "cook", HourlyRate: 18.50, AccountId: account, LocationId: "loc_downtown", SupervisorCode: "emp002"},
		{Code: "emp004", Name: "Derek Hall", Position: "server", HourlyRate: 15.00, AccountId: account, LocationId: "loc_downtown", SupervisorCode: "emp002"},
		{Code: "emp005", Name: "Priya Nair", Position: "supervisor", HourlyRate: 23.50, AccountId: account, LocationId: "loc_uptown", SupervisorCode: "emp001"},
		{Code: "emp006", Name: "Tom Brady", Position: "cook", HourlyRate: 19.00, AccountId: account, LocationId: "loc_uptown", SupervisorCode: "emp005"},
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(&employees).Error
	if err != nil {
		log.Fatalf("Error: Failed to seed employees: %v", err)
	}
	log.Printf("Seeded %d employees", len(employees))
}

func seedShifts(db *gorm.DB, account string) {
	if err := db.Where("account_id = ?", account).Delete(&model.Shift{}).Error; err != nil {
		log.Printf("Warn: Failed to clear shifts: %v", err)
	}

	start := time.Now().AddDate(0, 0, -7).Truncate(24 * time.Hour)
	var shifts []model.Shift
	for day := 0; day < 7; day++ {
		date := start.AddDate(0, 0, day)
		shifts = append(shifts,
			model.Shift{EmployeeCode: "emp003", EmployeeName: "Aisha Okafor", Position: "cook", AccountId: account, LocationId: "loc_downtown", Date: date, StartTime: "08:00", EndTime: "16:00", ScheduledHours: 8, AttendedHours: 8},
			model.Shift{EmployeeCode: "emp004", EmployeeName: "Derek Hall", Position: "server", AccountId: account, LocationId: "loc_downtown", Date: date, StartTime: "11:00", EndTime: "19:00", ScheduledHours: 8, AttendedHours: 7.5},
			model.Shift{EmployeeCode: "emp006", EmployeeName: "Tom Brady", Position: "cook", AccountId: account, LocationId: "loc_uptown", Date: date, StartTime: "09:00", EndTime: "17:00", ScheduledHours: 8, AttendedHours: 8},
		)
	}

	if err := db.Create(&shifts).Error; err != nil {
		log.Fatalf("Error: Failed to seed shifts: %v", err)
	}
	log.Printf("Seeded %d shifts", len(shifts))
}

func seedSales(db *gorm.DB, account string) {
	if err := db.Where("account_id = ?", account).Delete(&model.Sale{}).Error; err != nil {
		log.Printf("Warn: Failed to clear sales: %v", err)
	}

	start := time.Now().AddDate(0, 0, -7).Truncate(24 * time.Hour)
	var sales []model.Sale
	for day := 0; day < 7; day++ {
		date := start.AddDate(0, 0, day)
		sales = append(sales,
			model.Sale{AccountId: account, LocationId: "loc_downtown", EmployeeCode: "emp004", Date: date, Amount: 1240.50 + float64(day)*35, Category: "food"},
			model.Sale{AccountId: account, LocationId: "loc_downtown", Date: date, Amount: 310.00 + float64(day)*12, Category: "beverage"},
			model.Sale{AccountId: account, LocationId: "loc_uptown", Date: date, Amount: 980.25 + float64(day)*20, Category: "food"},
		)
	}

	if err := db.Create(&sales).Error; err != nil {
		log.Fatalf("Error: Failed to seed sales: %v", err)
	}
	log.Printf("Seeded %d sales", len(sales))
}
