package services

import (
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// categoryProfile describes a seed category and its plausible amount range
type categoryProfile struct {
	name string
	kind string
	min  float64
	max  float64
}

var seedCategories = []categoryProfile{
	{"Salary", models.KindIncome, 2500, 6500},
	{"Freelance", models.KindIncome, 150, 1200},
	{"Investments", models.KindIncome, 20, 400},
	{"Refund", models.KindIncome, 10, 150},

	{"Groceries", models.KindExpense, 15, 220},
	{"Dining", models.KindExpense, 8, 90},
	{"Transportation", models.KindExpense, 3, 60},
	{"Shopping", models.KindExpense, 10, 350},
	{"Entertainment", models.KindExpense, 5, 80},
	{"Bills & Utilities", models.KindExpense, 30, 250},
	{"Healthcare", models.KindExpense, 10, 180},
	{"Education", models.KindExpense, 15, 300},
}

type transactionGenerator struct {
	faker *gofakeit.Faker
}

// NewTransactionGenerator creates a generator for development seed data
func NewTransactionGenerator() TransactionGeneratorInterface {
	return &transactionGenerator{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// GenerateHistoricalTransactions produces count transactions for an owner
// spread across the date range. Roughly one in five is income so seeded
// months show a positive balance most of the time.
func (g *transactionGenerator) GenerateHistoricalTransactions(ownerID uuid.UUID, startDate, endDate time.Time, count int) []*models.Transaction {
	transactions := make([]*models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		date := g.GenerateTimestamp(startDate, endDate)
		if i%5 == 0 {
			transactions = append(transactions, g.GenerateIncomeTransaction(ownerID, date))
		} else {
			transactions = append(transactions, g.GenerateExpenseTransaction(ownerID, date))
		}
	}
	return transactions
}

// GenerateIncomeTransaction produces a single income transaction on the given date
func (g *transactionGenerator) GenerateIncomeTransaction(ownerID uuid.UUID, date time.Time) *models.Transaction {
	profile := g.pickCategory(models.KindIncome)
	return g.build(ownerID, profile, date)
}

// GenerateExpenseTransaction produces a single expense transaction on the given date
func (g *transactionGenerator) GenerateExpenseTransaction(ownerID uuid.UUID, date time.Time) *models.Transaction {
	profile := g.pickCategory(models.KindExpense)
	return g.build(ownerID, profile, date)
}

// GenerateTimestamp returns a random date within the range, truncated to the day
func (g *transactionGenerator) GenerateTimestamp(startDate, endDate time.Time) time.Time {
	if !endDate.After(startDate) {
		return startDate
	}
	d := g.faker.DateRange(startDate, endDate)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (g *transactionGenerator) pickCategory(kind string) categoryProfile {
	matching := make([]categoryProfile, 0, len(seedCategories))
	for _, profile := range seedCategories {
		if profile.kind == kind {
			matching = append(matching, profile)
		}
	}
	return matching[g.faker.IntRange(0, len(matching)-1)]
}

func (g *transactionGenerator) build(ownerID uuid.UUID, profile categoryProfile, date time.Time) *models.Transaction {
	amount := decimal.NewFromFloat(g.faker.Float64Range(profile.min, profile.max)).Round(2)

	return &models.Transaction{
		OwnerID:     ownerID,
		Description: g.describe(profile),
		Amount:      amount,
		Category:    profile.name,
		Kind:        profile.kind,
		Date:        date,
	}
}

func (g *transactionGenerator) describe(profile categoryProfile) string {
	switch profile.name {
	case "Salary":
		return fmt.Sprintf("Monthly salary - %s", g.faker.Company())
	case "Freelance":
		return fmt.Sprintf("Freelance project - %s", g.faker.Company())
	case "Investments":
		return "Dividend payout"
	case "Refund":
		return fmt.Sprintf("Refund from %s", g.faker.Company())
	default:
		return fmt.Sprintf("%s - %s", profile.name, g.faker.Company())
	}
}
