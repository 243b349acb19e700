package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/service"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

type transactionJSON struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	Reference   *uuid.UUID `json:"reference,omitempty"`
	PackageID   *int       `json:"package_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func marshalTransactions(transactions []model.CreditTransaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, transactionJSON{
			ID:          t.ID,
			Type:        string(t.Kind),
			Amount:      t.Amount,
			Description: t.Description,
			Reference:   t.Reference,
			PackageID:   t.PackageID,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

type statisticsJSON struct {
	CurrentCredits    int64 `json:"current_credits"`
	TotalEarned       int64 `json:"total_earned"`
	TotalUsed         int64 `json:"total_used"`
	TotalTransactions int64 `json:"total_transactions"`
}

func marshalStatistics(s service.Statistics) statisticsJSON {
	return statisticsJSON{
		CurrentCredits:    s.CurrentCredits,
		TotalEarned:       s.TotalEarned,
		TotalUsed:         s.TotalUsed,
		TotalTransactions: s.TotalTransactions,
	}
}

type userJSON struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Credits   int64     `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

func marshalUser(u model.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Credits:   u.Credits,
		CreatedAt: u.CreatedAt,
	}
}

type packageJSON struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Credits     int64   `json:"credits"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	Popular     bool    `json:"popular"`
	Savings     int     `json:"savings,omitempty"`
}

func marshalPackage(p model.CreditPackage) packageJSON {
	return packageJSON{
		ID:          p.ID,
		Name:        p.Name,
		Credits:     p.Credits,
		Price:       float64(p.Price) / 100,
		Currency:    p.Currency,
		Description: p.Description,
		Popular:     p.Popular,
		Savings:     p.Savings,
	}
}
