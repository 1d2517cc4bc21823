package repository

import (
	"time"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the accounts table row.
type Account struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Email     string          `gorm:"type:varchar(255);not null"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Balance   decimal.Decimal `gorm:"type:numeric;not null"`
	Currency  string          `gorm:"type:varchar(3);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string { return "accounts" }

// Transfer is the transfers table row.
type Transfer struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	SenderID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	SenderEmail      string           `gorm:"type:varchar(255);not null"`
	SenderName       string           `gorm:"type:varchar(255);not null"`
	SenderCurrency   string           `gorm:"type:varchar(3);not null"`
	ReceiverID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	ReceiverEmail    string           `gorm:"type:varchar(255);not null"`
	ReceiverName     string           `gorm:"type:varchar(255);not null"`
	ReceiverCurrency string           `gorm:"type:varchar(3);not null"`
	TransferValue    decimal.Decimal  `gorm:"type:numeric;not null"`
	ConvertedAmount  *decimal.Decimal `gorm:"type:numeric"`
	ExchangeRate     *decimal.Decimal `gorm:"type:numeric"`
	CreatedAt        time.Time
}

func (Transfer) TableName() string { return "transfers" }

// User is the users table row, owned by the auth service.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Confirmed bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func toAccountModel(a *account.Account) *Account {
	return &Account{
		ID:        a.ID,
		UserID:    a.UserID,
		Email:     a.Email,
		Name:      a.Name,
		Balance:   a.Balance,
		Currency:  a.Currency.String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (m *Account) toDomain() *account.Account {
	return &account.Account{
		ID:        m.ID,
		UserID:    m.UserID,
		Email:     m.Email,
		Name:      m.Name,
		Balance:   m.Balance,
		Currency:  currency.Code(m.Currency),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toTransferModel(r *account.TransferRecord) *Transfer {
	return &Transfer{
		ID:               r.ID,
		SenderID:         r.SenderID,
		SenderEmail:      r.SenderEmail,
		SenderName:       r.SenderName,
		SenderCurrency:   r.SenderCurrency.String(),
		ReceiverID:       r.ReceiverID,
		ReceiverEmail:    r.ReceiverEmail,
		ReceiverName:     r.ReceiverName,
		ReceiverCurrency: r.ReceiverCurrency.String(),
		TransferValue:    r.TransferValue,
		ConvertedAmount:  r.ConvertedAmount,
		ExchangeRate:     r.ExchangeRate,
		CreatedAt:        r.CreatedAt,
	}
}

func (m *Transfer) toDomain() *account.TransferRecord {
	return &account.TransferRecord{
		ID:               m.ID,
		SenderID:         m.SenderID,
		SenderEmail:      m.SenderEmail,
		SenderName:       m.SenderName,
		SenderCurrency:   currency.Code(m.SenderCurrency),
		ReceiverID:       m.ReceiverID,
		ReceiverEmail:    m.ReceiverEmail,
		ReceiverName:     m.ReceiverName,
		ReceiverCurrency: currency.Code(m.ReceiverCurrency),
		TransferValue:    m.TransferValue,
		ConvertedAmount:  m.ConvertedAmount,
		ExchangeRate:     m.ExchangeRate,
		CreatedAt:        m.CreatedAt,
	}
}

func toUserModel(u *user.User) *User {
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *User) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Confirmed: m.Confirmed,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
