// models/loan.go
package models

import "time"

const LoanTable = "loans"
const LoanEquipmentTable = "loan_equipment"

const (
	LoanActive   = "active"
	LoanReturned = "returned"
)

// 超过 7 个整天未还算逾期；延期一次固定加 7 天
const OverdueDays = 7

type Loan struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowerName string     `gorm:"size:200;not null;index" json:"borrowerName"`
	ItemName     string     `gorm:"size:200;not null" json:"itemName"` // 借出时的物品名快照
	GreenNumber  string     `gorm:"size:120;not null;index" json:"greenNumber"`
	LoanDate     time.Time  `gorm:"not null;index" json:"loanDate"`
	ReturnDate   *time.Time `json:"returnDate,omitempty"`
	Signature    string     `gorm:"type:text;not null" json:"signature"` // 借用人签名，必填
	Status       string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Equipment []LoanEquipment `gorm:"foreignKey:LoanID" json:"equipment,omitempty"`
}

// LoanEquipment 随借出单附带的配件（线材、遥控器等），跟着 Loan 一起建
type LoanEquipment struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	LoanID        string `gorm:"type:uuid;index;not null" json:"loanId"`
	EquipmentType string `gorm:"size:200;not null" json:"equipmentType"`
	Quantity      int    `gorm:"not null;default:1" json:"quantity"`
}

func (Loan) TableName() string          { return LoanTable }
func (LoanEquipment) TableName() string { return LoanEquipmentTable }

// DaysActive 自借出日起经过的整天数
func (l *Loan) DaysActive(now time.Time) int {
	d := truncateDay(now).Sub(truncateDay(l.LoanDate))
	return int(d.Hours() / 24)
}

// IsOverdue 只对未归还的借出单有意义
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && l.DaysActive(now) > OverdueDays
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
