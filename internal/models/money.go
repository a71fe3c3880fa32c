package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（最小货币单位，保留 2 位小数）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromInt 从整数创建金额
func NewMoneyFromInt(amount int64) Money {
	return Money{Decimal: decimal.NewFromInt(amount)}
}

// ZeroMoney 零金额
func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// ClampNonNegative 负数金额归零
func (m Money) ClampNonNegative() Money {
	if m.Decimal.IsNegative() {
		return ZeroMoney()
	}
	return NewMoneyFromDecimal(m.Decimal)
}

// IsPositive 是否大于 0
func (m Money) IsPositive() bool {
	return m.Decimal.GreaterThan(decimal.Zero)
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

// NullMoney 可空金额，NULL 表示未设置（门槛、阶梯边界、固定运费等）
type NullMoney struct {
	decimal.NullDecimal
}

// NewNullMoney 创建已设置的可空金额
func NewNullMoney(amount int64) NullMoney {
	return NullMoney{NullDecimal: decimal.NewNullDecimal(decimal.NewFromInt(amount))}
}

// NullMoneyFrom 由金额创建可空金额
func NullMoneyFrom(m Money) NullMoney {
	return NullMoney{NullDecimal: decimal.NewNullDecimal(m.Decimal.Round(2))}
}

// Get 返回金额及是否已设置
func (n NullMoney) Get() (Money, bool) {
	if !n.Valid {
		return ZeroMoney(), false
	}
	return NewMoneyFromDecimal(n.Decimal), true
}

// IsNegative 已设置且为负数
func (n NullMoney) IsNegative() bool {
	return n.Valid && n.Decimal.IsNegative()
}
