package models

// Report summarizes one period for the dashboard and the payment request.
type Report struct {
	Month        string  `json:"month" yaml:"month" toml:"month"`
	Total        int     `json:"total" yaml:"total" toml:"total"`
	Completed    int     `json:"completed" yaml:"completed" toml:"completed"`
	Earned       float64 `json:"earned" yaml:"earned" toml:"earned"`
	Pool         float64 `json:"pool" yaml:"pool" toml:"pool"`
	Bonus        float64 `json:"bonus" yaml:"bonus" toml:"bonus"`
	BonusEarned  bool    `json:"bonusEarned" yaml:"bonusEarned" toml:"bonusEarned"`
	Progress     float64 `json:"progress" yaml:"progress" toml:"progress"` // 0..100
	PaymentReady bool    `json:"paymentReady" yaml:"paymentReady" toml:"paymentReady"`
	Tasks        []Task  `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Payout is the earned value plus the bonus when it was earned.
func (r Report) Payout() float64 {
	if r.BonusEarned {
		return r.Earned + r.Bonus
	}
	return r.Earned
}
