// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanInProgress LoanStatus = "EM_ANDAMENTO"
	LoanReturned   LoanStatus = "DEVOLVIDO"
	LoanOverdue    LoanStatus = "ATRASADO"
	LoanCancelled  LoanStatus = "CANCELADO"
)

// Terminal reports whether no further transition is possible.
func (s LoanStatus) Terminal() bool {
	return s == LoanReturned || s == LoanCancelled
}

// Active loans count against the per-user limit and keep a book unavailable.
func (s LoanStatus) Active() bool {
	return s == LoanInProgress || s == LoanOverdue
}

type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"livro_id"`
	UserID     int64      `json:"usuario_id"`
	Book       *Book      `json:"livro,omitempty"`
	User       *User      `json:"usuario,omitempty"`
	LoanedAt   time.Time  `json:"data_emprestimo"`
	DueAt      time.Time  `json:"data_devolucao_prevista"`
	ReturnedAt *time.Time `json:"data_devolucao_efetiva,omitempty"`
	Status     LoanStatus `json:"status"`
}

// Return records the actual return date and closes the loan.
func (l *Loan) Return(at time.Time) {
	l.ReturnedAt = &at
	l.Status = LoanReturned
}

// Renew pushes the due date forward and puts the loan back in progress.
func (l *Loan) Renew(newDue time.Time) {
	l.DueAt = newDue
	l.Status = LoanInProgress
}

func (l *Loan) Cancel() {
	l.Status = LoanCancelled
}

// RefreshStatus derives ATRASADO when the due date has passed.
// Terminal loans are left untouched.
func (l *Loan) RefreshStatus(now time.Time) {
	if l.Status.Terminal() {
		return
	}
	if now.After(l.DueAt) {
		l.Status = LoanOverdue
	}
}
