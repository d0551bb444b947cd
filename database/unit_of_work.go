package database

import (
	"log"

	"gorm.io/gorm"
)

// UnitOfWork wraps one logical operation's repository writes in a
// transaction and carries the compensation list for external side effects
// (blob uploads) performed inside the same unit. Repository writes commit
// or roll back atomically; compensations unwind on abort only, so a
// committed unit never undoes its uploads.
//
// Usage:
//
//	uow := database.NewUnitOfWork(db)
//	defer uow.Close()
//	... uow.Tx writes, store uploads + uow.Compensate(...) ...
//	if err := uow.Commit(); err != nil { ... }
type UnitOfWork struct {
	Tx *gorm.DB

	compensations []func()
	finished      bool
}

// NewUnitOfWork begins a transaction on db.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{Tx: db.Begin()}
}

// Compensate registers an undo action for a side effect already performed
// in this unit. Actions run in reverse order when the unit aborts.
func (u *UnitOfWork) Compensate(fn func()) {
	u.compensations = append(u.compensations, fn)
}

// Commit finalizes the transaction. A commit failure aborts: the
// compensation list unwinds and the error propagates to the caller.
func (u *UnitOfWork) Commit() error {
	if u.finished {
		return nil
	}
	if err := u.Tx.Commit().Error; err != nil {
		u.finished = true
		u.unwind()
		return err
	}
	u.finished = true
	u.compensations = nil
	return nil
}

// Abort rolls back all writes in the transaction and unwinds the
// compensation list.
func (u *UnitOfWork) Abort() {
	if u.finished {
		return
	}
	u.finished = true
	if err := u.Tx.Rollback().Error; err != nil {
		log.Printf("unit of work: rollback failed: %v", err)
	}
	u.unwind()
}

// Close releases the unit on every exit path. Deferred by callers; a unit
// that was neither committed nor aborted is aborted here.
func (u *UnitOfWork) Close() {
	if !u.finished {
		u.Abort()
	}
}

func (u *UnitOfWork) unwind() {
	for i := len(u.compensations) - 1; i >= 0; i-- {
		u.compensations[i]()
	}
	u.compensations = nil
}
