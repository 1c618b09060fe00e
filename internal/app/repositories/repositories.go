package repositories

import (
	"github.com/yigit/transcriptledger/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	JournalRepository *JournalRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		JournalRepository: NewJournalRepository(database),
	}
}
